package server

import (
	"fmt"
	"os"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
)

func (s *Server) setupRouter() *gin.Engine {
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "test" {
		r := gin.New()
		s.defineRoutes(r)
		return r
	}

	r := gin.New()

	// LoggerWithFormatter middleware will write the logs to gin.DefaultWriter
	// By default gin.DefaultWriter = os.Stdout
	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.MaxMultipartMemory = 32 << 20
	s.defineRoutes(r)

	return r
}

func (s *Server) defineRoutes(router *gin.Engine) {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: 30,
	})
	limitMessages := ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: apiError.ErrorHandler,
		KeyFunc: func(c *gin.Context) string {
			if user := currentUser(c); user != nil {
				return fmt.Sprintf("user:%d", user.ID)
			}
			return c.ClientIP()
		},
	})

	apirouter := router.Group("/api/v1")

	authorized := apirouter.Group("/")
	authorized.Use(s.Authorize())

	authorized.GET("/me", s.handleShowProfile())
	authorized.PUT("/me", s.handleEditUserProfile())
	authorized.POST("/device-tokens", s.handleRegisterDeviceToken())

	authorized.GET("/ad-types", s.handleListAdTypes())
	authorized.GET("/ads", s.handleListAds())
	authorized.POST("/ads", s.handleCreateAd())
	authorized.GET("/ads/my", s.handleListMyAds())
	authorized.GET("/ads/:id", s.handleGetAd())
	authorized.PUT("/ads/:id", s.handleUpdateAd())
	authorized.DELETE("/ads/:id", s.handleDeleteAd())

	authorized.GET("/conversations", s.handleListConversations())
	authorized.POST("/conversations", s.handleCreateConversation())
	authorized.GET("/conversations/unread-count", s.handleUnreadCount())
	authorized.GET("/conversations/with-user/:user_id/ad/:ad_id", s.handleGetConversationWithUser())
	authorized.GET("/conversations/:id", s.handleGetConversation())
	authorized.DELETE("/conversations/:id", s.handleDeleteConversation())
	authorized.POST("/conversations/:id/delete", s.handleDeleteConversation())
	authorized.GET("/conversations/:id/messages", s.handleListMessages())
	authorized.POST("/conversations/:id/messages", limitMessages, s.handleSendMessage())
	authorized.POST("/conversations/:id/mark-read", s.handleMarkRead())
	authorized.GET("/conversations/:id/unread-count", s.handleConversationUnreadCount())

	authorized.POST("/media/upload", s.handleUploadMedia())

	// The websocket gateway authenticates from the query string, not the
	// Authorization header, so it stays outside the authorized group.
	apirouter.GET("/ws/conversations/:id", s.handleConversationSocket())
}
