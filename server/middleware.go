package server

import (
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/models"
	"github.com/AmmarC10/ContractinGO-BE/server/response"
	"github.com/AmmarC10/ContractinGO-BE/services/jwt"
)

const userCtxKey = "user"

// Authorize validates the bearer token on the request, syncs the
// identity into the local user table and stores it on the context.
func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, apiError.New("authorization token required", http.StatusUnauthorized))
			return
		}

		claims, err := jwt.Verify(token, s.Config.SupabaseJWTSecret)
		if err != nil {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, apiError.New("invalid or expired token", http.StatusUnauthorized))
			return
		}

		user, err := s.AuthService.SyncUser(claims)
		if err != nil {
			respondAndAbort(c, "", statusOf(err), nil, err)
			return
		}

		c.Set(userCtxKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userCtxKey)
	if !ok {
		return nil
	}
	user, ok := v.(*models.User)
	if !ok {
		return nil
	}
	return user
}

func respondAndAbort(c *gin.Context, message string, status int, data interface{}, err error) {
	response.JSON(c, message, status, data, err)
	c.Abort()
}

func statusOf(err error) int {
	var apiErr *apiError.Error
	if stderrors.As(err, &apiErr) {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}
