package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/models"
	"github.com/AmmarC10/ContractinGO-BE/realtime"
	"github.com/AmmarC10/ContractinGO-BE/server/response"
	"github.com/AmmarC10/ContractinGO-BE/services/jwt"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type handshakeResult struct {
	user      *models.User
	closeCode int
	reason    string
}

// handleConversationSocket upgrades the request and runs the handshake:
// verify the token, resolve the user and confirm conversation membership,
// in that order. Each failure closes the socket with its own code so
// clients can tell a missing credential from a bad one from a forbidden
// conversation.
func (s *Server) handleConversationSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		conversationID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || conversationID == 0 {
			response.JSON(c, "", http.StatusBadRequest, nil, apiError.New("invalid conversation id", http.StatusBadRequest))
			return
		}
		token := c.Query("token")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			s.Logger.Warnw("websocket upgrade failed", "error", err)
			return
		}

		results := make(chan handshakeResult, 1)
		go func() {
			results <- s.handshake(token, uint(conversationID))
		}()

		var res handshakeResult
		select {
		case res = <-results:
		case <-time.After(s.Config.WsHandshakeGrace()):
			closeWithCode(conn, websocket.ClosePolicyViolation, "handshake timed out")
			return
		}

		if res.closeCode != 0 {
			closeWithCode(conn, res.closeCode, res.reason)
			return
		}

		client := realtime.NewClient(conn, models.NewUserResponse(res.user), uint(conversationID), s.Broker, s.MessagingService, s.Logger)
		s.Broker.Subscribe(client.Group(), client)
		client.Run(c.Request.Context())
	}
}

// handshake authenticates a pending socket. The token is checked before any
// database work so unauthenticated attempts never touch storage.
func (s *Server) handshake(token string, conversationID uint) handshakeResult {
	if token == "" {
		return handshakeResult{closeCode: realtime.CloseAuthRequired, reason: "authentication token required"}
	}

	claims, err := jwt.Verify(token, s.Config.SupabaseJWTSecret)
	if err != nil {
		return handshakeResult{closeCode: realtime.CloseInvalidToken, reason: "invalid or expired token"}
	}

	user, err := s.AuthService.ResolveUser(claims)
	if err != nil {
		return handshakeResult{closeCode: realtime.CloseInvalidToken, reason: "invalid or expired token"}
	}

	if _, err := s.MessagingService.AuthorizeParticipant(conversationID, user.ID); err != nil {
		return handshakeResult{closeCode: realtime.CloseNotAuthorized, reason: "not authorized for this conversation"}
	}

	return handshakeResult{user: user}
}

func closeWithCode(conn *websocket.Conn, code int, reason string) {
	deadline := time.Now().Add(10 * time.Second)
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
	_ = conn.Close()
}
