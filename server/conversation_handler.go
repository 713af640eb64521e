package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/server/response"
)

func (s *Server) handleListConversations() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}

		conversations, err := s.MessagingService.ListUserConversations(user.ID)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, conversations, nil)
	}
}

// handleCreateConversation is idempotent: asking for a conversation that
// already exists for the same ad and participant pair returns the existing
// one instead of creating a duplicate.
func (s *Server) handleCreateConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}

		var body struct {
			AdID        uint `json:"ad" binding:"required"`
			OtherUserID uint `json:"other_user_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, apiError.New("ad and other_user_id are required", http.StatusBadRequest))
			return
		}

		conversation, err := s.MessagingService.GetOrCreateConversation(body.AdID, user.ID, body.OtherUserID)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusCreated, conversation, nil)
	}
}

func (s *Server) handleGetConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		conversation, err := s.MessagingService.GetConversation(id, user.ID)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, conversation, nil)
	}
}

func (s *Server) handleGetConversationWithUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}
		otherID, ok := pathID(c, "user_id")
		if !ok {
			return
		}
		adID, ok := pathID(c, "ad_id")
		if !ok {
			return
		}

		conversation, err := s.MessagingService.GetOrCreateConversation(adID, user.ID, otherID)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, conversation, nil)
	}
}

func (s *Server) handleListMessages() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		messages, err := s.MessagingService.ListMessages(id, user.ID)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, messages, nil)
	}
}

// handleSendMessage is the REST write path. It appends to the conversation
// log and fans the message out to any live websocket sessions, same as a
// send_message frame on the socket.
func (s *Server) handleSendMessage() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		var body struct {
			Content  string `json:"content"`
			ImageURL string `json:"image_url"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, apiError.New("invalid request body", http.StatusBadRequest))
			return
		}

		message, err := s.MessagingService.SendMessage(c.Request.Context(), id, user.ID, body.Content, body.ImageURL)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusCreated, message, nil)
	}
}

func (s *Server) handleMarkRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := s.MessagingService.MarkRead(id, user.ID); err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "messages marked as read", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}

		count, err := s.MessagingService.UnreadCount(user.ID)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"unread_count": count}, nil)
	}
}

func (s *Server) handleConversationUnreadCount() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		count, err := s.MessagingService.ConversationUnreadCount(id, user.ID)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{"unread_count": count}, nil)
	}
}

func (s *Server) handleDeleteConversation() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		if err := s.MessagingService.DeleteConversation(id, user.ID); err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "conversation deleted", http.StatusOK, nil, nil)
	}
}
