package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/models"
	"github.com/AmmarC10/ContractinGO-BE/server/response"
)

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}
		response.JSON(c, "", http.StatusOK, gin.H{
			"id":            user.ID,
			"uid":           user.UID,
			"name":          user.Name,
			"email":         user.Email,
			"phone_number":  user.PhoneNumber,
			"profile_photo": user.ProfilePhoto,
		}, nil)
	}
}

func (s *Server) handleEditUserProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}

		var details models.EditProfileRequest
		if err := c.ShouldBindJSON(&details); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, apiError.New("invalid request body", http.StatusBadRequest))
			return
		}

		if err := s.AuthService.EditUserProfile(user.ID, &details); err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "profile updated", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleRegisterDeviceToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}

		var body struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, apiError.New("device token is required", http.StatusBadRequest))
			return
		}

		if err := s.AuthService.RegisterDeviceToken(user.ID, body.Token); err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "device token registered", http.StatusCreated, nil, nil)
	}
}
