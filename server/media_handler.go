package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/server/response"
)

func (s *Server) handleUploadMedia() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}

		fileHeader, err := c.FormFile("image")
		if err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, apiError.New("image file is required", http.StatusBadRequest))
			return
		}

		result, uploadErr := s.MediaService.UploadImage(c.Request.Context(), fileHeader, user.ID)
		if uploadErr != nil {
			response.JSON(c, "", statusOf(uploadErr), nil, uploadErr)
			return
		}
		response.JSON(c, "image uploaded", http.StatusCreated, result, nil)
	}
}
