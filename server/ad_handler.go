package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/models"
	"github.com/AmmarC10/ContractinGO-BE/server/response"
)

func (s *Server) handleCreateAd() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}

		var ad models.Ad
		if err := c.ShouldBindJSON(&ad); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, apiError.New(err.Error(), http.StatusBadRequest))
			return
		}
		ad.UserID = user.ID

		created, err := s.AdService.CreateAd(&ad)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "ad created", http.StatusCreated, created, nil)
	}
}

func (s *Server) handleListAds() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := &models.AdFilter{
			Location:      c.Query("location"),
			Tag:           c.Query("tag"),
			OnlyAvailable: c.Query("available_now") == "true",
		}
		if raw := c.Query("ad_type"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				response.JSON(c, "", http.StatusBadRequest, nil, apiError.New("invalid ad_type", http.StatusBadRequest))
				return
			}
			filter.AdTypeID = uint(id)
		}

		ads, err := s.AdService.ListAds(filter)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, ads, nil)
	}
}

func (s *Server) handleListMyAds() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.JSON(c, "", http.StatusUnauthorized, nil, apiError.ErrUnauthorized)
			return
		}

		ads, err := s.AdService.ListAds(&models.AdFilter{
			OwnerID:       user.ID,
			IncludeClosed: true,
		})
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, ads, nil)
	}
}

func (s *Server) handleGetAd() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}

		ad, err := s.AdService.GetAd(id)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, ad, nil)
	}
}

func (s *Server) handleUpdateAd() gin.HandlerFunc {
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

		var updates models.Ad
		if err := c.ShouldBindJSON(&updates); err != nil {
			response.JSON(c, "", http.StatusBadRequest, nil, apiError.New(err.Error(), http.StatusBadRequest))
			return
		}

		updated, err := s.AdService.UpdateAd(id, user.ID, &updates)
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "ad updated", http.StatusOK, updated, nil)
	}
}

func (s *Server) handleDeleteAd() gin.HandlerFunc {
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

		if err := s.AdService.DeleteAd(id, user.ID); err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "ad deleted", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleListAdTypes() gin.HandlerFunc {
	return func(c *gin.Context) {
		types, err := s.AdService.ListAdTypes()
		if err != nil {
			response.JSON(c, "", statusOf(err), nil, err)
			return
		}
		response.JSON(c, "", http.StatusOK, types, nil)
	}
}

// pathID parses a numeric path parameter, writing a 400 response when the
// value is not a positive integer.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		response.JSON(c, "", http.StatusBadRequest, nil, apiError.New("invalid "+name, http.StatusBadRequest))
		return 0, false
	}
	return uint(id), true
}
