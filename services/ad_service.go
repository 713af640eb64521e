package services

import (
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/AmmarC10/ContractinGO-BE/config"
	"github.com/AmmarC10/ContractinGO-BE/db"
	apiError "github.com/AmmarC10/ContractinGO-BE/errors"
	"github.com/AmmarC10/ContractinGO-BE/models"
)

type AdService interface {
	CreateAd(ad *models.Ad) (*models.AdResponse, error)
	GetAd(id uint) (*models.AdResponse, error)
	ListAds(filter *models.AdFilter) ([]models.AdResponse, error)
	UpdateAd(adID, callerID uint, updates *models.Ad) (*models.AdResponse, error)
	DeleteAd(adID, callerID uint) error
	ListAdTypes() ([]models.AdType, error)
}

type adService struct {
	Config *config.Config
	adRepo db.AdRepository
	logger *zap.SugaredLogger
}

func NewAdService(adRepo db.AdRepository, conf *config.Config, logger *zap.SugaredLogger) AdService {
	return &adService{
		Config: conf,
		adRepo: adRepo,
		logger: logger,
	}
}

func (s *adService) CreateAd(ad *models.Ad) (*models.AdResponse, error) {
	if _, err := s.adRepo.FindAdTypeByID(ad.AdTypeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("unknown ad type", http.StatusBadRequest)
		}
		return nil, apiError.ErrInternalServerError
	}

	ad.IsActive = true
	if err := s.adRepo.CreateAd(ad); err != nil {
		s.logger.Errorw("failed to create ad", "user_id", ad.UserID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	return s.GetAd(ad.ID)
}

func (s *adService) GetAd(id uint) (*models.AdResponse, error) {
	ad, err := s.adRepo.FindAdByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("ad not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	response := models.NewAdResponse(ad)
	return &response, nil
}

func (s *adService) ListAds(filter *models.AdFilter) ([]models.AdResponse, error) {
	ads, err := s.adRepo.ListAds(filter)
	if err != nil {
		s.logger.Errorw("failed to list ads", "error", err)
		return nil, apiError.ErrInternalServerError
	}
	responses := make([]models.AdResponse, 0, len(ads))
	for i := range ads {
		responses = append(responses, models.NewAdResponse(&ads[i]))
	}
	return responses, nil
}

// UpdateAd applies owner-submitted changes. Only the ad's owner may mutate it.
func (s *adService) UpdateAd(adID, callerID uint, updates *models.Ad) (*models.AdResponse, error) {
	ad, err := s.adRepo.FindAdByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("ad not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	if ad.UserID != callerID {
		return nil, apiError.New("you do not own this ad", http.StatusForbidden)
	}
	if updates.AdTypeID != 0 && updates.AdTypeID != ad.AdTypeID {
		if _, err := s.adRepo.FindAdTypeByID(updates.AdTypeID); err != nil {
			return nil, apiError.New("unknown ad type", http.StatusBadRequest)
		}
		ad.AdTypeID = updates.AdTypeID
	}

	ad.Title = updates.Title
	ad.Description = updates.Description
	ad.Cost = updates.Cost
	ad.IsAvailableNow = updates.IsAvailableNow
	ad.IsActive = updates.IsActive
	ad.Photo1 = updates.Photo1
	ad.Photo2 = updates.Photo2
	ad.Photo3 = updates.Photo3
	ad.Location = updates.Location
	ad.Tags = updates.Tags
	ad.Skills = updates.Skills

	if err := s.adRepo.UpdateAd(ad); err != nil {
		s.logger.Errorw("failed to update ad", "ad_id", adID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	return s.GetAd(adID)
}

func (s *adService) DeleteAd(adID, callerID uint) error {
	ad, err := s.adRepo.FindAdByID(adID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError.New("ad not found", http.StatusNotFound)
		}
		return apiError.ErrInternalServerError
	}
	if ad.UserID != callerID {
		return apiError.New("you do not own this ad", http.StatusForbidden)
	}
	if err := s.adRepo.DeleteAd(adID); err != nil {
		s.logger.Errorw("failed to delete ad", "ad_id", adID, "error", err)
		return apiError.ErrInternalServerError
	}
	return nil
}

func (s *adService) ListAdTypes() ([]models.AdType, error) {
	adTypes, err := s.adRepo.ListAdTypes()
	if err != nil {
		return nil, apiError.ErrInternalServerError
	}
	return adTypes, nil
}
