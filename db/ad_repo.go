package db

import (
	"gorm.io/gorm"

	"github.com/AmmarC10/ContractinGO-BE/models"
)

type AdRepository interface {
	CreateAd(ad *models.Ad) error
	FindAdByID(id uint) (*models.Ad, error)
	ListAds(filter *models.AdFilter) ([]models.Ad, error)
	UpdateAd(ad *models.Ad) error
	DeleteAd(id uint) error
	FindAdTypeByID(id uint) (*models.AdType, error)
	ListAdTypes() ([]models.AdType, error)
}

type adRepo struct {
	DB *gorm.DB
}

func NewAdRepo(db *GormDB) AdRepository {
	return &adRepo{db.DB}
}

func (r *adRepo) CreateAd(ad *models.Ad) error {
	return r.DB.Create(ad).Error
}

func (r *adRepo) FindAdByID(id uint) (*models.Ad, error) {
	var ad models.Ad
	err := r.DB.Preload("AdType").Preload("User").First(&ad, id).Error
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

func (r *adRepo) ListAds(filter *models.AdFilter) ([]models.Ad, error) {
	query := r.DB.Preload("AdType").Preload("User").Order("created_at DESC")

	if filter != nil {
		if !filter.IncludeClosed {
			query = query.Where("is_active = ?", true)
		}
		if filter.OwnerID != 0 {
			query = query.Where("user_id = ?", filter.OwnerID)
		}
		if filter.Location != "" {
			query = query.Where("location ILIKE ?", "%"+filter.Location+"%")
		}
		if filter.AdTypeID != 0 {
			query = query.Where("ad_type_id = ?", filter.AdTypeID)
		}
		if filter.Tag != "" {
			query = query.Where("tags ILIKE ?", "%"+filter.Tag+"%")
		}
		if filter.OnlyAvailable {
			query = query.Where("is_available_now = ?", true)
		}
	}

	var ads []models.Ad
	if err := query.Find(&ads).Error; err != nil {
		return nil, err
	}
	return ads, nil
}

func (r *adRepo) UpdateAd(ad *models.Ad) error {
	return r.DB.Save(ad).Error
}

func (r *adRepo) DeleteAd(id uint) error {
	return r.DB.Delete(&models.Ad{}, id).Error
}

func (r *adRepo) FindAdTypeByID(id uint) (*models.AdType, error) {
	var adType models.AdType
	if err := r.DB.First(&adType, id).Error; err != nil {
		return nil, err
	}
	return &adType, nil
}

func (r *adRepo) ListAdTypes() ([]models.AdType, error) {
	var adTypes []models.AdType
	if err := r.DB.Order("name").Find(&adTypes).Error; err != nil {
		return nil, err
	}
	return adTypes, nil
}
