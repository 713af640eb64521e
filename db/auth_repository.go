package db

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/AmmarC10/ContractinGO-BE/models"
)

type AuthRepository interface {
	FindUserByID(id uint) (*models.User, error)
	FindUserByUID(uid string) (*models.User, error)
	GetOrCreateUser(user *models.User) (*models.User, error)
	UpdateUser(user *models.User) error
	EditUserProfile(userID uint, details *models.EditProfileRequest) error
	SaveDeviceToken(userID uint, token string) error
	ListDeviceTokens(userIDs []uint) ([]string, error)
}

type authRepo struct {
	DB *gorm.DB
}

func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

func (a *authRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := a.DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByUID(uid string) (*models.User, error) {
	var user models.User
	if err := a.DB.Where("uid = ?", uid).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateUser returns the existing row for the user's UID, creating it
// from the supplied claims-derived fields when absent.
func (a *authRepo) GetOrCreateUser(user *models.User) (*models.User, error) {
	if user == nil || user.UID == "" {
		return nil, errors.New("user uid is required")
	}

	var existing models.User
	err := a.DB.Where("uid = ?", user.UID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "failed to look up user by uid")
	}

	if err := a.DB.Create(user).Error; err != nil {
		return nil, errors.Wrap(err, "failed to create user")
	}
	return user, nil
}

func (a *authRepo) UpdateUser(user *models.User) error {
	return a.DB.Save(user).Error
}

func (a *authRepo) EditUserProfile(userID uint, details *models.EditProfileRequest) error {
	updates := map[string]interface{}{}
	if details.Name != "" {
		updates["name"] = details.Name
	}
	if details.PhoneNumber != "" {
		updates["phone_number"] = details.PhoneNumber
	}
	if details.ProfilePhoto != "" {
		updates["profile_photo"] = details.ProfilePhoto
	}
	if len(updates) == 0 {
		return nil
	}

	result := a.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (a *authRepo) SaveDeviceToken(userID uint, token string) error {
	deviceToken := models.DeviceToken{UserID: userID, Token: token}
	return a.DB.
		Where(models.DeviceToken{Token: token}).
		Assign(models.DeviceToken{UserID: userID}).
		FirstOrCreate(&deviceToken).Error
}

func (a *authRepo) ListDeviceTokens(userIDs []uint) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tokens []string
	err := a.DB.Model(&models.DeviceToken{}).
		Where("user_id IN ?", userIDs).
		Pluck("token", &tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
