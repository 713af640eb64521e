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
	"github.com/AmmarC10/ContractinGO-BE/services/jwt"
)

type AuthService interface {
	// SyncUser resolves verified claims to the local user row, creating it on
	// first contact. Used by the HTTP middleware.
	SyncUser(claims *jwt.Claims) (*models.User, error)
	// ResolveUser resolves verified claims to an existing user and never
	// creates one. Used by the realtime gateway.
	ResolveUser(claims *jwt.Claims) (*models.User, error)
	GetUserProfile(userID uint) (*models.User, error)
	EditUserProfile(userID uint, details *models.EditProfileRequest) error
	RegisterDeviceToken(userID uint, token string) error
}

type authService struct {
	Config   *config.Config
	authRepo db.AuthRepository
	logger   *zap.SugaredLogger
}

func NewAuthService(authRepo db.AuthRepository, conf *config.Config, logger *zap.SugaredLogger) AuthService {
	return &authService{
		Config:   conf,
		authRepo: authRepo,
		logger:   logger,
	}
}

func (a *authService) SyncUser(claims *jwt.Claims) (*models.User, error) {
	user := &models.User{
		UID:          claims.UID,
		Email:        claims.Email,
		Name:         claims.Name,
		ProfilePhoto: claims.Picture,
	}
	synced, err := a.authRepo.GetOrCreateUser(user)
	if err != nil {
		a.logger.Errorw("failed to sync user", "uid", claims.UID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	return synced, nil
}

func (a *authService) ResolveUser(claims *jwt.Claims) (*models.User, error) {
	user, err := a.authRepo.FindUserByUID(claims.UID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.ErrUnauthorized
		}
		a.logger.Errorw("failed to resolve user", "uid", claims.UID, "error", err)
		return nil, apiError.ErrInternalServerError
	}
	return user, nil
}

func (a *authService) GetUserProfile(userID uint) (*models.User, error) {
	user, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apiError.New("user not found", http.StatusNotFound)
		}
		return nil, apiError.ErrInternalServerError
	}
	return user, nil
}

func (a *authService) EditUserProfile(userID uint, details *models.EditProfileRequest) error {
	if err := a.authRepo.EditUserProfile(userID, details); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apiError.New("user not found", http.StatusNotFound)
		}
		return apiError.ErrInternalServerError
	}
	return nil
}

func (a *authService) RegisterDeviceToken(userID uint, token string) error {
	if token == "" {
		return apiError.New("device token is required", http.StatusBadRequest)
	}
	if err := a.authRepo.SaveDeviceToken(userID, token); err != nil {
		a.logger.Errorw("failed to save device token", "user_id", userID, "error", err)
		return apiError.ErrInternalServerError
	}
	return nil
}
