// internal/services/auth_service.go
package services

import (
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mediakart/mediakart-backend/internal/apperror"
	"github.com/mediakart/mediakart-backend/internal/config"
	"github.com/mediakart/mediakart-backend/internal/models"
	"github.com/mediakart/mediakart-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	ExpiresIn int          `json:"expires_in"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.New(apperror.ValidationError, "validation failed", err)
	}

	// Check if a user with this email already exists
	var existingUser models.User
	err := s.db.Where("email = ?", req.Email).First(&existingUser).Error
	if err == nil {
		return nil, apperror.NewDuplicateEmail("user with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NewDatabase("failed to look up user", err)
	}

	user := &models.User{
		Username:          req.Username,
		Email:             req.Email,
		PurchasedProducts: []string{},
		UploadedProducts:  []string{},
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, apperror.NewInternal("failed to hash password", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, apperror.NewDatabase("failed to create user", err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"email":   user.Email,
	}).Info("User registered")

	return s.buildAuthResponse(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperror.New(apperror.ValidationError, "validation failed", err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewInvalidCredentials("invalid email or password")
		}
		return nil, apperror.NewDatabase("failed to look up user", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperror.NewInvalidCredentials("invalid email or password")
	}

	return s.buildAuthResponse(&user)
}

func (s *AuthService) GetUserByID(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NewNotFound("user not found")
		}
		return nil, apperror.NewDatabase("failed to look up user", err)
	}
	return &user, nil
}

func (s *AuthService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(user.ID, s.cfg.JWT.TokenTTL)
	if err != nil {
		return nil, apperror.NewInternal("failed to generate token", err)
	}

	return &AuthResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: s.cfg.JWT.TokenTTL * 3600,
	}, nil
}
