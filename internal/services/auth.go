package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/helpdesk/backend/internal/models"
	"github.com/helpdesk/backend/pkg/utils"
)

// ErrInvalidCredentials is deliberately indistinguishable between an
// unknown email and a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService resolves credentials to an identity plus its role set. Both
// the API and web gates authenticate through it.
type AuthService struct {
	DB *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{DB: db}
}

func (s *AuthService) Authenticate(email, password string) (*models.User, error) {
	var user models.User
	err := s.DB.Preload("Roles").First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
