package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/helpdesk/backend/internal/models"
	"github.com/helpdesk/backend/pkg/utils"
)

// UserResponse is the immutable projection exposed to callers in place of
// the persistence entity. Sensitive fields (password hash) never appear.
type UserResponse struct {
	ID             uint      `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Phone          *string   `json:"phone,omitempty"`
	PrivacyEnabled bool      `json:"privacyEnabled"`
	Roles          []string  `json:"roles"`
	AvatarFilename *string   `json:"avatarFilename,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func newUserResponse(user *models.User) UserResponse {
	roles := user.RoleNames()
	sort.Strings(roles)
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Phone:          user.Phone,
		PrivacyEnabled: user.PrivacyEnabled,
		Roles:          roles,
		AvatarFilename: user.AvatarFilename,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

func newUserResponses(users []models.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	return out
}

type RegisterInput struct {
	Email          string  `json:"email" validate:"required,email,max=255"`
	Password       string  `json:"password" validate:"required,min=6,max=100"`
	FirstName      string  `json:"firstName" validate:"required,min=2,max=50,person_name"`
	LastName       string  `json:"lastName" validate:"required,min=2,max=50,person_name"`
	Phone          *string `json:"phone,omitempty" validate:"omitempty,max=20,phone"`
	PrivacyEnabled bool    `json:"privacyEnabled"`
}

// ProfileUpdateInput carries the mutable profile fields. Email and
// password are not changeable through this path. Nil fields are left
// untouched; a blank phone clears the stored value.
type ProfileUpdateInput struct {
	FirstName *string `json:"firstName,omitempty" validate:"omitempty,min=2,max=50,person_name"`
	LastName  *string `json:"lastName,omitempty" validate:"omitempty,min=2,max=50,person_name"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20,phone"`
}

type UserService struct {
	DB *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{DB: db}
}

// Register creates a user with a bcrypt-hashed credential and the default
// USER role. The whole operation commits or rolls back atomically; a
// concurrent registration losing the unique-index race surfaces as
// DuplicateResourceError.
func (s *UserService) Register(input RegisterInput) (UserResponse, error) {
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))
	if err := validateStruct(input); err != nil {
		return UserResponse{}, err
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return UserResponse{}, err
	}

	user := models.User{
		Email:          input.Email,
		PasswordHash:   hash,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Phone:          normalizePhone(input.Phone),
		PrivacyEnabled: input.PrivacyEnabled,
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", input.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &DuplicateResourceError{Resource: "User", Field: "email", Value: input.Email}
		}

		var role models.Role
		if err := tx.Where("name = ?", models.RoleNameUser).First(&role).Error; err != nil {
			return err
		}
		user.Roles = []models.Role{role}

		if err := tx.Create(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &DuplicateResourceError{Resource: "User", Field: "email", Value: input.Email}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return UserResponse{}, err
	}

	return newUserResponse(&user), nil
}

func (s *UserService) GetAll() ([]UserResponse, error) {
	var users []models.User
	if err := s.DB.Preload("Roles").Find(&users).Error; err != nil {
		return nil, err
	}
	return newUserResponses(users), nil
}

func (s *UserService) GetAllPaged(p utils.Pagination) ([]UserResponse, int64, error) {
	var total int64
	if err := s.DB.Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	query := utils.ApplyPagination(s.DB.Preload("Roles"), p)
	if err := query.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return newUserResponses(users), total, nil
}

// GetByID returns nil without an error when the id is unknown; absence is
// not exceptional here, the caller decides.
func (s *UserService) GetByID(id uint) (*UserResponse, error) {
	var user models.User
	err := s.DB.Preload("Roles").First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp := newUserResponse(&user)
	return &resp, nil
}

func (s *UserService) GetByEmail(email string) (*UserResponse, error) {
	var user models.User
	err := s.DB.Preload("Roles").First(&user, "email = ?", strings.ToLower(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp := newUserResponse(&user)
	return &resp, nil
}

// Update mutates profile fields by id. Administrative path.
func (s *UserService) Update(id uint, input ProfileUpdateInput) (UserResponse, error) {
	return s.updateWhere("id = ?", id, &NotFoundError{Resource: "User", Field: "id", Value: id}, input)
}

// UpdateProfile mutates profile fields keyed by the authenticated
// principal's email. Self-service path.
func (s *UserService) UpdateProfile(email string, input ProfileUpdateInput) (UserResponse, error) {
	email = strings.ToLower(email)
	return s.updateWhere("email = ?", email, &NotFoundError{Resource: "User", Field: "email", Value: email}, input)
}

func (s *UserService) updateWhere(cond string, value interface{}, notFound *NotFoundError, input ProfileUpdateInput) (UserResponse, error) {
	if err := validateStruct(input); err != nil {
		return UserResponse{}, err
	}

	var user models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Roles").First(&user, cond, value).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound
			}
			return err
		}

		if input.FirstName != nil {
			user.FirstName = strings.TrimSpace(*input.FirstName)
		}
		if input.LastName != nil {
			user.LastName = strings.TrimSpace(*input.LastName)
		}
		if input.Phone != nil {
			user.Phone = normalizePhone(input.Phone)
		}

		return tx.Save(&user).Error
	})
	if err != nil {
		return UserResponse{}, err
	}
	return newUserResponse(&user), nil
}

// UpdatePrivacy toggles the privacy flag for the authenticated principal.
func (s *UserService) UpdatePrivacy(email string, enabled bool) (UserResponse, error) {
	email = strings.ToLower(email)

	var user models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Roles").First(&user, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "User", Field: "email", Value: email}
			}
			return err
		}
		user.PrivacyEnabled = enabled
		return tx.Save(&user).Error
	})
	if err != nil {
		return UserResponse{}, err
	}
	return newUserResponse(&user), nil
}

// UpdateAvatar sets or clears the avatar reference. Blob store side
// effects are the caller's responsibility and must happen before this
// call.
func (s *UserService) UpdateAvatar(email string, filename *string) (UserResponse, error) {
	email = strings.ToLower(email)

	var user models.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Roles").First(&user, "email = ?", email).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "User", Field: "email", Value: email}
			}
			return err
		}
		user.AvatarFilename = filename
		return tx.Save(&user).Error
	})
	if err != nil {
		return UserResponse{}, err
	}
	return newUserResponse(&user), nil
}

// Delete removes the user's tickets and role associations before the user
// row itself, in that dependency order. It returns the avatar filename
// that was linked, if any, so the caller can clean up the blob store; the
// service never reaches into it.
func (s *UserService) Delete(id uint) (*string, error) {
	var avatar *string
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "User", Field: "id", Value: id}
			}
			return err
		}
		avatar = user.AvatarFilename

		if err := tx.Where("user_id = ?", id).Delete(&models.SupportTicket{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Association("Roles").Clear(); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return avatar, nil
}

// GetByRole lists users whose role set contains the given role name.
func (s *UserService) GetByRole(roleName string) ([]UserResponse, error) {
	name, ok := models.ParseRoleName(roleName)
	if !ok {
		return nil, &InvalidArgumentError{Message: "unknown role: " + roleName}
	}

	var users []models.User
	err := s.DB.
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", name).
		Preload("Roles").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return newUserResponses(users), nil
}

func (s *UserService) CountPrivacyEnabled() (int64, error) {
	var count int64
	err := s.DB.Model(&models.User{}).Where("privacy_enabled = ?", true).Count(&count).Error
	return count, err
}

// Search matches a case-insensitive substring against email, first name,
// or last name.
func (s *UserService) Search(keyword string, p utils.Pagination) ([]UserResponse, int64, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(keyword)) + "%"
	query := s.DB.Model(&models.User{}).Where(
		"LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?",
		pattern, pattern, pattern,
	)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	if err := utils.ApplyPagination(query.Preload("Roles"), p).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return newUserResponses(users), total, nil
}

func normalizePhone(phone *string) *string {
	if phone == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*phone)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
