package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/helpdesk/backend/internal/models"
)

// TicketResponse denormalizes the owning user's id and email into the
// projection so listings never need a second lookup.
type TicketResponse struct {
	ID          uint      `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	UserID      uint      `json:"userId"`
	UserEmail   string    `json:"userEmail"`
	CreatedAt   time.Time `json:"createdAt"`
}

func newTicketResponse(ticket *models.SupportTicket) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Status:      string(ticket.Status),
		UserID:      ticket.UserID,
		UserEmail:   ticket.User.Email,
		CreatedAt:   ticket.CreatedAt,
	}
}

func newTicketResponses(tickets []models.SupportTicket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, newTicketResponse(&tickets[i]))
	}
	return out
}

type CreateTicketInput struct {
	UserID      uint   `json:"userId" validate:"required"`
	Subject     string `json:"subject" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=1000"`
}

type TicketService struct {
	DB *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{DB: db}
}

func (s *TicketService) GetAll() ([]TicketResponse, error) {
	var tickets []models.SupportTicket
	if err := s.DB.Preload("User").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return newTicketResponses(tickets), nil
}

func (s *TicketService) GetByID(id uint) (TicketResponse, error) {
	var ticket models.SupportTicket
	if err := s.DB.Preload("User").First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TicketResponse{}, &NotFoundError{Resource: "SupportTicket", Field: "id", Value: id}
		}
		return TicketResponse{}, err
	}
	return newTicketResponse(&ticket), nil
}

// GetByUserID fails when the user itself is unknown; a user with zero
// tickets yields an empty list, not an error.
func (s *TicketService) GetByUserID(userID uint) ([]TicketResponse, error) {
	var count int64
	if err := s.DB.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, &NotFoundError{Resource: "User", Field: "id", Value: userID}
	}

	var tickets []models.SupportTicket
	if err := s.DB.Preload("User").Where("user_id = ?", userID).Find(&tickets).Error; err != nil {
		return nil, err
	}
	return newTicketResponses(tickets), nil
}

// Create opens a ticket for an existing user. The status is fixed at OPEN
// regardless of anything the caller supplies.
func (s *TicketService) Create(input CreateTicketInput) (TicketResponse, error) {
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateStruct(input); err != nil {
		return TicketResponse{}, err
	}

	var ticket models.SupportTicket
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "id = ?", input.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "User", Field: "id", Value: input.UserID}
			}
			return err
		}

		ticket = models.SupportTicket{
			Subject:     input.Subject,
			Description: input.Description,
			Status:      models.TicketStatusOpen,
			UserID:      user.ID,
		}
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		ticket.User = user
		return nil
	})
	if err != nil {
		return TicketResponse{}, err
	}
	return newTicketResponse(&ticket), nil
}

// UpdateStatus overwrites the status unconditionally once the literal
// parses; statuses are a free-form enumeration set, not a guarded state
// machine. An invalid literal leaves the stored value untouched.
func (s *TicketService) UpdateStatus(id uint, statusLiteral string) (TicketResponse, error) {
	status, ok := models.ParseTicketStatus(statusLiteral)
	if !ok {
		return TicketResponse{}, &InvalidArgumentError{Message: "unknown ticket status: " + statusLiteral}
	}

	var ticket models.SupportTicket
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("User").First(&ticket, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "SupportTicket", Field: "id", Value: id}
			}
			return err
		}
		ticket.Status = status
		return tx.Model(&models.SupportTicket{}).Where("id = ?", id).Update("status", status).Error
	})
	if err != nil {
		return TicketResponse{}, err
	}
	return newTicketResponse(&ticket), nil
}
