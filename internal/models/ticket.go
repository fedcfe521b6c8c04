package models

import "time"

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists the enumeration in display order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// ParseTicketStatus validates a status literal. Statuses form a free-form
// enumeration set, not a state machine: any value may follow any other.
func ParseTicketStatus(value string) (TicketStatus, bool) {
	switch TicketStatus(value) {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return TicketStatus(value), true
	default:
		return "", false
	}
}

// SupportTicket always belongs to exactly one user; the owner is fixed at
// creation. Tickets are never deleted individually, only as part of
// deleting their owner.
type SupportTicket struct {
	ID          uint         `json:"id" gorm:"primaryKey;autoIncrement"`
	Subject     string       `json:"subject" gorm:"type:varchar(200);not null"`
	Description string       `json:"description" gorm:"type:varchar(1000);not null"`
	Status      TicketStatus `json:"status" gorm:"type:varchar(20);not null;default:'OPEN'"`
	UserID      uint         `json:"userId" gorm:"not null;index"`
	User        User         `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt   time.Time    `json:"createdAt" gorm:"autoCreateTime"`
}
