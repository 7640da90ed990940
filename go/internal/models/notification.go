package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Severity ranks how prominently a notification should be shown
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notification is a discrete event the human should be told about
type Notification struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	Week     int       `json:"week" yaml:"week"`
	Message  string    `json:"message" yaml:"message"`
	Severity Severity  `json:"severity" yaml:"severity"`
	ClubID   uuid.UUID `json:"club_id,omitempty" yaml:"club_id,omitempty"`
	At       time.Time `json:"at" yaml:"at"`
}

// NewNotification builds a notification stamped with a fresh id
func NewNotification(week int, severity Severity, clubID uuid.UUID, at time.Time, message string) Notification {
	return Notification{
		ID:       uuid.New(),
		Week:     week,
		Message:  message,
		Severity: severity,
		ClubID:   clubID,
		At:       at,
	}
}

// Money renders a currency amount the way notifications display it
func Money(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	switch {
	case amount >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, float64(amount)/1_000_000)
	case amount >= 1_000:
		return fmt.Sprintf("%s$%dK", sign, amount/1_000)
	default:
		return fmt.Sprintf("%s$%d", sign, amount)
	}
}
