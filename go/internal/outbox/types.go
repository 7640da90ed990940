// Package outbox relays saved notifications from the Postgres outbox table
// to NATS JetStream. Rows are written in the same transaction as the season
// snapshot and announced with pg_notify; the listener publishes each one and
// marks it sent, falling back to polling for anything it missed.
package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
)

// Event is one notification waiting in the outbox
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Season    string          `json:"season"`
	Week      int             `json:"week"`
	Severity  models.Severity `json:"severity"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// Envelope is the message body published for every event
type Envelope struct {
	EventID   string          `json:"eventId"`
	Severity  models.Severity `json:"severity"`
	Season    string          `json:"season"`
	Week      int             `json:"week"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEnvelope wraps an event for publishing
func NewEnvelope(event Event, at time.Time) Envelope {
	return Envelope{
		EventID:   event.ID.String(),
		Severity:  event.Severity,
		Season:    event.Season,
		Week:      event.Week,
		Timestamp: at.UTC(),
		Payload:   event.Payload,
	}
}
