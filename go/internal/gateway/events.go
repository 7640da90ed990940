// Package gateway pushes season notifications to UI clients over
// WebSocket. Events arrive either from the JetStream stream fed by the
// outbox relay or directly from the season App when running on files.
package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/outbox"
)

// EventType represents the type of gateway event
type EventType string

const (
	EventTypeNotification EventType = "Notification"
	EventTypeConnected    EventType = "Connected"
)

// Event is the message written to clients
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	ClubID    string          `json:"club_id,omitempty"`
	Severity  models.Severity `json:"severity,omitempty"`
	Season    string          `json:"season,omitempty"`
	Week      int             `json:"week"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// NotificationEvent wraps a notification for delivery
func NotificationEvent(season string, n models.Notification) (*Event, error) {
	data, err := json.Marshal(n)
	if err != nil {
		return nil, fmt.Errorf("marshal notification: %w", err)
	}
	e := &Event{
		ID:        n.ID.String(),
		Type:      EventTypeNotification,
		Severity:  n.Severity,
		Season:    season,
		Week:      n.Week,
		Timestamp: n.At,
		Data:      data,
	}
	if n.ClubID != uuid.Nil {
		e.ClubID = n.ClubID.String()
	}
	return e, nil
}

// FromEnvelope converts a relayed outbox message back into a notification
func FromEnvelope(env outbox.Envelope) (models.Notification, error) {
	var n models.Notification
	if err := json.Unmarshal(env.Payload, &n); err != nil {
		return models.Notification{}, fmt.Errorf("unmarshal notification payload: %w", err)
	}
	return n, nil
}
