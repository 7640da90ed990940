package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
)

// Hub is the gateway service. It implements season.Notifier so a process
// without a broker can feed clients directly.
type Hub struct {
	connections *ConnectionManager
	handler     *WebSocketHandler
	consumer    *EventConsumer
}

func NewHub(config ConnectionConfig) *Hub {
	cm := NewConnectionManager(config)
	return &Hub{
		connections: cm,
		handler:     NewWebSocketHandler(cm),
	}
}

// ConsumeFrom makes the hub read relayed notifications from JetStream
func (h *Hub) ConsumeFrom(ctx context.Context, config JetStreamConsumerConfig) error {
	consumer, err := NewEventConsumer(ctx, h, config)
	if err != nil {
		return fmt.Errorf("failed to create event consumer: %w", err)
	}
	h.consumer = consumer
	return nil
}

// Start runs the hub until ctx is cancelled
func (h *Hub) Start(ctx context.Context) error {
	log.Info().Bool("jetstream", h.consumer != nil).Msg("starting notification gateway")

	go h.connections.Start(ctx)
	if h.consumer != nil {
		go func() {
			if err := h.consumer.Start(ctx); err != nil {
				log.Error().Err(err).Msg("event consumer failed")
			}
		}()
	}

	<-ctx.Done()
	log.Info().Msg("notification gateway shutting down")
	if h.consumer != nil {
		return h.consumer.Stop()
	}
	return nil
}

// Notify implements season.Notifier
func (h *Hub) Notify(_ context.Context, notes []models.Notification) {
	for _, n := range notes {
		if err := h.publish("", n); err != nil {
			log.Error().Err(err).Str("notification_id", n.ID.String()).Msg("failed to forward notification")
		}
	}
}

func (h *Hub) publish(season string, n models.Notification) error {
	event, err := NotificationEvent(season, n)
	if err != nil {
		return err
	}
	h.connections.Broadcast(n.ClubID, event)
	return nil
}

// RegisterRoutes registers the WebSocket HTTP routes
func (h *Hub) RegisterRoutes(mux *http.ServeMux) {
	h.handler.RegisterRoutes(mux)
}

func (h *Hub) Stats() ConnectionStats {
	return h.connections.Stats()
}
