package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
)

type memSource struct {
	mu     sync.Mutex
	events map[uuid.UUID]Event
	order  []uuid.UUID
}

func newMemSource(events ...Event) *memSource {
	s := &memSource{events: map[uuid.UUID]Event{}}
	for _, e := range events {
		s.events[e.ID] = e
		s.order = append(s.order, e.ID)
	}
	return s
}

func (s *memSource) FetchByID(_ context.Context, id uuid.UUID) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.events[id]
	if !ok || e.SentAt != nil {
		return nil, ErrEventNotFound
	}
	return &e, nil
}

func (s *memSource) FetchUnsent(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, id := range s.order {
		if e := s.events[id]; e.SentAt == nil && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memSource) MarkSent(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.events[id]
	now := time.Now()
	e.SentAt = &now
	s.events[id] = e
	return nil
}

func (s *memSource) CountPending(ctx context.Context) (int, error) {
	unsent, _ := s.FetchUnsent(ctx, len(s.order)+1)
	return len(unsent), nil
}

func (s *memSource) Ping(context.Context) error { return nil }

type flakyPublisher struct {
	failures int
	calls    int
	got      []uuid.UUID
}

func (p *flakyPublisher) Publish(_ context.Context, e Event) error {
	p.calls++
	if p.failures > 0 {
		p.failures--
		return errors.New("nats unavailable")
	}
	p.got = append(p.got, e.ID)
	return nil
}

func event(severity models.Severity) Event {
	n := models.NewNotification(4, severity, uuid.New(), time.Now(), "Striker injured")
	payload, _ := json.Marshal(n)
	return Event{ID: n.ID, Season: "2026/27", Week: 4, Severity: severity, Payload: payload}
}

func testConfig() ListenerConfig {
	cfg := DefaultListenerConfig()
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestHandleNotification(t *testing.T) {
	e := event(models.SeverityWarning)
	src := newMemSource(e)
	pub := &flakyPublisher{}
	relay := NewRelay(src, pub, testConfig())
	ctx := context.Background()

	if err := relay.HandleNotification(ctx, e.ID.String()); err != nil {
		t.Fatalf("HandleNotification: %v", err)
	}
	if diff := cmp.Diff([]uuid.UUID{e.ID}, pub.got); diff != "" {
		t.Fatalf("published (-want +got):\n%s", diff)
	}

	// a second notify for the same row is a no-op
	if err := relay.HandleNotification(ctx, e.ID.String()); err != nil {
		t.Fatalf("HandleNotification again: %v", err)
	}
	if pub.calls != 1 {
		t.Fatalf("publish calls = %d, want 1", pub.calls)
	}
	if n, last := relay.Stats(); n != 1 || last.IsZero() {
		t.Fatalf("stats = %d, %v", n, last)
	}
}

func TestHandleNotificationBadPayload(t *testing.T) {
	relay := NewRelay(newMemSource(), &flakyPublisher{}, testConfig())
	if err := relay.HandleNotification(context.Background(), "not-a-uuid"); err == nil {
		t.Fatalf("expected an error for a malformed id")
	}
}

func TestProcessUnsentRetries(t *testing.T) {
	a, b := event(models.SeverityInfo), event(models.SeverityError)
	src := newMemSource(a, b)
	pub := &flakyPublisher{failures: 2}
	relay := NewRelay(src, pub, testConfig())

	sent, err := relay.ProcessUnsent(context.Background())
	if err != nil {
		t.Fatalf("ProcessUnsent: %v", err)
	}
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if pending, _ := src.CountPending(context.Background()); pending != 0 {
		t.Fatalf("pending = %d after relay", pending)
	}
}

func TestProcessUnsentGivesUp(t *testing.T) {
	e := event(models.SeverityInfo)
	src := newMemSource(e)
	pub := &flakyPublisher{failures: 10}
	relay := NewRelay(src, pub, testConfig())

	sent, err := relay.ProcessUnsent(context.Background())
	if err != nil {
		t.Fatalf("ProcessUnsent: %v", err)
	}
	if sent != 0 || pub.calls != 3 {
		t.Fatalf("sent = %d calls = %d, want 0 and 3", sent, pub.calls)
	}
	if pending, _ := src.CountPending(context.Background()); pending != 1 {
		t.Fatalf("failed event should stay pending")
	}
}

func TestSubjectBySeverity(t *testing.T) {
	cfg := DefaultJetStreamConfig()
	if got := cfg.Subject(event(models.SeverityWarning)); got != "touchline.events.warning" {
		t.Fatalf("subject = %q", got)
	}
}

func TestHealthCheck(t *testing.T) {
	src := newMemSource(event(models.SeverityInfo))
	relay := NewRelay(src, &flakyPublisher{}, testConfig())

	tests := []struct {
		name     string
		nats     Probe
		listener Probe
		healthy  bool
		code     int
	}{
		{"all up", func() bool { return true }, func() bool { return true }, true, http.StatusOK},
		{"nats down", func() bool { return false }, func() bool { return true }, false, http.StatusServiceUnavailable},
		{"listener stopped", nil, func() bool { return false }, false, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthChecker(relay, src, src, tt.nats, tt.listener, time.Minute)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			if rec.Code != tt.code {
				t.Fatalf("status code = %d, want %d", rec.Code, tt.code)
			}
			var status HealthStatus
			if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if status.Healthy != tt.healthy || status.PendingEvents != 1 {
				t.Fatalf("status = %+v", status)
			}
		})
	}
}
