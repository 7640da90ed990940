package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/outbox"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(DefaultConnectionConfig())
	go hub.connections.Start(ctx)

	mux := http.NewServeMux()
	hub.RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return hub, srv
}

// dial connects a client and waits for the greeting, which is only sent
// once the connection is registered
func dial(t *testing.T, srv *httptest.Server, clubID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
	if clubID != uuid.Nil {
		url += "?club_id=" + clubID.String()
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if ev := readEvent(t, conn); ev.Type != EventTypeConnected {
		t.Fatalf("first event = %s, want %s", ev.Type, EventTypeConnected)
	}
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	return ev
}

func TestNotifyReachesFollowers(t *testing.T) {
	hub, srv := startHub(t)
	home, away := uuid.New(), uuid.New()

	homeConn := dial(t, srv, home)
	awayConn := dial(t, srv, away)
	allConn := dial(t, srv, uuid.Nil)

	n := models.NewNotification(7, models.SeverityWarning, home, time.Now(), "Keeper injured for 3 weeks")
	hub.Notify(context.Background(), []models.Notification{n})

	for _, conn := range []*websocket.Conn{homeConn, allConn} {
		ev := readEvent(t, conn)
		if ev.Type != EventTypeNotification || ev.ID != n.ID.String() || ev.Severity != models.SeverityWarning {
			t.Fatalf("event = %+v", ev)
		}
		var got models.Notification
		if err := json.Unmarshal(ev.Data, &got); err != nil {
			t.Fatalf("decode data: %v", err)
		}
		if got.Message != n.Message {
			t.Fatalf("message = %q, want %q", got.Message, n.Message)
		}
	}

	_ = awayConn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if _, _, err := awayConn.ReadMessage(); err == nil {
		t.Fatalf("another club's follower received the notification")
	}
}

func TestConsumerForwardsEnvelope(t *testing.T) {
	hub, srv := startHub(t)
	club := uuid.New()
	conn := dial(t, srv, club)

	n := models.NewNotification(12, models.SeveritySuccess, club, time.Now(), "Transfer complete")
	payload, _ := json.Marshal(n)
	data, _ := json.Marshal(outbox.NewEnvelope(outbox.Event{
		ID: n.ID, Season: "2026/27", Week: 12, Severity: n.Severity, Payload: payload,
	}, time.Now()))

	ec := &EventConsumer{hub: hub}
	if err := ec.processMessage(data); err != nil {
		t.Fatalf("processMessage: %v", err)
	}
	ev := readEvent(t, conn)
	if ev.Season != "2026/27" || ev.Week != 12 || ev.ClubID != club.String() {
		t.Fatalf("event = %+v", ev)
	}
	if err := ec.processMessage([]byte("{not json")); err == nil {
		t.Fatalf("expected an error for a malformed message")
	}
}

func TestBadClubID(t *testing.T) {
	_, srv := startHub(t)
	resp, err := http.Get(srv.URL + "/ws/notifications?club_id=nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestStats(t *testing.T) {
	hub, srv := startHub(t)
	club := uuid.New()
	dial(t, srv, club)
	dial(t, srv, club)
	dial(t, srv, uuid.Nil)

	stats := hub.Stats()
	if stats.TotalConnections != 3 || stats.Clubs[club.String()] != 2 || stats.Clubs["all"] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
