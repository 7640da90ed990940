package store

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/content"
	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/rewards"
	"github.com/mcdev12/touchline/go/internal/season"
)

var savedAt = time.Date(2026, 8, 14, 19, 30, 0, 0, time.UTC)

func savedGame() *models.SeasonState {
	rng := rand.New(rand.NewSource(11))
	state := &models.SeasonState{Label: "2026/27", CurrentWeek: 5, Manager: models.Manager{Name: "Sam"}}
	for i, name := range content.ClubNames(rng, 4) {
		state.Clubs = append(state.Clubs, models.Club{
			ID:      uuid.New(),
			Name:    name,
			Budget:  int64(40_000_000 + i*5_000_000),
			Players: content.Squad(rng, 21, 65+i),
		})
	}
	state.Clubs[0].Human = true
	state.HumanClubID = state.Clubs[0].ID
	ids := make([]uuid.UUID, len(state.Clubs))
	for i := range state.Clubs {
		ids[i] = state.Clubs[i].ID
	}
	state.Fixtures = season.Schedule(ids, rng)

	f := &state.Fixtures[0]
	f.Result = &models.MatchResult{
		HomeGoals: 2,
		AwayGoals: 1,
		Events: []models.MatchEvent{{
			Minute: 33, Type: models.MatchEventGoal, ClubID: f.HomeID, PlayerID: state.Clubs[0].Players[3].ID,
		}},
		Performances: []models.Performance{{PlayerID: state.Clubs[0].Players[3].ID, ClubID: f.HomeID, Minutes: 90, Goals: 1, Rating: 8.4, PassAccuracy: 0.81}},
	}

	star := &state.Clubs[0].Players[0]
	star.Injury = &models.Condition{Kind: "hamstring strain", WeeksLeft: 2}
	star.OnTransferList = true
	star.Offers = []models.TransferOffer{{
		ID:               uuid.New(),
		FromClubID:       state.Clubs[1].ID,
		FromClubName:     state.Clubs[1].Name,
		Fee:              6_500_000,
		Type:             models.TransferTypeTransfer,
		Status:           models.OfferStatusNegotiating,
		Round:            1,
		LastCounterOffer: 7_200_000,
		AnchorFee:        7_000_000,
		CreatedWeek:      4,
		ExpiryWeek:       7,
		History: []models.NegotiationEntry{
			{Round: 0, Actor: models.ActorAI, Amount: 6_500_000, At: savedAt},
			{Round: 1, Actor: models.ActorUser, Amount: 7_200_000, At: savedAt, Note: "counter"},
		},
	}}

	state.Favorites = []uuid.UUID{state.Clubs[2].Players[4].ID}
	state.TransferHistory = []models.TransferRecord{{
		ID: uuid.New(), PlayerID: state.Clubs[1].Players[0].ID, PlayerName: state.Clubs[1].Players[0].Name,
		FromClubID: state.Clubs[2].ID, ToClubID: state.Clubs[1].ID,
		Fee: 2_000_000, Type: models.TransferTypeTransfer, Week: 2, Season: "2026/27",
	}}
	state.Mailbox = []models.MailMessage{{ID: uuid.New(), Week: 4, Subject: "Board warning", Body: "Finances are stretched", At: savedAt}}
	state.CareerHistory = []models.CareerEntry{{Season: "2025/26", ClubName: state.Clubs[0].Name, Rank: 3, Points: 61, Trophies: []string{"Cup"}}}
	return state
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	want := savedGame()

	if err := fs.Save(ctx, season.Snapshot{State: want}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("restored game differs (-want +got):\n%s", diff)
	}
}

func TestFileStoreSplitsFiles(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewFileStore(dir)
	if err := fs.Save(context.Background(), season.Snapshot{State: savedGame()}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	for _, name := range []string{leagueFile, historyFile, mailboxFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		if _, err := os.Stat(filepath.Join(dir, name+".tmp")); !os.IsNotExist(err) {
			t.Fatalf("temporary file for %s left behind", name)
		}
	}
}

func TestFileStoreFailedSaveKeepsPreviousWeek(t *testing.T) {
	dir := t.TempDir()
	fs, _ := NewFileStore(dir)
	ctx := context.Background()
	state := savedGame()
	state.CurrentWeek = 3
	if err := fs.Save(ctx, season.Snapshot{State: state}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.Mkdir(filepath.Join(dir, notificationsFile), 0o755); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	next := state.Clone()
	next.CurrentWeek = 4
	next.TransferHistory = append(next.TransferHistory, models.TransferRecord{ID: uuid.New(), PlayerName: "Late Signing", Week: 4})
	notes := []models.Notification{models.NewNotification(4, models.SeverityInfo, next.HumanClubID, savedAt, "Week 4 played")}
	if err := fs.Save(ctx, season.Snapshot{State: next, Notifications: notes}); err == nil {
		t.Fatal("Save succeeded with an unwritable notification log")
	}

	got, err := fs.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CurrentWeek != 3 {
		t.Fatalf("CurrentWeek = %d, want 3", got.CurrentWeek)
	}
	if len(got.TransferHistory) != len(state.TransferHistory) {
		t.Fatalf("transfer history has %d records, want %d", len(got.TransferHistory), len(state.TransferHistory))
	}
	for _, name := range []string{leagueFile, historyFile, mailboxFile} {
		if _, err := os.Stat(filepath.Join(dir, name+".tmp")); !os.IsNotExist(err) {
			t.Fatalf("temporary file for %s left behind", name)
		}
	}
}

func TestFileStoreLoadEmpty(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	if _, err := fs.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFileStoreAppendsNotifications(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	ctx := context.Background()
	state := savedGame()
	club := state.HumanClubID

	first := []models.Notification{
		models.NewNotification(5, models.SeverityWarning, club, savedAt, "Striker injured"),
		models.NewNotification(5, models.SeverityInfo, club, savedAt, "Offer received"),
	}
	second := []models.Notification{models.NewNotification(6, models.SeveritySuccess, club, savedAt, "Transfer complete")}

	for _, notes := range [][]models.Notification{first, second, nil} {
		if err := fs.Save(ctx, season.Snapshot{State: state, Notifications: notes}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	got, err := fs.Notifications()
	if err != nil {
		t.Fatalf("Notifications: %v", err)
	}
	if diff := cmp.Diff(append(first, second...), got); diff != "" {
		t.Fatalf("notification log (-want +got):\n%s", diff)
	}
}

func TestFileStoreSummary(t *testing.T) {
	fs, _ := NewFileStore(t.TempDir())
	state := savedGame()
	sum := &rewards.Summary{
		Season:    state.Label,
		Table:     []rewards.Placing{{ClubID: state.HumanClubID, ClubName: state.Clubs[0].Name, Rank: 1, Points: 80, Prize: 100_000_000}},
		TopScorer: &rewards.Award{PlayerID: state.Clubs[0].Players[9].ID, PlayerName: "Kai Mensah", Value: 24},
		Streaks:   []rewards.Streak{},
		Trophies:  []string{"League Champions"},
	}
	if err := fs.Save(context.Background(), season.Snapshot{State: state, Summary: sum}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := fs.Summary("2026/27")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if got.Season != sum.Season || got.TopScorer.PlayerName != "Kai Mensah" || got.Table[0].Prize != 100_000_000 {
		t.Fatalf("summary = %+v", got)
	}
	if _, err := fs.Summary("2030/31"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
