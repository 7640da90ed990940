package season

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/rewards"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/transfer"
)

type memRepo struct {
	mu    sync.Mutex
	state *models.SeasonState
	notes     []models.Notification
	summaries []*rewards.Summary
	saves     int
	err   error
}

func (r *memRepo) Save(_ context.Context, snap Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.state = snap.State.Clone()
	r.notes = append(r.notes, snap.Notifications...)
	if snap.Summary != nil {
		r.summaries = append(r.summaries, snap.Summary)
	}
	r.saves++
	return nil
}

func (r *memRepo) Load(context.Context) (*models.SeasonState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == nil {
		return nil, errors.New("nothing saved")
	}
	return r.state.Clone(), nil
}

type recordingNotifier struct {
	notes []models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notes []models.Notification) {
	n.notes = append(n.notes, notes...)
}

func newApp(t *testing.T, state *models.SeasonState) (*App, *memRepo, *recordingNotifier) {
	t.Helper()
	enforcer := roster.NewEnforcer(stubYouth{})
	market := transfer.NewMarket(enforcer)
	calc := rewards.NewCalculator(enforcer)
	clock := clockwork.NewFakeClock()
	engine := NewEngine(market, enforcer, NewStadium(), calc, clock)
	repo := &memRepo{}
	notifier := &recordingNotifier{}
	app := NewApp(engine, market, calc, homeWins{}, repo, notifier, clock, rand.New(rand.NewSource(21)))
	if err := app.NewGame(context.Background(), state); err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return app, repo, notifier
}

func TestAppAdvanceSavesAndSwaps(t *testing.T) {
	app, repo, _ := newApp(t, league(4))
	ctx := context.Background()

	for week := 1; week <= 3; week++ {
		res, err := app.Advance(ctx)
		if err != nil {
			t.Fatalf("Advance week %d: %v", week, err)
		}
		if res.State.CurrentWeek != week {
			t.Fatalf("CurrentWeek = %d, want %d", res.State.CurrentWeek, week)
		}
		if res.AwaitingInput {
			break
		}
	}

	live, err := app.State()
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	saved, _ := repo.Load(ctx)
	if diff := cmp.Diff(saved, live); diff != "" {
		t.Fatalf("saved and live state differ (-saved +live):\n%s", diff)
	}
}

func TestAppFailedSaveKeepsState(t *testing.T) {
	app, repo, _ := newApp(t, league(4))
	ctx := context.Background()
	before, _ := app.State()

	repo.err = errors.New("disk full")
	if _, err := app.Advance(ctx); err == nil {
		t.Fatalf("expected save error")
	}
	after, _ := app.State()
	if after.CurrentWeek != before.CurrentWeek {
		t.Fatalf("week moved to %d despite failed save", after.CurrentWeek)
	}
}

func TestAppRefusedActionLeavesStateAlone(t *testing.T) {
	app, repo, notifier := newApp(t, league(4))
	ctx := context.Background()
	before, _ := app.State()
	saves := repo.saves

	human := before.HumanClub()
	err := app.Release(ctx, human.Players[0].ID)
	// 22 players: the first release is allowed, the third would breach the floor
	if err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := app.Release(ctx, human.Players[1].ID); err != nil {
		t.Fatalf("Release: %v", err)
	}
	mid, _ := app.State()
	err = app.Release(ctx, human.Players[2].ID)
	if !errors.Is(err, roster.ErrBelowFloor) {
		t.Fatalf("err = %v, want ErrBelowFloor", err)
	}

	after, _ := app.State()
	if diff := cmp.Diff(mid, after); diff != "" {
		t.Fatalf("refused release changed state (-want +got):\n%s", diff)
	}
	if repo.saves != saves+2 {
		t.Fatalf("saves = %d, want %d", repo.saves, saves+2)
	}
	if len(notifier.notes) == 0 {
		t.Fatalf("refusal was not announced")
	}
}

func TestAppBlocksOnRetirementDecision(t *testing.T) {
	state := league(4)
	for i := range state.Clubs[0].Players {
		state.Clubs[0].Players[i].Age = 43
	}
	state.CurrentWeek = 2
	app, _, _ := newApp(t, state)
	ctx := context.Background()

	res, err := app.Advance(ctx)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if !res.AwaitingInput {
		t.Fatalf("expected the retirement check to pause the season")
	}
	if _, err := app.Advance(ctx); !errors.Is(err, ErrAwaitingDecision) {
		t.Fatalf("err = %v, want ErrAwaitingDecision", err)
	}

	live, _ := app.State()
	for _, p := range live.HumanClub().Players {
		if !p.Retirement.Announced {
			continue
		}
		if err := app.LetRetire(ctx, p.ID); err != nil {
			t.Fatalf("LetRetire: %v", err)
		}
	}
	if _, err := app.Advance(ctx); err != nil {
		t.Fatalf("Advance after decisions: %v", err)
	}
}

func TestAppToggleFavoriteAndMail(t *testing.T) {
	state := league(4)
	mailID := uuid.New()
	state.Mailbox = []models.MailMessage{{ID: mailID, Subject: "welcome"}}
	app, _, _ := newApp(t, state)
	ctx := context.Background()
	target := state.Clubs[1].Players[0].ID

	if err := app.ToggleFavorite(ctx, target); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	live, _ := app.State()
	if len(live.Favorites) != 1 || live.Favorites[0] != target {
		t.Fatalf("favorites = %v", live.Favorites)
	}
	if err := app.ToggleFavorite(ctx, target); err != nil {
		t.Fatalf("ToggleFavorite: %v", err)
	}
	live, _ = app.State()
	if len(live.Favorites) != 0 {
		t.Fatalf("favorite not removed")
	}
	if err := app.ToggleFavorite(ctx, uuid.New()); !errors.Is(err, transfer.ErrPlayerNotFound) {
		t.Fatalf("err = %v, want ErrPlayerNotFound", err)
	}

	if err := app.MarkMailRead(ctx, mailID); err != nil {
		t.Fatalf("MarkMailRead: %v", err)
	}
	live, _ = app.State()
	if !live.Mailbox[0].Read {
		t.Fatalf("mail not marked read")
	}
	if err := app.MarkMailRead(ctx, uuid.New()); !errors.Is(err, ErrMailNotFound) {
		t.Fatalf("err = %v, want ErrMailNotFound", err)
	}
}

func TestAppFullSeasonAndRollover(t *testing.T) {
	app, repo, _ := newApp(t, league(4))
	ctx := context.Background()

	if err := app.StartNextSeason(ctx); !errors.Is(err, rewards.ErrSeasonNotOver) {
		t.Fatalf("err = %v, want ErrSeasonNotOver", err)
	}
	for i := 0; i < 20; i++ {
		res, err := app.Advance(ctx)
		if errors.Is(err, ErrSeasonOver) {
			break
		}
		if errors.Is(err, ErrAwaitingDecision) {
			live, _ := app.State()
			for _, p := range live.HumanClub().Players {
				if p.Retirement.Announced && !p.Retirement.PersuadeTried {
					if _, err := app.Persuade(ctx, p.ID); err != nil {
						t.Fatalf("Persuade: %v", err)
					}
				}
			}
			continue
		}
		if err != nil {
			t.Fatalf("Advance: %v", err)
		}
		if res.SeasonEnded {
			break
		}
	}

	if len(repo.summaries) != 1 {
		t.Fatalf("saved %d season summaries, want 1", len(repo.summaries))
	}
	if err := app.StartNextSeason(ctx); err != nil {
		t.Fatalf("StartNextSeason: %v", err)
	}
	live, _ := app.State()
	if live.Label != "2027/28" || live.CurrentWeek != 0 || live.SeasonOver {
		t.Fatalf("label=%s week=%d over=%v", live.Label, live.CurrentWeek, live.SeasonOver)
	}
	if live.TotalWeeks() != 6 {
		t.Fatalf("new schedule has %d weeks, want 6", live.TotalWeeks())
	}
}

func TestAppWithoutGame(t *testing.T) {
	enforcer := roster.NewEnforcer(stubYouth{})
	app := NewApp(nil, transfer.NewMarket(enforcer), nil, homeWins{}, &memRepo{}, nil, clockwork.NewFakeClock(), rand.New(rand.NewSource(1)))
	if _, err := app.State(); !errors.Is(err, ErrNoGame) {
		t.Fatalf("err = %v, want ErrNoGame", err)
	}
	if _, err := app.Advance(context.Background()); !errors.Is(err, ErrNoGame) {
		t.Fatalf("err = %v, want ErrNoGame", err)
	}
}
