package season

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/rewards"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/transfer"
)

var (
	ErrNoGame           = errors.New("no game loaded")
	ErrSeasonOver       = errors.New("season is over")
	ErrAwaitingDecision = errors.New("a retirement announcement needs a decision first")
	ErrMailNotFound     = errors.New("mail message not found")
)

// Snapshot is one saved change: the state after it, the notifications it
// produced and, on the tick that ends a season, the season summary.
type Snapshot struct {
	State         *models.SeasonState
	Notifications []models.Notification
	Summary       *rewards.Summary
}

// Repository defines what the app layer needs from persistence. Stores
// that keep an outbox record a snapshot's notifications atomically with it.
type Repository interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*models.SeasonState, error)
}

// Notifier is told about notifications once a change has been saved
type Notifier interface {
	Notify(ctx context.Context, notes []models.Notification)
}

// App owns the live game and serializes every change to it. Each change
// runs against a clone that replaces the live state only after it has
// been saved.
type App struct {
	mu    sync.Mutex
	state *models.SeasonState

	engine   *Engine
	market   *transfer.Market
	calc     *rewards.Calculator
	sim      MatchSimulator
	repo     Repository
	notifier Notifier
	clock    Clock
	rng      *rand.Rand
}

// NewApp creates a new season App. notifier may be nil.
func NewApp(engine *Engine, market *transfer.Market, calc *rewards.Calculator, sim MatchSimulator, repo Repository, notifier Notifier, clock Clock, rng *rand.Rand) *App {
	return &App{
		engine:   engine,
		market:   market,
		calc:     calc,
		sim:      sim,
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		rng:      rng,
	}
}

// Load restores the saved game
func (a *App) Load(ctx context.Context) error {
	state, err := a.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load game: %w", err)
	}
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()
	log.Info().Str("season", state.Label).Int("week", state.CurrentWeek).Msg("game loaded")
	return nil
}

// NewGame replaces the live game with state and saves it
func (a *App) NewGame(ctx context.Context, state *models.SeasonState) error {
	if state.HumanClub() == nil {
		return fmt.Errorf("new game: %w", transfer.ErrClubNotFound)
	}
	if len(state.Fixtures) == 0 {
		state.Fixtures = Schedule(clubIDs(state), a.rng)
	}
	if err := a.repo.Save(ctx, Snapshot{State: state}); err != nil {
		return fmt.Errorf("failed to save new game: %w", err)
	}
	a.mu.Lock()
	a.state = state
	a.mu.Unlock()
	return nil
}

// State returns a snapshot of the live game
func (a *App) State() (*models.SeasonState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil {
		return nil, ErrNoGame
	}
	return a.state.Clone(), nil
}

// Advance plays the current week's fixtures and runs one tick
func (a *App) Advance(ctx context.Context) (TickResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil {
		return TickResult{}, ErrNoGame
	}
	if a.state.Manager.GameOver {
		return TickResult{}, rewards.ErrGameOver
	}
	if a.state.SeasonOver {
		return TickResult{}, ErrSeasonOver
	}
	if human := a.state.HumanClub(); human != nil && AwaitingRetirementDecision(human) {
		return TickResult{}, ErrAwaitingDecision
	}

	results, err := PlayWeek(ctx, a.sim, a.state, a.state.CurrentWeek)
	if err != nil {
		return TickResult{}, fmt.Errorf("failed to play week %d: %w", a.state.CurrentWeek, err)
	}
	res := a.engine.Tick(a.state, results, a.rng)
	if err := a.repo.Save(ctx, Snapshot{State: res.State, Notifications: res.Notifications, Summary: res.Summary}); err != nil {
		return TickResult{}, fmt.Errorf("failed to save week %d: %w", res.State.CurrentWeek, err)
	}
	a.state = res.State
	a.publish(ctx, res.Notifications)
	return res, nil
}

// change runs fn against a clone of the live state and swaps it in once
// saved. Notifications are published even when fn refuses the action.
func (a *App) change(ctx context.Context, action string, fn func(s *models.SeasonState, scope roster.Scope) ([]models.Notification, error)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.state == nil {
		return ErrNoGame
	}

	s := a.state.Clone()
	scope := roster.Scope{Week: s.CurrentWeek, Season: s.Label, At: a.clock.Now(), Rng: a.rng}
	notes, err := fn(s, scope)
	if err != nil {
		a.publish(ctx, notes)
		return fmt.Errorf("%s: %w", action, err)
	}
	if err := a.repo.Save(ctx, Snapshot{State: s, Notifications: notes}); err != nil {
		return fmt.Errorf("%s: failed to save: %w", action, err)
	}
	a.state = s
	a.publish(ctx, notes)
	log.Debug().Str("action", action).Int("notifications", len(notes)).Msg("human action applied")
	return nil
}

func (a *App) publish(ctx context.Context, notes []models.Notification) {
	if a.notifier == nil || len(notes) == 0 {
		return
	}
	a.notifier.Notify(ctx, notes)
}

func (a *App) transferAction(ctx context.Context, action string, fn func(s *models.SeasonState, scope roster.Scope) (transfer.Result, error)) error {
	return a.change(ctx, action, func(s *models.SeasonState, scope roster.Scope) ([]models.Notification, error) {
		res, err := fn(s, scope)
		return res.Notifications, err
	})
}

// AcceptOffer accepts an incoming bid for one of the human club's players
func (a *App) AcceptOffer(ctx context.Context, playerID, offerID uuid.UUID) error {
	return a.transferAction(ctx, "accept offer", func(s *models.SeasonState, scope roster.Scope) (transfer.Result, error) {
		return a.market.AcceptOffer(s, playerID, offerID, scope)
	})
}

// CounterOffer answers an incoming bid with a counter amount
func (a *App) CounterOffer(ctx context.Context, playerID, offerID uuid.UUID, amount int64) error {
	return a.transferAction(ctx, "counter offer", func(s *models.SeasonState, scope roster.Scope) (transfer.Result, error) {
		return a.market.CounterOffer(s, playerID, offerID, amount, scope)
	})
}

// RejectOffer turns an incoming bid down
func (a *App) RejectOffer(ctx context.Context, playerID, offerID uuid.UUID) error {
	return a.transferAction(ctx, "reject offer", func(s *models.SeasonState, scope roster.Scope) (transfer.Result, error) {
		return a.market.RejectOffer(s, playerID, offerID, scope)
	})
}

// Buy bids for a player at another club
func (a *App) Buy(ctx context.Context, playerID uuid.UUID, fee int64) error {
	return a.transferAction(ctx, "buy player", func(s *models.SeasonState, scope roster.Scope) (transfer.Result, error) {
		return a.market.Buy(s, playerID, fee, scope)
	})
}

// Release frees one of the human club's players
func (a *App) Release(ctx context.Context, playerID uuid.UUID) error {
	return a.transferAction(ctx, "release player", func(s *models.SeasonState, scope roster.Scope) (transfer.Result, error) {
		return a.market.Release(s, playerID, scope)
	})
}

// SetListing puts a player on or off the transfer and loan lists
func (a *App) SetListing(ctx context.Context, playerID uuid.UUID, transferList, loanList bool) error {
	return a.change(ctx, "set listing", func(s *models.SeasonState, _ roster.Scope) ([]models.Notification, error) {
		return nil, a.market.SetListing(s, playerID, transferList, loanList)
	})
}

// Persuade makes the one attempt to talk a retiring player round
func (a *App) Persuade(ctx context.Context, playerID uuid.UUID) (bool, error) {
	var persuaded bool
	err := a.change(ctx, "persuade player", func(s *models.SeasonState, scope roster.Scope) ([]models.Notification, error) {
		human := s.HumanClub()
		if human == nil {
			return nil, transfer.ErrClubNotFound
		}
		ok, err := Persuade(human, playerID, scope.Rng)
		if err != nil {
			return nil, err
		}
		persuaded = ok
		p := &human.Players[human.PlayerIndex(playerID)]
		msg := fmt.Sprintf("%s will retire at the end of the season", p.Name)
		sev := models.SeverityInfo
		if ok {
			msg = fmt.Sprintf("%s has agreed to play on", p.Name)
			sev = models.SeveritySuccess
		}
		return []models.Notification{models.NewNotification(scope.Week, sev, human.ID, scope.At, msg)}, nil
	})
	return persuaded, err
}

// LetRetire accepts a retirement announcement without trying to reverse it
func (a *App) LetRetire(ctx context.Context, playerID uuid.UUID) error {
	return a.change(ctx, "accept retirement", func(s *models.SeasonState, _ roster.Scope) ([]models.Notification, error) {
		human := s.HumanClub()
		if human == nil {
			return nil, transfer.ErrClubNotFound
		}
		idx := human.PlayerIndex(playerID)
		if idx < 0 {
			return nil, transfer.ErrPlayerNotFound
		}
		if !human.Players[idx].Retirement.Announced {
			return nil, ErrNotRetiring
		}
		human.Players[idx].Retirement.PersuadeTried = true
		return nil, nil
	})
}

// ExpandStadium starts a capacity expansion at the human club
func (a *App) ExpandStadium(ctx context.Context, seats int) error {
	return a.change(ctx, "expand stadium", func(s *models.SeasonState, scope roster.Scope) ([]models.Notification, error) {
		human := s.HumanClub()
		if human == nil {
			return nil, transfer.ErrClubNotFound
		}
		if err := StartExpansion(human, seats, scope.Week); err != nil {
			return nil, err
		}
		return []models.Notification{models.NewNotification(scope.Week, models.SeverityInfo, human.ID, scope.At,
			fmt.Sprintf("Work has started on %d new seats", seats))}, nil
	})
}

// SignSponsor accepts a sponsorship offer for the human club
func (a *App) SignSponsor(ctx context.Context, offerID uuid.UUID) error {
	return a.change(ctx, "sign sponsor", func(s *models.SeasonState, _ roster.Scope) ([]models.Notification, error) {
		human := s.HumanClub()
		if human == nil {
			return nil, transfer.ErrClubNotFound
		}
		return nil, SignSponsor(human, offerID)
	})
}

// AcceptJob moves the manager to a club that offered them a job
func (a *App) AcceptJob(ctx context.Context, clubID uuid.UUID) error {
	return a.change(ctx, "accept job", func(s *models.SeasonState, _ roster.Scope) ([]models.Notification, error) {
		return nil, rewards.AcceptJob(s, clubID)
	})
}

// StartNextSeason rolls a finished season over with a fresh schedule
func (a *App) StartNextSeason(ctx context.Context) error {
	return a.change(ctx, "start next season", func(s *models.SeasonState, scope roster.Scope) ([]models.Notification, error) {
		_, err := a.calc.Rollover(s, Schedule(clubIDs(s), scope.Rng), scope)
		return nil, err
	})
}

// ToggleFavorite adds or removes a player from the shortlist of favourites
func (a *App) ToggleFavorite(ctx context.Context, playerID uuid.UUID) error {
	return a.change(ctx, "toggle favorite", func(s *models.SeasonState, _ roster.Scope) ([]models.Notification, error) {
		if _, p := s.FindPlayer(playerID); p == nil {
			return nil, transfer.ErrPlayerNotFound
		}
		for i, id := range s.Favorites {
			if id == playerID {
				s.Favorites = append(s.Favorites[:i], s.Favorites[i+1:]...)
				return nil, nil
			}
		}
		s.Favorites = append(s.Favorites, playerID)
		return nil, nil
	})
}

// MarkMailRead flags a mailbox message as read
func (a *App) MarkMailRead(ctx context.Context, mailID uuid.UUID) error {
	return a.change(ctx, "mark mail read", func(s *models.SeasonState, _ roster.Scope) ([]models.Notification, error) {
		for i := range s.Mailbox {
			if s.Mailbox[i].ID == mailID {
				s.Mailbox[i].Read = true
				return nil, nil
			}
		}
		return nil, ErrMailNotFound
	})
}

func clubIDs(s *models.SeasonState) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Clubs))
	for i := range s.Clubs {
		ids = append(ids, s.Clubs[i].ID)
	}
	return ids
}
