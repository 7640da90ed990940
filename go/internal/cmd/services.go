package main

import (
	"context"
	"errors"
	"math/rand"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/config"
	"github.com/mcdev12/touchline/go/internal/content"
	"github.com/mcdev12/touchline/go/internal/matchsim"
	"github.com/mcdev12/touchline/go/internal/rewards"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/season"
	"github.com/mcdev12/touchline/go/internal/store"
	"github.com/mcdev12/touchline/go/internal/transfer"
)

type Services struct {
	App   *season.App
	Scout *content.Scout
	Clock clockwork.Clock
	Rng   *rand.Rand

	closers []func() error
}

func (s *Services) Close() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Warn().Err(err).Msg("failed to release service")
		}
	}
}

func setupServices(ctx context.Context, cfg config.Config, repo season.Repository, notifier season.Notifier) *Services {
	// Wire up the dependency chain
	// Roster rules → Market and Calculator → Engine → App
	seed := cfg.RandSeed()
	rng := rand.New(rand.NewSource(seed))
	clock := clockwork.NewRealClock()

	enforcer := roster.NewEnforcer(content.NewAcademy())
	market := transfer.NewMarket(enforcer)
	calc := rewards.NewCalculator(enforcer)
	engine := season.NewEngine(market, enforcer, season.NewStadium(), calc, clock)
	sim := matchsim.NewSimulator(seed)

	s := &Services{
		App:   season.NewApp(engine, market, calc, sim, repo, notifier, clock, rng),
		Clock: clock,
		Rng:   rng,
	}

	var reporter content.Reporter
	if cfg.Gemini.APIKey != "" {
		gemini, err := content.NewGeminiReporter(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			log.Warn().Err(err).Msg("gemini unavailable; using template scouting reports")
		} else {
			reporter = gemini
			s.closers = append(s.closers, gemini.Close)
		}
	}
	s.Scout = content.NewScout(reporter)

	log.Info().Int64("seed", seed).Bool("gemini", reporter != nil).Msg("services ready")
	return s
}

// startGame generates a fresh league from the config and saves it
func startGame(ctx context.Context, s *Services, cfg config.Config) error {
	state := content.League(s.Rng, content.LeagueOptions{
		Label:     cfg.Season,
		Clubs:     cfg.Clubs,
		SquadSize: cfg.SquadSize,
		HumanClub: cfg.HumanClub,
		Manager:   cfg.Manager,
	})
	if err := s.App.NewGame(ctx, state); err != nil {
		return err
	}
	log.Info().
		Str("season", state.Label).
		Str("club", state.HumanClub().Name).
		Int("clubs", len(state.Clubs)).
		Msg("new game started")
	return nil
}

// loadOrStart restores the saved game, starting one if nothing is saved
func loadOrStart(ctx context.Context, s *Services, cfg config.Config) error {
	err := s.App.Load(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return startGame(ctx, s, cfg)
	}
	return err
}
