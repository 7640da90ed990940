package season

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mcdev12/touchline/go/internal/models"
)

// maxConcurrentMatches bounds simulator calls in flight for one week
const maxConcurrentMatches = 8

// MatchSimulator plays a fixture between two clubs and returns it with a
// result attached
type MatchSimulator interface {
	Simulate(ctx context.Context, fixture models.Fixture, home, away models.Club) (models.Fixture, error)
}

// PlayWeek simulates every unplayed fixture of week concurrently. A fixture
// the simulator fails on is logged and left unplayed; only cancellation
// aborts the week.
func PlayWeek(ctx context.Context, sim MatchSimulator, state *models.SeasonState, week int) ([]models.Fixture, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentMatches)

	var (
		mu      sync.Mutex
		results []models.Fixture
	)
	for _, f := range state.FixturesForWeek(week) {
		if f.Played {
			continue
		}
		home, away := state.Club(f.HomeID), state.Club(f.AwayID)
		if home == nil || away == nil {
			log.Warn().Str("fixture_id", f.ID.String()).Msg("fixture references unknown club; not simulated")
			continue
		}
		fixture, h, a := *f, *home, *away
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			played, err := sim.Simulate(gctx, fixture, h, a)
			if err != nil {
				log.Warn().Err(err).Str("fixture_id", fixture.ID.String()).Msg("match simulation failed; skipping fixture")
				return nil
			}
			mu.Lock()
			results = append(results, played)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
