package season

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Clock is the interface we use for time operations.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) clockwork.Timer
}

// Advancer is what the Runner drives
type Advancer interface {
	Advance(ctx context.Context) (TickResult, error)
}

// Runner auto-advances the game on a fixed interval. Cancellation is only
// observed between ticks; a tick in progress always completes.
type Runner struct {
	app      Advancer
	clock    Clock
	interval time.Duration
}

// NewRunner creates a new auto-advance Runner
func NewRunner(app Advancer, clock Clock, interval time.Duration) *Runner {
	return &Runner{app: app, clock: clock, interval: interval}
}

// Run ticks until the season ends, the human must decide something, the
// career ends, or ctx is cancelled. It returns the number of ticks run.
func (r *Runner) Run(ctx context.Context) (int, error) {
	log.Info().Dur("interval", r.interval).Msg("auto-advance started")

	timer := r.clock.NewTimer(r.interval)
	defer timer.Stop()

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("ticks", ticks).Msg("auto-advance stopped")
			return ticks, nil
		case <-timer.Chan():
		}

		// a tick is never interrupted midway
		res, err := r.app.Advance(context.WithoutCancel(ctx))
		switch {
		case errors.Is(err, ErrSeasonOver), errors.Is(err, ErrAwaitingDecision):
			log.Info().Err(err).Int("ticks", ticks).Msg("auto-advance paused")
			return ticks, nil
		case err != nil:
			log.Error().Err(err).Int("ticks", ticks).Msg("auto-advance failed")
			return ticks, err
		}
		ticks++

		if res.SeasonEnded || res.AwaitingInput || res.State.Manager.GameOver {
			log.Info().
				Int("ticks", ticks).
				Bool("season_ended", res.SeasonEnded).
				Bool("awaiting_input", res.AwaitingInput).
				Msg("auto-advance paused")
			return ticks, nil
		}
		timer.Reset(r.interval)
	}
}
