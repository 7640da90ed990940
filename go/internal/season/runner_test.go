package season

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/touchline/go/internal/models"
)

type scriptedAdvancer struct {
	mu      sync.Mutex
	calls   int
	endAt   int
	pauseAt int
	err     error
}

func (a *scriptedAdvancer) Advance(context.Context) (TickResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.err != nil {
		return TickResult{}, a.err
	}
	return TickResult{
		State:         &models.SeasonState{CurrentWeek: a.calls},
		SeasonEnded:   a.calls == a.endAt,
		AwaitingInput: a.calls == a.pauseAt,
	}, nil
}

type runOutcome struct {
	ticks int
	err   error
}

func runAsync(ctx context.Context, r *Runner) chan runOutcome {
	done := make(chan runOutcome, 1)
	go func() {
		n, err := r.Run(ctx)
		done <- runOutcome{ticks: n, err: err}
	}()
	return done
}

func TestRunnerStopsAtSeasonEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	app := &scriptedAdvancer{endAt: 3}
	done := runAsync(ctx, NewRunner(app, clock, time.Second))

	for i := 0; i < 3; i++ {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("runner never armed its timer: %v", err)
		}
		clock.Advance(time.Second)
	}

	got := <-done
	if got.err != nil || got.ticks != 3 {
		t.Fatalf("ticks=%d err=%v, want 3 ticks", got.ticks, got.err)
	}
}

func TestRunnerPausesForInput(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	app := &scriptedAdvancer{pauseAt: 2}
	done := runAsync(ctx, NewRunner(app, clock, time.Minute))

	for i := 0; i < 2; i++ {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("runner never armed its timer: %v", err)
		}
		clock.Advance(time.Minute)
	}
	if got := <-done; got.ticks != 2 {
		t.Fatalf("ticks = %d, want 2", got.ticks)
	}
}

func TestRunnerCancelledBetweenTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	clock := clockwork.NewFakeClock()
	app := &scriptedAdvancer{}
	done := runAsync(ctx, NewRunner(app, clock, time.Second))

	wait, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := clock.BlockUntilContext(wait, 1); err != nil {
		t.Fatalf("runner never armed its timer: %v", err)
	}
	cancel()

	got := <-done
	if got.err != nil || got.ticks != 0 {
		t.Fatalf("ticks=%d err=%v, want a clean stop", got.ticks, got.err)
	}
}

func TestRunnerReturnsAdvanceError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	boom := errors.New("store offline")
	done := runAsync(ctx, NewRunner(&scriptedAdvancer{err: boom}, clock, time.Second))

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("runner never armed its timer: %v", err)
	}
	clock.Advance(time.Second)
	if got := <-done; !errors.Is(got.err, boom) {
		t.Fatalf("err = %v, want %v", got.err, boom)
	}
}

func TestRunnerStopsWhenSeasonAlreadyOver(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := clockwork.NewFakeClock()
	done := runAsync(ctx, NewRunner(&scriptedAdvancer{err: ErrSeasonOver}, clock, time.Second))

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("runner never armed its timer: %v", err)
	}
	clock.Advance(time.Second)
	if got := <-done; got.err != nil {
		t.Fatalf("err = %v, want nil", got.err)
	}
}
