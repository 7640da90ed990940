package matchsim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
)

func club(name string, rating int) models.Club {
	c := models.Club{ID: uuid.New(), Name: name}
	positions := []models.Position{
		models.PositionGoalkeeper, models.PositionGoalkeeper,
		models.PositionDefender, models.PositionDefender, models.PositionDefender, models.PositionDefender, models.PositionDefender, models.PositionDefender,
		models.PositionMidfielder, models.PositionMidfielder, models.PositionMidfielder, models.PositionMidfielder, models.PositionMidfielder, models.PositionMidfielder,
		models.PositionForward, models.PositionForward, models.PositionForward, models.PositionForward,
		models.PositionMidfielder, models.PositionDefender,
	}
	for i, pos := range positions {
		c.Players = append(c.Players, models.Player{
			ID: uuid.New(), Name: fmt.Sprintf("%s %d", name, i), Position: pos, Age: 25, Rating: rating,
		})
	}
	return c
}

func TestSimulateDeterministic(t *testing.T) {
	home, away := club("Home", 70), club("Away", 65)
	f := models.Fixture{ID: uuid.New(), Week: 1, HomeID: home.ID, AwayID: away.ID}

	a, err := NewSimulator(42).Simulate(context.Background(), f, home, away)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	b, err := NewSimulator(42).Simulate(context.Background(), f, home, away)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("same seed gave different results (-a +b):\n%s", diff)
	}
}

func TestSimulateConsistentResult(t *testing.T) {
	home, away := club("Home", 70), club("Away", 70)
	sim := NewSimulator(7)
	for i := 0; i < 50; i++ {
		f := models.Fixture{ID: uuid.New(), HomeID: home.ID, AwayID: away.ID}
		got, err := sim.Simulate(context.Background(), f, home, away)
		if err != nil {
			t.Fatalf("Simulate: %v", err)
		}
		r := got.Result
		goals := map[uuid.UUID]int{}
		for _, e := range r.Events {
			if e.Type == models.MatchEventGoal {
				goals[e.ClubID]++
				if e.PlayerID == e.AssistID {
					t.Fatalf("player assisted their own goal")
				}
			}
		}
		if goals[home.ID] != r.HomeGoals || goals[away.ID] != r.AwayGoals {
			t.Fatalf("events %v do not match score %d-%d", goals, r.HomeGoals, r.AwayGoals)
		}
		if len(r.Performances) != 22 {
			t.Fatalf("performances = %d, want 22", len(r.Performances))
		}
		for _, p := range r.Performances {
			if p.Rating < 3 || p.Rating > 10 {
				t.Fatalf("match rating %v out of range", p.Rating)
			}
		}
	}
}

func TestStrongerSideWinsMore(t *testing.T) {
	strong, weak := club("Strong", 82), club("Weak", 55)
	sim := NewSimulator(1)
	var strongWins, weakWins int
	for i := 0; i < 200; i++ {
		f := models.Fixture{ID: uuid.New(), HomeID: weak.ID, AwayID: strong.ID}
		got, _ := sim.Simulate(context.Background(), f, weak, strong)
		switch {
		case got.Result.AwayGoals > got.Result.HomeGoals:
			strongWins++
		case got.Result.HomeGoals > got.Result.AwayGoals:
			weakWins++
		}
	}
	if strongWins <= weakWins*2 {
		t.Fatalf("strong side won %d, weak side %d", strongWins, weakWins)
	}
}

func TestLineupSkipsUnavailable(t *testing.T) {
	c := club("Crocked", 60)
	c.Players[0].Injury = &models.Condition{Kind: "knee", WeeksLeft: 3}
	c.Players[1].SuspensionGames = 1

	xi := lineup(&c)
	if len(xi) != 11 {
		t.Fatalf("lineup size = %d, want 11", len(xi))
	}
	for _, p := range xi {
		if !p.Available() {
			t.Fatalf("unavailable player %s picked", p.Name)
		}
	}
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	home, away := club("Home", 60), club("Away", 60)
	if _, err := NewSimulator(1).Simulate(ctx, models.Fixture{ID: uuid.New()}, home, away); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestPoissonCapped(t *testing.T) {
	for _, lambda := range []float64{0, 0.5, 3, 40} {
		for i := 0; i < 100; i++ {
			n := poisson(rand.New(rand.NewSource(int64(i))), lambda)
			if n < 0 || n > maxGoals {
				t.Fatalf("poisson(%v) = %d", lambda, n)
			}
			if lambda == 0 && n != 0 {
				t.Fatalf("poisson(0) = %d", n)
			}
		}
	}
}
