package season

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/transfer"
)

const (
	retirementAge     = 33
	retirementBase    = 0.15
	retirementPerYear = 0.1
	persuadeChance    = 0.4
)

var (
	ErrNotRetiring      = errors.New("player has not announced retirement")
	ErrAlreadyPersuaded = errors.New("persuasion already attempted")
)

// RetirementChance is the probability a veteran announces retirement at
// the mid-season check
func RetirementChance(age int) float64 {
	if age < retirementAge {
		return 0
	}
	return retirementBase + retirementPerYear*float64(age-retirementAge)
}

// considerRetirements runs the one-off mid-season check on the human club.
// It returns true when at least one player announced, meaning the human
// should respond before the season continues.
func considerRetirements(club *models.Club, scope roster.Scope) (bool, []models.Notification) {
	var notes []models.Notification
	for i := range club.Players {
		p := &club.Players[i]
		if p.Loan != nil || p.Retirement.Announced {
			continue
		}
		if scope.Rng.Float64() >= RetirementChance(p.Age) {
			continue
		}
		p.Retirement.Announced = true
		notes = append(notes, models.NewNotification(scope.Week, models.SeverityWarning, club.ID, scope.At,
			fmt.Sprintf("%s (%d) plans to retire at the end of the season", p.Name, p.Age)))
		log.Info().
			Str("club", club.Name).
			Str("player", p.Name).
			Int("age", p.Age).
			Msg("player announced retirement")
	}
	return len(notes) > 0, notes
}

// AwaitingRetirementDecision reports whether the human club has an
// announced retirement it has not yet tried to reverse
func AwaitingRetirementDecision(club *models.Club) bool {
	for i := range club.Players {
		r := club.Players[i].Retirement
		if r.Announced && !r.Persuaded && !r.PersuadeTried {
			return true
		}
	}
	return false
}

// Persuade makes the single attempt to talk a player out of retiring
func Persuade(club *models.Club, playerID uuid.UUID, rng *rand.Rand) (bool, error) {
	idx := club.PlayerIndex(playerID)
	if idx < 0 {
		return false, fmt.Errorf("player %s: %w", playerID, transfer.ErrPlayerNotFound)
	}
	p := &club.Players[idx]
	if !p.Retirement.Announced {
		return false, ErrNotRetiring
	}
	if p.Retirement.PersuadeTried {
		return false, ErrAlreadyPersuaded
	}
	p.Retirement.PersuadeTried = true
	if rng.Float64() < persuadeChance {
		p.Retirement.Persuaded = true
		p.Retirement.Announced = false
		return true, nil
	}
	return false, nil
}
