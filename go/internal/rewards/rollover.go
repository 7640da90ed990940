package rewards

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/valuation"
)

const (
	youngGrowthAge = 23
	maxGrowth      = 3
	declineAge     = 31
	decline        = 2
	minRating      = 30
)

var (
	ErrSeasonNotOver = errors.New("season has not finished")
	ErrGameOver      = errors.New("career is over")
	ErrJobNotOffered = errors.New("no job offer from that club")
)

// Rollover turns a finished season into the next one. Players age and
// develop, expiring contracts release players, tables and offers reset,
// and pending transfers dated to the new season are kept.
func (c *Calculator) Rollover(state *models.SeasonState, fixtures []models.Fixture, scope roster.Scope) ([]models.TransferRecord, error) {
	if !state.SeasonOver {
		return nil, ErrSeasonNotOver
	}
	if state.Manager.GameOver {
		return nil, ErrGameOver
	}

	next := models.NextSeasonLabel(state.Label)
	scope.Season = next
	scope.Week = 0
	var records []models.TransferRecord

	for i := range state.Clubs {
		club := &state.Clubs[i]
		kept := club.Players[:0]
		for _, p := range club.Players {
			p.Age++
			develop(&p)
			p.Contract.YearsLeft--
			if p.Contract.YearsLeft <= 0 && p.Pending == nil {
				records = append(records, models.TransferRecord{
					ID:         uuid.New(),
					PlayerID:   p.ID,
					PlayerName: p.Name,
					FromClubID: club.ID,
					ToClubID:   uuid.Nil,
					Type:       models.TransferTypeFree,
					Season:     next,
				})
				continue
			}
			p.Offers = nil
			p.OnTransferList = false
			p.OnLoanList = false
			p.Injury = nil
			p.Illness = nil
			p.SuspensionGames = 0
			p.Retirement = models.Retirement{}
			if p.Pending != nil && p.Pending.TransferSeason != next {
				p.Pending = nil
			}
			kept = append(kept, p)
		}
		club.Players = kept
		valuation.Update(club)

		club.Standing = models.Standing{}
		club.Ledger = models.Ledger{}
		club.Fans.Momentum = 0
		club.Stadium.SponsorOffers = nil

		res := c.enforcer.Enforce(club, scope)
		records = append(records, res.Released...)
	}

	state.Label = next
	state.CurrentWeek = 0
	state.Fixtures = fixtures
	state.MidSeasonCheckDone = false
	state.SeasonOver = false
	state.Manager.JobOffers = nil
	state.TransferHistory = append(state.TransferHistory, records...)

	log.Info().
		Str("season", next).
		Int("fixtures", len(fixtures)).
		Int("departures", len(records)).
		Msg("season rolled over")
	return records, nil
}

// AcceptJob moves the human manager to a club that offered them a job
func AcceptJob(state *models.SeasonState, clubID uuid.UUID) error {
	for _, o := range state.Manager.JobOffers {
		if o.ClubID != clubID {
			continue
		}
		next := state.Club(clubID)
		if next == nil {
			return fmt.Errorf("club %s: not in league", clubID)
		}
		if prev := state.HumanClub(); prev != nil {
			prev.Human = false
		}
		next.Human = true
		state.HumanClubID = next.ID
		state.Manager.JobOffers = nil
		state.Manager.DebtStrikes = 0
		return nil
	}
	return ErrJobNotOffered
}

func develop(p *models.Player) {
	switch {
	case p.Age <= youngGrowthAge && p.Rating < p.Potential:
		p.Rating += min(maxGrowth, p.Potential-p.Rating)
	case p.Age >= declineAge:
		p.Rating = max(minRating, p.Rating-decline)
	}
}
