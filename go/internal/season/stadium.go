package season

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
)

// StadiumTicker runs the weekly stadium and sponsorship bookkeeping
type StadiumTicker interface {
	Tick(club *models.Club, scope roster.Scope) []models.Notification
}

const (
	seatCost          = 2_000
	expansionWeeks    = 8
	sponsorOfferOdds  = 0.15
	sponsorLength     = 20
	sponsorPerSeat    = 2
	maxSponsorOffers  = 3
	sponsorMoodWeight = 0.5
)

var (
	ErrExpansionInProgress = errors.New("stadium expansion already in progress")
	ErrSponsorNotFound     = errors.New("sponsor offer not found")
	ErrInvalidSeats        = errors.New("expansion needs a positive seat count")

	sponsorNames = []string{"Northwind Air", "Blue Harbor Bank", "Kestrel Energy", "Arcadia Motors", "Vantage Telecom", "Greenline Grocers"}
)

// Stadium is the default StadiumTicker
type Stadium struct{}

// NewStadium creates a new Stadium ticker
func NewStadium() *Stadium {
	return &Stadium{}
}

// Tick completes due expansions, pays and expires sponsors, and sometimes
// posts new sponsor offers for clubs without one
func (s *Stadium) Tick(club *models.Club, scope roster.Scope) []models.Notification {
	var notes []models.Notification
	notify := func(sev models.Severity, msg string) {
		if club.Human {
			notes = append(notes, models.NewNotification(scope.Week, sev, club.ID, scope.At, msg))
		}
	}
	st := &club.Stadium

	if st.Expansion != nil && st.Expansion.CompleteWeek <= scope.Week {
		st.Capacity += st.Expansion.AddedSeats
		notify(models.SeveritySuccess, fmt.Sprintf("Stadium expansion complete: capacity is now %d", st.Capacity))
		st.Expansion = nil
	}

	if st.Sponsor != nil {
		if st.Sponsor.ExpiresWeek < scope.Week {
			notify(models.SeverityInfo, fmt.Sprintf("Sponsorship with %s has ended", st.Sponsor.Name))
			st.Sponsor = nil
		} else {
			club.Budget += st.Sponsor.WeeklyIncome
			club.Ledger.SponsorIncome += st.Sponsor.WeeklyIncome
		}
	}

	if st.Sponsor == nil && len(st.SponsorOffers) < maxSponsorOffers && scope.Rng.Float64() < sponsorOfferOdds {
		base := float64(st.Capacity*sponsorPerSeat) * (1 + sponsorMoodWeight*float64(club.Fans.Mood)/100)
		offer := models.Sponsor{
			ID:           uuid.New(),
			Name:         sponsorNames[scope.Rng.Intn(len(sponsorNames))],
			WeeklyIncome: int64(base * (0.8 + 0.4*scope.Rng.Float64())),
			ExpiresWeek:  scope.Week + sponsorLength,
		}
		st.SponsorOffers = append(st.SponsorOffers, offer)
		notify(models.SeverityInfo, fmt.Sprintf("%s offers %s a week to sponsor the club", offer.Name, models.Money(offer.WeeklyIncome)))
	}

	// CPU clubs take the first offer on the table
	if !club.Human && st.Sponsor == nil && len(st.SponsorOffers) > 0 {
		_ = SignSponsor(club, st.SponsorOffers[0].ID)
	}
	return notes
}

// StartExpansion commits budget to add seats, completing in eight weeks
func StartExpansion(club *models.Club, seats, week int) error {
	if club.Stadium.Expansion != nil {
		return ErrExpansionInProgress
	}
	if seats <= 0 {
		return fmt.Errorf("%w, got %d", ErrInvalidSeats, seats)
	}
	cost := int64(seats) * seatCost
	club.Budget -= cost
	club.Ledger.StadiumExpense += cost
	club.Stadium.Expansion = &models.StadiumExpansion{AddedSeats: seats, CompleteWeek: week + expansionWeeks}
	return nil
}

// SignSponsor accepts one of the pending sponsor offers and discards the rest
func SignSponsor(club *models.Club, offerID uuid.UUID) error {
	for _, o := range club.Stadium.SponsorOffers {
		if o.ID == offerID {
			o := o
			club.Stadium.Sponsor = &o
			club.Stadium.SponsorOffers = nil
			return nil
		}
	}
	return ErrSponsorNotFound
}
