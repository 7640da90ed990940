package models

import (
	"github.com/google/uuid"
)

// ClubTier is the prestige bracket used for manager job offers
type ClubTier string

const (
	ClubTierElite  ClubTier = "ELITE"
	ClubTierHigh   ClubTier = "HIGH"
	ClubTierMedium ClubTier = "MEDIUM"
	ClubTierLow    ClubTier = "LOW"
)

// Club represents a team in the league. The roster is not kept sorted.
type Club struct {
	ID      uuid.UUID   `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	League  string      `json:"league" yaml:"league"`
	Tier    ClubTier    `json:"tier" yaml:"tier"`
	Human   bool        `json:"human" yaml:"human"`
	Budget  int64       `json:"budget" yaml:"budget"` // May go negative until season end
	Rivals  []uuid.UUID `json:"rivals,omitempty" yaml:"rivals,omitempty"`
	Players []Player    `json:"players" yaml:"players"`

	Standing Standing `json:"standing" yaml:"standing"`
	Ledger   Ledger   `json:"ledger" yaml:"ledger"`
	Fans     Fans     `json:"fans" yaml:"fans"`
	Stadium  Stadium  `json:"stadium" yaml:"stadium"`
}

// Standing holds the league table counters of a club
type Standing struct {
	Played       int `json:"played" yaml:"played"`
	Won          int `json:"won" yaml:"won"`
	Drawn        int `json:"drawn" yaml:"drawn"`
	Lost         int `json:"lost" yaml:"lost"`
	GoalsFor     int `json:"goals_for" yaml:"goals_for"`
	GoalsAgainst int `json:"goals_against" yaml:"goals_against"`
	Points       int `json:"points" yaml:"points"`
}

// GoalDifference returns goals for minus goals against
func (s Standing) GoalDifference() int {
	return s.GoalsFor - s.GoalsAgainst
}

// Ledger accumulates categorized income and expenses for the season
type Ledger struct {
	TransferIncome  int64 `json:"transfer_income" yaml:"transfer_income"`
	TransferExpense int64 `json:"transfer_expense" yaml:"transfer_expense"`
	WageExpense     int64 `json:"wage_expense" yaml:"wage_expense"`
	PrizeIncome     int64 `json:"prize_income" yaml:"prize_income"`
	SponsorIncome   int64 `json:"sponsor_income" yaml:"sponsor_income"`
	MatchdayIncome  int64 `json:"matchday_income" yaml:"matchday_income"`
	StadiumExpense  int64 `json:"stadium_expense" yaml:"stadium_expense"`
}

// Fans holds supporter sentiment, 0 to 100
type Fans struct {
	Mood     int `json:"mood" yaml:"mood"`
	Momentum int `json:"momentum" yaml:"momentum"`
}

// Stadium holds ground capacity, expansion works and sponsorship
type Stadium struct {
	Capacity      int               `json:"capacity" yaml:"capacity"`
	TicketPrice   int64             `json:"ticket_price" yaml:"ticket_price"`
	Expansion     *StadiumExpansion `json:"expansion,omitempty" yaml:"expansion,omitempty"`
	Sponsor       *Sponsor          `json:"sponsor,omitempty" yaml:"sponsor,omitempty"`
	SponsorOffers []Sponsor         `json:"sponsor_offers,omitempty" yaml:"sponsor_offers,omitempty"`
}

// StadiumExpansion is capacity work that completes at a given week
type StadiumExpansion struct {
	AddedSeats   int `json:"added_seats" yaml:"added_seats"`
	CompleteWeek int `json:"complete_week" yaml:"complete_week"`
}

// Sponsor is a weekly-paying sponsorship contract
type Sponsor struct {
	ID           uuid.UUID `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	WeeklyIncome int64     `json:"weekly_income" yaml:"weekly_income"`
	ExpiresWeek  int       `json:"expires_week" yaml:"expires_week"`
}

// SeniorCount returns how many players count against the 21+ cap
func (c *Club) SeniorCount() int {
	n := 0
	for i := range c.Players {
		if c.Players[i].IsSenior() {
			n++
		}
	}
	return n
}

// PlayerIndex returns the roster index of a player or -1
func (c *Club) PlayerIndex(id uuid.UUID) int {
	for i := range c.Players {
		if c.Players[i].ID == id {
			return i
		}
	}
	return -1
}

// RemovePlayer takes a player off the roster and returns it
func (c *Club) RemovePlayer(id uuid.UUID) (Player, bool) {
	idx := c.PlayerIndex(id)
	if idx < 0 {
		return Player{}, false
	}
	p := c.Players[idx]
	c.Players = append(c.Players[:idx], c.Players[idx+1:]...)
	return p, true
}

// WageBill returns the club's total weekly wage obligation
func (c *Club) WageBill() int64 {
	var total int64
	for i := range c.Players {
		total += c.Players[i].Contract.Wage
	}
	return total
}

// IsRival reports whether other is a rival of this club
func (c *Club) IsRival(other uuid.UUID) bool {
	for _, r := range c.Rivals {
		if r == other {
			return true
		}
	}
	return false
}

func (c Club) clone() Club {
	out := c
	if c.Rivals != nil {
		out.Rivals = append([]uuid.UUID(nil), c.Rivals...)
	}
	if c.Players != nil {
		out.Players = make([]Player, len(c.Players))
		for i, p := range c.Players {
			out.Players[i] = p.clone()
		}
	}
	if c.Stadium.Expansion != nil {
		e := *c.Stadium.Expansion
		out.Stadium.Expansion = &e
	}
	if c.Stadium.Sponsor != nil {
		s := *c.Stadium.Sponsor
		out.Stadium.Sponsor = &s
	}
	if c.Stadium.SponsorOffers != nil {
		out.Stadium.SponsorOffers = append([]Sponsor(nil), c.Stadium.SponsorOffers...)
	}
	return out
}
