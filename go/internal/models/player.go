package models

import (
	"github.com/google/uuid"
)

// Position is the on-pitch role of a player
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// SeniorAge is the age from which a player counts against the senior squad cap.
const SeniorAge = 21

// Player represents a footballer owned by exactly one club
type Player struct {
	ID           uuid.UUID `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Position     Position  `json:"position" yaml:"position"`
	Age          int       `json:"age" yaml:"age"`
	Rating       int       `json:"rating" yaml:"rating"`
	Potential    int       `json:"potential" yaml:"potential"`
	MarketValue  int64     `json:"market_value" yaml:"market_value"`
	Contract     Contract  `json:"contract" yaml:"contract"`
	YouthAcademy bool      `json:"youth_academy" yaml:"youth_academy"`

	OnTransferList  bool       `json:"on_transfer_list" yaml:"on_transfer_list"`
	OnLoanList      bool       `json:"on_loan_list" yaml:"on_loan_list"`
	Injury          *Condition `json:"injury,omitempty" yaml:"injury,omitempty"`
	Illness         *Condition `json:"illness,omitempty" yaml:"illness,omitempty"`
	SuspensionGames int        `json:"suspension_games" yaml:"suspension_games"`

	Offers     []TransferOffer  `json:"offers,omitempty" yaml:"offers,omitempty"`
	Pending    *PendingTransfer `json:"pending,omitempty" yaml:"pending,omitempty"`
	Loan       *Loan            `json:"loan,omitempty" yaml:"loan,omitempty"`
	Retirement Retirement       `json:"retirement" yaml:"retirement"`
}

// Contract holds the wage terms of a player
type Contract struct {
	Wage          int64  `json:"wage" yaml:"wage"` // Weekly
	YearsLeft     int    `json:"years_left" yaml:"years_left"`
	ReleaseClause *int64 `json:"release_clause,omitempty" yaml:"release_clause,omitempty"`
}

// Condition is an injury or illness with a countdown in weeks
type Condition struct {
	Kind      string `json:"kind" yaml:"kind"`
	WeeksLeft int    `json:"weeks_left" yaml:"weeks_left"`
}

// Loan marks a player currently playing for a club that does not own them
type Loan struct {
	ParentClubID uuid.UUID `json:"parent_club_id" yaml:"parent_club_id"`
	Fee          int64     `json:"fee" yaml:"fee"`
	StartWeek    int       `json:"start_week" yaml:"start_week"`
}

// Retirement tracks the mid-season retirement announcement
type Retirement struct {
	Announced     bool `json:"announced" yaml:"announced"`
	Persuaded     bool `json:"persuaded" yaml:"persuaded"`
	PersuadeTried bool `json:"persuade_tried" yaml:"persuade_tried"`
}

// IsSenior reports whether the player counts against the 21+ cap
func (p *Player) IsSenior() bool {
	return p.Age >= SeniorAge
}

// Available reports whether the player can be picked for a match
func (p *Player) Available() bool {
	return p.Injury == nil && p.Illness == nil && p.SuspensionGames == 0
}

// OpenOffers returns the offers that have not reached a terminal state
func (p *Player) OpenOffers() []TransferOffer {
	var open []TransferOffer
	for _, o := range p.Offers {
		if o.Status != OfferStatusRejected {
			open = append(open, o)
		}
	}
	return open
}

// Offer returns a pointer to the offer with the given id
func (p *Player) Offer(id uuid.UUID) *TransferOffer {
	for i := range p.Offers {
		if p.Offers[i].ID == id {
			return &p.Offers[i]
		}
	}
	return nil
}

func (p Player) clone() Player {
	out := p
	if p.Contract.ReleaseClause != nil {
		rc := *p.Contract.ReleaseClause
		out.Contract.ReleaseClause = &rc
	}
	if p.Injury != nil {
		c := *p.Injury
		out.Injury = &c
	}
	if p.Illness != nil {
		c := *p.Illness
		out.Illness = &c
	}
	if p.Pending != nil {
		pt := *p.Pending
		out.Pending = &pt
	}
	if p.Loan != nil {
		l := *p.Loan
		out.Loan = &l
	}
	if p.Offers != nil {
		out.Offers = make([]TransferOffer, len(p.Offers))
		for i, o := range p.Offers {
			out.Offers[i] = o.clone()
		}
	}
	return out
}
