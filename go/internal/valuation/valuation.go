// Package valuation recomputes player market values and wage obligations
// once per tick.
package valuation

import (
	"math"

	"github.com/mcdev12/touchline/go/internal/models"
)

const (
	baseValue    = 1_000_000
	ratingPivot  = 60.0
	ratingScale  = 8.0
	valueRounder = 10_000

	// wageShare is the weekly wage as a fraction of market value, used for
	// players signed without a negotiated contract.
	wageShare = 0.002
	minWage   = 1_000
)

// MarketValue derives a player's value from rating, age and potential
func MarketValue(p *models.Player) int64 {
	v := baseValue * math.Exp((float64(p.Rating)-ratingPivot)/ratingScale)
	v *= ageFactor(p.Age)
	if p.Age <= 24 && p.Potential > p.Rating {
		v *= 1 + 0.02*float64(p.Potential-p.Rating)
	}
	return roundTo(v, valueRounder)
}

func ageFactor(age int) float64 {
	switch {
	case age <= 21:
		return 1.3
	case age <= 24:
		return 1.15
	case age <= 28:
		return 1.0
	case age <= 31:
		return 0.8
	case age <= 33:
		return 0.6
	default:
		return 0.4
	}
}

// DefaultWage is the weekly wage offered to a player joining without terms
func DefaultWage(marketValue int64) int64 {
	w := roundTo(float64(marketValue)*wageShare, 100)
	if w < minWage {
		return minWage
	}
	return w
}

// Update refreshes the market value of every player at the club. It
// returns how many values changed.
func Update(club *models.Club) int {
	changed := 0
	for i := range club.Players {
		p := &club.Players[i]
		if v := MarketValue(p); v != p.MarketValue {
			p.MarketValue = v
			changed++
		}
		if p.Contract.Wage <= 0 {
			p.Contract.Wage = DefaultWage(p.MarketValue)
		}
	}
	return changed
}

func roundTo(v float64, unit int64) int64 {
	return int64(math.Round(v/float64(unit))) * unit
}
