package transfer

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
)

const (
	// RichBudget is the budget at which a CPU club behaves at full appetite
	RichBudget = 500_000_000

	minSellerSquad  = 18
	baseAttempt     = 0.3
	attemptPerRatio = 0.4
	basePool        = 0.3
	poolPerRatio    = 0.2
	youthPremium    = 0.8
	seniorPremium   = 1.2
	spendableShare  = 0.5
)

// BudgetRatio scales a budget into [0, 1] against RichBudget
func BudgetRatio(budget int64) float64 {
	if budget <= 0 {
		return 0
	}
	return math.Min(1, float64(budget)/RichBudget)
}

// Premium is the multiplier a CPU buyer pays over market value
func Premium(p *models.Player, budgetRatio float64) float64 {
	base := seniorPremium
	if p.YouthAcademy {
		base = youthPremium
	}
	return base * (1 + 0.5*budgetRatio)
}

// Affordable reports whether a CPU club may commit fee from budget
func Affordable(budget, fee int64) bool {
	maxSpendable := int64(float64(budget) * spendableShare)
	return budget >= fee || (budget >= maxSpendable && fee <= maxSpendable)
}

// RunCPU gives every CPU club one chance to buy a player from another CPU
// club. Each executed transfer marks both clubs as touched.
func (m *Market) RunCPU(state *models.SeasonState, scope Scope) Result {
	var res Result
	for i := range state.Clubs {
		buyer := &state.Clubs[i]
		if buyer.Human {
			continue
		}
		ratio := BudgetRatio(buyer.Budget)
		if scope.Rng.Float64() >= baseAttempt+attemptPerRatio*ratio {
			continue
		}

		sellers := sellersFor(state, buyer)
		if len(sellers) == 0 {
			continue
		}
		seller := sellers[scope.Rng.Intn(len(sellers))]

		pool := shortlist(seller, ratio)
		if len(pool) == 0 {
			continue
		}
		target := pool[scope.Rng.Intn(len(pool))]
		fee := int64(float64(target.MarketValue) * Premium(&target, ratio))
		if !Affordable(buyer.Budget, fee) {
			log.Debug().
				Str("buyer", buyer.Name).
				Str("player", target.Name).
				Int64("fee", fee).
				Int64("budget", buyer.Budget).
				Msg("cpu club cannot afford target")
			continue
		}

		rec, err := Execute(state, Move{
			PlayerID:   target.ID,
			FromClubID: seller.ID,
			ToClubID:   buyer.ID,
			Fee:        fee,
			Type:       models.TransferTypeTransfer,
		}, scope)
		if err != nil {
			log.Warn().Err(err).Str("buyer", buyer.Name).Msg("cpu transfer skipped")
			continue
		}
		res.Records = append(res.Records, rec)
		res.Touch(buyer.ID, seller.ID)
	}
	return res
}

func sellersFor(state *models.SeasonState, buyer *models.Club) []*models.Club {
	var out []*models.Club
	for i := range state.Clubs {
		c := &state.Clubs[i]
		if c.Human || c.ID == buyer.ID || len(c.Players) <= minSellerSquad {
			continue
		}
		out = append(out, c)
	}
	return out
}

// shortlist ranks the seller's eligible players by potential minus age and
// keeps the top 30 to 50 percent, wider for richer buyers
func shortlist(seller *models.Club, ratio float64) []models.Player {
	var eligible []models.Player
	for _, p := range seller.Players {
		if p.Loan != nil || p.Pending != nil || p.Retirement.Announced {
			continue
		}
		eligible = append(eligible, p)
	}
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].Potential-eligible[i].Age > eligible[j].Potential-eligible[j].Age
	})
	n := int(math.Ceil(float64(len(eligible)) * (basePool + poolPerRatio*ratio)))
	if n > len(eligible) {
		n = len(eligible)
	}
	return eligible[:n]
}
