package transfer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
)

const (
	offerChance     = 0.3
	maxOpenOffers   = 3
	offerLow        = 0.85
	offerHigh       = 1.05
	loanFeeShare    = 0.1
	offerLifetime   = 3
	reservationBase = 1.2
)

// ReservationPrice is the most a CPU buyer is prepared to pay for a player
func ReservationPrice(p *models.Player, buyer *models.Club) int64 {
	ratio := BudgetRatio(buyer.Budget)
	price := int64(float64(p.MarketValue) * reservationBase * (1 + 0.5*ratio))
	if price > buyer.Budget {
		price = buyer.Budget
	}
	return price
}

// GenerateOffers lets CPU clubs bid for the human club's transfer-listed
// and loan-listed players
func (m *Market) GenerateOffers(state *models.SeasonState, scope Scope) Result {
	var res Result
	human := state.HumanClub()
	if human == nil {
		return res
	}

	for i := range human.Players {
		p := &human.Players[i]
		if (!p.OnTransferList && !p.OnLoanList) || p.Pending != nil || p.Loan != nil {
			continue
		}
		if len(p.OpenOffers()) >= maxOpenOffers {
			continue
		}
		if scope.Rng.Float64() >= offerChance {
			continue
		}

		kind := models.TransferTypeTransfer
		if p.OnLoanList && (!p.OnTransferList || scope.Rng.Intn(2) == 0) {
			kind = models.TransferTypeLoan
		}
		fee := int64(float64(p.MarketValue) * (offerLow + scope.Rng.Float64()*(offerHigh-offerLow)))
		if kind == models.TransferTypeLoan {
			fee = int64(float64(fee) * loanFeeShare)
		}

		buyer := pickBidder(state, p, fee, scope)
		if buyer == nil {
			continue
		}

		anchor := ReservationPrice(p, buyer)
		if kind == models.TransferTypeLoan {
			anchor = int64(float64(anchor) * loanFeeShare)
		}
		if anchor < fee {
			anchor = fee
		}

		offer := models.TransferOffer{
			ID:           uuid.New(),
			FromClubID:   buyer.ID,
			FromClubName: buyer.Name,
			Fee:          fee,
			Type:         kind,
			Status:       models.OfferStatusPending,
			AnchorFee:    anchor,
			CreatedWeek:  scope.Week,
			ExpiryWeek:   scope.Week + offerLifetime,
			History: []models.NegotiationEntry{{
				Round:  0,
				Actor:  models.ActorAI,
				Amount: fee,
				At:     scope.At,
				Note:   "opening offer",
			}},
		}
		p.Offers = append(p.Offers, offer)

		verb := "bid"
		if kind == models.TransferTypeLoan {
			verb = "offered a loan fee of"
		}
		res.notify(models.NewNotification(scope.Week, models.SeverityInfo, human.ID, scope.At,
			fmt.Sprintf("%s %s %s for %s", buyer.Name, verb, models.Money(fee), p.Name)))
		log.Debug().
			Str("player", p.Name).
			Str("buyer", buyer.Name).
			Int64("fee", fee).
			Str("type", string(kind)).
			Msg("cpu offer created")
	}
	return res
}

// pickBidder chooses a CPU club that can afford fee and has not already
// bid for the player
func pickBidder(state *models.SeasonState, p *models.Player, fee int64, scope Scope) *models.Club {
	var candidates []*models.Club
	for i := range state.Clubs {
		c := &state.Clubs[i]
		if c.Human || c.Budget < fee || hasOpenOffer(p, c.ID) {
			continue
		}
		candidates = append(candidates, c)
	}
	if len(candidates) == 0 {
		return nil
	}
	return candidates[scope.Rng.Intn(len(candidates))]
}

func hasOpenOffer(p *models.Player, clubID uuid.UUID) bool {
	for _, o := range p.Offers {
		if o.FromClubID == clubID && o.Open() {
			return true
		}
	}
	return false
}
