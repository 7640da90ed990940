package transfer

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
)

type due struct {
	playerID uuid.UUID
	holderID uuid.UUID
	pending  models.PendingTransfer
}

// ResolvePending executes every deferred transfer whose date has arrived.
// A transfer that would leave the seller under the roster floor, or that
// the buyer can no longer pay for, is cancelled with a notification.
func (m *Market) ResolvePending(state *models.SeasonState, scope Scope) Result {
	var res Result

	var queue []due
	for i := range state.Clubs {
		for _, p := range state.Clubs[i].Players {
			if p.Pending == nil || !isDue(p.Pending, state.Label, scope.Week) {
				continue
			}
			queue = append(queue, due{playerID: p.ID, holderID: state.Clubs[i].ID, pending: *p.Pending})
		}
	}

	for _, d := range queue {
		holder := state.Club(d.holderID)
		idx := holder.PlayerIndex(d.playerID)
		if idx < 0 {
			continue
		}
		player := &holder.Players[idx]
		name := player.Name

		if holder.ID != d.pending.FromClubID {
			log.Warn().
				Str("player", name).
				Str("holder", holder.ID.String()).
				Str("seller", d.pending.FromClubID.String()).
				Msg("pending transfer seller does not hold the player; dropping")
			player.Pending = nil
			continue
		}
		buyer := state.Club(d.pending.ToClubID)
		if buyer == nil {
			log.Warn().Str("player", name).Str("buyer", d.pending.ToClubID.String()).Msg("pending transfer names unknown buyer; dropping")
			player.Pending = nil
			continue
		}

		if err := roster.CheckDeparture(holder); err != nil {
			player.Pending = nil
			res.notify(cancelled(state, scope, holder, buyer, name, "it would leave "+holder.Name+" short of players"))
			continue
		}
		if buyer.Human && buyer.Budget < d.pending.Fee {
			player.Pending = nil
			res.notify(cancelled(state, scope, holder, buyer, name, "the budget no longer covers the fee"))
			continue
		}

		rec, err := Execute(state, Move{
			PlayerID:   d.playerID,
			FromClubID: holder.ID,
			ToClubID:   buyer.ID,
			Fee:        d.pending.Fee,
			Type:       d.pending.Type,
		}, scope)
		if err != nil {
			log.Warn().Err(err).Str("player", name).Msg("pending transfer failed")
			continue
		}
		res.Records = append(res.Records, rec)
		res.Touch(holder.ID, buyer.ID)
		if holder.Human || buyer.Human {
			res.notify(models.NewNotification(scope.Week, models.SeveritySuccess, state.HumanClubID, scope.At,
				fmt.Sprintf("%s completed the move from %s to %s for %s", name, holder.Name, buyer.Name, models.Money(d.pending.Fee))))
		}
	}
	return res
}

func isDue(p *models.PendingTransfer, season string, week int) bool {
	if p.TransferSeason != "" && p.TransferSeason != season {
		return false
	}
	return p.TransferDate <= week
}

func cancelled(state *models.SeasonState, scope Scope, seller, buyer *models.Club, player, reason string) models.Notification {
	log.Info().
		Str("player", player).
		Str("from", seller.Name).
		Str("to", buyer.Name).
		Str("reason", reason).
		Msg("pending transfer cancelled")
	return models.NewNotification(scope.Week, models.SeverityWarning, state.HumanClubID, scope.At,
		fmt.Sprintf("%s's move to %s was cancelled because %s", player, buyer.Name, reason))
}
