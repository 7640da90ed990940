// Package transfer moves players between clubs: immediate and deferred
// transfers, the CPU transfer AI, CPU bids for listed players and the
// human manager's market actions.
package transfer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/valuation"
	"github.com/mcdev12/touchline/go/internal/window"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrClubNotFound       = errors.New("club not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrBidTooLow          = errors.New("bid below asking price")
	ErrAlreadyPending     = errors.New("player already has a pending transfer")
	ErrOnLoan             = errors.New("player is on loan")
	ErrNotHumanPlayer     = errors.New("player does not belong to the human club")
	ErrOwnPlayer          = errors.New("player already belongs to the human club")
	ErrTransferNotAllowed = errors.New("transfer not allowed")
)

// Scope identifies when a market operation runs
type Scope = roster.Scope

// Move is a single agreed player movement
type Move struct {
	PlayerID   uuid.UUID
	FromClubID uuid.UUID
	ToClubID   uuid.UUID
	Fee        int64
	Type       models.TransferType
}

// Result collects the effects of a market pass. Records are appended to
// the season history by the caller as a single batch.
type Result struct {
	Records       []models.TransferRecord
	Touched       []uuid.UUID
	Notifications []models.Notification
}

// Merge appends other onto r
func (r *Result) Merge(other Result) {
	r.Records = append(r.Records, other.Records...)
	r.Notifications = append(r.Notifications, other.Notifications...)
	r.Touch(other.Touched...)
}

// Touch marks clubs for roster enforcement
func (r *Result) Touch(ids ...uuid.UUID) {
	for _, id := range ids {
		seen := false
		for _, t := range r.Touched {
			if t == id {
				seen = true
				break
			}
		}
		if !seen {
			r.Touched = append(r.Touched, id)
		}
	}
}

func (r *Result) notify(n models.Notification) {
	r.Notifications = append(r.Notifications, n)
}

// Market owns the market operations and keeps rosters legal after the
// human's actions
type Market struct {
	enforcer *roster.Enforcer
}

// NewMarket creates a new Market
func NewMarket(enforcer *roster.Enforcer) *Market {
	return &Market{
		enforcer: enforcer,
	}
}

// Execute moves a player and settles the fee between the two clubs. The
// buyer pays exactly what the seller receives. The caller is responsible
// for appending the returned record to the transfer history.
func Execute(state *models.SeasonState, mv Move, scope Scope) (models.TransferRecord, error) {
	seller := state.Club(mv.FromClubID)
	if seller == nil {
		return models.TransferRecord{}, fmt.Errorf("seller %s: %w", mv.FromClubID, ErrClubNotFound)
	}
	buyer := state.Club(mv.ToClubID)
	if buyer == nil {
		return models.TransferRecord{}, fmt.Errorf("buyer %s: %w", mv.ToClubID, ErrClubNotFound)
	}
	if seller.ID == buyer.ID {
		return models.TransferRecord{}, fmt.Errorf("%w: seller and buyer are the same club", ErrTransferNotAllowed)
	}

	player, ok := seller.RemovePlayer(mv.PlayerID)
	if !ok {
		return models.TransferRecord{}, fmt.Errorf("player %s at %s: %w", mv.PlayerID, seller.Name, ErrPlayerNotFound)
	}

	player.Offers = nil
	player.Pending = nil
	player.OnTransferList = false
	player.OnLoanList = false
	if mv.Type == models.TransferTypeLoan {
		player.Loan = &models.Loan{
			ParentClubID: seller.ID,
			Fee:          mv.Fee,
			StartWeek:    scope.Week,
		}
	} else {
		player.Loan = nil
	}
	if player.Contract.Wage <= 0 {
		player.Contract.Wage = valuation.DefaultWage(player.MarketValue)
	}
	buyer.Players = append(buyer.Players, player)

	buyer.Budget -= mv.Fee
	buyer.Ledger.TransferExpense += mv.Fee
	seller.Budget += mv.Fee
	seller.Ledger.TransferIncome += mv.Fee

	log.Info().
		Str("player", player.Name).
		Str("from", seller.Name).
		Str("to", buyer.Name).
		Int64("fee", mv.Fee).
		Str("type", string(mv.Type)).
		Int("week", scope.Week).
		Msg("transfer executed")

	return models.TransferRecord{
		ID:         uuid.New(),
		PlayerID:   player.ID,
		PlayerName: player.Name,
		FromClubID: seller.ID,
		ToClubID:   buyer.ID,
		Fee:        mv.Fee,
		Type:       mv.Type,
		Week:       scope.Week,
		Season:     scope.Season,
	}, nil
}

// Defer records an agreed move as a pending transfer dated to the next
// open window week, which may fall in the following season.
func Defer(state *models.SeasonState, player *models.Player, mv Move, week int) *models.PendingTransfer {
	date, ok := window.NextOpenWeek(week, state.TotalWeeks())
	season := state.Label
	if !ok {
		season = models.NextSeasonLabel(state.Label)
	}
	player.Pending = &models.PendingTransfer{
		FromClubID:     mv.FromClubID,
		ToClubID:       mv.ToClubID,
		Fee:            mv.Fee,
		Type:           mv.Type,
		AgreedWeek:     week,
		TransferDate:   date,
		TransferSeason: season,
	}
	player.Offers = nil
	return player.Pending
}

// Settle runs the roster enforcer on every touched club and folds its
// releases into the result
func (m *Market) Settle(state *models.SeasonState, res *Result, scope Scope) {
	for _, id := range res.Touched {
		club := state.Club(id)
		if club == nil {
			continue
		}
		er := m.enforcer.Enforce(club, scope)
		res.Records = append(res.Records, er.Released...)
		res.Notifications = append(res.Notifications, er.Notifications...)
	}
}

// commit settles and appends the result's records to the history in one batch
func (m *Market) commit(state *models.SeasonState, res *Result, scope Scope) {
	m.Settle(state, res, scope)
	state.TransferHistory = append(state.TransferHistory, res.Records...)
}
