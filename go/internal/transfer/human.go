package transfer

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/negotiation"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/window"
)

const (
	askingMarkup   = 1.1
	askingDiscount = 0.9
)

// AskingPrice is what a CPU club wants for one of its players
func AskingPrice(p *models.Player) int64 {
	if p.OnTransferList {
		return int64(float64(p.MarketValue) * askingDiscount)
	}
	return int64(float64(p.MarketValue) * askingMarkup)
}

// humanPlayer returns the human club and the index of one of its players
func humanPlayer(state *models.SeasonState, playerID uuid.UUID) (*models.Club, int, error) {
	human := state.HumanClub()
	if human == nil {
		return nil, -1, fmt.Errorf("human club: %w", ErrClubNotFound)
	}
	idx := human.PlayerIndex(playerID)
	if idx < 0 {
		return human, -1, fmt.Errorf("player %s: %w", playerID, ErrNotHumanPlayer)
	}
	return human, idx, nil
}

// refuse builds the informational result returned alongside an illegal
// action. No state has been touched when it is called.
func refuse(state *models.SeasonState, scope Scope, err error, message string) (Result, error) {
	var res Result
	res.notify(models.NewNotification(scope.Week, models.SeverityInfo, state.HumanClubID, scope.At, message))
	log.Info().Err(err).Msg("human action refused")
	return res, err
}

// AcceptOffer accepts a CPU offer for one of the human club's players. The
// player moves now if the window is open, otherwise a pending transfer is
// dated to the next open week. Every other offer for the player is dropped.
func (m *Market) AcceptOffer(state *models.SeasonState, playerID, offerID uuid.UUID, scope Scope) (Result, error) {
	human, idx, err := humanPlayer(state, playerID)
	if err != nil {
		return Result{}, err
	}
	player := &human.Players[idx]
	offer := player.Offer(offerID)
	if err := negotiation.CanAccept(offer); err != nil {
		return Result{}, fmt.Errorf("accept offer %s: %w", offerID, err)
	}
	if player.Pending != nil {
		return Result{}, ErrAlreadyPending
	}
	if err := roster.CheckDeparture(human); err != nil {
		return refuse(state, scope, err,
			fmt.Sprintf("You cannot sell %s: the squad would fall below %d players", player.Name, roster.MinSquad))
	}
	buyer := state.Club(offer.FromClubID)
	if buyer == nil {
		return Result{}, fmt.Errorf("buyer %s: %w", offer.FromClubID, ErrClubNotFound)
	}
	if buyer.Budget < offer.Fee {
		return refuse(state, scope, ErrInsufficientFunds,
			fmt.Sprintf("%s can no longer afford %s for %s", buyer.Name, models.Money(offer.Fee), player.Name))
	}

	mv := Move{
		PlayerID:   player.ID,
		FromClubID: human.ID,
		ToClubID:   buyer.ID,
		Fee:        offer.Fee,
		Type:       offer.Type,
	}
	return m.agree(state, player, mv, scope)
}

// CounterOffer sends the human's counter for an offer
func (m *Market) CounterOffer(state *models.SeasonState, playerID, offerID uuid.UUID, amount int64, scope Scope) (Result, error) {
	human, idx, err := humanPlayer(state, playerID)
	if err != nil {
		return Result{}, err
	}
	player := &human.Players[idx]
	if err := negotiation.Counter(player.Offer(offerID), amount, scope.Week, scope.At); err != nil {
		if errors.Is(err, negotiation.ErrRoundLimit) {
			return refuse(state, scope, err,
				fmt.Sprintf("Talks for %s are in the final round: accept or reject the offer", player.Name))
		}
		return Result{}, fmt.Errorf("counter offer %s: %w", offerID, err)
	}
	return Result{}, nil
}

// RejectOffer turns down an offer for one of the human club's players
func (m *Market) RejectOffer(state *models.SeasonState, playerID, offerID uuid.UUID, scope Scope) (Result, error) {
	human, idx, err := humanPlayer(state, playerID)
	if err != nil {
		return Result{}, err
	}
	if err := negotiation.Reject(human.Players[idx].Offer(offerID), scope.At); err != nil {
		return Result{}, fmt.Errorf("reject offer %s: %w", offerID, err)
	}
	return Result{}, nil
}

// Buy bids fee for a CPU club's player. The seller accepts any bid at or
// above its asking price as long as its squad stays legal.
func (m *Market) Buy(state *models.SeasonState, playerID uuid.UUID, fee int64, scope Scope) (Result, error) {
	human := state.HumanClub()
	if human == nil {
		return Result{}, fmt.Errorf("human club: %w", ErrClubNotFound)
	}
	seller, player := state.FindPlayer(playerID)
	if player == nil {
		return Result{}, fmt.Errorf("player %s: %w", playerID, ErrPlayerNotFound)
	}
	if seller.Human {
		return Result{}, ErrOwnPlayer
	}
	if player.Loan != nil {
		return refuse(state, scope, ErrOnLoan, fmt.Sprintf("%s is on loan at %s and cannot be sold", player.Name, seller.Name))
	}
	if player.Pending != nil {
		return refuse(state, scope, ErrAlreadyPending, fmt.Sprintf("%s has already agreed a move", player.Name))
	}
	if human.Budget < fee {
		return refuse(state, scope, ErrInsufficientFunds,
			fmt.Sprintf("You cannot afford %s for %s", models.Money(fee), player.Name))
	}
	if asking := AskingPrice(player); fee < asking {
		return refuse(state, scope, ErrBidTooLow,
			fmt.Sprintf("%s rejected your bid for %s; they want at least %s", seller.Name, player.Name, models.Money(asking)))
	}
	if err := roster.CheckDeparture(seller); err != nil {
		return refuse(state, scope, err, fmt.Sprintf("%s cannot sell %s without falling below %d players", seller.Name, player.Name, roster.MinSquad))
	}

	mv := Move{
		PlayerID:   player.ID,
		FromClubID: seller.ID,
		ToClubID:   human.ID,
		Fee:        fee,
		Type:       models.TransferTypeTransfer,
	}
	return m.agree(state, player, mv, scope)
}

// agree executes an accepted move now or defers it to the next window
func (m *Market) agree(state *models.SeasonState, player *models.Player, mv Move, scope Scope) (Result, error) {
	var res Result
	name := player.Name
	buyer := state.Club(mv.ToClubID)

	if window.IsOpen(scope.Week, state.TotalWeeks()) {
		rec, err := Execute(state, mv, scope)
		if err != nil {
			return Result{}, err
		}
		res.Records = append(res.Records, rec)
		res.Touch(mv.FromClubID, mv.ToClubID)
		res.notify(models.NewNotification(scope.Week, models.SeveritySuccess, state.HumanClubID, scope.At,
			fmt.Sprintf("%s joined %s for %s", name, buyer.Name, models.Money(mv.Fee))))
	} else {
		pending := Defer(state, player, mv, scope.Week)
		when := fmt.Sprintf("week %d", pending.TransferDate)
		if pending.TransferSeason != state.Label {
			when = fmt.Sprintf("week %d of %s", pending.TransferDate, pending.TransferSeason)
		}
		res.notify(models.NewNotification(scope.Week, models.SeverityInfo, state.HumanClubID, scope.At,
			fmt.Sprintf("%s agreed to join %s; the move completes in %s when the window opens", name, buyer.Name, when)))
		log.Info().
			Str("player", name).
			Str("to", buyer.Name).
			Int("transfer_date", pending.TransferDate).
			Str("transfer_season", pending.TransferSeason).
			Msg("transfer deferred until window opens")
	}

	m.commit(state, &res, scope)
	return res, nil
}

// Release frees one of the human club's players. Loanees and players with
// an agreed move cannot be released.
func (m *Market) Release(state *models.SeasonState, playerID uuid.UUID, scope Scope) (Result, error) {
	human, idx, err := humanPlayer(state, playerID)
	if err != nil {
		return Result{}, err
	}
	player := human.Players[idx]
	if player.Loan != nil {
		return refuse(state, scope, ErrOnLoan, fmt.Sprintf("%s is on loan and cannot be released", player.Name))
	}
	if player.Pending != nil {
		return refuse(state, scope, ErrAlreadyPending, fmt.Sprintf("%s has already agreed a move", player.Name))
	}
	if err := roster.CheckDeparture(human); err != nil {
		return refuse(state, scope, err,
			fmt.Sprintf("You cannot release %s: the squad would fall below %d players", player.Name, roster.MinSquad))
	}

	human.RemovePlayer(player.ID)
	res := Result{Records: []models.TransferRecord{{
		ID:         uuid.New(),
		PlayerID:   player.ID,
		PlayerName: player.Name,
		FromClubID: human.ID,
		ToClubID:   uuid.Nil,
		Type:       models.TransferTypeRelease,
		Week:       scope.Week,
		Season:     scope.Season,
	}}}
	res.Touch(human.ID)
	res.notify(models.NewNotification(scope.Week, models.SeverityInfo, human.ID, scope.At,
		fmt.Sprintf("%s has been released", player.Name)))
	m.commit(state, &res, scope)
	return res, nil
}

// SetListing puts a player on or off the transfer and loan lists
func (m *Market) SetListing(state *models.SeasonState, playerID uuid.UUID, transfer, loan bool) error {
	human, idx, err := humanPlayer(state, playerID)
	if err != nil {
		return err
	}
	player := &human.Players[idx]
	if player.Loan != nil && (transfer || loan) {
		return ErrOnLoan
	}
	player.OnTransferList = transfer
	player.OnLoanList = loan
	return nil
}
