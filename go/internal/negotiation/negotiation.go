// Package negotiation runs the offer and counter-offer lifecycle of CPU
// bids for the human club's players.
//
// An offer is PENDING while it waits on the human, NEGOTIATING while a
// counter is in flight, and REJECTED once terminal. Accepted offers are
// removed from the player by the transfer package.
package negotiation

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
)

const (
	// ResponseChance is the weekly chance the AI answers a human counter
	ResponseChance = 0.7
	// AcceptRatio is the share of the anchor fee the AI accepts outright
	AcceptRatio = 0.95

	counterFloor     = 0.9
	counterCeiling   = 1.0
	minCounterWindow = 2
	rejectedKeep     = 2
)

var (
	ErrOfferNotFound    = errors.New("offer not found")
	ErrOfferClosed      = errors.New("offer is no longer open")
	ErrRoundLimit       = errors.New("negotiation round limit reached")
	ErrAwaitingResponse = errors.New("waiting for the other club to respond")
	ErrInvalidAmount    = errors.New("counter offer must be positive")
)

// Outcome is what a single AI response did to an offer
type Outcome string

const (
	OutcomeNone      Outcome = "NONE"
	OutcomeAccepted  Outcome = "ACCEPTED"
	OutcomeCountered Outcome = "COUNTERED"
	OutcomeRejected  Outcome = "REJECTED"
	OutcomeExpired   Outcome = "EXPIRED"
)

// Rand is the slice of *rand.Rand the AI draws from
type Rand interface {
	Float64() float64
}

// Step is the context an offer is advanced in
type Step struct {
	Week int
	At   time.Time
	Rng  Rand
}

// Result collects everything Advance did to one player's offers
type Result struct {
	Outcomes      map[uuid.UUID]Outcome
	Purged        int
	Notifications []models.Notification
}

// Counter records a human counter of amount against an open offer. The
// offer is left untouched when an error is returned.
func Counter(offer *models.TransferOffer, amount int64, week int, at time.Time) error {
	if offer == nil {
		return ErrOfferNotFound
	}
	if !offer.Open() {
		return ErrOfferClosed
	}
	if offer.WaitingForResponse {
		return ErrAwaitingResponse
	}
	if offer.Round >= models.MaxNegotiationRounds {
		return fmt.Errorf("%w: round %d of %d", ErrRoundLimit, offer.Round, models.MaxNegotiationRounds)
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}

	offer.Round++
	offer.Fee = amount
	offer.LastCounterOffer = amount
	offer.Status = models.OfferStatusNegotiating
	offer.WaitingForResponse = true
	if offer.ExpiryWeek < week+minCounterWindow {
		offer.ExpiryWeek = week + minCounterWindow
	}
	offer.History = append(offer.History, models.NegotiationEntry{
		Round:  offer.Round,
		Actor:  models.ActorUser,
		Amount: amount,
		At:     at,
		Note:   "counter offer",
	})
	return nil
}

// CanAccept reports whether the human may accept the offer now
func CanAccept(offer *models.TransferOffer) error {
	if offer == nil {
		return ErrOfferNotFound
	}
	if !offer.Open() {
		return ErrOfferClosed
	}
	if offer.WaitingForResponse {
		return ErrAwaitingResponse
	}
	return nil
}

// Reject closes an open offer on the human's behalf
func Reject(offer *models.TransferOffer, at time.Time) error {
	if offer == nil {
		return ErrOfferNotFound
	}
	if !offer.Open() {
		return ErrOfferClosed
	}
	offer.Status = models.OfferStatusRejected
	offer.WaitingForResponse = false
	offer.History = append(offer.History, models.NegotiationEntry{
		Round:  offer.Round,
		Actor:  models.ActorUser,
		Amount: offer.Fee,
		At:     at,
		Note:   "rejected",
	})
	return nil
}

// Expire rejects an open offer whose expiry week has been reached
func Expire(offer *models.TransferOffer, week int, at time.Time) bool {
	if !offer.Open() || offer.ExpiryWeek > week {
		return false
	}
	offer.Status = models.OfferStatusRejected
	offer.WaitingForResponse = false
	offer.History = append(offer.History, models.NegotiationEntry{
		Round:  offer.Round,
		Actor:  models.ActorSystem,
		Amount: offer.Fee,
		At:     at,
		Note:   "expired",
	})
	return true
}

// Respond lets the AI answer a human counter. Offers not awaiting a
// response are left alone.
func Respond(offer *models.TransferOffer, step Step) Outcome {
	if !offer.Open() || !offer.WaitingForResponse {
		return OutcomeNone
	}
	if step.Rng.Float64() >= ResponseChance {
		return OutcomeNone
	}

	anchor := offer.AnchorFee
	if anchor <= 0 {
		anchor = offer.Fee
	}

	switch {
	case float64(offer.LastCounterOffer) <= AcceptRatio*float64(anchor):
		offer.Fee = offer.LastCounterOffer
		offer.Status = models.OfferStatusPending
		offer.WaitingForResponse = false
		offer.History = append(offer.History, models.NegotiationEntry{
			Round:  offer.Round,
			Actor:  models.ActorAI,
			Amount: offer.Fee,
			At:     step.At,
			Note:   "accepted counter",
		})
		return OutcomeAccepted

	case offer.Round >= models.MaxNegotiationRounds:
		offer.Status = models.OfferStatusRejected
		offer.WaitingForResponse = false
		offer.History = append(offer.History, models.NegotiationEntry{
			Round:  offer.Round,
			Actor:  models.ActorAI,
			Amount: offer.LastCounterOffer,
			At:     step.At,
			Note:   "rejected counter",
		})
		return OutcomeRejected

	default:
		ratio := counterFloor + step.Rng.Float64()*(counterCeiling-counterFloor)
		fee := int64(float64(anchor) * ratio)
		offer.Round++
		offer.Fee = fee
		offer.AnchorFee = fee
		offer.WaitingForResponse = false
		offer.History = append(offer.History, models.NegotiationEntry{
			Round:  offer.Round,
			Actor:  models.ActorAI,
			Amount: fee,
			At:     step.At,
			Note:   "counter offer",
		})
		return OutcomeCountered
	}
}

// Advance moves every offer on the player one step: expiry first, then AI
// responses, then old rejected offers are dropped.
func Advance(player *models.Player, clubID uuid.UUID, step Step) Result {
	res := Result{Outcomes: make(map[uuid.UUID]Outcome)}

	for i := range player.Offers {
		offer := &player.Offers[i]
		if Expire(offer, step.Week, step.At) {
			res.Outcomes[offer.ID] = OutcomeExpired
			res.Notifications = append(res.Notifications, models.NewNotification(step.Week, models.SeverityInfo, clubID, step.At,
				fmt.Sprintf("The offer from %s for %s has expired", offer.FromClubName, player.Name)))
			continue
		}

		outcome := Respond(offer, step)
		if outcome == OutcomeNone {
			continue
		}
		res.Outcomes[offer.ID] = outcome
		res.Notifications = append(res.Notifications, responseNotification(player, offer, outcome, clubID, step))
		log.Debug().
			Str("player", player.Name).
			Str("buyer", offer.FromClubName).
			Str("outcome", string(outcome)).
			Int("round", offer.Round).
			Int64("fee", offer.Fee).
			Msg("ai responded to counter offer")
	}

	res.Purged = purge(player, step.Week)
	return res
}

func responseNotification(player *models.Player, offer *models.TransferOffer, outcome Outcome, clubID uuid.UUID, step Step) models.Notification {
	switch outcome {
	case OutcomeAccepted:
		return models.NewNotification(step.Week, models.SeveritySuccess, clubID, step.At,
			fmt.Sprintf("%s accepted your asking price of %s for %s", offer.FromClubName, models.Money(offer.Fee), player.Name))
	case OutcomeRejected:
		return models.NewNotification(step.Week, models.SeverityWarning, clubID, step.At,
			fmt.Sprintf("%s walked away from talks for %s", offer.FromClubName, player.Name))
	default:
		return models.NewNotification(step.Week, models.SeverityInfo, clubID, step.At,
			fmt.Sprintf("%s countered with %s for %s (round %d of %d)",
				offer.FromClubName, models.Money(offer.Fee), player.Name, offer.Round, models.MaxNegotiationRounds))
	}
}

// purge drops rejected offers that expired more than two weeks ago
func purge(player *models.Player, week int) int {
	kept := player.Offers[:0]
	dropped := 0
	for _, o := range player.Offers {
		if o.Status == models.OfferStatusRejected && o.ExpiryWeek < week-rejectedKeep {
			dropped++
			continue
		}
		kept = append(kept, o)
	}
	if len(kept) == 0 {
		kept = nil
	}
	player.Offers = kept
	return dropped
}

// RemoveOffers deletes every offer on the player, the accepted one included
func RemoveOffers(player *models.Player) int {
	n := len(player.Offers)
	player.Offers = nil
	return n
}
