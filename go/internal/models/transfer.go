package models

import (
	"time"

	"github.com/google/uuid"
)

// TransferType distinguishes permanent moves from loans
type TransferType string

const (
	TransferTypeTransfer TransferType = "TRANSFER"
	TransferTypeLoan     TransferType = "LOAN"
	TransferTypeFree     TransferType = "FREE"
	TransferTypeRelease  TransferType = "RELEASE"
	TransferTypeLoanEnd  TransferType = "LOAN_RETURN"
)

// OfferStatus is the lifecycle state of a transfer offer. An accepted
// offer is removed from the player rather than flagged.
type OfferStatus string

const (
	OfferStatusPending     OfferStatus = "PENDING"
	OfferStatusNegotiating OfferStatus = "NEGOTIATING"
	OfferStatusRejected    OfferStatus = "REJECTED"
)

// NegotiationActor identifies who made a move in a negotiation
type NegotiationActor string

const (
	ActorUser   NegotiationActor = "USER"
	ActorAI     NegotiationActor = "AI"
	ActorSystem NegotiationActor = "SYSTEM"
)

// MaxNegotiationRounds bounds every negotiation
const MaxNegotiationRounds = 3

// TransferOffer is a CPU club's bid for one of the human club's players
type TransferOffer struct {
	ID                 uuid.UUID          `json:"id" yaml:"id"`
	FromClubID         uuid.UUID          `json:"from_club_id" yaml:"from_club_id"`
	FromClubName       string             `json:"from_club_name" yaml:"from_club_name"`
	Fee                int64              `json:"fee" yaml:"fee"`
	Type               TransferType       `json:"type" yaml:"type"`
	Status             OfferStatus        `json:"status" yaml:"status"`
	Round              int                `json:"round" yaml:"round"`
	LastCounterOffer   int64              `json:"last_counter_offer" yaml:"last_counter_offer"`
	AnchorFee          int64              `json:"anchor_fee" yaml:"anchor_fee"`
	WaitingForResponse bool               `json:"waiting_for_response" yaml:"waiting_for_response"`
	CreatedWeek        int                `json:"created_week" yaml:"created_week"`
	ExpiryWeek         int                `json:"expiry_week" yaml:"expiry_week"`
	History            []NegotiationEntry `json:"history,omitempty" yaml:"history,omitempty"`
}

// NegotiationEntry is one line of an offer's negotiation history
type NegotiationEntry struct {
	Round  int              `json:"round" yaml:"round"`
	Actor  NegotiationActor `json:"actor" yaml:"actor"`
	Amount int64            `json:"amount" yaml:"amount"`
	At     time.Time        `json:"at" yaml:"at"`
	Note   string           `json:"note,omitempty" yaml:"note,omitempty"`
}

// Open reports whether the offer still awaits a decision
func (o *TransferOffer) Open() bool {
	return o.Status == OfferStatusPending || o.Status == OfferStatusNegotiating
}

func (o TransferOffer) clone() TransferOffer {
	out := o
	if o.History != nil {
		out.History = append([]NegotiationEntry(nil), o.History...)
	}
	return out
}

// PendingTransfer is a transfer agreed while the window was closed
type PendingTransfer struct {
	FromClubID     uuid.UUID    `json:"from_club_id" yaml:"from_club_id"`
	ToClubID       uuid.UUID    `json:"to_club_id" yaml:"to_club_id"`
	Fee            int64        `json:"fee" yaml:"fee"`
	Type           TransferType `json:"type" yaml:"type"`
	AgreedWeek     int          `json:"agreed_week" yaml:"agreed_week"`
	TransferDate   int          `json:"transfer_date" yaml:"transfer_date"`
	TransferSeason string       `json:"transfer_season" yaml:"transfer_season"`
}

// TransferRecord is an append-only transfer history entry. ToClubID is
// uuid.Nil for releases to free agency.
type TransferRecord struct {
	ID         uuid.UUID    `json:"id" yaml:"id"`
	PlayerID   uuid.UUID    `json:"player_id" yaml:"player_id"`
	PlayerName string       `json:"player_name" yaml:"player_name"`
	FromClubID uuid.UUID    `json:"from_club_id" yaml:"from_club_id"`
	ToClubID   uuid.UUID    `json:"to_club_id" yaml:"to_club_id"`
	Fee        int64        `json:"fee" yaml:"fee"`
	Type       TransferType `json:"type" yaml:"type"`
	Week       int          `json:"week" yaml:"week"`
	Season     string       `json:"season" yaml:"season"`
}
