// Package api exposes the season App as a small JSON HTTP API for the
// human-facing layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/content"
	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/negotiation"
	"github.com/mcdev12/touchline/go/internal/rewards"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/season"
	"github.com/mcdev12/touchline/go/internal/transfer"
)

// Game is the part of season.App the API drives
type Game interface {
	State() (*models.SeasonState, error)
	Advance(ctx context.Context) (season.TickResult, error)
	AcceptOffer(ctx context.Context, playerID, offerID uuid.UUID) error
	CounterOffer(ctx context.Context, playerID, offerID uuid.UUID, amount int64) error
	RejectOffer(ctx context.Context, playerID, offerID uuid.UUID) error
	Buy(ctx context.Context, playerID uuid.UUID, fee int64) error
	Release(ctx context.Context, playerID uuid.UUID) error
	SetListing(ctx context.Context, playerID uuid.UUID, transferList, loanList bool) error
	Persuade(ctx context.Context, playerID uuid.UUID) (bool, error)
	LetRetire(ctx context.Context, playerID uuid.UUID) error
	ExpandStadium(ctx context.Context, seats int) error
	SignSponsor(ctx context.Context, offerID uuid.UUID) error
	AcceptJob(ctx context.Context, clubID uuid.UUID) error
	StartNextSeason(ctx context.Context) error
	ToggleFavorite(ctx context.Context, playerID uuid.UUID) error
	MarkMailRead(ctx context.Context, mailID uuid.UUID) error
}

// Scout writes player reports
type Scout interface {
	Report(ctx context.Context, state *models.SeasonState, playerID uuid.UUID) (string, error)
}

type Handler struct {
	game  Game
	scout Scout
}

func NewHandler(game Game, scout Scout) *Handler {
	return &Handler{
		game:  game,
		scout: scout,
	}
}

// TableRow is one line of the league table
type TableRow struct {
	Rank           int       `json:"rank"`
	ClubID         uuid.UUID `json:"club_id"`
	Name           string    `json:"name"`
	Human          bool      `json:"human"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
}

// AdvanceResponse reports the outcome of one tick
type AdvanceResponse struct {
	Season        string                  `json:"season"`
	Week          int                     `json:"week"`
	SeasonEnded   bool                    `json:"season_ended"`
	AwaitingInput bool                    `json:"awaiting_input"`
	Notifications []models.Notification   `json:"notifications"`
	Records       []models.TransferRecord `json:"records"`
	Summary       *rewards.Summary        `json:"summary,omitempty"`
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

type listingRequest struct {
	TransferList bool `json:"transfer_list"`
	LoanList     bool `json:"loan_list"`
}

type seatsRequest struct {
	Seats int `json:"seats"`
}

// RegisterRoutes registers the API routes with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/state", h.HandleGetState)
	mux.HandleFunc("GET /api/table", h.HandleGetTable)
	mux.HandleFunc("POST /api/advance", h.HandleAdvance)
	mux.HandleFunc("POST /api/season/next", h.action(func(r *http.Request) error {
		return h.game.StartNextSeason(r.Context())
	}))

	mux.HandleFunc("POST /api/players/{player}/offers/{offer}/accept", h.action(func(r *http.Request) error {
		playerID, offerID, err := twoIDs(r, "player", "offer")
		if err != nil {
			return err
		}
		return h.game.AcceptOffer(r.Context(), playerID, offerID)
	}))
	mux.HandleFunc("POST /api/players/{player}/offers/{offer}/counter", h.action(func(r *http.Request) error {
		playerID, offerID, err := twoIDs(r, "player", "offer")
		if err != nil {
			return err
		}
		var req amountRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		return h.game.CounterOffer(r.Context(), playerID, offerID, req.Amount)
	}))
	mux.HandleFunc("POST /api/players/{player}/offers/{offer}/reject", h.action(func(r *http.Request) error {
		playerID, offerID, err := twoIDs(r, "player", "offer")
		if err != nil {
			return err
		}
		return h.game.RejectOffer(r.Context(), playerID, offerID)
	}))
	mux.HandleFunc("POST /api/players/{player}/buy", h.action(func(r *http.Request) error {
		playerID, err := pathID(r, "player")
		if err != nil {
			return err
		}
		var req amountRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		return h.game.Buy(r.Context(), playerID, req.Amount)
	}))
	mux.HandleFunc("POST /api/players/{player}/release", h.playerAction(func(ctx context.Context, id uuid.UUID) error {
		return h.game.Release(ctx, id)
	}))
	mux.HandleFunc("PUT /api/players/{player}/listing", h.action(func(r *http.Request) error {
		playerID, err := pathID(r, "player")
		if err != nil {
			return err
		}
		var req listingRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		return h.game.SetListing(r.Context(), playerID, req.TransferList, req.LoanList)
	}))
	mux.HandleFunc("POST /api/players/{player}/persuade", h.HandlePersuade)
	mux.HandleFunc("POST /api/players/{player}/retire", h.playerAction(func(ctx context.Context, id uuid.UUID) error {
		return h.game.LetRetire(ctx, id)
	}))
	mux.HandleFunc("POST /api/players/{player}/favorite", h.playerAction(func(ctx context.Context, id uuid.UUID) error {
		return h.game.ToggleFavorite(ctx, id)
	}))
	mux.HandleFunc("GET /api/players/{player}/report", h.HandleScoutReport)

	mux.HandleFunc("POST /api/stadium/expand", h.action(func(r *http.Request) error {
		var req seatsRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		return h.game.ExpandStadium(r.Context(), req.Seats)
	}))
	mux.HandleFunc("POST /api/sponsors/{sponsor}/sign", h.action(func(r *http.Request) error {
		id, err := pathID(r, "sponsor")
		if err != nil {
			return err
		}
		return h.game.SignSponsor(r.Context(), id)
	}))
	mux.HandleFunc("POST /api/jobs/{club}/accept", h.action(func(r *http.Request) error {
		id, err := pathID(r, "club")
		if err != nil {
			return err
		}
		return h.game.AcceptJob(r.Context(), id)
	}))
	mux.HandleFunc("POST /api/mail/{mail}/read", h.action(func(r *http.Request) error {
		id, err := pathID(r, "mail")
		if err != nil {
			return err
		}
		return h.game.MarkMailRead(r.Context(), id)
	}))
}

// HandleGetState handles GET /api/state
func (h *Handler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	state, err := h.game.State()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// HandleGetTable handles GET /api/table
func (h *Handler) HandleGetTable(w http.ResponseWriter, r *http.Request) {
	state, err := h.game.State()
	if err != nil {
		writeError(w, err)
		return
	}
	table := state.Table()
	rows := make([]TableRow, len(table))
	for i, c := range table {
		rows[i] = TableRow{
			Rank:           i + 1,
			ClubID:         c.ID,
			Name:           c.Name,
			Human:          c.Human,
			Played:         c.Standing.Played,
			Won:            c.Standing.Won,
			Drawn:          c.Standing.Drawn,
			Lost:           c.Standing.Lost,
			GoalsFor:       c.Standing.GoalsFor,
			GoalsAgainst:   c.Standing.GoalsAgainst,
			GoalDifference: c.Standing.GoalDifference(),
			Points:         c.Standing.Points,
		}
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleAdvance handles POST /api/advance
func (h *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	res, err := h.game.Advance(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AdvanceResponse{
		Season:        res.State.Label,
		Week:          res.State.CurrentWeek,
		SeasonEnded:   res.SeasonEnded,
		AwaitingInput: res.AwaitingInput,
		Notifications: res.Notifications,
		Records:       res.Records,
		Summary:       res.Summary,
	})
}

// HandlePersuade handles POST /api/players/{player}/persuade
func (h *Handler) HandlePersuade(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "player")
	if err != nil {
		writeError(w, err)
		return
	}
	ok, err := h.game.Persuade(r.Context(), playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"persuaded": ok})
}

// HandleScoutReport handles GET /api/players/{player}/report
func (h *Handler) HandleScoutReport(w http.ResponseWriter, r *http.Request) {
	playerID, err := pathID(r, "player")
	if err != nil {
		writeError(w, err)
		return
	}
	state, err := h.game.State()
	if err != nil {
		writeError(w, err)
		return
	}
	report, err := h.scout.Report(r.Context(), state, playerID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"player_id": playerID.String(), "report": report})
}

// action wraps a state-changing call that answers with the new state
func (h *Handler) action(fn func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(r); err != nil {
			writeError(w, err)
			return
		}
		h.HandleGetState(w, r)
	}
}

func (h *Handler) playerAction(fn func(ctx context.Context, id uuid.UUID) error) http.HandlerFunc {
	return h.action(func(r *http.Request) error {
		id, err := pathID(r, "player")
		if err != nil {
			return err
		}
		return fn(r.Context(), id)
	})
}

var errBadRequest = errors.New("bad request")

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: invalid %s id", errBadRequest, name)
	}
	return id, nil
}

func twoIDs(r *http.Request, a, b string) (uuid.UUID, uuid.UUID, error) {
	first, err := pathID(r, a)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	second, err := pathID(r, b)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return first, second, nil
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, negotiation.ErrInvalidAmount),
		errors.Is(err, season.ErrInvalidSeats):
		return http.StatusBadRequest
	case errors.Is(err, season.ErrNoGame),
		errors.Is(err, transfer.ErrPlayerNotFound),
		errors.Is(err, transfer.ErrClubNotFound),
		errors.Is(err, content.ErrPlayerNotFound),
		errors.Is(err, negotiation.ErrOfferNotFound),
		errors.Is(err, season.ErrMailNotFound),
		errors.Is(err, season.ErrSponsorNotFound),
		errors.Is(err, rewards.ErrJobNotOffered):
		return http.StatusNotFound
	case errors.Is(err, roster.ErrBelowFloor),
		errors.Is(err, negotiation.ErrOfferClosed),
		errors.Is(err, negotiation.ErrRoundLimit),
		errors.Is(err, negotiation.ErrAwaitingResponse),
		errors.Is(err, transfer.ErrInsufficientFunds),
		errors.Is(err, transfer.ErrBidTooLow),
		errors.Is(err, transfer.ErrAlreadyPending),
		errors.Is(err, transfer.ErrOnLoan),
		errors.Is(err, transfer.ErrNotHumanPlayer),
		errors.Is(err, transfer.ErrOwnPlayer),
		errors.Is(err, transfer.ErrTransferNotAllowed),
		errors.Is(err, season.ErrSeasonOver),
		errors.Is(err, season.ErrAwaitingDecision),
		errors.Is(err, season.ErrNotRetiring),
		errors.Is(err, season.ErrAlreadyPersuaded),
		errors.Is(err, season.ErrExpansionInProgress),
		errors.Is(err, rewards.ErrSeasonNotOver),
		errors.Is(err, rewards.ErrGameOver):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
