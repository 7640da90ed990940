// Package season drives the weekly tick: results, health, valuations,
// negotiations, the transfer window, wages, stadium bookkeeping and the
// mid-season retirement check, and the season-end pass on the last week.
package season

import (
	"math/rand"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/negotiation"
	"github.com/mcdev12/touchline/go/internal/rewards"
	"github.com/mcdev12/touchline/go/internal/roster"
	"github.com/mcdev12/touchline/go/internal/transfer"
	"github.com/mcdev12/touchline/go/internal/valuation"
	"github.com/mcdev12/touchline/go/internal/window"
)

// TickResult is the outcome of one tick. State is a fresh snapshot; the
// state passed to Tick is never modified.
type TickResult struct {
	State         *models.SeasonState
	Notifications []models.Notification
	Records       []models.TransferRecord
	AwaitingInput bool
	SeasonEnded   bool
	Summary       *rewards.Summary
}

// Engine runs ticks
type Engine struct {
	market   *transfer.Market
	enforcer *roster.Enforcer
	stadium  StadiumTicker
	rewards  *rewards.Calculator
	clock    Clock
}

// NewEngine creates a new tick Engine
func NewEngine(market *transfer.Market, enforcer *roster.Enforcer, stadium StadiumTicker, calc *rewards.Calculator, clock Clock) *Engine {
	return &Engine{
		market:   market,
		enforcer: enforcer,
		stadium:  stadium,
		rewards:  calc,
		clock:    clock,
	}
}

// Tick consumes the results for the current week's fixtures and advances
// the season to the following week. On the final week the weekly upkeep
// still runs, then the season-end pass replaces the advance.
func (e *Engine) Tick(prev *models.SeasonState, results []models.Fixture, rng *rand.Rand) TickResult {
	s := prev.Clone()
	res := TickResult{State: s}
	if s.SeasonOver || s.Manager.GameOver {
		log.Warn().Str("season", s.Label).Msg("tick requested after season end; nothing to do")
		res.SeasonEnded = s.SeasonOver
		return res
	}

	total := s.TotalWeeks()
	final := s.CurrentWeek >= total
	next := s.CurrentWeek + 1
	if final {
		next = s.CurrentWeek
	}
	scope := roster.Scope{Week: next, Season: s.Label, At: e.clock.Now(), Rng: rng}
	var batch transfer.Result

	// 1. results into standings and fan mood
	playedBy, sentOff := e.applyResults(s, results)

	for i := range s.Clubs {
		club := &s.Clubs[i]
		// 2. suspensions, injuries, illness
		res.Notifications = append(res.Notifications, advanceHealth(club, playedBy[club.ID], sentOff, scope)...)
		// 3. market values
		valuation.Update(club)
	}

	// 4. negotiations
	if human := s.HumanClub(); human != nil {
		step := negotiation.Step{Week: next, At: scope.At, Rng: rng}
		for i := range human.Players {
			if len(human.Players[i].Offers) == 0 {
				continue
			}
			out := negotiation.Advance(&human.Players[i], human.ID, step)
			res.Notifications = append(res.Notifications, out.Notifications...)
		}
	}

	// 5. transfer window
	if !final {
		batch.Merge(e.market.GenerateOffers(s, scope))
		if window.IsOpen(next, total) {
			batch.Merge(e.market.RunCPU(s, scope))
			batch.Merge(e.market.ResolvePending(s, scope))
			if window.IsClosing(next, total) {
				for i := range s.Clubs {
					batch.Touch(s.Clubs[i].ID)
				}
				log.Info().Int("week", next).Msg("transfer window closing; enforcing rosters league-wide")
			}
		}
		e.market.Settle(s, &batch, scope)
	}

	for i := range s.Clubs {
		club := &s.Clubs[i]
		// 6. wages
		res.Notifications = append(res.Notifications, payWages(club, scope)...)
		// 7. stadium and sponsors
		if e.stadium != nil {
			res.Notifications = append(res.Notifications, e.stadium.Tick(club, scope)...)
		}
	}

	if final {
		e.endSeason(s, &res, scope)
		return res
	}

	for _, f := range s.FixturesForWeek(next) {
		if home := s.Club(f.HomeID); home != nil {
			matchdayIncome(home)
		}
	}

	// every club leaves the tick legal
	for i := range s.Clubs {
		er := e.enforcer.Enforce(&s.Clubs[i], scope)
		batch.Records = append(batch.Records, er.Released...)
		batch.Notifications = append(batch.Notifications, er.Notifications...)
	}

	s.CurrentWeek = next
	res.Notifications = append(res.Notifications, batch.Notifications...)
	res.Records = batch.Records
	s.TransferHistory = append(s.TransferHistory, batch.Records...)

	// 8. mid-season retirement check
	if next == window.Midpoint(total) && !s.MidSeasonCheckDone {
		s.MidSeasonCheckDone = true
		if human := s.HumanClub(); human != nil {
			announced, notes := considerRetirements(human, scope)
			res.Notifications = append(res.Notifications, notes...)
			res.AwaitingInput = announced
		}
	}

	e.deliver(s, res.Notifications)
	log.Info().
		Str("season", s.Label).
		Int("week", next).
		Int("transfers", len(res.Records)).
		Int("notifications", len(res.Notifications)).
		Bool("awaiting_input", res.AwaitingInput).
		Msg("tick complete")
	return res
}

// endSeason runs the season-end pass on the final week's state
func (e *Engine) endSeason(s *models.SeasonState, res *TickResult, scope roster.Scope) {
	sum := e.rewards.Calculate(s, scope)
	s.SeasonOver = true
	res.Summary = &sum
	res.SeasonEnded = true
	res.Notifications = append(res.Notifications, sum.Notifications...)
	res.Records = sum.Records
	s.TransferHistory = append(s.TransferHistory, sum.Records...)
	e.deliver(s, res.Notifications)
	for _, o := range sum.JobOffers {
		s.Mailbox = append(s.Mailbox, models.MailMessage{
			ID:      uuid.New(),
			Week:    s.CurrentWeek,
			Subject: "Job offer",
			Body:    o.ClubName + " (" + string(o.Tier) + ") would like you as their new manager.",
			At:      scope.At,
		})
	}
	log.Info().Str("season", s.Label).Int("week", s.CurrentWeek).Msg("season finished")
}

// applyResults marks fixtures played and updates standings. It returns
// which clubs played and which players were sent off.
func (e *Engine) applyResults(s *models.SeasonState, results []models.Fixture) (map[uuid.UUID]bool, map[uuid.UUID]bool) {
	played := make(map[uuid.UUID]bool)
	sentOff := make(map[uuid.UUID]bool)

	for _, r := range results {
		f := fixture(s, r.ID)
		switch {
		case f == nil:
			log.Warn().Str("fixture_id", r.ID.String()).Msg("result for unknown fixture; skipping")
			continue
		case f.Played:
			log.Warn().Str("fixture_id", r.ID.String()).Msg("fixture already played; skipping")
			continue
		case f.Week != s.CurrentWeek:
			log.Warn().Str("fixture_id", r.ID.String()).Int("fixture_week", f.Week).Int("week", s.CurrentWeek).Msg("result for another week; skipping")
			continue
		case r.Result == nil:
			continue
		}

		result := *r.Result
		f.Result = &result
		if !applyResult(s, f) {
			f.Result = nil
			continue
		}
		played[f.HomeID] = true
		played[f.AwayID] = true
		for _, ev := range result.Events {
			if ev.Type == models.MatchEventRedCard {
				sentOff[ev.PlayerID] = true
			}
		}
	}
	return played, sentOff
}

func fixture(s *models.SeasonState, id uuid.UUID) *models.Fixture {
	for i := range s.Fixtures {
		if s.Fixtures[i].ID == id {
			return &s.Fixtures[i]
		}
	}
	return nil
}

// deliver copies every notification at warning level or above into the
// human manager's mailbox
func (e *Engine) deliver(s *models.SeasonState, notes []models.Notification) {
	for _, n := range notes {
		if n.Severity != models.SeverityWarning && n.Severity != models.SeverityError {
			continue
		}
		s.Mailbox = append(s.Mailbox, models.MailMessage{
			ID:      uuid.New(),
			Week:    n.Week,
			Subject: string(n.Severity),
			Body:    n.Message,
			At:      n.At,
		})
	}
}
