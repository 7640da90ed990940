// Package rewards closes out a season: prize money, individual awards,
// streaks, retirements, debt consequences, squad replenishment, trophies
// and manager job offers. Rollover then prepares the following season.
package rewards

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
)

const (
	// PrizeBase is paid to every club; PrizeStep is added per place above last
	PrizeBase = 5_000_000
	PrizeStep = 5_000_000

	forcedRetirementAge = 37
)

// Placing is one row of the final league table
type Placing struct {
	Rank           int       `json:"rank" yaml:"rank"`
	ClubID         uuid.UUID `json:"club_id" yaml:"club_id"`
	ClubName       string    `json:"club_name" yaml:"club_name"`
	Points         int       `json:"points" yaml:"points"`
	GoalDifference int       `json:"goal_difference" yaml:"goal_difference"`
	GoalsFor       int       `json:"goals_for" yaml:"goals_for"`
	Prize          int64     `json:"prize" yaml:"prize"`
}

// Award names the winner of an individual prize
type Award struct {
	PlayerID   uuid.UUID `json:"player_id" yaml:"player_id"`
	PlayerName string    `json:"player_name" yaml:"player_name"`
	ClubID     uuid.UUID `json:"club_id" yaml:"club_id"`
	ClubName   string    `json:"club_name" yaml:"club_name"`
	Value      float64   `json:"value" yaml:"value"`
}

// Streak holds a club's longest runs of the season
type Streak struct {
	ClubID   uuid.UUID `json:"club_id" yaml:"club_id"`
	ClubName string    `json:"club_name" yaml:"club_name"`
	Unbeaten int       `json:"unbeaten" yaml:"unbeaten"`
	Winning  int       `json:"winning" yaml:"winning"`
}

// Retiree is a player who left the game at season end
type Retiree struct {
	PlayerID uuid.UUID `json:"player_id" yaml:"player_id"`
	Name     string    `json:"name" yaml:"name"`
	ClubID   uuid.UUID `json:"club_id" yaml:"club_id"`
	ClubName string    `json:"club_name" yaml:"club_name"`
	Age      int       `json:"age" yaml:"age"`

	// CancelledMove is the agreed transfer the retirement called off
	CancelledMove *models.PendingTransfer `json:"-" yaml:"-"`
}

// DebtOutcome records the human club's financial verdict
type DebtOutcome struct {
	InDebt   bool  `json:"in_debt" yaml:"in_debt"`
	Deficit  int64 `json:"deficit" yaml:"deficit"`
	Strikes  int   `json:"strikes" yaml:"strikes"`
	GameOver bool  `json:"game_over" yaml:"game_over"`
}

// Summary is the season-end report
type Summary struct {
	Season         string            `json:"season" yaml:"season"`
	Table          []Placing         `json:"table" yaml:"table"`
	TopScorer      *Award            `json:"top_scorer,omitempty" yaml:"top_scorer,omitempty"`
	TopAssister    *Award            `json:"top_assister,omitempty" yaml:"top_assister,omitempty"`
	SeasonPlayer   *Award            `json:"season_player,omitempty" yaml:"season_player,omitempty"`
	BestGoalkeeper *Award            `json:"best_goalkeeper,omitempty" yaml:"best_goalkeeper,omitempty"`
	Streaks        []Streak          `json:"streaks" yaml:"streaks"`
	Retired        []Retiree         `json:"retired,omitempty" yaml:"retired,omitempty"`
	Debt           DebtOutcome       `json:"debt" yaml:"debt"`
	Promoted       int               `json:"promoted" yaml:"promoted"`
	Trophies       []string          `json:"trophies,omitempty" yaml:"trophies,omitempty"`
	JobOffers      []models.JobOffer `json:"job_offers,omitempty" yaml:"job_offers,omitempty"`

	Records       []models.TransferRecord `json:"-" yaml:"-"`
	Notifications []models.Notification   `json:"-" yaml:"-"`
}

// Calculator runs the season-end pass
type Calculator struct {
	enforcer *roster.Enforcer
}

// NewCalculator creates a new rewards Calculator
func NewCalculator(enforcer *roster.Enforcer) *Calculator {
	return &Calculator{
		enforcer: enforcer,
	}
}

// Prize returns the prize money for finishing at rank in a league of n
func Prize(rank, n int) int64 {
	return PrizeBase + int64(n-rank)*PrizeStep
}

// Calculate runs every season-end step, in order, against state
func (c *Calculator) Calculate(state *models.SeasonState, scope roster.Scope) Summary {
	sum := Summary{Season: state.Label}
	human := state.HumanClub()
	notify := func(sev models.Severity, msg string) {
		sum.Notifications = append(sum.Notifications, models.NewNotification(scope.Week, sev, state.HumanClubID, scope.At, msg))
	}

	// 1. final table and prize money
	table := state.Table()
	for i, club := range table {
		rank := i + 1
		prize := Prize(rank, len(table))
		club.Budget += prize
		club.Ledger.PrizeIncome += prize
		sum.Table = append(sum.Table, Placing{
			Rank:           rank,
			ClubID:         club.ID,
			ClubName:       club.Name,
			Points:         club.Standing.Points,
			GoalDifference: club.Standing.GoalDifference(),
			GoalsFor:       club.Standing.GoalsFor,
			Prize:          prize,
		})
		if club.Human {
			notify(models.SeveritySuccess, fmt.Sprintf("%s finished %s and earned %s in prize money", club.Name, ordinal(rank), models.Money(prize)))
		}
	}

	// 2-4. individual awards
	stats := collectStats(state)
	sum.TopScorer = stats.topScorer(state)
	sum.TopAssister = stats.topAssister(state)
	sum.SeasonPlayer = stats.seasonPlayer(state, sum.Table)
	sum.BestGoalkeeper = stats.bestGoalkeeper(state)

	// 5. streaks
	sum.Streaks = streaks(state)

	// 6. retirements, then loanees go home
	sum.Retired = retire(state)
	for _, r := range sum.Retired {
		if r.ClubID == state.HumanClubID {
			notify(models.SeverityInfo, fmt.Sprintf("%s (%d) has retired", r.Name, r.Age))
		}
		if r.CancelledMove != nil {
			log.Info().Str("player", r.Name).Str("from", r.ClubName).Msg("pending transfer cancelled by retirement")
			sum.Notifications = append(sum.Notifications, models.NewNotification(scope.Week, models.SeverityWarning, r.CancelledMove.ToClubID, scope.At,
				fmt.Sprintf("%s's agreed move from %s was cancelled because the player retired", r.Name, r.ClubName)))
		}
	}
	sum.Records = append(sum.Records, returnLoans(state, scope)...)

	// 7. debt
	if human != nil {
		sum.Debt = settleDebt(state, human)
		switch {
		case sum.Debt.GameOver:
			notify(models.SeverityError, fmt.Sprintf("%s ended a second straight season in debt. The board has dismissed you.", human.Name))
		case sum.Debt.InDebt:
			notify(models.SeverityWarning, fmt.Sprintf("%s ended the season %s in debt. The board cleared it this once; a second season in debt will cost you your job.",
				human.Name, models.Money(sum.Debt.Deficit)))
		}
	}

	// 8. replenish squads
	for i := range state.Clubs {
		res := c.enforcer.Enforce(&state.Clubs[i], scope)
		sum.Promoted += len(res.Promoted)
		sum.Records = append(sum.Records, res.Released...)
		sum.Notifications = append(sum.Notifications, res.Notifications...)
	}

	// 9. trophies and career history
	if human != nil {
		sum.Trophies = trophies(sum, human)
		for _, t := range sum.Trophies {
			state.Achievements = append(state.Achievements, models.Achievement{Name: t, Season: state.Label})
			notify(models.SeveritySuccess, fmt.Sprintf("Trophy won: %s", t))
		}
		rank := state.Rank(human.ID)
		state.CareerHistory = append(state.CareerHistory, models.CareerEntry{
			Season:   state.Label,
			ClubName: human.Name,
			Rank:     rank,
			Points:   human.Standing.Points,
			Trophies: sum.Trophies,
		})

		// 10. job offers
		if !sum.Debt.GameOver {
			sum.JobOffers = jobOffers(state, rank, scope)
			state.Manager.JobOffers = sum.JobOffers
			for _, o := range sum.JobOffers {
				notify(models.SeverityInfo, fmt.Sprintf("%s (%s) would like to offer you their manager's job", o.ClubName, o.Tier))
			}
		}
	}

	log.Info().
		Str("season", state.Label).
		Int("retired", len(sum.Retired)).
		Int("promoted", sum.Promoted).
		Int("job_offers", len(sum.JobOffers)).
		Bool("game_over", sum.Debt.GameOver).
		Msg("season rewards calculated")
	return sum
}

// retire removes announced, unpersuaded retirees and every player past
// the forced retirement age. An agreed move for a retiree is called off.
func retire(state *models.SeasonState) []Retiree {
	var out []Retiree
	for i := range state.Clubs {
		club := &state.Clubs[i]
		kept := club.Players[:0]
		for _, p := range club.Players {
			leaving := (p.Retirement.Announced && !p.Retirement.Persuaded) || p.Age >= forcedRetirementAge
			if leaving && p.Loan == nil {
				out = append(out, Retiree{PlayerID: p.ID, Name: p.Name, ClubID: club.ID, ClubName: club.Name, Age: p.Age, CancelledMove: p.Pending})
				continue
			}
			kept = append(kept, p)
		}
		club.Players = kept
	}
	return out
}

// returnLoans sends every loanee back to the parent club
func returnLoans(state *models.SeasonState, scope roster.Scope) []models.TransferRecord {
	type loanee struct{ holder, player uuid.UUID }
	var back []loanee
	for i := range state.Clubs {
		for _, p := range state.Clubs[i].Players {
			if p.Loan != nil {
				back = append(back, loanee{holder: state.Clubs[i].ID, player: p.ID})
			}
		}
	}

	var records []models.TransferRecord
	for _, l := range back {
		holder := state.Club(l.holder)
		p, _ := holder.RemovePlayer(l.player)
		parent := state.Club(p.Loan.ParentClubID)
		if parent == nil {
			log.Warn().Str("player", p.Name).Str("parent_id", p.Loan.ParentClubID.String()).Msg("loan parent club unknown; player stays")
			holder.Players = append(holder.Players, p)
			continue
		}
		p.Loan = nil
		parent.Players = append(parent.Players, p)
		records = append(records, models.TransferRecord{
			ID:         uuid.New(),
			PlayerID:   p.ID,
			PlayerName: p.Name,
			FromClubID: holder.ID,
			ToClubID:   parent.ID,
			Type:       models.TransferTypeLoanEnd,
			Week:       scope.Week,
			Season:     scope.Season,
		})
	}
	return records
}

// settleDebt applies the two-strike rule to the human club
func settleDebt(state *models.SeasonState, human *models.Club) DebtOutcome {
	if human.Budget >= 0 {
		state.Manager.DebtStrikes = 0
		return DebtOutcome{}
	}
	state.Manager.DebtStrikes++
	out := DebtOutcome{InDebt: true, Deficit: -human.Budget, Strikes: state.Manager.DebtStrikes}
	if state.Manager.DebtStrikes >= 2 {
		state.Manager.GameOver = true
		out.GameOver = true
		return out
	}
	human.Budget = 0
	return out
}

func trophies(sum Summary, human *models.Club) []string {
	var out []string
	for _, p := range sum.Table {
		if p.ClubID == human.ID && p.Rank == 1 {
			out = append(out, "League Champions")
		}
	}
	if human.Standing.Played > 0 && human.Standing.Lost == 0 {
		out = append(out, "Invincibles")
	}
	if sum.TopScorer != nil && sum.TopScorer.ClubID == human.ID {
		out = append(out, "Golden Boot: "+sum.TopScorer.PlayerName)
	}
	if sum.SeasonPlayer != nil && sum.SeasonPlayer.ClubID == human.ID {
		out = append(out, "Player of the Season: "+sum.SeasonPlayer.PlayerName)
	}
	if sum.BestGoalkeeper != nil && sum.BestGoalkeeper.ClubID == human.ID {
		out = append(out, "Golden Glove: "+sum.BestGoalkeeper.PlayerName)
	}
	return out
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
