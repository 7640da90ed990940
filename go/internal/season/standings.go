package season

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
)

const (
	pointsWin  = 3
	pointsDraw = 1

	moodWin         = 5
	moodLoss        = -5
	moodAwayDraw    = 1
	moodHomeDraw    = -1
	lateGoalMinute  = 85
	lateGoalSwing   = 2
	rivalryMultiple = 2
	moodMin         = 0
	moodMax         = 100
)

// applyResult folds one played fixture into both clubs' standings and fan
// sentiment. A fixture naming an unknown club is logged and skipped.
func applyResult(state *models.SeasonState, f *models.Fixture) bool {
	if f.Result == nil {
		return false
	}
	home, away := state.Club(f.HomeID), state.Club(f.AwayID)
	if home == nil || away == nil {
		log.Warn().
			Str("fixture_id", f.ID.String()).
			Str("home_id", f.HomeID.String()).
			Str("away_id", f.AwayID.String()).
			Msg("fixture references unknown club; skipping")
		return false
	}

	f.Played = true
	record(&home.Standing, f.Result.HomeGoals, f.Result.AwayGoals)
	record(&away.Standing, f.Result.AwayGoals, f.Result.HomeGoals)

	rivalry := home.IsRival(away.ID) || away.IsRival(home.ID)
	react(home, f, true, rivalry)
	react(away, f, false, rivalry)
	return true
}

func record(s *models.Standing, scored, conceded int) {
	s.Played++
	s.GoalsFor += scored
	s.GoalsAgainst += conceded
	switch {
	case scored > conceded:
		s.Won++
		s.Points += pointsWin
	case scored == conceded:
		s.Drawn++
		s.Points += pointsDraw
	default:
		s.Lost++
	}
}

// react moves fan mood after a result. Rivalry doubles the swing and a
// decisive late goal adds to it.
func react(club *models.Club, f *models.Fixture, home, rivalry bool) {
	scored, conceded, _ := f.GoalsFor(club.ID)

	var delta int
	switch {
	case scored > conceded:
		delta = moodWin
	case scored < conceded:
		delta = moodLoss
	case home:
		delta = moodHomeDraw
	default:
		delta = moodAwayDraw
	}
	if rivalry {
		delta *= rivalryMultiple
	}
	if late, forUs := lateGoal(f, club.ID); late {
		if forUs {
			delta += lateGoalSwing
		} else {
			delta -= lateGoalSwing
		}
	}

	club.Fans.Mood = clamp(club.Fans.Mood+delta, moodMin, moodMax)
	switch {
	case delta > 0 && club.Fans.Momentum >= 0:
		club.Fans.Momentum++
	case delta < 0 && club.Fans.Momentum <= 0:
		club.Fans.Momentum--
	default:
		club.Fans.Momentum = 0
	}
}

// lateGoal reports whether the last goal of the match came at or after the
// 85th minute, and whether the club scored it
func lateGoal(f *models.Fixture, clubID uuid.UUID) (late, forUs bool) {
	var last *models.MatchEvent
	for i := range f.Result.Events {
		e := &f.Result.Events[i]
		if e.Type != models.MatchEventGoal {
			continue
		}
		if last == nil || e.Minute >= last.Minute {
			last = e
		}
	}
	if last == nil || last.Minute < lateGoalMinute {
		return false, false
	}
	return true, last.ClubID == clubID
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
