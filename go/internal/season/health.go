package season

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
)

const (
	injuryBase      = 0.03
	injuryPerDecade = 0.02
	injuryAgeFrom   = 30
	illnessChance   = 0.02
	redCardBan      = 1
)

var (
	injuryKinds  = []string{"hamstring strain", "ankle sprain", "groin strain", "calf tear", "knee ligament damage", "broken foot"}
	injuryWeeks  = []int{1, 2, 2, 3, 6, 8}
	illnessKinds = []string{"flu", "stomach virus", "fever"}
)

// InjuryChance is the weekly injury probability for a player of age
func InjuryChance(age int) float64 {
	over := age - injuryAgeFrom
	if over < 0 {
		over = 0
	}
	return injuryBase + injuryPerDecade*float64(over)/10
}

// advanceHealth serves suspensions for clubs that played this week, hands
// out bans for red cards, and ticks injuries and illnesses. New conditions
// are rolled for every club; only the human club is notified.
func advanceHealth(club *models.Club, played bool, sentOff map[uuid.UUID]bool, scope roster.Scope) []models.Notification {
	var notes []models.Notification
	notify := func(sev models.Severity, msg string) {
		if club.Human {
			notes = append(notes, models.NewNotification(scope.Week, sev, club.ID, scope.At, msg))
		}
	}

	for i := range club.Players {
		p := &club.Players[i]

		if played && p.SuspensionGames > 0 {
			p.SuspensionGames--
		}
		if sentOff[p.ID] {
			p.SuspensionGames += redCardBan
			notify(models.SeverityWarning, fmt.Sprintf("%s is suspended for %d match after a red card", p.Name, redCardBan))
		}

		if p.Injury != nil {
			p.Injury.WeeksLeft--
			if p.Injury.WeeksLeft <= 0 {
				notify(models.SeveritySuccess, fmt.Sprintf("%s has recovered from a %s", p.Name, p.Injury.Kind))
				p.Injury = nil
			}
		} else if scope.Rng.Float64() < InjuryChance(p.Age) {
			k := scope.Rng.Intn(len(injuryKinds))
			p.Injury = &models.Condition{Kind: injuryKinds[k], WeeksLeft: injuryWeeks[k]}
			notify(models.SeverityWarning, fmt.Sprintf("%s suffered a %s and will miss %d week(s)", p.Name, injuryKinds[k], injuryWeeks[k]))
		}

		if p.Illness != nil {
			p.Illness.WeeksLeft--
			if p.Illness.WeeksLeft <= 0 {
				p.Illness = nil
			}
		} else if scope.Rng.Float64() < illnessChance {
			kind := illnessKinds[scope.Rng.Intn(len(illnessKinds))]
			p.Illness = &models.Condition{Kind: kind, WeeksLeft: 1}
			notify(models.SeverityInfo, fmt.Sprintf("%s is ill with %s", p.Name, kind))
		}
	}
	return notes
}
