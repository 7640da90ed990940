// Package matchsim is a lightweight rating-weighted match engine. Goals
// are Poisson draws around each side's attacking strength against the
// other side's defence; events and per-player lines are sampled so the
// season-end awards have something to work with.
package matchsim

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
)

const (
	baseGoals      = 1.35
	homeAdvantage  = 0.25
	strengthScale  = 25.0
	maxGoals       = 9
	yellowChance   = 0.12
	redChance      = 0.015
	assistChance   = 0.7
	matchMinutes   = 90
	baseMatchScore = 6.0
)

var formation = map[models.Position]int{
	models.PositionGoalkeeper: 1,
	models.PositionDefender:   4,
	models.PositionMidfielder: 4,
	models.PositionForward:    2,
}

var scoringWeight = map[models.Position]float64{
	models.PositionGoalkeeper: 0.01,
	models.PositionDefender:   1,
	models.PositionMidfielder: 3,
	models.PositionForward:    6,
}

// Simulator plays fixtures. Every fixture draws from its own source
// derived from the seed and the fixture id, so results do not depend on
// the order in which concurrent fixtures run.
type Simulator struct {
	seed int64
}

// NewSimulator creates a new Simulator
func NewSimulator(seed int64) *Simulator {
	return &Simulator{seed: seed}
}

// Simulate plays one fixture and returns it with a result attached
func (s *Simulator) Simulate(ctx context.Context, f models.Fixture, home, away models.Club) (models.Fixture, error) {
	if err := ctx.Err(); err != nil {
		return f, err
	}
	rng := rand.New(rand.NewSource(s.fixtureSeed(f.ID)))

	hXI, aXI := lineup(&home), lineup(&away)
	hAtt, hDef := strength(hXI)
	aAtt, aDef := strength(aXI)

	res := &models.MatchResult{
		HomeGoals: poisson(rng, expected(hAtt, aDef)+homeAdvantage),
		AwayGoals: poisson(rng, expected(aAtt, hDef)),
	}

	lines := make(map[uuid.UUID]*models.Performance, len(hXI)+len(aXI))
	for _, side := range []struct {
		club *models.Club
		xi   []models.Player
	}{{&home, hXI}, {&away, aXI}} {
		for _, p := range side.xi {
			lines[p.ID] = &models.Performance{
				PlayerID: p.ID,
				ClubID:   side.club.ID,
				Position: p.Position,
				Minutes:  matchMinutes,
			}
		}
	}

	res.Events = append(res.Events, goals(rng, home.ID, hXI, res.HomeGoals, lines)...)
	res.Events = append(res.Events, goals(rng, away.ID, aXI, res.AwayGoals, lines)...)
	res.Events = append(res.Events, cards(rng, home.ID, hXI, lines)...)
	res.Events = append(res.Events, cards(rng, away.ID, aXI, lines)...)
	sort.SliceStable(res.Events, func(i, j int) bool { return res.Events[i].Minute < res.Events[j].Minute })

	for _, side := range []struct {
		xi               []models.Player
		scored, conceded int
	}{{hXI, res.HomeGoals, res.AwayGoals}, {aXI, res.AwayGoals, res.HomeGoals}} {
		for _, p := range side.xi {
			fillLine(rng, lines[p.ID], p, side.scored, side.conceded)
			res.Performances = append(res.Performances, *lines[p.ID])
		}
	}

	f.Result = res
	return f, nil
}

func (s *Simulator) fixtureSeed(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(id[:])
	return s.seed ^ int64(h.Sum64())
}

// lineup picks the best available players for each slot of the formation,
// then fills any gaps with whoever is left
func lineup(club *models.Club) []models.Player {
	var avail []models.Player
	for _, p := range club.Players {
		if p.Available() {
			avail = append(avail, p)
		}
	}
	sort.SliceStable(avail, func(i, j int) bool { return avail[i].Rating > avail[j].Rating })

	picked := make(map[uuid.UUID]bool)
	var xi []models.Player
	for _, pos := range []models.Position{models.PositionGoalkeeper, models.PositionDefender, models.PositionMidfielder, models.PositionForward} {
		need := formation[pos]
		for _, p := range avail {
			if need == 0 {
				break
			}
			if p.Position == pos && !picked[p.ID] {
				xi = append(xi, p)
				picked[p.ID] = true
				need--
			}
		}
	}
	for _, p := range avail {
		if len(xi) >= 11 {
			break
		}
		if !picked[p.ID] {
			xi = append(xi, p)
			picked[p.ID] = true
		}
	}
	return xi
}

// strength returns the attacking and defensive averages of a lineup
func strength(xi []models.Player) (attack, defence float64) {
	var att, def, na, nd float64
	for _, p := range xi {
		switch p.Position {
		case models.PositionForward, models.PositionMidfielder:
			att += float64(p.Rating)
			na++
		default:
			def += float64(p.Rating)
			nd++
		}
	}
	if na > 0 {
		attack = att / na
	}
	if nd > 0 {
		defence = def / nd
	}
	// short-handed sides are weaker in both phases
	penalty := float64(11-len(xi)) * 2
	return attack - penalty, defence - penalty
}

func expected(attack, defence float64) float64 {
	return baseGoals * math.Exp((attack-defence)/strengthScale)
}

// poisson draws with Knuth's method, capped at maxGoals
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= rng.Float64()
		if p <= l || k >= maxGoals {
			return k
		}
		k++
	}
}

func goals(rng *rand.Rand, clubID uuid.UUID, xi []models.Player, n int, lines map[uuid.UUID]*models.Performance) []models.MatchEvent {
	if len(xi) == 0 {
		return nil
	}
	events := make([]models.MatchEvent, 0, n)
	for i := 0; i < n; i++ {
		scorer := weightedPick(rng, xi, uuid.Nil)
		ev := models.MatchEvent{
			Minute:   1 + rng.Intn(matchMinutes),
			Type:     models.MatchEventGoal,
			ClubID:   clubID,
			PlayerID: scorer.ID,
		}
		lines[scorer.ID].Goals++
		if len(xi) > 1 && rng.Float64() < assistChance {
			assist := weightedPick(rng, xi, scorer.ID)
			ev.AssistID = assist.ID
			lines[assist.ID].Assists++
		}
		events = append(events, ev)
	}
	return events
}

func weightedPick(rng *rand.Rand, xi []models.Player, exclude uuid.UUID) models.Player {
	var total float64
	for _, p := range xi {
		if p.ID != exclude {
			total += scoringWeight[p.Position] * float64(p.Rating)
		}
	}
	r := rng.Float64() * total
	for _, p := range xi {
		if p.ID == exclude {
			continue
		}
		r -= scoringWeight[p.Position] * float64(p.Rating)
		if r <= 0 {
			return p
		}
	}
	for i := len(xi) - 1; i >= 0; i-- {
		if xi[i].ID != exclude {
			return xi[i]
		}
	}
	return xi[0]
}

func cards(rng *rand.Rand, clubID uuid.UUID, xi []models.Player, lines map[uuid.UUID]*models.Performance) []models.MatchEvent {
	var events []models.MatchEvent
	for _, p := range xi {
		switch r := rng.Float64(); {
		case r < redChance:
			minute := 1 + rng.Intn(matchMinutes)
			events = append(events, models.MatchEvent{Minute: minute, Type: models.MatchEventRedCard, ClubID: clubID, PlayerID: p.ID})
			lines[p.ID].Minutes = minute
		case r < redChance+yellowChance:
			events = append(events, models.MatchEvent{Minute: 1 + rng.Intn(matchMinutes), Type: models.MatchEventYellowCard, ClubID: clubID, PlayerID: p.ID})
		}
	}
	return events
}

// fillLine samples the rest of a player's match line and rates it
func fillLine(rng *rand.Rand, l *models.Performance, p models.Player, scored, conceded int) {
	skill := float64(p.Rating) / 100
	switch p.Position {
	case models.PositionGoalkeeper:
		l.Saves = rng.Intn(3) + int(skill*4)
		l.Passes = 15 + rng.Intn(15)
	case models.PositionDefender:
		l.Tackles = rng.Intn(4) + int(skill*3)
		l.Interceptions = rng.Intn(4) + int(skill*2)
		l.Passes = 30 + rng.Intn(30)
	case models.PositionMidfielder:
		l.Tackles = rng.Intn(3) + int(skill*2)
		l.Interceptions = rng.Intn(2) + int(skill*2)
		l.Passes = 40 + rng.Intn(40)
		l.Shots = rng.Intn(3)
	default:
		l.Passes = 15 + rng.Intn(20)
		l.Shots = 1 + rng.Intn(4)
	}
	l.Shots += l.Goals
	l.PassAccuracy = math.Min(0.97, 0.6+0.3*skill+0.05*rng.Float64())

	rating := baseMatchScore + (skill-0.6)*4 + rng.NormFloat64()*0.5
	rating += 1.0*float64(l.Goals) + 0.6*float64(l.Assists)
	switch {
	case scored > conceded:
		rating += 0.4
	case scored < conceded:
		rating -= 0.4
	}
	if p.Position == models.PositionGoalkeeper || p.Position == models.PositionDefender {
		if conceded == 0 {
			rating += 0.5
		}
		rating -= 0.2 * float64(conceded)
	}
	if l.Minutes < matchMinutes {
		rating -= 1
	}
	l.Rating = math.Round(math.Max(3, math.Min(10, rating))*10) / 10
}
