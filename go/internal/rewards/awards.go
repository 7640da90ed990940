package rewards

import (
	"sort"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
)

const (
	mvpWeight          = 10
	ratingWeight       = 0.5
	goalWeight         = 3
	assistWeight       = 2
	tackleWeight       = 0.1
	interceptionWeight = 0.15
	saveWeight         = 0.2
	maxPositionBonus   = 5
)

// line aggregates one player's season from match performances
type line struct {
	id            uuid.UUID
	clubID        uuid.UUID
	position      models.Position
	apps          int
	ratingSum     float64
	mvps          int
	tackles       int
	interceptions int
	saves         int
	conceded      int
}

type seasonStats struct {
	lines    map[uuid.UUID]*line
	goals    map[uuid.UUID]int
	assists  map[uuid.UUID]int
	lastClub map[uuid.UUID]uuid.UUID
}

func collectStats(state *models.SeasonState) *seasonStats {
	st := &seasonStats{
		lines:    make(map[uuid.UUID]*line),
		goals:    make(map[uuid.UUID]int),
		assists:  make(map[uuid.UUID]int),
		lastClub: make(map[uuid.UUID]uuid.UUID),
	}
	for i := range state.Fixtures {
		f := &state.Fixtures[i]
		if !f.Played || f.Result == nil {
			continue
		}
		for _, e := range f.Result.Events {
			if e.Type != models.MatchEventGoal {
				continue
			}
			st.goals[e.PlayerID]++
			st.lastClub[e.PlayerID] = e.ClubID
			if e.AssistID != uuid.Nil {
				st.assists[e.AssistID]++
				st.lastClub[e.AssistID] = e.ClubID
			}
		}

		best := -1
		for j, perf := range f.Result.Performances {
			l := st.lines[perf.PlayerID]
			if l == nil {
				l = &line{id: perf.PlayerID, position: perf.Position}
				st.lines[perf.PlayerID] = l
			}
			l.clubID = perf.ClubID
			l.apps++
			l.ratingSum += perf.Rating
			l.tackles += perf.Tackles
			l.interceptions += perf.Interceptions
			l.saves += perf.Saves
			if perf.Position == models.PositionGoalkeeper && perf.Minutes > 0 {
				_, conceded, _ := f.GoalsFor(perf.ClubID)
				l.conceded += conceded
			}
			st.lastClub[perf.PlayerID] = perf.ClubID
			if best < 0 || perf.Rating > f.Result.Performances[best].Rating {
				best = j
			}
		}
		if best >= 0 {
			st.lines[f.Result.Performances[best].PlayerID].mvps++
		}
	}
	return st
}

func (st *seasonStats) topScorer(state *models.SeasonState) *Award {
	id, n := leader(st.goals)
	if n == 0 {
		return nil
	}
	return st.award(state, id, float64(n))
}

func (st *seasonStats) topAssister(state *models.SeasonState) *Award {
	id, n := leader(st.assists)
	if n == 0 {
		return nil
	}
	return st.award(state, id, float64(n))
}

// SeasonPlayerScore is the composite used to pick the player of the season
func SeasonPlayerScore(mvps int, avgRating float64, goals, assists, tackles, interceptions, saves int, positionBonus float64) float64 {
	return mvpWeight*float64(mvps) +
		ratingWeight*avgRating +
		goalWeight*float64(goals) +
		assistWeight*float64(assists) +
		tackleWeight*float64(tackles) +
		interceptionWeight*float64(interceptions) +
		saveWeight*float64(saves) +
		positionBonus
}

// positionBonus scales from maxPositionBonus for the champions to zero for
// the last-placed club
func positionBonus(rank, n int) float64 {
	if n <= 1 || rank <= 0 {
		return 0
	}
	return maxPositionBonus * float64(n-rank) / float64(n-1)
}

func (st *seasonStats) seasonPlayer(state *models.SeasonState, table []Placing) *Award {
	ranks := make(map[uuid.UUID]int, len(table))
	for _, p := range table {
		ranks[p.ClubID] = p.Rank
	}

	var (
		bestID    uuid.UUID
		bestScore = -1.0
	)
	for _, id := range sortedIDs(st.lines) {
		l := st.lines[id]
		if l.apps == 0 {
			continue
		}
		score := SeasonPlayerScore(l.mvps, l.ratingSum/float64(l.apps), st.goals[id], st.assists[id],
			l.tackles, l.interceptions, l.saves, positionBonus(ranks[l.clubID], len(table)))
		if score > bestScore {
			bestID, bestScore = id, score
		}
	}
	if bestScore < 0 {
		return nil
	}
	return st.award(state, bestID, bestScore)
}

// bestGoalkeeper picks the keeper with the fewest goals conceded among
// those who played at least half as often as the busiest keeper
func (st *seasonStats) bestGoalkeeper(state *models.SeasonState) *Award {
	maxApps := 0
	for _, l := range st.lines {
		if l.position == models.PositionGoalkeeper && l.apps > maxApps {
			maxApps = l.apps
		}
	}
	if maxApps == 0 {
		return nil
	}

	var best *line
	for _, id := range sortedIDs(st.lines) {
		l := st.lines[id]
		if l.position != models.PositionGoalkeeper || l.apps*2 < maxApps {
			continue
		}
		if best == nil || l.conceded < best.conceded || (l.conceded == best.conceded && l.apps > best.apps) {
			best = l
		}
	}
	return st.award(state, best.id, float64(best.conceded))
}

// award resolves a player's name and club from the current rosters,
// falling back to the transfer history for players who left the league
func (st *seasonStats) award(state *models.SeasonState, id uuid.UUID, value float64) *Award {
	a := &Award{PlayerID: id, ClubID: st.lastClub[id], Value: value}
	if club, p := state.FindPlayer(id); p != nil {
		a.PlayerName = p.Name
		if p.Loan == nil {
			a.ClubID = club.ID
		}
	} else {
		for _, rec := range state.TransferHistory {
			if rec.PlayerID == id {
				a.PlayerName = rec.PlayerName
			}
		}
	}
	if c := state.Club(a.ClubID); c != nil {
		a.ClubName = c.Name
	}
	return a
}

func leader(counts map[uuid.UUID]int) (uuid.UUID, int) {
	var (
		bestID uuid.UUID
		best   int
	)
	for _, id := range sortedIDs(counts) {
		if counts[id] > best {
			bestID, best = id, counts[id]
		}
	}
	return bestID, best
}

func sortedIDs[V any](m map[uuid.UUID]V) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}

// streaks computes each club's longest unbeaten and winning runs in week order
func streaks(state *models.SeasonState) []Streak {
	played := make([]*models.Fixture, 0, len(state.Fixtures))
	for i := range state.Fixtures {
		if state.Fixtures[i].Played && state.Fixtures[i].Result != nil {
			played = append(played, &state.Fixtures[i])
		}
	}
	sort.SliceStable(played, func(i, j int) bool { return played[i].Week < played[j].Week })

	out := make([]Streak, 0, len(state.Clubs))
	for i := range state.Clubs {
		club := &state.Clubs[i]
		s := Streak{ClubID: club.ID, ClubName: club.Name}
		unbeaten, winning := 0, 0
		for _, f := range played {
			scored, conceded, ok := f.GoalsFor(club.ID)
			if !ok {
				continue
			}
			if scored >= conceded {
				unbeaten++
			} else {
				unbeaten = 0
			}
			if scored > conceded {
				winning++
			} else {
				winning = 0
			}
			s.Unbeaten = max(s.Unbeaten, unbeaten)
			s.Winning = max(s.Winning, winning)
		}
		out = append(out, s)
	}
	return out
}

type tierRule struct {
	tier    models.ClubTier
	maxRank func(n int) int
	chance  float64
}

var tierRules = []tierRule{
	{tier: models.ClubTierElite, maxRank: func(int) int { return 3 }, chance: 0.6},
	{tier: models.ClubTierHigh, maxRank: func(int) int { return 6 }, chance: 0.5},
	{tier: models.ClubTierMedium, maxRank: func(n int) int { return n / 2 }, chance: 0.5},
	{tier: models.ClubTierLow, maxRank: func(n int) int { return n }, chance: 1},
}

// jobOffers rolls one offer per tier the manager's finish qualifies for
func jobOffers(state *models.SeasonState, rank int, scope roster.Scope) []models.JobOffer {
	var offers []models.JobOffer
	n := len(state.Clubs)
	for _, rule := range tierRules {
		if rank <= 0 || rank > rule.maxRank(n) {
			continue
		}
		if scope.Rng.Float64() >= rule.chance {
			continue
		}
		var candidates []*models.Club
		for i := range state.Clubs {
			c := &state.Clubs[i]
			if c.Tier == rule.tier && c.ID != state.HumanClubID {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		c := candidates[scope.Rng.Intn(len(candidates))]
		offers = append(offers, models.JobOffer{ClubID: c.ID, ClubName: c.Name, Tier: c.Tier})
	}
	return offers
}
