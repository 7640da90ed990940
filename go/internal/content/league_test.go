package content

import (
	"math/rand"
	"testing"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
)

func TestLeague(t *testing.T) {
	state := League(rand.New(rand.NewSource(5)), LeagueOptions{
		Label:     "2026/27",
		Clubs:     20,
		SquadSize: 22,
		HumanClub: "Touchline Town",
		Manager:   "Alex",
	})

	if len(state.Clubs) != 20 {
		t.Fatalf("clubs = %d, want 20", len(state.Clubs))
	}
	human := state.HumanClub()
	if human == nil || human.Name != "Touchline Town" || !human.Human {
		t.Fatalf("human club = %+v", human)
	}

	tiers := map[models.ClubTier]int{}
	for _, c := range state.Clubs {
		if len(c.Players) != 22 || len(c.Players) < roster.MinSquad {
			t.Fatalf("%s has %d players", c.Name, len(c.Players))
		}
		if len(c.Rivals) != 1 {
			t.Fatalf("%s has %d rivals", c.Name, len(c.Rivals))
		}
		rival := state.Club(c.Rivals[0])
		if rival == nil || !rival.IsRival(c.ID) {
			t.Fatalf("rivalry of %s is not mutual", c.Name)
		}
		if c.Budget <= 0 || c.Stadium.Capacity <= 0 {
			t.Fatalf("%s has budget %d capacity %d", c.Name, c.Budget, c.Stadium.Capacity)
		}
		tiers[c.Tier]++
	}
	want := map[models.ClubTier]int{
		models.ClubTierElite:  2,
		models.ClubTierHigh:   4,
		models.ClubTierMedium: 8,
		models.ClubTierLow:    6,
	}
	for tier, n := range want {
		if tiers[tier] != n {
			t.Fatalf("%s clubs = %d, want %d", tier, tiers[tier], n)
		}
	}
	if state.Clubs[0].Budget <= state.Clubs[19].Budget {
		t.Fatalf("strongest club is not the richest")
	}
}
