package valuation

import (
	"testing"

	"github.com/mcdev12/touchline/go/internal/models"
)

func TestMarketValue(t *testing.T) {
	tests := []struct {
		name   string
		player models.Player
		want   int64
	}{
		{name: "pivot rating prime age", player: models.Player{Rating: 60, Potential: 60, Age: 26}, want: 1_000_000},
		{name: "veteran", player: models.Player{Rating: 60, Potential: 60, Age: 35}, want: 400_000},
		{name: "young with headroom", player: models.Player{Rating: 60, Potential: 70, Age: 20}, want: 1_560_000},
		{name: "headroom ignored past 24", player: models.Player{Rating: 60, Potential: 80, Age: 27}, want: 1_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MarketValue(&tt.player); got != tt.want {
				t.Fatalf("MarketValue = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMarketValueIncreasesWithRating(t *testing.T) {
	prev := int64(0)
	for rating := 40; rating <= 95; rating += 5 {
		v := MarketValue(&models.Player{Rating: rating, Potential: rating, Age: 27})
		if v <= prev {
			t.Fatalf("rating %d value %d not above %d", rating, v, prev)
		}
		prev = v
	}
}

func TestUpdate(t *testing.T) {
	club := &models.Club{Players: []models.Player{
		{Rating: 60, Potential: 60, Age: 26, MarketValue: 1_000_000, Contract: models.Contract{Wage: 5_000}},
		{Rating: 70, Potential: 70, Age: 26},
	}}

	if got := Update(club); got != 1 {
		t.Fatalf("Update changed %d values, want 1", got)
	}
	if club.Players[0].Contract.Wage != 5_000 {
		t.Fatalf("existing wage overwritten: %d", club.Players[0].Contract.Wage)
	}
	if club.Players[1].Contract.Wage <= 0 {
		t.Fatalf("missing wage not filled")
	}
	if got := Update(club); got != 0 {
		t.Fatalf("second Update changed %d values, want 0", got)
	}
}
