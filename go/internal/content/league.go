package content

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
)

const (
	minBaseRating   = 56
	maxBaseRating   = 80
	budgetPerRating = 2_500_000
	seatsPerRating  = 1_200
	minCapacity     = 8_000
	baseTicketPrice = 25
)

// LeagueOptions shapes a freshly generated league
type LeagueOptions struct {
	Label     string
	Clubs     int
	SquadSize int
	// HumanClub renames the club handed to the human; empty keeps its name
	HumanClub string
	Manager   string
}

// League generates a season with no fixtures. Clubs are spread from
// strong to weak, tiered by strength, and paired off as rivals. The human
// gets a mid-table club.
func League(rng *rand.Rand, opts LeagueOptions) *models.SeasonState {
	state := &models.SeasonState{
		Label:   opts.Label,
		Manager: models.Manager{Name: opts.Manager},
	}
	names := ClubNames(rng, opts.Clubs)
	for i, name := range names {
		base := maxBaseRating
		if opts.Clubs > 1 {
			base = maxBaseRating - i*(maxBaseRating-minBaseRating)/(opts.Clubs-1)
		}
		state.Clubs = append(state.Clubs, models.Club{
			ID:      uuid.New(),
			Name:    name,
			Tier:    tierFor(i, opts.Clubs),
			Budget:  int64(base-minBaseRating+4) * budgetPerRating,
			Players: Squad(rng, opts.SquadSize, base),
			Fans:    models.Fans{Mood: 50},
			Stadium: models.Stadium{
				Capacity:    minCapacity + (base-minBaseRating)*seatsPerRating + rng.Intn(5)*1_000,
				TicketPrice: int64(baseTicketPrice + (base-minBaseRating)/2),
			},
		})
	}

	pairRivals(rng, state.Clubs)

	human := &state.Clubs[len(state.Clubs)/2]
	human.Human = true
	if opts.HumanClub != "" {
		human.Name = opts.HumanClub
	}
	state.HumanClubID = human.ID
	return state
}

// tierFor ranks the top tenth as elite, the next fifth high and the next
// two fifths medium
func tierFor(rank, n int) models.ClubTier {
	switch pct := float64(rank) / float64(max(n, 1)); {
	case pct < 0.1:
		return models.ClubTierElite
	case pct < 0.3:
		return models.ClubTierHigh
	case pct < 0.7:
		return models.ClubTierMedium
	default:
		return models.ClubTierLow
	}
}

func pairRivals(rng *rand.Rand, clubs []models.Club) {
	order := rng.Perm(len(clubs))
	for i := 0; i+1 < len(order); i += 2 {
		a, b := &clubs[order[i]], &clubs[order[i+1]]
		a.Rivals = append(a.Rivals, b.ID)
		b.Rivals = append(b.Rivals, a.ID)
	}
}
