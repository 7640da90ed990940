package season

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
)

// Schedule builds a double round robin with the circle method. Every club
// meets every other club once at home and once away; with n clubs the
// season lasts 2(n-1) weeks. An odd club count gets a bye each week.
func Schedule(clubIDs []uuid.UUID, rng *rand.Rand) []models.Fixture {
	ids := append([]uuid.UUID(nil), clubIDs...)
	if rng != nil {
		rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	}
	if len(ids)%2 == 1 {
		ids = append(ids, uuid.Nil)
	}
	n := len(ids)
	if n < 2 {
		return nil
	}
	rounds := n - 1

	var fixtures []models.Fixture
	for round := 0; round < rounds; round++ {
		for i := 0; i < n/2; i++ {
			home, away := ids[i], ids[n-1-i]
			if home == uuid.Nil || away == uuid.Nil {
				continue
			}
			// alternate the fixed club's venue so nobody gets a long home run
			if (i == 0 && round%2 == 1) || (i > 0 && i%2 == 1) {
				home, away = away, home
			}
			fixtures = append(fixtures,
				models.Fixture{ID: uuid.New(), Week: round + 1, HomeID: home, AwayID: away},
				models.Fixture{ID: uuid.New(), Week: round + 1 + rounds, HomeID: away, AwayID: home},
			)
		}
		// rotate every slot but the first
		last := ids[n-1]
		copy(ids[2:], ids[1:n-1])
		ids[1] = last
	}
	return fixtures
}
