package roster

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/touchline/go/internal/models"
)

const (
	// MinSquad is the smallest legal roster
	MinSquad = 20
	// MaxSeniors is the most players aged 21+ a club may register
	MaxSeniors = 25
)

// ErrBelowFloor is returned when an action would leave a club under MinSquad
var ErrBelowFloor = errors.New("squad would drop below the minimum size")

// YouthGenerator synthesizes academy players on demand
type YouthGenerator interface {
	GenerateYouth(rng *rand.Rand, club *models.Club) models.Player
}

// Enforcer keeps every roster within the legal size bounds
type Enforcer struct {
	youth YouthGenerator
}

// NewEnforcer creates a new roster Enforcer
func NewEnforcer(youth YouthGenerator) *Enforcer {
	return &Enforcer{
		youth: youth,
	}
}

// Scope identifies when and where an enforcement pass runs
type Scope struct {
	Week   int
	Season string
	At     time.Time
	Rng    *rand.Rand
}

// Result lists what an enforcement pass changed
type Result struct {
	Released      []models.TransferRecord
	Promoted      []models.Player
	Notifications []models.Notification
}

// Changed reports whether the pass touched the roster
func (r Result) Changed() bool {
	return len(r.Released) > 0 || len(r.Promoted) > 0
}

// Merge appends other onto r
func (r *Result) Merge(other Result) {
	r.Released = append(r.Released, other.Released...)
	r.Promoted = append(r.Promoted, other.Promoted...)
	r.Notifications = append(r.Notifications, other.Notifications...)
}

// Legal reports whether the club already satisfies both bounds
func Legal(club *models.Club) bool {
	return len(club.Players) >= MinSquad && club.SeniorCount() <= MaxSeniors
}

// CheckDeparture validates that the club can lose one player
func CheckDeparture(club *models.Club) error {
	if len(club.Players)-1 < MinSquad {
		return fmt.Errorf("%w: %s has %d players", ErrBelowFloor, club.Name, len(club.Players))
	}
	return nil
}

// Enforce releases surplus seniors and promotes academy players until the
// club is legal. Applying it to a legal roster changes nothing.
func (e *Enforcer) Enforce(club *models.Club, scope Scope) Result {
	var res Result
	if Legal(club) {
		return res
	}

	if excess := club.SeniorCount() - MaxSeniors; excess > 0 {
		for _, p := range releaseCandidates(club)[:excess] {
			released, _ := club.RemovePlayer(p.ID)
			res.Released = append(res.Released, models.TransferRecord{
				ID:         uuid.New(),
				PlayerID:   released.ID,
				PlayerName: released.Name,
				FromClubID: club.ID,
				ToClubID:   uuid.Nil,
				Type:       models.TransferTypeRelease,
				Week:       scope.Week,
				Season:     scope.Season,
			})
			if club.Human {
				res.Notifications = append(res.Notifications, models.NewNotification(scope.Week, models.SeverityWarning, club.ID, scope.At,
					fmt.Sprintf("%s was released to bring the squad within %d senior players", released.Name, MaxSeniors)))
			}
			if released.Pending != nil {
				res.Notifications = append(res.Notifications, models.NewNotification(scope.Week, models.SeverityWarning, released.Pending.ToClubID, scope.At,
					fmt.Sprintf("%s's agreed move from %s was cancelled because the club released the player", released.Name, club.Name)))
			}
			log.Info().
				Str("club", club.Name).
				Str("player", released.Name).
				Int("rating", released.Rating).
				Msg("released player over senior cap")
		}
	}

	for len(club.Players) < MinSquad {
		if e.youth == nil {
			log.Warn().Str("club", club.Name).Msg("no youth generator configured; roster left below floor")
			break
		}
		youth := e.youth.GenerateYouth(scope.Rng, club)
		club.Players = append(club.Players, youth)
		res.Promoted = append(res.Promoted, youth)
		if club.Human {
			res.Notifications = append(res.Notifications, models.NewNotification(scope.Week, models.SeverityInfo, club.ID, scope.At,
				fmt.Sprintf("%s (%d) was promoted from the youth academy", youth.Name, youth.Age)))
		}
		log.Debug().
			Str("club", club.Name).
			Str("player", youth.Name).
			Msg("promoted academy player to reach squad floor")
	}

	return res
}

// releaseCandidates orders the club's seniors lowest rated first. Loanees
// go last since they belong to another club, and players with an agreed
// move go after everyone else.
func releaseCandidates(club *models.Club) []models.Player {
	var seniors []models.Player
	for _, p := range club.Players {
		if p.IsSenior() {
			seniors = append(seniors, p)
		}
	}
	sort.SliceStable(seniors, func(i, j int) bool {
		a, b := seniors[i], seniors[j]
		if (a.Pending != nil) != (b.Pending != nil) {
			return a.Pending == nil
		}
		if (a.Loan != nil) != (b.Loan != nil) {
			return a.Loan == nil
		}
		if a.Rating != b.Rating {
			return a.Rating < b.Rating
		}
		if a.Age != b.Age {
			return a.Age > b.Age
		}
		return a.ID.String() < b.ID.String()
	})
	return seniors
}
