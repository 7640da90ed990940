package roster

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
)

type stubYouth struct {
	n int
}

func (s *stubYouth) GenerateYouth(_ *rand.Rand, club *models.Club) models.Player {
	s.n++
	return models.Player{
		ID:           uuid.New(),
		Name:         fmt.Sprintf("Academy %d", s.n),
		Position:     models.PositionMidfielder,
		Age:          17,
		Rating:       50,
		Potential:    70,
		YouthAcademy: true,
	}
}

func squad(seniors, juniors int) *models.Club {
	club := &models.Club{ID: uuid.New(), Name: "Test FC"}
	for i := 0; i < seniors; i++ {
		club.Players = append(club.Players, models.Player{
			ID:     uuid.New(),
			Name:   fmt.Sprintf("Senior %d", i),
			Age:    24,
			Rating: 60 + i,
		})
	}
	for i := 0; i < juniors; i++ {
		club.Players = append(club.Players, models.Player{
			ID:     uuid.New(),
			Name:   fmt.Sprintf("Junior %d", i),
			Age:    19,
			Rating: 55,
		})
	}
	return club
}

func scope() Scope {
	return Scope{Week: 3, Season: "2026/27", At: time.Unix(0, 0), Rng: rand.New(rand.NewSource(1))}
}

func TestEnforceFillsToFloor(t *testing.T) {
	club := squad(10, 5)
	res := NewEnforcer(&stubYouth{}).Enforce(club, scope())

	if got := len(club.Players); got != MinSquad {
		t.Fatalf("roster size = %d, want %d", got, MinSquad)
	}
	if got := len(res.Promoted); got != 5 {
		t.Fatalf("promoted = %d, want 5", got)
	}
	if len(res.Released) != 0 {
		t.Fatalf("released = %d, want 0", len(res.Released))
	}
}

func TestEnforceReleasesLowestRatedSeniors(t *testing.T) {
	club := squad(28, 2)
	lowest := []uuid.UUID{club.Players[0].ID, club.Players[1].ID, club.Players[2].ID}

	res := NewEnforcer(&stubYouth{}).Enforce(club, scope())

	if got := club.SeniorCount(); got != MaxSeniors {
		t.Fatalf("senior count = %d, want %d", got, MaxSeniors)
	}
	if got := len(res.Released); got != 3 {
		t.Fatalf("released = %d, want 3", got)
	}
	for i, rec := range res.Released {
		if rec.PlayerID != lowest[i] {
			t.Fatalf("release %d = %s, want %s", i, rec.PlayerName, lowest[i])
		}
		if rec.Type != models.TransferTypeRelease || rec.ToClubID != uuid.Nil {
			t.Fatalf("release %d recorded as %s to %s, want free release", i, rec.Type, rec.ToClubID)
		}
	}
}

func TestEnforceIsIdempotent(t *testing.T) {
	tests := []struct {
		name             string
		seniors, juniors int
	}{
		{name: "under floor", seniors: 8, juniors: 4},
		{name: "over cap", seniors: 30, juniors: 0},
		{name: "legal", seniors: 22, juniors: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnforcer(&stubYouth{})
			club := squad(tt.seniors, tt.juniors)
			e.Enforce(club, scope())
			once := club.Players
			once = append([]models.Player(nil), once...)

			res := e.Enforce(club, scope())
			if res.Changed() {
				t.Fatalf("second pass changed the roster: %+v", res)
			}
			if diff := cmp.Diff(once, club.Players); diff != "" {
				t.Fatalf("second pass mutated roster (-once +twice):\n%s", diff)
			}
			if !Legal(club) {
				t.Fatalf("club not legal after enforcement: size=%d seniors=%d", len(club.Players), club.SeniorCount())
			}
		})
	}
}

func TestEnforceNotifiesHumanOnly(t *testing.T) {
	cpu := squad(27, 0)
	human := squad(27, 0)
	human.Human = true

	e := NewEnforcer(&stubYouth{})
	if res := e.Enforce(cpu, scope()); len(res.Notifications) != 0 {
		t.Fatalf("cpu club notifications = %d, want 0", len(res.Notifications))
	}
	if res := e.Enforce(human, scope()); len(res.Notifications) != 2 {
		t.Fatalf("human club notifications = %d, want 2", len(res.Notifications))
	}
}

func TestCheckDeparture(t *testing.T) {
	if err := CheckDeparture(squad(20, 0)); !errors.Is(err, ErrBelowFloor) {
		t.Fatalf("CheckDeparture at floor = %v, want ErrBelowFloor", err)
	}
	if err := CheckDeparture(squad(21, 0)); err != nil {
		t.Fatalf("CheckDeparture above floor = %v, want nil", err)
	}
}

func TestEnforceKeepsAgreedMoves(t *testing.T) {
	buyer := uuid.New()
	club := squad(26, 0)
	club.Players[0].Pending = &models.PendingTransfer{FromClubID: club.ID, ToClubID: buyer, TransferDate: 18}
	agreed := club.Players[0].ID
	next := club.Players[1].ID

	res := NewEnforcer(&stubYouth{}).Enforce(club, scope())

	if got := len(res.Released); got != 1 {
		t.Fatalf("released = %d, want 1", got)
	}
	if res.Released[0].PlayerID != next {
		t.Fatalf("released %s, want the lowest rated player without an agreed move", res.Released[0].PlayerName)
	}
	if club.PlayerIndex(agreed) < 0 {
		t.Fatal("player with an agreed move left the squad")
	}
	if len(res.Notifications) != 0 {
		t.Fatalf("notifications = %d, want 0", len(res.Notifications))
	}
}

func TestEnforceNotifiesBuyerWhenAgreedMoveIsReleased(t *testing.T) {
	buyer := uuid.New()
	club := squad(27, 0)
	for i := range club.Players {
		club.Players[i].Pending = &models.PendingTransfer{FromClubID: club.ID, ToClubID: buyer, TransferDate: 18}
	}

	res := NewEnforcer(&stubYouth{}).Enforce(club, scope())

	if got := len(res.Released); got != 2 {
		t.Fatalf("released = %d, want 2", got)
	}
	if got := len(res.Notifications); got != 2 {
		t.Fatalf("notifications = %d, want 2", got)
	}
	for _, n := range res.Notifications {
		if n.ClubID != buyer || n.Severity != models.SeverityWarning {
			t.Fatalf("notification %+v, want a warning to the buyer", n)
		}
	}
}
