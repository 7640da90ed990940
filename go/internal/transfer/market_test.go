package transfer

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/roster"
)

type stubYouth struct{}

func (stubYouth) GenerateYouth(_ *rand.Rand, _ *models.Club) models.Player {
	return models.Player{ID: uuid.New(), Name: "Academy", Age: 17, Rating: 48, Potential: 72, YouthAcademy: true}
}

func newMarket() *Market {
	return NewMarket(roster.NewEnforcer(stubYouth{}))
}

func newClub(name string, size int, budget int64) models.Club {
	club := models.Club{ID: uuid.New(), Name: name, Budget: budget}
	for i := 0; i < size; i++ {
		club.Players = append(club.Players, models.Player{
			ID:          uuid.New(),
			Name:        fmt.Sprintf("%s %d", name, i),
			Age:         22 + i%10,
			Rating:      60 + i%15,
			Potential:   70 + i%10,
			MarketValue: 4_000_000 + int64(i)*100_000,
			Contract:    models.Contract{Wage: 10_000, YearsLeft: 2},
		})
	}
	return club
}

// newState builds a 38-week season with the human club first
func newState(clubs ...models.Club) *models.SeasonState {
	clubs[0].Human = true
	return &models.SeasonState{
		Label:       "2026/27",
		HumanClubID: clubs[0].ID,
		Clubs:       clubs,
		Fixtures: []models.Fixture{
			{ID: uuid.New(), Week: 1, HomeID: clubs[0].ID, AwayID: clubs[1].ID},
			{ID: uuid.New(), Week: 38, HomeID: clubs[1].ID, AwayID: clubs[0].ID},
		},
	}
}

func scopeAt(week int) Scope {
	return Scope{Week: week, Season: "2026/27", At: time.Unix(0, 0), Rng: rand.New(rand.NewSource(7))}
}

func addOffer(state *models.SeasonState, playerID uuid.UUID, from *models.Club, fee int64) uuid.UUID {
	_, p := state.FindPlayer(playerID)
	offer := models.TransferOffer{
		ID:           uuid.New(),
		FromClubID:   from.ID,
		FromClubName: from.Name,
		Fee:          fee,
		AnchorFee:    fee,
		Type:         models.TransferTypeTransfer,
		Status:       models.OfferStatusPending,
		ExpiryWeek:   30,
	}
	p.Offers = append(p.Offers, offer, models.TransferOffer{
		ID: uuid.New(), FromClubID: uuid.New(), Fee: 1, Status: models.OfferStatusPending, ExpiryWeek: 30,
	})
	return offer.ID
}

func owners(state *models.SeasonState, playerID uuid.UUID) int {
	n := 0
	for i := range state.Clubs {
		if state.Clubs[i].PlayerIndex(playerID) >= 0 {
			n++
		}
	}
	return n
}

func TestAcceptOfferOpenWindow(t *testing.T) {
	state := newState(newClub("Home", 22, 20_000_000), newClub("Buyer", 22, 10_000_000))
	seller, buyer := &state.Clubs[0], &state.Clubs[1]
	playerID := seller.Players[0].ID
	offerID := addOffer(state, playerID, buyer, 5_000_000)

	if _, err := newMarket().AcceptOffer(state, playerID, offerID, scopeAt(2)); err != nil {
		t.Fatalf("AcceptOffer: %v", err)
	}

	if buyer.Budget != 5_000_000 {
		t.Fatalf("buyer budget = %d, want 5000000", buyer.Budget)
	}
	if seller.Budget != 25_000_000 {
		t.Fatalf("seller budget = %d, want 25000000", seller.Budget)
	}
	if buyer.PlayerIndex(playerID) < 0 || seller.PlayerIndex(playerID) >= 0 {
		t.Fatalf("player not moved to buyer")
	}
	if got := owners(state, playerID); got != 1 {
		t.Fatalf("player owned by %d clubs, want 1", got)
	}
	_, p := state.FindPlayer(playerID)
	if len(p.Offers) != 0 {
		t.Fatalf("offers left on player: %d", len(p.Offers))
	}
	if len(state.TransferHistory) != 1 || state.TransferHistory[0].Fee != 5_000_000 {
		t.Fatalf("history = %+v, want one 5000000 record", state.TransferHistory)
	}
}

func TestAcceptOfferClosedWindowDefers(t *testing.T) {
	state := newState(newClub("Home", 22, 20_000_000), newClub("Buyer", 22, 10_000_000))
	buyer := &state.Clubs[1]
	playerID := state.Clubs[0].Players[3].ID
	offerID := addOffer(state, playerID, buyer, 5_000_000)
	m := newMarket()

	if _, err := m.AcceptOffer(state, playerID, offerID, scopeAt(10)); err != nil {
		t.Fatalf("AcceptOffer: %v", err)
	}
	_, p := state.FindPlayer(playerID)
	if p.Pending == nil || p.Pending.TransferDate != 18 || p.Pending.TransferSeason != "2026/27" {
		t.Fatalf("pending = %+v, want transfer date 18 this season", p.Pending)
	}
	if len(p.Offers) != 0 {
		t.Fatalf("offers not purged: %d", len(p.Offers))
	}
	if buyer.Budget != 10_000_000 {
		t.Fatalf("budget moved before the window opened: %d", buyer.Budget)
	}

	if res := m.ResolvePending(state, scopeAt(17)); len(res.Records) != 0 {
		t.Fatalf("resolved before its date: %+v", res.Records)
	}
	res := m.ResolvePending(state, scopeAt(18))
	if len(res.Records) != 1 {
		t.Fatalf("resolved %d transfers at week 18, want 1", len(res.Records))
	}
	if buyer.PlayerIndex(playerID) < 0 || buyer.Budget != 5_000_000 {
		t.Fatalf("transfer not completed: in buyer=%v budget=%d", buyer.PlayerIndex(playerID) >= 0, buyer.Budget)
	}
}

func TestAcceptOfferAfterWinterDefersToNextSeason(t *testing.T) {
	state := newState(newClub("Home", 22, 0), newClub("Buyer", 22, 10_000_000))
	playerID := state.Clubs[0].Players[0].ID
	offerID := addOffer(state, playerID, &state.Clubs[1], 1_000_000)

	if _, err := newMarket().AcceptOffer(state, playerID, offerID, scopeAt(25)); err != nil {
		t.Fatalf("AcceptOffer: %v", err)
	}
	_, p := state.FindPlayer(playerID)
	if p.Pending.TransferDate != 1 || p.Pending.TransferSeason != "2027/28" {
		t.Fatalf("pending = %+v, want week 1 of 2027/28", p.Pending)
	}
}

func TestAcceptOfferBelowFloorLeavesStateUntouched(t *testing.T) {
	state := newState(newClub("Home", roster.MinSquad, 0), newClub("Buyer", 22, 10_000_000))
	playerID := state.Clubs[0].Players[0].ID
	offerID := addOffer(state, playerID, &state.Clubs[1], 5_000_000)
	before := state.Clone()

	res, err := newMarket().AcceptOffer(state, playerID, offerID, scopeAt(2))
	if !errors.Is(err, roster.ErrBelowFloor) {
		t.Fatalf("AcceptOffer error = %v, want ErrBelowFloor", err)
	}
	if len(res.Notifications) != 1 || res.Notifications[0].Severity != models.SeverityInfo {
		t.Fatalf("notifications = %+v, want one info notification", res.Notifications)
	}
	if diff := cmp.Diff(before, state); diff != "" {
		t.Fatalf("state mutated (-before +after):\n%s", diff)
	}
}

func TestResolvePendingCancelsBelowFloor(t *testing.T) {
	state := newState(newClub("Home", 25, 50_000_000), newClub("Seller", roster.MinSquad, 0))
	seller := &state.Clubs[1]
	seller.Players[0].Pending = &models.PendingTransfer{
		FromClubID:     seller.ID,
		ToClubID:       state.Clubs[0].ID,
		Fee:            3_000_000,
		Type:           models.TransferTypeTransfer,
		TransferDate:   18,
		TransferSeason: "2026/27",
	}

	res := newMarket().ResolvePending(state, scopeAt(18))
	if len(res.Records) != 0 {
		t.Fatalf("transfer executed below floor")
	}
	if seller.Players[0].Pending != nil {
		t.Fatalf("pending state not cleared")
	}
	if len(res.Notifications) != 1 || res.Notifications[0].Severity != models.SeverityWarning {
		t.Fatalf("notifications = %+v, want one warning", res.Notifications)
	}
}

func TestBuy(t *testing.T) {
	tests := []struct {
		name    string
		fee     int64
		budget  int64
		week    int
		wantErr error
		moved   bool
	}{
		{name: "below asking", fee: 4_000_000, budget: 50_000_000, week: 2, wantErr: ErrBidTooLow},
		{name: "cannot afford", fee: 9_000_000, budget: 1_000_000, week: 2, wantErr: ErrInsufficientFunds},
		{name: "open window", fee: 9_000_000, budget: 50_000_000, week: 2, moved: true},
		{name: "closed window", fee: 9_000_000, budget: 50_000_000, week: 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := newState(newClub("Home", 22, tt.budget), newClub("Seller", 22, 0))
			target := state.Clubs[1].Players[5].ID

			_, err := newMarket().Buy(state, target, tt.fee, scopeAt(tt.week))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Buy error = %v, want %v", err, tt.wantErr)
			}
			if got := state.Clubs[0].PlayerIndex(target) >= 0; got != tt.moved {
				t.Fatalf("player at human club = %v, want %v", got, tt.moved)
			}
			if tt.moved && state.Clubs[0].Budget != tt.budget-tt.fee {
				t.Fatalf("human budget = %d, want %d", state.Clubs[0].Budget, tt.budget-tt.fee)
			}
		})
	}
}

func TestRelease(t *testing.T) {
	state := newState(newClub("Home", 21, 0), newClub("Other", 22, 0))
	m := newMarket()
	first, second := state.Clubs[0].Players[0].ID, state.Clubs[0].Players[1].ID

	if _, err := m.Release(state, first, scopeAt(5)); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if owners(state, first) != 0 {
		t.Fatalf("released player still rostered")
	}
	if _, err := m.Release(state, second, scopeAt(5)); !errors.Is(err, roster.ErrBelowFloor) {
		t.Fatalf("second Release = %v, want ErrBelowFloor", err)
	}
	if len(state.TransferHistory) != 1 || state.TransferHistory[0].ToClubID != uuid.Nil {
		t.Fatalf("history = %+v, want one release record", state.TransferHistory)
	}
}

func TestRunCPUConservesMoneyAndOwnership(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		state := newState(
			newClub("Home", 22, 10_000_000),
			newClub("A", 24, 400_000_000),
			newClub("B", 23, 300_000_000),
			newClub("C", 22, 20_000_000),
			newClub("D", 19, 80_000_000),
		)
		var total int64
		ids := map[uuid.UUID]bool{}
		for _, c := range state.Clubs {
			total += c.Budget
			for _, p := range c.Players {
				ids[p.ID] = true
			}
		}

		scope := scopeAt(2)
		scope.Rng = rand.New(rand.NewSource(seed))
		res := newMarket().RunCPU(state, scope)

		var after int64
		for _, c := range state.Clubs {
			after += c.Budget
			if c.Human && len(c.Players) != 22 {
				t.Fatalf("seed %d: cpu ai touched the human roster", seed)
			}
		}
		if after != total {
			t.Fatalf("seed %d: total budget %d, want %d", seed, after, total)
		}
		for id := range ids {
			if got := owners(state, id); got != 1 {
				t.Fatalf("seed %d: player %s owned by %d clubs", seed, id, got)
			}
		}
		for _, rec := range res.Records {
			if rec.FromClubID == state.Clubs[0].ID || rec.ToClubID == state.Clubs[0].ID {
				t.Fatalf("seed %d: human club in cpu transfer", seed)
			}
		}
	}
}

func TestGenerateOffersCapsOpenOffers(t *testing.T) {
	state := newState(newClub("Home", 22, 0), newClub("A", 22, 900_000_000), newClub("B", 22, 900_000_000),
		newClub("C", 22, 900_000_000), newClub("D", 22, 900_000_000))
	state.Clubs[0].Players[0].OnTransferList = true
	m := newMarket()
	scope := scopeAt(6)

	for i := 0; i < 60; i++ {
		m.GenerateOffers(state, scope)
	}
	p := state.Clubs[0].Players[0]
	if got := len(p.OpenOffers()); got != maxOpenOffers {
		t.Fatalf("open offers = %d, want %d", got, maxOpenOffers)
	}
	for _, o := range p.Offers {
		if o.AnchorFee < o.Fee || o.ExpiryWeek != 9 {
			t.Fatalf("offer %+v: anchor below fee or wrong expiry", o)
		}
	}
	if len(state.Clubs[0].Players[1].Offers) != 0 {
		t.Fatalf("unlisted player received offers")
	}
}

func TestAffordable(t *testing.T) {
	tests := []struct {
		budget, fee int64
		want        bool
	}{
		{budget: 10_000_000, fee: 5_000_000, want: true},
		{budget: 10_000_000, fee: 10_000_000, want: true},
		{budget: 10_000_000, fee: 10_000_001, want: false},
		{budget: -1, fee: 1, want: false},
	}
	for _, tt := range tests {
		if got := Affordable(tt.budget, tt.fee); got != tt.want {
			t.Fatalf("Affordable(%d, %d) = %v, want %v", tt.budget, tt.fee, got, tt.want)
		}
	}
}
