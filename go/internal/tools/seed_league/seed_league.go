package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/content"
	"github.com/mcdev12/touchline/go/internal/dbconfig"
	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/outbox"
	"github.com/mcdev12/touchline/go/internal/season"
	"github.com/mcdev12/touchline/go/internal/store"
)

// Club mirrors an entry of the optional clubs JSON file
type Club struct {
	Name     string `json:"name"`
	Tier     string `json:"tier"`
	Budget   int64  `json:"budget"`
	Capacity int    `json:"capacity"`
	Human    bool   `json:"human"`
}

func main() {
	ctx := context.Background()
	label := getEnv("SEASON", "2026/27")
	seed, _ := strconv.ParseInt(getEnv("SEED", strconv.FormatInt(time.Now().UnixNano(), 10)), 10, 64)
	rng := rand.New(rand.NewSource(seed))

	// 1) Load the optional club list; without it the league is generated
	var clubs []Club
	if path := os.Getenv("CLUBS_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read JSON: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &clubs); err != nil {
			fmt.Fprintf(os.Stderr, "unmarshal JSON: %v\n", err)
			os.Exit(1)
		}
	}
	size := len(clubs)
	if size == 0 {
		size, _ = strconv.Atoi(getEnv("CLUBS", "20"))
	}

	state := content.League(rng, content.LeagueOptions{
		Label:     label,
		Clubs:     size,
		SquadSize: 23,
		Manager:   getEnv("MANAGER", "Manager"),
	})
	applyClubs(state, clubs)
	ids := make([]uuid.UUID, len(state.Clubs))
	for i := range state.Clubs {
		ids[i] = state.Clubs[i].ID
	}
	state.Fixtures = season.Schedule(ids, rng)

	// 2) Connect using shared dbconfig
	pool, err := dbconfig.NewConfigFromEnv().Connect(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Save the opening snapshot
	pg := store.NewPgStore(pool, outbox.DefaultChannel)
	if err := pg.Migrate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
	if err := pg.Save(ctx, season.Snapshot{State: state}); err != nil {
		fmt.Fprintf(os.Stderr, "save league: %v\n", err)
		os.Exit(1)
	}

	players := 0
	for _, c := range state.Clubs {
		players += len(c.Players)
	}
	fmt.Printf(
		"Seeded season %s (seed %d): %d clubs, %d players, %d fixtures; managing %s\n",
		state.Label, seed, len(state.Clubs), players, len(state.Fixtures), state.HumanClub().Name,
	)
}

// applyClubs overlays the club list onto the generated clubs in order
func applyClubs(state *models.SeasonState, clubs []Club) {
	for i, c := range clubs {
		club := &state.Clubs[i]
		club.Name = c.Name
		if c.Tier != "" {
			club.Tier = models.ClubTier(c.Tier)
		}
		if c.Budget > 0 {
			club.Budget = c.Budget
		}
		if c.Capacity > 0 {
			club.Stadium.Capacity = c.Capacity
		}
		if c.Human {
			state.HumanClub().Human = false
			club.Human = true
			state.HumanClubID = club.ID
		}
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
