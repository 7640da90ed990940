// Package content generates the non-simulated parts of the world: academy
// players, names and scouting reports.
package content

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/mcdev12/touchline/go/internal/models"
	"github.com/mcdev12/touchline/go/internal/valuation"
)

const (
	youthMinAge       = 16
	youthMaxAge       = 18
	youthMinRating    = 40
	youthRatingSpread = 16
	maxPotential      = 95
	youthContract     = 3
)

// squadShape is the positional balance the academy tries to restore
var squadShape = map[models.Position]int{
	models.PositionGoalkeeper: 3,
	models.PositionDefender:   7,
	models.PositionMidfielder: 7,
	models.PositionForward:    5,
}

var positionOrder = []models.Position{
	models.PositionGoalkeeper,
	models.PositionDefender,
	models.PositionMidfielder,
	models.PositionForward,
}

// Academy produces youth players for promotion into a senior squad
type Academy struct{}

// NewAcademy creates a new youth Academy
func NewAcademy() *Academy {
	return &Academy{}
}

// GenerateYouth creates a junior player in the position the club is
// shortest of
func (a *Academy) GenerateYouth(rng *rand.Rand, club *models.Club) models.Player {
	rating := youthMinRating + rng.Intn(youthRatingSpread)
	p := models.Player{
		ID:           uuid.New(),
		Name:         PlayerName(rng),
		Position:     neediest(club),
		Age:          youthMinAge + rng.Intn(youthMaxAge-youthMinAge+1),
		Rating:       rating,
		Potential:    min(maxPotential, rating+10+rng.Intn(25)),
		YouthAcademy: true,
	}
	p.MarketValue = valuation.MarketValue(&p)
	p.Contract = models.Contract{Wage: valuation.DefaultWage(p.MarketValue), YearsLeft: youthContract}
	return p
}

// neediest returns the position furthest below its target share
func neediest(club *models.Club) models.Position {
	have := make(map[models.Position]int, len(squadShape))
	if club != nil {
		for i := range club.Players {
			have[club.Players[i].Position]++
		}
	}
	best, gap := models.PositionMidfielder, -1<<31
	for _, pos := range positionOrder {
		if g := squadShape[pos] - have[pos]; g > gap {
			best, gap = pos, g
		}
	}
	return best
}

// Squad builds a full senior squad of size players around a base rating
func Squad(rng *rand.Rand, size, baseRating int) []models.Player {
	club := &models.Club{}
	for len(club.Players) < size {
		rating := clampRating(baseRating - 6 + rng.Intn(13))
		p := models.Player{
			ID:        uuid.New(),
			Name:      PlayerName(rng),
			Position:  neediest(club),
			Age:       models.SeniorAge + rng.Intn(14),
			Rating:    rating,
			Potential: clampRating(rating + rng.Intn(8)),
		}
		p.MarketValue = valuation.MarketValue(&p)
		p.Contract = models.Contract{Wage: valuation.DefaultWage(p.MarketValue), YearsLeft: 1 + rng.Intn(4)}
		club.Players = append(club.Players, p)
	}
	return club.Players
}

func clampRating(r int) int {
	return max(1, min(99, r))
}

var (
	firstNames = []string{
		"Adam", "Bruno", "Callum", "Dario", "Elias", "Felipe", "Gabriel", "Hugo", "Isak", "Jonas",
		"Kai", "Luca", "Mateo", "Nico", "Oscar", "Pablo", "Rafael", "Samir", "Tomas", "Yusuf",
		"Ansel", "Bilal", "Cesar", "Declan", "Emre", "Finn", "Goncalo", "Ivo", "Jules", "Kenji",
	}
	lastNames = []string{
		"Almeida", "Berg", "Costa", "Diallo", "Eriksen", "Fischer", "Garcia", "Hansen", "Ivanov", "Jensen",
		"Kowalski", "Lindqvist", "Mensah", "Novak", "Okafor", "Petrovic", "Quinn", "Rossi", "Silva", "Tanaka",
		"Umar", "Varga", "Walsh", "Yilmaz", "Zielinski", "Baptiste", "Carvalho", "Doherty", "Moreau", "Schmidt",
	}
	clubPrefixes = []string{"Athletic", "Real", "Sporting", "Dynamo", "Racing", "United", "City", "Rovers", "Olympic", "Union"}
	clubTowns    = []string{
		"Ashford", "Brackley", "Carrow", "Dunmore", "Eastvale", "Fairhaven", "Glenmoor", "Harrowgate", "Ironbridge", "Kingsport",
		"Larchmont", "Millbrook", "Northam", "Oakridge", "Port Ellis", "Queensbury", "Redcliffe", "Stonebury", "Thornbury", "Westmarch",
	}
)

// PlayerName draws a random full name
func PlayerName(rng *rand.Rand) string {
	return firstNames[rng.Intn(len(firstNames))] + " " + lastNames[rng.Intn(len(lastNames))]
}

// ClubNames returns n distinct club names
func ClubNames(rng *rand.Rand, n int) []string {
	towns := append([]string(nil), clubTowns...)
	rng.Shuffle(len(towns), func(i, j int) { towns[i], towns[j] = towns[j], towns[i] })
	names := make([]string, n)
	for i := range names {
		town := towns[i%len(towns)]
		if i >= len(towns) {
			town = fmt.Sprintf("%s %d", town, i/len(towns)+1)
		}
		names[i] = town + " " + clubPrefixes[rng.Intn(len(clubPrefixes))]
	}
	return names
}
