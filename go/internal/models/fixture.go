package models

import (
	"github.com/google/uuid"
)

// MatchEventType is the kind of a timed match event
type MatchEventType string

const (
	MatchEventGoal       MatchEventType = "GOAL"
	MatchEventYellowCard MatchEventType = "YELLOW"
	MatchEventRedCard    MatchEventType = "RED"
)

// Fixture is a scheduled match. It becomes played exactly once.
type Fixture struct {
	ID     uuid.UUID    `json:"id" yaml:"id"`
	Week   int          `json:"week" yaml:"week"`
	HomeID uuid.UUID    `json:"home_id" yaml:"home_id"`
	AwayID uuid.UUID    `json:"away_id" yaml:"away_id"`
	Played bool         `json:"played" yaml:"played"`
	Result *MatchResult `json:"result,omitempty" yaml:"result,omitempty"`
}

// MatchResult is produced by the match simulator for a fixture
type MatchResult struct {
	HomeGoals    int           `json:"home_goals" yaml:"home_goals"`
	AwayGoals    int           `json:"away_goals" yaml:"away_goals"`
	Events       []MatchEvent  `json:"events,omitempty" yaml:"events,omitempty"`
	Performances []Performance `json:"performances,omitempty" yaml:"performances,omitempty"`
}

// MatchEvent is a goal or card. AssistID is uuid.Nil when unassisted.
type MatchEvent struct {
	Minute   int            `json:"minute" yaml:"minute"`
	Type     MatchEventType `json:"type" yaml:"type"`
	ClubID   uuid.UUID      `json:"club_id" yaml:"club_id"`
	PlayerID uuid.UUID      `json:"player_id" yaml:"player_id"`
	AssistID uuid.UUID      `json:"assist_id" yaml:"assist_id"`
}

// Performance is one player's match record
type Performance struct {
	PlayerID      uuid.UUID `json:"player_id" yaml:"player_id"`
	ClubID        uuid.UUID `json:"club_id" yaml:"club_id"`
	Position      Position  `json:"position" yaml:"position"`
	Rating        float64   `json:"rating" yaml:"rating"`
	Goals         int       `json:"goals" yaml:"goals"`
	Assists       int       `json:"assists" yaml:"assists"`
	Shots         int       `json:"shots" yaml:"shots"`
	Passes        int       `json:"passes" yaml:"passes"`
	PassAccuracy  float64   `json:"pass_accuracy" yaml:"pass_accuracy"`
	Tackles       int       `json:"tackles" yaml:"tackles"`
	Interceptions int       `json:"interceptions" yaml:"interceptions"`
	Saves         int       `json:"saves" yaml:"saves"`
	Minutes       int       `json:"minutes" yaml:"minutes"`
}

// GoalsFor returns the goals scored by the given club in this result
func (f *Fixture) GoalsFor(clubID uuid.UUID) (scored, conceded int, ok bool) {
	if f.Result == nil {
		return 0, 0, false
	}
	switch clubID {
	case f.HomeID:
		return f.Result.HomeGoals, f.Result.AwayGoals, true
	case f.AwayID:
		return f.Result.AwayGoals, f.Result.HomeGoals, true
	}
	return 0, 0, false
}

// Involves reports whether the club plays in this fixture
func (f *Fixture) Involves(clubID uuid.UUID) bool {
	return f.HomeID == clubID || f.AwayID == clubID
}

func (f Fixture) clone() Fixture {
	out := f
	if f.Result != nil {
		r := *f.Result
		if f.Result.Events != nil {
			r.Events = append([]MatchEvent(nil), f.Result.Events...)
		}
		if f.Result.Performances != nil {
			r.Performances = append([]Performance(nil), f.Result.Performances...)
		}
		out.Result = &r
	}
	return out
}
