package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeasonState is the whole simulated world. It owns every club, and
// through them every player. CurrentWeek is the last week entered by a tick.
type SeasonState struct {
	Label       string    `json:"label" yaml:"label"`
	CurrentWeek int       `json:"current_week" yaml:"current_week"`
	HumanClubID uuid.UUID `json:"human_club_id" yaml:"human_club_id"`
	Clubs       []Club    `json:"clubs" yaml:"clubs"`
	Fixtures    []Fixture `json:"fixtures" yaml:"fixtures"`

	TransferHistory []TransferRecord `json:"transfer_history,omitempty" yaml:"transfer_history,omitempty"`
	Favorites       []uuid.UUID      `json:"favorites,omitempty" yaml:"favorites,omitempty"`
	Mailbox         []MailMessage    `json:"mailbox,omitempty" yaml:"mailbox,omitempty"`
	Achievements    []Achievement    `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	CareerHistory   []CareerEntry    `json:"career_history,omitempty" yaml:"career_history,omitempty"`
	Manager         Manager          `json:"manager" yaml:"manager"`

	MidSeasonCheckDone bool `json:"mid_season_check_done" yaml:"mid_season_check_done"`
	SeasonOver         bool `json:"season_over" yaml:"season_over"`
}

// Manager is the human manager's career state
type Manager struct {
	Name        string     `json:"name" yaml:"name"`
	DebtStrikes int        `json:"debt_strikes" yaml:"debt_strikes"`
	GameOver    bool       `json:"game_over" yaml:"game_over"`
	JobOffers   []JobOffer `json:"job_offers,omitempty" yaml:"job_offers,omitempty"`
}

// JobOffer is an end-of-season offer to manage another club
type JobOffer struct {
	ClubID   uuid.UUID `json:"club_id" yaml:"club_id"`
	ClubName string    `json:"club_name" yaml:"club_name"`
	Tier     ClubTier  `json:"tier" yaml:"tier"`
}

// MailMessage is an inbox item for the human manager
type MailMessage struct {
	ID      uuid.UUID `json:"id" yaml:"id"`
	Week    int       `json:"week" yaml:"week"`
	Subject string    `json:"subject" yaml:"subject"`
	Body    string    `json:"body" yaml:"body"`
	Read    bool      `json:"read" yaml:"read"`
	At      time.Time `json:"at" yaml:"at"`
}

// Achievement is a trophy or milestone earned by the human manager
type Achievement struct {
	Name   string `json:"name" yaml:"name"`
	Season string `json:"season" yaml:"season"`
}

// CareerEntry summarises one season of the human manager's career
type CareerEntry struct {
	Season   string   `json:"season" yaml:"season"`
	ClubName string   `json:"club_name" yaml:"club_name"`
	Rank     int      `json:"rank" yaml:"rank"`
	Points   int      `json:"points" yaml:"points"`
	Trophies []string `json:"trophies,omitempty" yaml:"trophies,omitempty"`
}

// TotalWeeks returns the highest fixture week of the season
func (s *SeasonState) TotalWeeks() int {
	total := 0
	for i := range s.Fixtures {
		if s.Fixtures[i].Week > total {
			total = s.Fixtures[i].Week
		}
	}
	return total
}

// Club returns a pointer to the club with the given id, or nil
func (s *SeasonState) Club(id uuid.UUID) *Club {
	for i := range s.Clubs {
		if s.Clubs[i].ID == id {
			return &s.Clubs[i]
		}
	}
	return nil
}

// HumanClub returns the human-managed club, or nil
func (s *SeasonState) HumanClub() *Club {
	return s.Club(s.HumanClubID)
}

// FindPlayer locates a player and the club that owns it
func (s *SeasonState) FindPlayer(id uuid.UUID) (*Club, *Player) {
	for i := range s.Clubs {
		if idx := s.Clubs[i].PlayerIndex(id); idx >= 0 {
			return &s.Clubs[i], &s.Clubs[i].Players[idx]
		}
	}
	return nil, nil
}

// FixturesForWeek returns pointers to the fixtures scheduled in a week
func (s *SeasonState) FixturesForWeek(week int) []*Fixture {
	var out []*Fixture
	for i := range s.Fixtures {
		if s.Fixtures[i].Week == week {
			out = append(out, &s.Fixtures[i])
		}
	}
	return out
}

// Clone returns a deep copy that shares no mutable memory with s
func (s *SeasonState) Clone() *SeasonState {
	out := *s
	if s.Clubs != nil {
		out.Clubs = make([]Club, len(s.Clubs))
		for i, c := range s.Clubs {
			out.Clubs[i] = c.clone()
		}
	}
	if s.Fixtures != nil {
		out.Fixtures = make([]Fixture, len(s.Fixtures))
		for i, f := range s.Fixtures {
			out.Fixtures[i] = f.clone()
		}
	}
	if s.TransferHistory != nil {
		out.TransferHistory = append([]TransferRecord(nil), s.TransferHistory...)
	}
	if s.Favorites != nil {
		out.Favorites = append([]uuid.UUID(nil), s.Favorites...)
	}
	if s.Mailbox != nil {
		out.Mailbox = append([]MailMessage(nil), s.Mailbox...)
	}
	if s.Achievements != nil {
		out.Achievements = append([]Achievement(nil), s.Achievements...)
	}
	if s.CareerHistory != nil {
		out.CareerHistory = make([]CareerEntry, len(s.CareerHistory))
		for i, e := range s.CareerHistory {
			e.Trophies = append([]string(nil), e.Trophies...)
			out.CareerHistory[i] = e
		}
	}
	if s.Manager.JobOffers != nil {
		out.Manager.JobOffers = append([]JobOffer(nil), s.Manager.JobOffers...)
	}
	return &out
}

// NextSeasonLabel derives the following season's label. Labels of the form
// "2026/27" roll both years forward; anything else gets a "+1" suffix.
func NextSeasonLabel(label string) string {
	var start, end int
	if n, err := fmt.Sscanf(label, "%d/%d", &start, &end); err == nil && n == 2 {
		return fmt.Sprintf("%d/%02d", start+1, (end+1)%100)
	}
	return label + "+1"
}
