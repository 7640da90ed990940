package models

import (
	"sort"

	"github.com/google/uuid"
)

// Table returns the clubs ranked by points, then goal difference, then
// goals scored. Ties beyond that keep roster order.
func (s *SeasonState) Table() []*Club {
	table := make([]*Club, len(s.Clubs))
	for i := range s.Clubs {
		table[i] = &s.Clubs[i]
	}
	sort.SliceStable(table, func(i, j int) bool {
		a, b := table[i].Standing, table[j].Standing
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference() != b.GoalDifference() {
			return a.GoalDifference() > b.GoalDifference()
		}
		return a.GoalsFor > b.GoalsFor
	})
	return table
}

// Rank returns the 1-based league position of a club, or 0 if unknown
func (s *SeasonState) Rank(clubID uuid.UUID) int {
	for i, c := range s.Table() {
		if c.ID == clubID {
			return i + 1
		}
	}
	return 0
}
