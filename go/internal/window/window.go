// Package window decides when transfers may execute immediately.
//
// The summer window covers weeks 1 to 4. The winter window is the two
// weeks ending at the season midpoint, floor(totalWeeks/2). Every function
// here is pure so callers can plan deferred transfers against it.
package window

const (
	summerLength = 4
	winterLength = 2
)

// Midpoint returns the mid-season week
func Midpoint(totalWeeks int) int {
	return totalWeeks / 2
}

// WinterStart returns the first week of the winter window
func WinterStart(totalWeeks int) int {
	return Midpoint(totalWeeks) - winterLength + 1
}

// IsSummer reports whether week falls in the summer window
func IsSummer(week int) bool {
	return week >= 1 && week <= summerLength
}

// IsWinter reports whether week falls in the winter window
func IsWinter(week, totalWeeks int) bool {
	if totalWeeks <= 0 {
		return false
	}
	mid := Midpoint(totalWeeks)
	return week >= WinterStart(totalWeeks) && week <= mid
}

// IsOpen reports whether transfers may execute immediately in week
func IsOpen(week, totalWeeks int) bool {
	return IsSummer(week) || IsWinter(week, totalWeeks)
}

// IsClosing reports whether week is the final open week of a window
func IsClosing(week, totalWeeks int) bool {
	return IsOpen(week, totalWeeks) && !IsOpen(week+1, totalWeeks)
}

// NextOpenWeek returns the first open week strictly after week in the
// same season. ok is false when no window opens again this season, in
// which case the next season's week 1 is the answer.
func NextOpenWeek(week, totalWeeks int) (next int, ok bool) {
	for w := week + 1; w <= totalWeeks; w++ {
		if IsOpen(w, totalWeeks) {
			return w, true
		}
	}
	return 1, false
}
