package report

import "time"

// Navigation holds the calendar links shown around a dashboard day
type Navigation struct {
	Previous string `json:"previous"`
	Today    string `json:"today"`
	Next     string `json:"next"`
}

// PreviousDay returns the calendar day before day
func PreviousDay(day string) (string, error) {
	return shiftDay(day, -1)
}

// NextDay returns the calendar day after day
func NextDay(day string) (string, error) {
	return shiftDay(day, 1)
}

func shiftDay(day string, delta int) (string, error) {
	y, m, d, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	// Pure calendar arithmetic, no offset involved.
	t := time.Date(y, time.Month(m), d+delta, 0, 0, 0, 0, time.UTC)
	if t.Year() < 0 || t.Year() > 9999 {
		return "", &InvalidDateError{Input: day, Reason: "no calendar day in range"}
	}
	return t.Format(DayLayout), nil
}

// Today returns the current calendar day as seen at the given hour offset
func Today(now time.Time, offsetHours int) string {
	return now.In(Zone(offsetHours)).Format(DayLayout)
}

// NavigationFor builds previous/today/next links for day. A link that would
// leave years 0000-9999 is left empty.
func NavigationFor(day string, now time.Time, offsetHours int) (Navigation, error) {
	if _, _, _, err := ParseDay(day); err != nil {
		return Navigation{}, err
	}
	prev, _ := PreviousDay(day)
	next, _ := NextDay(day)
	return Navigation{
		Previous: prev,
		Today:    Today(now, offsetHours),
		Next:     next,
	}, nil
}
