package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DayLayout is the calendar day format used in routes and filenames
const DayLayout = "2006-01-02"

const isoMillis = "2006-01-02T15:04:05.000Z"

// InvalidDateError reports calendar input outside the accepted ranges
type InvalidDateError struct {
	Input  string
	Reason string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: %s", e.Input, e.Reason)
}

// TimeRange is the half-open interval [Start, End) in UTC
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the range
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// ShiftDays moves the range by whole days. Offsets are fixed, so every
// shifted range is still exactly one business day.
func (r TimeRange) ShiftDays(days int) TimeRange {
	return TimeRange{Start: r.Start.AddDate(0, 0, days), End: r.End.AddDate(0, 0, days)}
}

// NewTimeRange converts a calendar day in a fixed UTC offset into a UTC range.
// Only the field ranges are checked; Feb 30 rolls over like time.Date does.
func NewTimeRange(year, month, day, offsetHours int) (TimeRange, error) {
	input := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if year < 0 {
		return TimeRange{}, &InvalidDateError{Input: input, Reason: "year must not be negative"}
	}
	if month < 1 || month > 12 {
		return TimeRange{}, &InvalidDateError{Input: input, Reason: "month must be within 1-12"}
	}
	if day < 1 || day > 31 {
		return TimeRange{}, &InvalidDateError{Input: input, Reason: "day must be within 1-31"}
	}

	offset := time.Duration(offsetHours) * time.Hour
	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Add(-offset)
	end := time.Date(year, time.Month(month), day+1, 0, 0, 0, 0, time.UTC).Add(-offset)

	return TimeRange{Start: start, End: end}, nil
}

// TimeRangeForDay parses a YYYY-MM-DD string and returns its UTC range
func TimeRangeForDay(day string, offsetHours int) (TimeRange, error) {
	y, m, d, err := ParseDay(day)
	if err != nil {
		return TimeRange{}, err
	}
	return NewTimeRange(y, m, d, offsetHours)
}

// ParseDay splits a YYYY-MM-DD string into its numeric fields without
// checking day-of-month correctness.
func ParseDay(day string) (year, month, dom int, err error) {
	parts := strings.Split(day, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, 0, 0, &InvalidDateError{Input: day, Reason: "expected YYYY-MM-DD"}
	}

	fields := make([]int, 3)
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return 0, 0, 0, &InvalidDateError{Input: day, Reason: "expected YYYY-MM-DD"}
		}
		fields[i] = n
	}

	year, month, dom = fields[0], fields[1], fields[2]
	if month < 1 || month > 12 {
		return 0, 0, 0, &InvalidDateError{Input: day, Reason: "month must be within 1-12"}
	}
	if dom < 1 || dom > 31 {
		return 0, 0, 0, &InvalidDateError{Input: day, Reason: "day must be within 1-31"}
	}
	return year, month, dom, nil
}

// FormatRangeFilter renders the range in the content API filter syntax:
// <field>[greater_than]<start>[and]<field>[less_than]<end>
func FormatRangeFilter(field string, r TimeRange) string {
	return fmt.Sprintf("%s[greater_than]%s[and]%s[less_than]%s",
		field, FormatISO(r.Start), field, FormatISO(r.End))
}

// FormatISO renders t as UTC ISO-8601 with millisecond precision
func FormatISO(t time.Time) string {
	return t.UTC().Format(isoMillis)
}

// Zone returns the fixed location for an hour offset
func Zone(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}
