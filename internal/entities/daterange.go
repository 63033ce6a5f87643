package entities

import "time"

const dayFormat = "2006-01-02"

// DateRange holds a guest's check-in/check-out selection while a booking
// dialog is open. Zero values mean that bound has not been chosen yet.
// When both bounds are set, Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD day string.
func ParseDay(s string) (time.Time, error) {
	return time.Parse(dayFormat, s)
}

// Select applies one calendar-day click to the range. A click with no start
// set, or after a complete range, begins a new range. A click before the
// current start becomes the new start and the old start is demoted to end.
// Any other click sets the end. Clicking the same day twice yields a
// zero-night range that downstream validation rejects.
func (r DateRange) Select(day time.Time) DateRange {
	d := Day(day)
	if r.Start.IsZero() || r.Complete() {
		return DateRange{Start: d}
	}
	if d.Before(r.Start) {
		return DateRange{Start: d, End: r.Start}
	}
	return DateRange{Start: r.Start, End: d}
}

// Complete reports whether both bounds are chosen.
func (r DateRange) Complete() bool {
	return !r.Start.IsZero() && !r.End.IsZero()
}

// Nights is the number of nights between check-in and check-out. Anything
// below 1 is not bookable.
func (r DateRange) Nights() int {
	if !r.Complete() {
		return 0
	}
	return int(Day(r.End).Sub(Day(r.Start)).Hours() / 24)
}

// Days expands the range into the occupied day strings. The check-out day is
// excluded: a stay occupies nights, not days.
func (r DateRange) Days() []string {
	n := r.Nights()
	if n <= 0 {
		return nil
	}
	days := make([]string, 0, n)
	end := Day(r.End)
	for d := Day(r.Start); d.Before(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayFormat))
	}
	return days
}

// DaysUntilStart counts whole calendar days from now's day to the check-in
// day. Negative when check-in is in the past.
func (r DateRange) DaysUntilStart(now time.Time) int {
	return int(Day(r.Start).Sub(Day(now)).Hours() / 24)
}

// CheckInDate and CheckOutDate render the bounds as wire day strings.
func (r DateRange) CheckInDate() string  { return r.Start.Format(dayFormat) }
func (r DateRange) CheckOutDate() string { return r.End.Format(dayFormat) }
