package streak

import "time"

// Day is a calendar day with the time-of-day stripped. Completion dates are
// normalized to this before any comparison so timezone offsets and
// sub-day precision never leak into streak arithmetic.
type Day struct {
	Year  int
	Month time.Month
	Date  int
}

func DayOf(t time.Time) Day {
	year, month, date := t.Date()
	return Day{Year: year, Month: month, Date: date}
}

// Prev returns the previous calendar day, rolling over month and year
// boundaries via time.Date normalization.
func (d Day) Prev() Day {
	return DayOf(time.Date(d.Year, d.Month, d.Date-1, 0, 0, 0, 0, time.UTC))
}

func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Date, 0, 0, 0, 0, time.UTC)
}

func (d Day) String() string {
	return d.Time().Format("2006-01-02")
}

// ParseDay accepts the formats completion dates are stored in: RFC 3339
// timestamps or bare YYYY-MM-DD dates. Anything else reports ok=false and the
// caller treats the entry as absent rather than failing.
func ParseDay(raw string) (Day, bool) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return DayOf(t), true
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return DayOf(t), true
	}
	return Day{}, false
}

// DaySet normalizes a slice of raw completion dates into a deduplicated set of
// calendar days, skipping unparseable entries.
func DaySet(dates []string) map[Day]struct{} {
	set := make(map[Day]struct{}, len(dates))
	for _, raw := range dates {
		if day, ok := ParseDay(raw); ok {
			set[day] = struct{}{}
		}
	}
	return set
}

// Compute returns the length of the unbroken run of completed calendar days
// ending at the day of now. The walk is anchored at today: a habit not yet
// completed today has a streak of 0 regardless of any earlier run. Duplicate
// entries for the same day count once, and entries after today never match
// the backward walk.
func Compute(dates []string, now time.Time) int {
	set := DaySet(dates)
	if len(set) == 0 {
		return 0
	}

	count := 0
	cursor := DayOf(now)
	for {
		if _, ok := set[cursor]; !ok {
			return count
		}
		count++
		cursor = cursor.Prev()
	}
}

// Contains reports whether the given calendar day appears in the raw
// completion dates.
func Contains(dates []string, day Day) bool {
	_, ok := DaySet(dates)[day]
	return ok
}

// LongestRun returns the longest run of consecutive completed days anywhere in
// the history, not just the one ending today. Used for all-time stats.
func LongestRun(dates []string) int {
	set := DaySet(dates)

	longest := 0
	for day := range set {
		// Only start counting from the first day of a run.
		if _, ok := set[day.Prev()]; ok {
			continue
		}
		length := 0
		for cursor := day; ; cursor = next(cursor) {
			if _, ok := set[cursor]; !ok {
				break
			}
			length++
		}
		if length > longest {
			longest = length
		}
	}
	return longest
}

func next(d Day) Day {
	return DayOf(time.Date(d.Year, d.Month, d.Date+1, 0, 0, 0, 0, time.UTC))
}
