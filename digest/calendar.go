package digest

import "time"

// DateLayout is the calendar-day format of Day.Key
const DateLayout = "2006-01-02"

// Calendar maps an instant to the hashtag of the day in a fixed timezone
type Calendar struct {
	Location *time.Location
	// Hashtags indexed by weekday, Sunday first
	Hashtags [7]string
}

// Day is the calendar day a run reports on
type Day struct {
	Hashtag string
	// Start is local midnight in the calendar's timezone
	Start time.Time
	// End is the following local midnight
	End time.Time
	Key string
}

// Resolve returns the day containing now, evaluated in the calendar's timezone
func (c Calendar) Resolve(now time.Time) Day {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}

	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)

	return Day{
		Hashtag: c.Hashtags[local.Weekday()],
		Start:   start,
		End:     start.AddDate(0, 0, 1),
		Key:     start.Format(DateLayout),
	}
}

// Contains reports whether t falls on this day: Start <= t < End
func (d Day) Contains(t time.Time) bool {
	return !t.Before(d.Start) && t.Before(d.End)
}

// Started reports whether t is at or after the start of the day. Pagination
// stops on this bound because the timeline is sorted newest first.
func (d Day) Started(t time.Time) bool {
	return !t.Before(d.Start)
}
