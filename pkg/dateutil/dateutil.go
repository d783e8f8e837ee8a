package dateutil

import "time"

const dayKeyLayout = "2006-01-02"

// DayKey returns the calendar day key of t in its own location. Records
// keyed by day (spin quota, popup gate) never roll over in place; a new key
// simply begins a new record.
func DayKey(t time.Time) string {
	return t.Format(dayKeyLayout)
}
