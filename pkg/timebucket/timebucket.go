package timebucket

import "time"

// Hour truncates an instant to the start of its containing hour in UTC.
// All schedule comparisons and snapshot deduplication key off this bucket,
// never off raw instants.
func Hour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}

// Now returns the current UTC time.
func Now() time.Time {
	return time.Now().UTC()
}
