package service

import (
	"time"

	"github.com/jackdevtech455/youtube-analytics/pkg/timebucket"
)

// Clock abstracts the "now" source so scheduling logic is testable without
// real sleeps.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NewClock returns the wall clock in UTC.
func NewClock() Clock { return realClock{} }

// isDue reports whether a scheduled instant has arrived. A nil schedule is
// never due; it gets initialized by the schedule pass first.
func isDue(now time.Time, scheduled *time.Time) bool {
	return scheduled != nil && !scheduled.After(now)
}

// nextRunAfter computes the next due instant: the current hour bucket plus
// the given interval.
func nextRunAfter(now time.Time, intervalMinutes int) time.Time {
	return timebucket.Hour(now).Add(time.Duration(intervalMinutes) * time.Minute)
}

// staggerDailyDiscovery spreads search-driven discovery load across the day:
// each tracker's first discovery lands tracker_id mod 24 hours past the
// current bucket.
func staggerDailyDiscovery(trackerID int64, now time.Time) time.Time {
	hourOffset := trackerID % 24
	return timebucket.Hour(now).Add(time.Duration(hourOffset) * time.Hour)
}
