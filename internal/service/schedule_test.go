package service

import (
	"testing"
	"time"
)

// fakeClock returns a fixed instant, letting scheduling tests run without
// real sleeps.
type fakeClock struct {
	now time.Time
}

func (c fakeClock) Now() time.Time { return c.now }

func TestIsDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	if isDue(now, nil) {
		t.Error("nil schedule must never be due")
	}
	if !isDue(now, &past) {
		t.Error("past instant must be due")
	}
	if !isDue(now, &now) {
		t.Error("exact instant must be due")
	}
	if isDue(now, &future) {
		t.Error("future instant must not be due")
	}
}

func TestNextRunAfter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 47, 13, 0, time.UTC)

	got := nextRunAfter(now, 60)
	want := time.Date(2025, 6, 1, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("nextRunAfter(60m) = %v, want %v", got, want)
	}

	got = nextRunAfter(now, 1440)
	want = time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("nextRunAfter(1440m) = %v, want %v", got, want)
	}
}

func TestStaggerDailyDiscovery(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC)
	bucket := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		trackerID int64
		want      time.Time
	}{
		{0, bucket},
		{1, bucket.Add(1 * time.Hour)},
		{23, bucket.Add(23 * time.Hour)},
		{24, bucket},
		{25, bucket.Add(1 * time.Hour)},
		{48, bucket},
	}

	for _, tt := range tests {
		got := staggerDailyDiscovery(tt.trackerID, now)
		if !got.Equal(tt.want) {
			t.Errorf("staggerDailyDiscovery(%d) = %v, want %v", tt.trackerID, got, tt.want)
		}
	}
}

func TestStaggerDailyDiscovery_Mod24Wraps(t *testing.T) {
	// Two trackers whose IDs differ by exactly 24 get the same offset.
	now := time.Date(2025, 6, 1, 9, 15, 0, 0, time.UTC)
	a := staggerDailyDiscovery(7, now)
	b := staggerDailyDiscovery(31, now)
	if !a.Equal(b) {
		t.Errorf("ids 7 and 31 staggered differently: %v vs %v", a, b)
	}
}
