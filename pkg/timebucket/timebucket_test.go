package timebucket

import (
	"testing"
	"time"
)

func TestHour(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  time.Time
	}{
		{
			name:  "already aligned",
			input: time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC),
			want:  time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC),
		},
		{
			name:  "mid hour",
			input: time.Date(2025, 3, 14, 15, 42, 31, 999, time.UTC),
			want:  time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC),
		},
		{
			name:  "last instant of hour",
			input: time.Date(2025, 3, 14, 15, 59, 59, 999999999, time.UTC),
			want:  time.Date(2025, 3, 14, 15, 0, 0, 0, time.UTC),
		},
		{
			name:  "non-UTC zone normalizes to UTC",
			input: time.Date(2025, 3, 14, 1, 30, 0, 0, time.FixedZone("UTC+5", 5*3600)),
			want:  time.Date(2025, 3, 13, 20, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Hour(tt.input)
			if !got.Equal(tt.want) {
				t.Errorf("Hour(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHour_Idempotent(t *testing.T) {
	in := time.Date(2025, 7, 1, 9, 17, 3, 12345, time.UTC)
	once := Hour(in)
	twice := Hour(once)
	if !once.Equal(twice) {
		t.Errorf("Hour(Hour(t)) = %v, want %v", twice, once)
	}
}

func TestHour_Monotonic(t *testing.T) {
	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	prev := Hour(base)
	for i := 1; i < 200; i++ {
		next := Hour(base.Add(time.Duration(i) * 7 * time.Minute))
		if next.Before(prev) {
			t.Fatalf("bucket decreased: %v before %v", next, prev)
		}
		prev = next
	}
}
