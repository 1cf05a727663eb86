package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/jackdevtech455/youtube-analytics/internal/youtube"
)

func newTestSnapshotService() *SnapshotService {
	return &SnapshotService{log: zerolog.Nop()}
}

type snapshotKey struct {
	videoID string
	bucket  time.Time
}

// conflictDB mimics the snapshot table's (video_id, captured_at) unique key:
// a repeated insert reports zero rows affected, like ON CONFLICT DO NOTHING.
type conflictDB struct {
	seen map[snapshotKey]bool
}

func (f *conflictDB) Exec(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
	key := snapshotKey{videoID: args[0].(string), bucket: args[1].(time.Time)}
	if f.seen[key] {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	f.seen[key] = true
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (f *conflictDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (f *conflictDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func TestInsertSnapshot_IdempotentPerBucket(t *testing.T) {
	svc := newTestSnapshotService()
	db := &conflictDB{seen: make(map[snapshotKey]bool)}

	item := youtube.VideoItem{ID: "vid1"}
	item.Statistics.ViewCount = "100"

	bucket := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	inserted, err := svc.insertSnapshot(context.Background(), db, item, bucket)
	if err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if !inserted {
		t.Error("first insert in a bucket must create a row")
	}

	inserted, err = svc.insertSnapshot(context.Background(), db, item, bucket)
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if inserted {
		t.Error("second insert in the same bucket must create no row")
	}

	inserted, err = svc.insertSnapshot(context.Background(), db, item, bucket.Add(time.Hour))
	if err != nil {
		t.Fatalf("next bucket insert: %v", err)
	}
	if !inserted {
		t.Error("a new bucket must get its own row")
	}
}

func TestParseCount(t *testing.T) {
	svc := newTestSnapshotService()

	if got := svc.parseCount("vid1", "viewCount", "12345"); got == nil || *got != 12345 {
		t.Errorf("parseCount(12345) = %v, want 12345", got)
	}
	if got := svc.parseCount("vid1", "likeCount", ""); got != nil {
		t.Errorf("omitted count = %v, want nil", got)
	}
	if got := svc.parseCount("vid1", "viewCount", "not-a-number"); got != nil {
		t.Errorf("mangled count = %v, want nil", got)
	}
	if got := svc.parseCount("vid1", "viewCount", "0"); got == nil || *got != 0 {
		t.Errorf("explicit zero = %v, want 0", got)
	}
}

func TestParsePublishedAt(t *testing.T) {
	svc := newTestSnapshotService()

	got := svc.parsePublishedAt("vid1", "2024-03-01T12:30:00Z")
	want := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Errorf("parsePublishedAt = %v, want %v", got, want)
	}

	if got := svc.parsePublishedAt("vid1", ""); got != nil {
		t.Errorf("empty timestamp = %v, want nil", got)
	}
	if got := svc.parsePublishedAt("vid1", "yesterday"); got != nil {
		t.Errorf("unparseable timestamp = %v, want nil", got)
	}
}
