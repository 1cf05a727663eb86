package service

import (
	"testing"

	"github.com/jackdevtech455/youtube-analytics/internal/model"
)

func int64Ptr(n int64) *int64 { return &n }

func stats(videoID string, views, likes, comments *int64) candidateStats {
	return candidateStats{
		VideoID:      videoID,
		ViewCount:    views,
		LikeCount:    likes,
		CommentCount: comments,
	}
}

func rankedIDs(ranked []model.TopVideo) []string {
	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.VideoID
	}
	return ids
}

func TestRankVideos_NoCandidatesYieldsEmpty(t *testing.T) {
	ranked := rankVideos(model.MetricViews, 24, nil, nil, 10)
	if len(ranked) != 0 {
		t.Errorf("len = %d, want 0", len(ranked))
	}
}

func TestRankVideos_AbsoluteViews(t *testing.T) {
	latest := []candidateStats{
		stats("a", int64Ptr(500), nil, nil),
		stats("b", int64Ptr(200), nil, nil),
		stats("c", int64Ptr(800), nil, nil),
	}

	ranked := rankVideos(model.MetricViews, 24, latest, nil, 2)

	if len(ranked) != 2 {
		t.Fatalf("len = %d, want 2", len(ranked))
	}
	if ranked[0].VideoID != "c" || ranked[1].VideoID != "a" {
		t.Errorf("order = %v, want [c a]", rankedIDs(ranked))
	}
	if ranked[0].Score != 800 || ranked[1].Score != 500 {
		t.Errorf("scores = %.0f, %.0f, want 800, 500", ranked[0].Score, ranked[1].Score)
	}
}

func TestRankVideos_MissingCountScoresZero(t *testing.T) {
	latest := []candidateStats{
		stats("a", nil, nil, nil),
		stats("b", int64Ptr(10), nil, nil),
	}

	ranked := rankVideos(model.MetricViews, 24, latest, nil, 10)

	if ranked[0].VideoID != "b" {
		t.Errorf("order = %v, want b first", rankedIDs(ranked))
	}
	if ranked[1].Score != 0 {
		t.Errorf("missing views scored %.2f, want 0", ranked[1].Score)
	}
	if ranked[1].LatestViewCount != nil {
		t.Error("raw latest view count must stay absent, not become 0")
	}
}

func TestRankVideos_ViewsDelta(t *testing.T) {
	latest := []candidateStats{
		stats("a", int64Ptr(150), nil, nil),
		stats("b", int64Ptr(300), nil, nil),
	}
	baselines := map[string]baselineCounts{
		"a": {ViewCount: int64Ptr(100)},
		// b has no baseline snapshot: first seen inside the window.
	}

	ranked := rankVideos(model.MetricViewsDelta, 24, latest, baselines, 10)

	// b scores its full absolute count as "delta" — the intentional
	// absent-baseline overcount — and therefore outranks a.
	if ranked[0].VideoID != "b" || ranked[0].Score != 300 {
		t.Errorf("b = (%s, %.0f), want (b, 300)", ranked[0].VideoID, ranked[0].Score)
	}
	if ranked[1].VideoID != "a" || ranked[1].Score != 50 {
		t.Errorf("a = (%s, %.0f), want (a, 50)", ranked[1].VideoID, ranked[1].Score)
	}
}

func TestRankVideos_LikesAndCommentsDelta(t *testing.T) {
	latest := []candidateStats{
		stats("a", nil, int64Ptr(90), int64Ptr(40)),
	}
	baselines := map[string]baselineCounts{
		"a": {LikeCount: int64Ptr(50), CommentCount: int64Ptr(15)},
	}

	likes := rankVideos(model.MetricLikesDelta, 24, latest, baselines, 1)
	if likes[0].Score != 40 {
		t.Errorf("likes delta = %.0f, want 40", likes[0].Score)
	}

	comments := rankVideos(model.MetricCommentsDelta, 24, latest, baselines, 1)
	if comments[0].Score != 25 {
		t.Errorf("comments delta = %.0f, want 25", comments[0].Score)
	}
}

func TestRankVideos_ViewsVelocity(t *testing.T) {
	latest := []candidateStats{
		stats("a", int64Ptr(1600), nil, nil),
	}
	baselines := map[string]baselineCounts{
		"a": {ViewCount: int64Ptr(1000)},
	}

	ranked := rankVideos(model.MetricViewsVelocity, 24, latest, baselines, 1)

	if ranked[0].Score != 25.0 {
		t.Errorf("velocity = %.2f, want 25.00", ranked[0].Score)
	}
}

func TestRankVideos_TieBreaksByVideoID(t *testing.T) {
	latest := []candidateStats{
		stats("zzz", int64Ptr(100), nil, nil),
		stats("aaa", int64Ptr(100), nil, nil),
		stats("mmm", int64Ptr(100), nil, nil),
	}

	ranked := rankVideos(model.MetricViews, 24, latest, nil, 10)

	want := []string{"aaa", "mmm", "zzz"}
	got := rankedIDs(ranked)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-break order = %v, want %v", got, want)
		}
	}
}

func TestRankVideos_TruncatesToTopN(t *testing.T) {
	var latest []candidateStats
	for i := range 50 {
		latest = append(latest, stats(string(rune('a'+i%26))+string(rune('a'+i/26)), int64Ptr(int64(i)), nil, nil))
	}

	ranked := rankVideos(model.MetricViews, 24, latest, nil, 5)
	if len(ranked) != 5 {
		t.Errorf("len = %d, want 5", len(ranked))
	}
}

func TestRankVideos_RawCountsCarriedForDerivedMetrics(t *testing.T) {
	latest := []candidateStats{
		stats("a", int64Ptr(150), int64Ptr(12), int64Ptr(3)),
	}
	baselines := map[string]baselineCounts{
		"a": {ViewCount: int64Ptr(100)},
	}

	ranked := rankVideos(model.MetricViewsDelta, 24, latest, baselines, 1)

	entry := ranked[0]
	if entry.LatestViewCount == nil || *entry.LatestViewCount != 150 {
		t.Error("latest view count not carried through")
	}
	if entry.LatestLikeCount == nil || *entry.LatestLikeCount != 12 {
		t.Error("latest like count not carried through")
	}
	if entry.LatestCommentCount == nil || *entry.LatestCommentCount != 3 {
		t.Error("latest comment count not carried through")
	}
}
