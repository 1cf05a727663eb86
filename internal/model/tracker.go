package model

import "time"

// TrackerMode selects what a tracker watches: one channel's uploads or a
// search query.
type TrackerMode string

const (
	ModeChannel TrackerMode = "channel"
	ModeSearch  TrackerMode = "search"
)

// RankingMetric names the scoring rule applied to a tracker's candidates.
type RankingMetric string

const (
	MetricViews         RankingMetric = "views"
	MetricLikes         RankingMetric = "likes"
	MetricComments      RankingMetric = "comments"
	MetricViewsDelta    RankingMetric = "views_delta"
	MetricViewsVelocity RankingMetric = "views_velocity"
	MetricLikesDelta    RankingMetric = "likes_delta"
	MetricCommentsDelta RankingMetric = "comments_delta"
)

// ValidMetric reports whether m is a known ranking metric.
func ValidMetric(m RankingMetric) bool {
	switch m {
	case MetricViews, MetricLikes, MetricComments,
		MetricViewsDelta, MetricViewsVelocity, MetricLikesDelta, MetricCommentsDelta:
		return true
	}
	return false
}

// Windowed reports whether m is computed over a lookback window.
func (m RankingMetric) Windowed() bool {
	switch m {
	case MetricViewsDelta, MetricViewsVelocity, MetricLikesDelta, MetricCommentsDelta:
		return true
	}
	return false
}

// EvictionPolicy names the rule used to trim a tracker's candidate pool back
// to its configured size after a discovery run.
type EvictionPolicy string

const (
	// EvictLeastRecentlySeen drops the members re-surfaced longest ago.
	// Favors freshness: a historically top-ranked video that stops being
	// re-discovered will eventually fall out of the pool.
	EvictLeastRecentlySeen EvictionPolicy = "least_recently_seen"
	// EvictLowestSourceRank drops the members the source ranked worst in
	// their most recent discovery, keeping the pool rank-stable.
	EvictLowestSourceRank EvictionPolicy = "lowest_source_rank"
)

// ValidEvictionPolicy reports whether p is a known eviction policy.
func ValidEvictionPolicy(p EvictionPolicy) bool {
	return p == EvictLeastRecentlySeen || p == EvictLowestSourceRank
}

// Tracker is a configured watch over a channel's uploads or a search query,
// with its own ranking rule and candidate pool.
type Tracker struct {
	ID                 int64          `json:"id"`
	Mode               TrackerMode    `json:"mode"`
	ChannelID          *string        `json:"channelId,omitempty"`
	SearchQuery        *string        `json:"searchQuery,omitempty"`
	TopN               int            `json:"topN"`
	CandidatePoolSize  int            `json:"candidatePoolSize"`
	RankingMetric      RankingMetric  `json:"rankingMetric"`
	RankingWindowHours *int           `json:"rankingWindowHours,omitempty"`
	EvictionPolicy     EvictionPolicy `json:"evictionPolicy"`
	NextDiscoveryAt    *time.Time     `json:"nextDiscoveryAt,omitempty"`
	NextSnapshotAt     *time.Time     `json:"nextSnapshotAt,omitempty"`
	IsActive           bool           `json:"isActive"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// EffectiveWindowHours resolves the lookback window for windowed metrics.
func (t *Tracker) EffectiveWindowHours() int {
	if t.RankingWindowHours != nil {
		return *t.RankingWindowHours
	}
	return DefaultWindowHours
}

// Tracker field bounds, enforced at creation and patch.
const (
	MinTopN            = 1
	MaxTopN            = 200
	DefaultTopN        = 20
	MinPoolSize        = 20
	MaxPoolSize        = 1000
	DefaultPoolSize    = 200
	MinWindowHours     = 1
	MaxWindowHours     = 24 * 90
	DefaultWindowHours = 24
)

// TrackerCreate is the request body for creating a tracker.
type TrackerCreate struct {
	Mode               TrackerMode     `json:"mode"`
	ChannelID          *string         `json:"channelId,omitempty"`
	SearchQuery        *string         `json:"searchQuery,omitempty"`
	TopN               *int            `json:"topN,omitempty"`
	CandidatePoolSize  *int            `json:"candidatePoolSize,omitempty"`
	RankingMetric      *RankingMetric  `json:"rankingMetric,omitempty"`
	RankingWindowHours *int            `json:"rankingWindowHours,omitempty"`
	EvictionPolicy     *EvictionPolicy `json:"evictionPolicy,omitempty"`
}

// TrackerPatch is the request body for partially updating a tracker.
type TrackerPatch struct {
	TopN               *int            `json:"topN,omitempty"`
	CandidatePoolSize  *int            `json:"candidatePoolSize,omitempty"`
	RankingMetric      *RankingMetric  `json:"rankingMetric,omitempty"`
	RankingWindowHours *int            `json:"rankingWindowHours,omitempty"`
	EvictionPolicy     *EvictionPolicy `json:"evictionPolicy,omitempty"`
	IsActive           *bool           `json:"isActive,omitempty"`
}
