package model

import "time"

// Video holds denormalized metadata for one externally identified video.
// Rows are created on first discovery or first snapshot reference and
// refreshed opportunistically whenever a snapshot is taken.
type Video struct {
	VideoID     string     `json:"videoId"`
	ChannelID   *string    `json:"channelId,omitempty"`
	Title       *string    `json:"title,omitempty"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	DurationISO *string    `json:"durationIso,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// TrackerCandidate records one video's membership in a tracker's pool.
type TrackerCandidate struct {
	ID          int64     `json:"id"`
	TrackerID   int64     `json:"trackerId"`
	VideoID     string    `json:"videoId"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
	SourceRank  *int      `json:"sourceRank,omitempty"`
}

// TopVideo is one entry of a tracker's ranked result. The raw latest counts
// are carried for display even when the ranked metric is a derived score.
type TopVideo struct {
	VideoID            string     `json:"videoId"`
	Title              *string    `json:"title"`
	ChannelID          *string    `json:"channelId"`
	PublishedAt        *time.Time `json:"publishedAt"`
	Score              float64    `json:"score"`
	LatestViewCount    *int64     `json:"latestViewCount"`
	LatestLikeCount    *int64     `json:"latestLikeCount"`
	LatestCommentCount *int64     `json:"latestCommentCount"`
}

// ChannelMeta is display metadata for one channel, served through the
// TTL cache.
type ChannelMeta struct {
	ChannelID    string  `json:"channelId"`
	Title        *string `json:"title,omitempty"`
	Handle       *string `json:"handle,omitempty"`
	ThumbnailURL *string `json:"thumbnailUrl,omitempty"`
}
