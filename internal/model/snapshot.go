package model

import "time"

// VideoSnapshot is one immutable metrics reading for a video at a specific
// hour bucket. A count the provider did not report (or reported unparseably)
// is stored absent, never fabricated as zero.
type VideoSnapshot struct {
	ID           int64     `json:"id"`
	VideoID      string    `json:"videoId"`
	CapturedAt   time.Time `json:"capturedAt"`
	ViewCount    *int64    `json:"viewCount"`
	LikeCount    *int64    `json:"likeCount"`
	CommentCount *int64    `json:"commentCount"`
}

// TimeSeriesPoint is one sample of a single metric for the timeseries
// read path.
type TimeSeriesPoint struct {
	CapturedAt time.Time `json:"capturedAt"`
	Value      *int64    `json:"value"`
}
