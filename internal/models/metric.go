package models

import "time"

// VideoRecord is one video discovered for a channel during a run. It only
// lives until the run's rows are assembled.
type VideoRecord struct {
	VideoID      string    `json:"video_id"`
	Title        string    `json:"title"`
	PublishedAt  time.Time `json:"published_at"`
	ChannelTitle string    `json:"channel_title"`
	ThumbnailURL string    `json:"thumbnail_url"`
}

// StatSnapshot holds the counters returned by the videos endpoint for one
// video ID. Missing counters are zero.
type StatSnapshot struct {
	VideoID  string `json:"video_id"`
	Views    uint64 `json:"views"`
	Likes    uint64 `json:"likes"`
	Comments uint64 `json:"comments"`
}

// MetricRow is the persisted unit: one (video_id, snapshot_at) pair appended
// to fact_video_metrics. The table is append-only, so snapshots accumulate
// and the read side filters to the latest batch by timestamp window.
type MetricRow struct {
	SnapshotAt    time.Time `ch:"snapshot_at" json:"snapshot_at"`
	Sector        string    `ch:"sector" json:"sector"`
	ChannelID     string    `ch:"channel_id" json:"channel_id"`
	ChannelName   string    `ch:"channel_name" json:"channel_name"`
	VideoID       string    `ch:"video_id" json:"video_id"`
	VideoTitle    string    `ch:"video_title" json:"video_title"`
	PublishedAt   time.Time `ch:"published_at" json:"published_at"`
	ViewCount     uint64    `ch:"view_count" json:"view_count"`
	LikeCount     uint64    `ch:"like_count" json:"like_count"`
	CommentCount  uint64    `ch:"comment_count" json:"comment_count"`
	ThumbnailURL  string    `ch:"thumbnail_url" json:"thumbnail_url"`
	DominantColor string    `ch:"dominant_color" json:"dominant_color"`
}

// EngagementRate derives (likes+comments)/views as a percentage. The fact
// table keeps raw counts only; this is computed at read time.
func (m MetricRow) EngagementRate() float64 {
	if m.ViewCount == 0 {
		return 0
	}
	return float64(m.LikeCount+m.CommentCount) / float64(m.ViewCount) * 100
}
