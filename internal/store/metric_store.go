package store

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/models"
)

// latestWindow bounds the "latest batch": one run stamps rows over a few
// seconds, so everything within this window of the table max belongs to the
// most recent snapshot.
const latestWindow = 15

type ClickhouseMetricStore struct {
	conn driver.Conn
}

func NewClickhouseMetricStore(conn driver.Conn) *ClickhouseMetricStore {
	return &ClickhouseMetricStore{conn: conn}
}

type MetricStore interface {
	InsertMetrics(ctx context.Context, rows []models.MetricRow) error
	LatestMetrics(ctx context.Context, sector string) ([]models.MetricRow, error)
	VideoTimeline(ctx context.Context, videoID string) ([]models.MetricRow, error)
}

// InsertMetrics appends the full run batch in one write. The table is
// append-only with no primary key; deduplication happens at read time via
// the latest-window filter. An empty batch performs no write.
func (c *ClickhouseMetricStore) InsertMetrics(ctx context.Context, rows []models.MetricRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO fact_video_metrics (
			snapshot_at, sector, channel_id, channel_name, video_id, video_title,
			published_at, view_count, like_count, comment_count, thumbnail_url, dominant_color
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare metrics batch: %w", err)
	}

	for _, row := range rows {
		err := batch.Append(
			row.SnapshotAt,
			row.Sector,
			row.ChannelID,
			row.ChannelName,
			row.VideoID,
			row.VideoTitle,
			row.PublishedAt,
			row.ViewCount,
			row.LikeCount,
			row.CommentCount,
			row.ThumbnailURL,
			row.DominantColor,
		)
		if err != nil {
			return fmt.Errorf("failed to append metric row: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send metrics batch: %w", err)
	}
	return nil
}

// LatestMetrics returns the most recent snapshot batch, deduplicated per
// video keeping the newest row, optionally filtered to one sector.
func (c *ClickhouseMetricStore) LatestMetrics(ctx context.Context, sector string) ([]models.MetricRow, error) {
	query := fmt.Sprintf(`
		SELECT snapshot_at, sector, channel_id, channel_name, video_id, video_title,
		       published_at, view_count, like_count, comment_count, thumbnail_url, dominant_color
		FROM fact_video_metrics
		WHERE snapshot_at >= (SELECT max(snapshot_at) FROM fact_video_metrics) - INTERVAL %d MINUTE
		ORDER BY snapshot_at DESC
	`, latestWindow)

	rows, err := c.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest metrics: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var metrics []models.MetricRow

	for rows.Next() {
		var m models.MetricRow
		err := rows.Scan(
			&m.SnapshotAt,
			&m.Sector,
			&m.ChannelID,
			&m.ChannelName,
			&m.VideoID,
			&m.VideoTitle,
			&m.PublishedAt,
			&m.ViewCount,
			&m.LikeCount,
			&m.CommentCount,
			&m.ThumbnailURL,
			&m.DominantColor,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan metric row: %w", err)
		}

		if sector != "" && m.Sector != sector {
			continue
		}
		// Rows arrive newest-first, so the first row per video wins.
		if seen[m.VideoID] {
			continue
		}
		seen[m.VideoID] = true
		metrics = append(metrics, m)
	}

	return metrics, nil
}

// VideoTimeline returns every snapshot captured for one video, newest first.
func (c *ClickhouseMetricStore) VideoTimeline(ctx context.Context, videoID string) ([]models.MetricRow, error) {
	query := `
		SELECT snapshot_at, sector, channel_id, channel_name, video_id, video_title,
		       published_at, view_count, like_count, comment_count, thumbnail_url, dominant_color
		FROM fact_video_metrics
		WHERE video_id = ?
		ORDER BY snapshot_at DESC
	`

	rows, err := c.conn.Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("failed to get video timeline: %w", err)
	}
	defer rows.Close()

	var metrics []models.MetricRow
	for rows.Next() {
		var m models.MetricRow
		err := rows.Scan(
			&m.SnapshotAt,
			&m.Sector,
			&m.ChannelID,
			&m.ChannelName,
			&m.VideoID,
			&m.VideoTitle,
			&m.PublishedAt,
			&m.ViewCount,
			&m.LikeCount,
			&m.CommentCount,
			&m.ThumbnailURL,
			&m.DominantColor,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timeline row: %w", err)
		}
		metrics = append(metrics, m)
	}

	return metrics, nil
}
