package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbx0021/youtube-analytics-pipeline/internal/config"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/models"
)

type fakeSource struct {
	videos map[string][]models.VideoRecord
	stats  map[string]models.StatSnapshot
}

func (f *fakeSource) RecentVideos(_ context.Context, channelID string, limit int) ([]models.VideoRecord, error) {
	videos, ok := f.videos[channelID]
	if !ok || len(videos) == 0 {
		return nil, fmt.Errorf("no videos found for %s", channelID)
	}
	if len(videos) > limit {
		videos = videos[:limit]
	}
	return videos, nil
}

func (f *fakeSource) VideoStats(_ context.Context, videoIDs []string) map[string]models.StatSnapshot {
	out := make(map[string]models.StatSnapshot)
	for _, id := range videoIDs {
		if s, ok := f.stats[id]; ok {
			out[id] = s
		}
	}
	return out
}

type fakeColors struct {
	byURL map[string]string
}

func (f *fakeColors) Hex(_ context.Context, url string) string {
	if url == "" {
		return ""
	}
	if hex, ok := f.byURL[url]; ok {
		return hex
	}
	return "#000000"
}

type fakeWriter struct {
	batches [][]models.MetricRow
	err     error
}

func (f *fakeWriter) InsertMetrics(_ context.Context, rows []models.MetricRow) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, rows)
	return nil
}

func testConfig(sectors map[string][]config.ChannelSpec) *config.Config {
	return &config.Config{
		Sectors:  sectors,
		Settings: config.Settings{MaxVideosToFetch: 5},
	}
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunEndToEnd(t *testing.T) {
	// One channel with two videos, both with stats; one thumbnail resolves
	// to a color, the other fails and carries the sentinel.
	source := &fakeSource{
		videos: map[string][]models.VideoRecord{
			"UC1": {
				{VideoID: "vid1", Title: "First", ChannelTitle: "Chan One", ThumbnailURL: "http://img/1.jpg",
					PublishedAt: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)},
				{VideoID: "vid2", Title: "Second", ChannelTitle: "Chan One", ThumbnailURL: "http://img/2.jpg",
					PublishedAt: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)},
			},
		},
		stats: map[string]models.StatSnapshot{
			"vid1": {VideoID: "vid1", Views: 1000, Likes: 100, Comments: 10},
			"vid2": {VideoID: "vid2", Views: 500, Likes: 5, Comments: 1},
		},
	}
	colors := &fakeColors{byURL: map[string]string{"http://img/1.jpg": "#aabbcc"}}
	writer := &fakeWriter{}

	cfg := testConfig(map[string][]config.ChannelSpec{
		"tech": {{ID: "UC1"}},
	})

	p := New(cfg, source, colors, writer, testLogger())
	start := time.Now().UTC()
	require.NoError(t, p.Run(context.Background()))

	require.Len(t, writer.batches, 1)
	rows := writer.batches[0]
	require.Len(t, rows, 2)

	assert.Equal(t, "tech", rows[0].Sector)
	assert.Equal(t, "UC1", rows[0].ChannelID)
	assert.Equal(t, "Chan One", rows[0].ChannelName)
	assert.Equal(t, "vid1", rows[0].VideoID)
	assert.Equal(t, uint64(1000), rows[0].ViewCount)
	assert.Equal(t, uint64(100), rows[0].LikeCount)
	assert.Equal(t, uint64(10), rows[0].CommentCount)
	assert.Equal(t, "#aabbcc", rows[0].DominantColor)

	assert.Equal(t, "#000000", rows[1].DominantColor)

	for _, row := range rows {
		assert.False(t, row.SnapshotAt.Before(start))
	}
}

func TestCollectDropsVideosWithoutStats(t *testing.T) {
	source := &fakeSource{
		videos: map[string][]models.VideoRecord{
			"UC1": {
				{VideoID: "vid1", Title: "Has stats"},
				{VideoID: "vid2", Title: "No stats"},
			},
		},
		stats: map[string]models.StatSnapshot{
			"vid1": {VideoID: "vid1", Views: 10},
		},
	}
	cfg := testConfig(map[string][]config.ChannelSpec{"tech": {{ID: "UC1"}}})

	p := New(cfg, source, &fakeColors{}, &fakeWriter{}, testLogger())
	rows := p.Collect(context.Background())

	require.Len(t, rows, 1)
	assert.Equal(t, "vid1", rows[0].VideoID)
}

func TestCollectSkipsFailedChannels(t *testing.T) {
	source := &fakeSource{
		videos: map[string][]models.VideoRecord{
			"UCok": {{VideoID: "vid1", Title: "Fine"}},
		},
		stats: map[string]models.StatSnapshot{
			"vid1": {VideoID: "vid1", Views: 10},
		},
	}
	cfg := testConfig(map[string][]config.ChannelSpec{
		"tech": {{ID: "UCbroken"}, {ID: "UCok"}},
	})

	p := New(cfg, source, &fakeColors{}, &fakeWriter{}, testLogger())
	rows := p.Collect(context.Background())

	require.Len(t, rows, 1)
	assert.Equal(t, "UCok", rows[0].ChannelID)
}

func TestRunNoDataCollected(t *testing.T) {
	// All channels fail discovery: no rows, no write, nil error.
	source := &fakeSource{}
	writer := &fakeWriter{}
	cfg := testConfig(map[string][]config.ChannelSpec{
		"tech": {{ID: "UC1"}, {ID: "UC2"}},
	})

	p := New(cfg, source, &fakeColors{}, writer, testLogger())
	require.NoError(t, p.Run(context.Background()))
	assert.Empty(t, writer.batches)
}

func TestRunWarehouseFailureIsFatal(t *testing.T) {
	source := &fakeSource{
		videos: map[string][]models.VideoRecord{
			"UC1": {{VideoID: "vid1"}},
		},
		stats: map[string]models.StatSnapshot{
			"vid1": {VideoID: "vid1", Views: 1},
		},
	}
	writer := &fakeWriter{err: fmt.Errorf("connection refused")}
	cfg := testConfig(map[string][]config.ChannelSpec{"tech": {{ID: "UC1"}}})

	p := New(cfg, source, &fakeColors{}, writer, testLogger())
	err := p.Run(context.Background())
	assert.ErrorContains(t, err, "warehouse load failed")
}

func TestCollectIsDeterministicAcrossRuns(t *testing.T) {
	source := &fakeSource{
		videos: map[string][]models.VideoRecord{
			"UC1": {{VideoID: "vid1", Title: "A", ThumbnailURL: "http://img/1.jpg"}},
			"UC2": {{VideoID: "vid2", Title: "B", ThumbnailURL: "http://img/2.jpg"}},
		},
		stats: map[string]models.StatSnapshot{
			"vid1": {VideoID: "vid1", Views: 1},
			"vid2": {VideoID: "vid2", Views: 2},
		},
	}
	cfg := testConfig(map[string][]config.ChannelSpec{
		"b_sector": {{ID: "UC2"}},
		"a_sector": {{ID: "UC1"}},
	})

	p := New(cfg, source, &fakeColors{}, &fakeWriter{}, testLogger())

	first := p.Collect(context.Background())
	second := p.Collect(context.Background())
	require.Len(t, first, 2)
	require.Len(t, second, 2)

	// identical inputs yield identical batches except for snapshot stamps
	for i := range first {
		a, b := first[i], second[i]
		a.SnapshotAt, b.SnapshotAt = time.Time{}, time.Time{}
		assert.Equal(t, a, b)
	}

	// sectors walked in sorted order
	assert.Equal(t, "a_sector", first[0].Sector)
	assert.Equal(t, "b_sector", first[1].Sector)
}
