package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nbx0021/youtube-analytics-pipeline/internal/cache"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/models"
)

type fakeMetricStore struct {
	latest   []models.MetricRow
	timeline []models.MetricRow
	err      error
}

func (f *fakeMetricStore) InsertMetrics(context.Context, []models.MetricRow) error {
	return f.err
}

func (f *fakeMetricStore) LatestMetrics(_ context.Context, sector string) ([]models.MetricRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	if sector == "" {
		return f.latest, nil
	}
	var out []models.MetricRow
	for _, m := range f.latest {
		if m.Sector == sector {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMetricStore) VideoTimeline(context.Context, string) ([]models.MetricRow, error) {
	return f.timeline, f.err
}

func testHandler(store *fakeMetricStore) *MetricsHandler {
	logger := log.New(io.Discard, "", 0)
	return NewMetricsHandler(store, cache.NewCacheService("", logger), logger)
}

func sampleRows() []models.MetricRow {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	return []models.MetricRow{
		{SnapshotAt: now, Sector: "tech", VideoID: "vid1", VideoTitle: "Big", ChannelName: "Chan A",
			ViewCount: 1000, LikeCount: 80, CommentCount: 20, DominantColor: "#aabbcc"},
		{SnapshotAt: now.Add(-time.Minute), Sector: "music", VideoID: "vid2", VideoTitle: "Small", ChannelName: "Chan B",
			ViewCount: 100, LikeCount: 10, CommentCount: 0},
	}
}

func TestHandlerGetLatestMetrics(t *testing.T) {
	h := testHandler(&fakeMetricStore{latest: sampleRows()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/latest", nil)
	rec := httptest.NewRecorder()
	h.HandlerGetLatestMetrics(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []MetricEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)

	// engagement_rate is derived at read time: (80+20)/1000 * 100
	assert.Equal(t, "vid1", body.Data[0].VideoID)
	assert.InDelta(t, 10.0, body.Data[0].EngagementRate, 0.001)
	assert.InDelta(t, 10.0, body.Data[1].EngagementRate, 0.001)
}

func TestHandlerGetLatestMetricsSectorFilter(t *testing.T) {
	h := testHandler(&fakeMetricStore{latest: sampleRows()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/latest?sector=music", nil)
	rec := httptest.NewRecorder()
	h.HandlerGetLatestMetrics(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []MetricEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "vid2", body.Data[0].VideoID)
}

func TestHandlerGetLatestMetricsStoreError(t *testing.T) {
	h := testHandler(&fakeMetricStore{err: fmt.Errorf("boom")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/latest", nil)
	rec := httptest.NewRecorder()
	h.HandlerGetLatestMetrics(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandlerGetSectorKPIs(t *testing.T) {
	h := testHandler(&fakeMetricStore{latest: sampleRows()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/kpis", nil)
	rec := httptest.NewRecorder()
	h.HandlerGetSectorKPIs(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data SectorKPIs `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "Big", body.Data.TopVideoTitle)
	assert.Equal(t, "Chan A", body.Data.TopVideoChannel)
	assert.Equal(t, uint64(1000), body.Data.TopVideoViews)
	assert.Equal(t, 2, body.Data.ActiveAssets)
	assert.InDelta(t, 10.0, body.Data.AvgEngagementRate, 0.001)
}

func TestHandlerGetVideoTimeline(t *testing.T) {
	h := testHandler(&fakeMetricStore{timeline: sampleRows()[:1]})

	r := chi.NewRouter()
	r.Get("/videos/{id}/timeline", h.HandlerGetVideoTimeline)

	req := httptest.NewRequest(http.MethodGet, "/videos/vid1/timeline", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []models.MetricRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "vid1", body.Data[0].VideoID)
}

func TestComputeKPIs(t *testing.T) {
	t.Run("empty batch", func(t *testing.T) {
		kpis := ComputeKPIs(nil)
		assert.Equal(t, 0, kpis.ActiveAssets)
		assert.Zero(t, kpis.AvgEngagementRate)
	})

	t.Run("zero views contribute zero engagement", func(t *testing.T) {
		entries := []MetricEntry{
			{MetricRow: models.MetricRow{VideoID: "a", ViewCount: 0, LikeCount: 5}},
			{MetricRow: models.MetricRow{VideoID: "b", ViewCount: 100, LikeCount: 20}},
		}
		for i := range entries {
			entries[i].EngagementRate = entries[i].MetricRow.EngagementRate()
		}

		kpis := ComputeKPIs(entries)
		assert.Equal(t, uint64(100), kpis.TopVideoViews)
		// (0 + 20) / 2
		assert.InDelta(t, 10.0, kpis.AvgEngagementRate, 0.001)
	})
}
