package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/cache"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/models"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/store"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/utils"
)

type MetricsHandler struct {
	MetricStore store.MetricStore
	Cache       *cache.CacheService
	Logger      *log.Logger
}

func NewMetricsHandler(metricStore store.MetricStore, cacheSvc *cache.CacheService, logger *log.Logger) *MetricsHandler {
	return &MetricsHandler{
		MetricStore: metricStore,
		Cache:       cacheSvc,
		Logger:      logger,
	}
}

// MetricEntry is one latest-batch row plus the read-time derived engagement
// rate; the warehouse itself keeps raw counts only.
type MetricEntry struct {
	models.MetricRow
	EngagementRate float64 `json:"engagement_rate"`
}

// SectorKPIs summarizes the latest snapshot batch for the dashboard KPI row.
type SectorKPIs struct {
	TopVideoTitle     string    `json:"top_video_title"`
	TopVideoChannel   string    `json:"top_video_channel"`
	TopVideoViews     uint64    `json:"top_video_views"`
	AvgEngagementRate float64   `json:"avg_engagement_rate"`
	ActiveAssets      int       `json:"active_assets"`
	LastSnapshotAt    time.Time `json:"last_snapshot_at"`
}

func (mh *MetricsHandler) HandlerGetLatestMetrics(w http.ResponseWriter, r *http.Request) {
	sector := r.URL.Query().Get("sector")
	cacheKey := "metrics:latest:" + sector

	if cached := mh.Cache.Get(r.Context(), cacheKey); cached != nil {
		utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": json.RawMessage(cached)})
		return
	}

	entries, err := mh.latestEntries(r, sector)
	if err != nil {
		mh.Logger.Println("Error getting latest metrics from store", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		return
	}

	if payload, err := json.Marshal(entries); err == nil {
		mh.Cache.Set(r.Context(), cacheKey, payload)
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": entries})
}

func (mh *MetricsHandler) HandlerGetSectorKPIs(w http.ResponseWriter, r *http.Request) {
	sector := r.URL.Query().Get("sector")
	cacheKey := "metrics:kpis:" + sector

	if cached := mh.Cache.Get(r.Context(), cacheKey); cached != nil {
		utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": json.RawMessage(cached)})
		return
	}

	entries, err := mh.latestEntries(r, sector)
	if err != nil {
		mh.Logger.Println("Error getting latest metrics from store", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		return
	}

	kpis := ComputeKPIs(entries)

	if payload, err := json.Marshal(kpis); err == nil {
		mh.Cache.Set(r.Context(), cacheKey, payload)
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": kpis})
}

func (mh *MetricsHandler) HandlerGetVideoTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		mh.Logger.Println("Error: id parameter is missing")
		utils.WriteJSON(w, http.StatusBadRequest, utils.Envelope{"message": "Bad Request"})
		return
	}

	timeline, err := mh.MetricStore.VideoTimeline(r.Context(), id)
	if err != nil {
		mh.Logger.Println("Error getting video timeline from store", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": timeline})
}

func (mh *MetricsHandler) latestEntries(r *http.Request, sector string) ([]MetricEntry, error) {
	rows, err := mh.MetricStore.LatestMetrics(r.Context(), sector)
	if err != nil {
		return nil, err
	}

	entries := make([]MetricEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, MetricEntry{
			MetricRow:      row,
			EngagementRate: row.EngagementRate(),
		})
	}
	return entries, nil
}

// ComputeKPIs aggregates a latest-batch slice into the dashboard KPI row.
func ComputeKPIs(entries []MetricEntry) SectorKPIs {
	var kpis SectorKPIs
	if len(entries) == 0 {
		return kpis
	}

	top := 0
	var engagementSum float64
	for i, e := range entries {
		engagementSum += e.EngagementRate
		if e.ViewCount > entries[top].ViewCount {
			top = i
		}
		if e.SnapshotAt.After(kpis.LastSnapshotAt) {
			kpis.LastSnapshotAt = e.SnapshotAt
		}
	}

	kpis.TopVideoTitle = entries[top].VideoTitle
	kpis.TopVideoChannel = entries[top].ChannelName
	kpis.TopVideoViews = entries[top].ViewCount

	kpis.ActiveAssets = len(entries)
	kpis.AvgEngagementRate = engagementSum / float64(len(entries))
	return kpis
}
