package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/config"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/models"
)

// VideoSource is the upstream platform contract the assembler consumes.
// Satisfied by youtube.Client.
type VideoSource interface {
	RecentVideos(ctx context.Context, channelID string, limit int) ([]models.VideoRecord, error)
	VideoStats(ctx context.Context, videoIDs []string) map[string]models.StatSnapshot
}

// ColorExtractor yields a hex color for a thumbnail URL, "" for no URL and a
// sentinel on failure. Satisfied by thumbnail.Extractor.
type ColorExtractor interface {
	Hex(ctx context.Context, url string) string
}

// MetricWriter appends one run's batch to the warehouse. Satisfied by
// store.ClickhouseMetricStore.
type MetricWriter interface {
	InsertMetrics(ctx context.Context, rows []models.MetricRow) error
}

// Pipeline walks sector -> channel -> video, assembling one MetricRow per
// video that has both metadata and stats, then hands the accumulated batch
// to the warehouse in a single append.
type Pipeline struct {
	Config *config.Config
	Source VideoSource
	Colors ColorExtractor
	Store  MetricWriter
	Logger *log.Logger
}

func New(cfg *config.Config, source VideoSource, colors ColorExtractor, store MetricWriter, logger *log.Logger) *Pipeline {
	return &Pipeline{
		Config: cfg,
		Source: source,
		Colors: colors,
		Store:  store,
		Logger: logger,
	}
}

// Collect gathers the full batch for this run. Per-channel failures are
// logged and skipped; Collect itself never fails.
func (p *Pipeline) Collect(ctx context.Context) []models.MetricRow {
	limit := p.Config.Settings.MaxVideosToFetch
	var rows []models.MetricRow

	for _, sector := range p.Config.SectorNames() {
		channels := p.Config.Sectors[sector]
		p.Logger.Printf("Processing sector %s (%d channels)", sector, len(channels))

		for _, channel := range channels {
			videos, err := p.Source.RecentVideos(ctx, channel.ID, limit)
			if err != nil {
				p.Logger.Printf("Skipping %s: %v", channel.ID, err)
				continue
			}

			videoIDs := make([]string, 0, len(videos))
			for _, v := range videos {
				videoIDs = append(videoIDs, v.VideoID)
			}
			stats := p.Source.VideoStats(ctx, videoIDs)

			collected := 0
			for _, v := range videos {
				stat, ok := stats[v.VideoID]
				if !ok {
					continue
				}
				rows = append(rows, models.MetricRow{
					SnapshotAt:    time.Now().UTC(),
					Sector:        sector,
					ChannelID:     channel.ID,
					ChannelName:   v.ChannelTitle,
					VideoID:       v.VideoID,
					VideoTitle:    v.Title,
					PublishedAt:   v.PublishedAt,
					ViewCount:     stat.Views,
					LikeCount:     stat.Likes,
					CommentCount:  stat.Comments,
					ThumbnailURL:  v.ThumbnailURL,
					DominantColor: p.Colors.Hex(ctx, v.ThumbnailURL),
				})
				collected++
			}
			p.Logger.Printf("Fetched %d videos for %s", collected, channel.ID)
		}
	}

	return rows
}

// Run executes one full ETL pass. An empty batch is the non-error "no data
// collected" outcome; a warehouse write failure is returned and is fatal to
// the run.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.New().String()
	p.Logger.Printf("Starting ETL run %s", runID)

	rows := p.Collect(ctx)
	if len(rows) == 0 {
		p.Logger.Printf("Run %s: no data collected", runID)
		return nil
	}

	p.Logger.Printf("Run %s: uploading %d rows to warehouse", runID, len(rows))
	if err := p.Store.InsertMetrics(ctx, rows); err != nil {
		return fmt.Errorf("warehouse load failed: %w", err)
	}

	p.Logger.Printf("Run %s: ETL success, %d rows appended", runID, len(rows))
	return nil
}
