package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/nbx0021/youtube-analytics-pipeline/internal/config"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/pipeline"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/store"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/thumbnail"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/youtube"
	"github.com/nbx0021/youtube-analytics-pipeline/migrations"
)

// One-shot ETL entrypoint: walks every configured channel, assembles the
// snapshot batch and appends it to the warehouse. Exit 0 covers both success
// and the "no data collected" case; config, credential and warehouse write
// failures exit non-zero.
func main() {
	configPath := flag.String("config", "config/channels.yaml", "path to channels config")
	flag.Parse()

	logger := log.New(os.Stdout, "ETL: ", log.Ldate|log.Ltime)

	config.LoadEnv()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load config: ", err)
	}

	yt, err := youtube.NewClient(os.Getenv("YOUTUBE_API_KEY"), logger)
	if err != nil {
		logger.Fatal("Failed to authenticate: ", err)
	}

	conn, err := store.ConnectClickhouse()
	if err != nil {
		logger.Fatal("Failed to connect to warehouse: ", err)
	}

	if err := store.MigrateClickhouse(migrations.FS, "analytics"); err != nil {
		logger.Fatal("Warehouse migration failed: ", err)
	}

	p := pipeline.New(
		cfg,
		yt,
		thumbnail.NewExtractor(logger),
		store.NewClickhouseMetricStore(conn),
		logger,
	)

	if err := p.Run(context.Background()); err != nil {
		logger.Fatal("ETL run failed: ", err)
	}
}
