package app

import (
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/cache"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/config"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/handlers"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/middlewares"
	"github.com/nbx0021/youtube-analytics-pipeline/internal/store"
	"github.com/nbx0021/youtube-analytics-pipeline/migrations"
)

// Application wires the read API: the ClickHouse warehouse behind the metric
// store, the Redis cache-aside layer and the HTTP handlers.
type Application struct {
	Logger            *log.Logger
	DBConn            driver.Conn
	Cache             *cache.CacheService
	MiddlewareHandler *middlewares.MiddlewareHandler
	MetricsHandler    *handlers.MetricsHandler
}

func NewApplication() (*Application, error) {
	logger := log.New(os.Stdout, "LOGGING: ", log.Ldate|log.Ltime)

	config.LoadEnv()

	dbConn, err := store.ConnectClickhouse()
	if err != nil {
		logger.Println("Error connecting to clickhouse")
		return nil, err
	}

	err = store.MigrateClickhouse(migrations.FS, "analytics")
	if err != nil {
		logger.Println("PANIC: Clickhouse migration failed, exiting...")
		return nil, err
	}

	logger.Println("Warehouse migrated...")

	cacheSvc := cache.NewCacheService(os.Getenv("REDIS_URL"), logger)

	metricStore := store.NewClickhouseMetricStore(dbConn)
	metricsHandler := handlers.NewMetricsHandler(metricStore, cacheSvc, logger)
	middlewareHandler := middlewares.NewMiddlewareHandler(logger)

	app := &Application{
		Logger:            logger,
		DBConn:            dbConn,
		Cache:             cacheSvc,
		MiddlewareHandler: middlewareHandler,
		MetricsHandler:    metricsHandler,
	}

	return app, nil
}
