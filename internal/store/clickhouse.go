package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/pressly/goose/v3"
)

func clickhouseOptions() *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{os.Getenv("CLICKHOUSE_URL")},
		Auth: clickhouse.Auth{
			Database: os.Getenv("CLICKHOUSE_DATABASE"),
			Username: os.Getenv("CLICKHOUSE_USERNAME"),
			Password: os.Getenv("CLICKHOUSE_PASSWORD"),
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{
				{Name: "youtube-analytics-pipeline", Version: "1.0"},
			},
		},
	}
}

func ConnectClickhouse() (driver.Conn, error) {
	ctx := context.Background()
	var conn driver.Conn
	var err error

	// Retry up to 10 times, waiting 3 seconds between attempts
	for i := 1; i <= 10; i++ {
		conn, err = clickhouse.Open(clickhouseOptions())
		if err == nil {
			err = conn.Ping(ctx)
			if err == nil {
				fmt.Println("Connected to ClickHouse!")
				return conn, nil
			}
		}

		fmt.Printf("Attempt %d: ClickHouse not ready: %v\n", i, err)
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("could not connect to ClickHouse after multiple attempts: %w", err)
}

// MigrateClickhouse applies the warehouse schema migrations from the
// embedded FS. Schema evolution beyond these files is an external concern.
func MigrateClickhouse(migrationsFS fs.FS, dir string) error {
	goose.SetBaseFS(migrationsFS)
	defer func() {
		goose.SetBaseFS(nil)
	}()

	if err := goose.SetDialect("clickhouse"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	db := clickhouse.OpenDB(clickhouseOptions())
	defer db.Close()

	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
