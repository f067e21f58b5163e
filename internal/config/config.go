package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultMaxVideos = 5

// ChannelSpec is one tracked channel inside a sector. Loaded once per run,
// immutable afterwards.
type ChannelSpec struct {
	ID string `yaml:"id"`
}

type Settings struct {
	MaxVideosToFetch int `yaml:"max_videos_to_fetch"`
}

// Config mirrors config/channels.yaml: sectors group the channels the ETL
// walks, settings cap how many videos are fetched per channel.
type Config struct {
	Sectors  map[string][]ChannelSpec `yaml:"sectors"`
	Settings Settings                 `yaml:"settings"`
}

// Load reads and validates the channel config. Channel IDs are trimmed;
// empty IDs or an empty sector map are startup-fatal for the caller.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if len(cfg.Sectors) == 0 {
		return nil, fmt.Errorf("config %s has no sectors", path)
	}

	for sector, channels := range cfg.Sectors {
		for i, ch := range channels {
			id := strings.TrimSpace(ch.ID)
			if id == "" {
				return nil, fmt.Errorf("sector %s: channel %d has an empty id", sector, i)
			}
			channels[i].ID = id
		}
	}

	if cfg.Settings.MaxVideosToFetch <= 0 {
		cfg.Settings.MaxVideosToFetch = DefaultMaxVideos
	}

	return &cfg, nil
}

// SectorNames returns the configured sectors in a stable order so repeated
// runs walk channels deterministically.
func (c *Config) SectorNames() []string {
	names := make([]string, 0, len(c.Sectors))
	for name := range c.Sectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadEnv pulls in a .env file when present. Missing files are fine; real
// deployments set the environment directly.
func LoadEnv() {
	_ = godotenv.Load()
}

// GetEnv returns the value of key or fallback when unset/empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
