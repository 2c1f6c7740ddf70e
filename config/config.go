package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Feed      FeedConfig
	Scheduler SchedulerConfig
	Server    ServerConfig
	Media     MediaConfig

	DatabaseURL string // Postgres; SQLite at DBPath is used when empty
	DBPath      string
	LogPath     string
	BatchSize   int
}

// FeedConfig describes the upstream RESO feed. An unset BaseURL puts the
// client in sample-data mode.
type FeedConfig struct {
	BaseURL   string `yaml:"base_url"`
	Token     string `yaml:"-"`
	HomeState string `yaml:"home_state"`

	// Default search parameters, overridable per request.
	Statuses     []string `yaml:"statuses"`
	PropertyType string   `yaml:"property_type"`
	City         string   `yaml:"city"`
}

type SchedulerConfig struct {
	Interval time.Duration
	Cron     string
}

type ServerConfig struct {
	Port int
}

type MediaConfig struct {
	MirrorEnabled   bool
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Feed: FeedConfig{
			BaseURL:   os.Getenv("FEED_BASE_URL"),
			Token:     os.Getenv("FEED_TOKEN"),
			HomeState: getEnv("FEED_HOME_STATE", "NE"),
		},
		Scheduler: SchedulerConfig{
			Cron: os.Getenv("SYNC_CRON"),
		},
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8080),
		},
		Media: MediaConfig{
			MirrorEnabled:   os.Getenv("MEDIA_MIRROR") == "true",
			Bucket:          os.Getenv("MEDIA_S3_BUCKET"),
			Region:          getEnv("MEDIA_S3_REGION", "us-east-1"),
			Endpoint:        os.Getenv("MEDIA_S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("MEDIA_S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("MEDIA_S3_SECRET_ACCESS_KEY"),
		},
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPath:      getEnv("DB_PATH", "listings.db"),
		LogPath:     getEnv("LOG_PATH", "sync.log"),
		BatchSize:   getEnvInt("SYNC_BATCH_SIZE", 50),
	}

	if interval := os.Getenv("SYNC_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err == nil {
			cfg.Scheduler.Interval = d
		}
	}

	if err := cfg.loadFeedProfile(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFeedProfile overlays config/feed.yaml, if present, onto the env-derived
// feed settings. The bearer token never lives in the file.
func (c *Config) loadFeedProfile() error {
	data, err := os.ReadFile("config/feed.yaml")
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var profile FeedConfig
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return err
	}

	if profile.BaseURL != "" {
		c.Feed.BaseURL = profile.BaseURL
	}
	if profile.HomeState != "" {
		c.Feed.HomeState = profile.HomeState
	}
	if len(profile.Statuses) > 0 {
		c.Feed.Statuses = profile.Statuses
	}
	if profile.PropertyType != "" {
		c.Feed.PropertyType = profile.PropertyType
	}
	if profile.City != "" {
		c.Feed.City = profile.City
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}
