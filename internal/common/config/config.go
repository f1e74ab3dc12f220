package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Feed     FeedConfig     `yaml:"feed"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// FeedConfig points at the GTFS static feed to load
type FeedConfig struct {
	Path   string `yaml:"path"`
	Export bool   `yaml:"export"`
	// KeepVersions is how many inactive versions survive an export.
	KeepVersions int `yaml:"keep_versions" validate:"gte=0"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     string `yaml:"port" validate:"required,numeric"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname" validate:"required"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	FilePath   string `yaml:"file"`
	DiscordURL string `yaml:"discord_webhook" validate:"omitempty,url"`
}

var validate = validator.New()

// Load builds the configuration from defaults, then the YAML file named by
// GTFS_CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			DBName: "transitfeed",
		},
		Feed: FeedConfig{
			KeepVersions: 1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("GTFS_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Feed.Path = getEnv("GTFS_FEED_PATH", cfg.Feed.Path)
	cfg.Feed.Export = getBoolEnv("DB_EXPORT", cfg.Feed.Export)
	cfg.Feed.KeepVersions = getIntEnv("GTFS_KEEP_VERSIONS", cfg.Feed.KeepVersions)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Logging.Level = getEnv("LOG_LEVEL", cfg.Logging.Level)
	cfg.Logging.FilePath = getEnv("LOG_FILE", cfg.Logging.FilePath)
	cfg.Logging.DiscordURL = getEnv("DISCORD_WEBHOOK_URL", cfg.Logging.DiscordURL)

	if err := validate.Struct(cfg.Logging); err != nil {
		return nil, fmt.Errorf("invalid logging configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that a feed path is set, and the database settings when
// exporting is enabled.
func (c *Config) Validate() error {
	if c.Feed.Path == "" {
		return fmt.Errorf("no feed path configured (GTFS_FEED_PATH)")
	}
	if err := validate.Struct(c.Feed); err != nil {
		return fmt.Errorf("invalid feed configuration: %w", err)
	}
	if c.Feed.Export {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}
