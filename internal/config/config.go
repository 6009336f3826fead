package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port           int              `json:"port"`
	JWTSecret      string           `json:"jwt_secret"`
	JWTTTLHours    int              `json:"jwt_ttl_hours"`
	Database       DatabaseConfig   `json:"database"`
	LogConfig      logger.LogConfig `json:"log_config"`
	Share          ShareConfig      `json:"share"`
	CORSAllowlist  []string         `json:"cors_allowlist"`
	FileStore      FileStoreConfig  `json:"file_store"`
	UploadMaxBytes int64            `json:"upload_max_bytes"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"dbname"`
	SSLMode  string `json:"sslmode"`
}

type ShareConfig struct {
	// PublicBaseURL is the origin used for share links, e.g. https://inspect.example.com.
	// Empty means the origin of the request that created the link.
	PublicBaseURL      string `json:"public_base_url"`
	RateLimitPerMinute int    `json:"rate_limit_per_minute"`
	MaxAgeDays         int    `json:"max_age_days"`
	ExpiryCron         string `json:"expiry_cron"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	defaultJWTTTLHours        = 72
	defaultRateLimitPerMinute = 60
	defaultExpiryCron         = "0 * * * *"
	defaultUploadMaxBytes     = 10 * 1024 * 1024
)

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.Database.DSN == "" && cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = defaultJWTTTLHours
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	base := strings.TrimSpace(cfg.Share.PublicBaseURL)
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return fmt.Errorf("share.public_base_url must start with http:// or https://")
	}
	cfg.Share.PublicBaseURL = base
	if cfg.Share.RateLimitPerMinute == 0 {
		cfg.Share.RateLimitPerMinute = defaultRateLimitPerMinute
	}
	if cfg.Share.MaxAgeDays < 0 {
		return fmt.Errorf("share.max_age_days must not be negative")
	}
	if cfg.Share.ExpiryCron == "" {
		cfg.Share.ExpiryCron = defaultExpiryCron
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.UploadMaxBytes <= 0 {
		cfg.UploadMaxBytes = defaultUploadMaxBytes
	}
	return nil
}
