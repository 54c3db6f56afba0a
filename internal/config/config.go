package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	S3         S3Config
	Log        LogConfig
	Classifier ClassifierConfig
	OCR        OCRConfig
	Geometry   GeometryConfig
	Worker     WorkerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds object storage settings for page images and result bundles.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ClassifierProviderConfig holds settings for a single LLM classifier provider.
type ClassifierProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ClassifierConfig holds LLM classifier settings with multi-provider support.
// Providers are tried in order (primary, then secondary) by the fallback chain.
type ClassifierConfig struct {
	Primary   ClassifierProviderConfig `mapstructure:"primary"`
	Secondary ClassifierProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary classifier config, or nil if not configured.
func (c *ClassifierConfig) SecondaryConfig() *ClassifierProviderConfig {
	if c.Secondary.Provider != "" {
		return &c.Secondary
	}
	return nil
}

// GeometryConfig holds the table reconstruction thresholds. The defaults are
// tuned for 300 DPI renders of 2400x1600 pages; rendering at another
// resolution needs these scaled to match.
type GeometryConfig struct {
	RowTolerancePx     float64 `mapstructure:"row_tolerance_px"`
	MinColumnWidthPx   float64 `mapstructure:"min_column_width_px"`
	AssignTolerancePx  float64 `mapstructure:"assign_tolerance_px"`
	MinTokenLength     int     `mapstructure:"min_token_length"`
	MinTableConfidence float64 `mapstructure:"min_table_confidence"`
}

// OCRConfig holds settings for the external OCR engine.
type OCRConfig struct {
	Endpoint    string `mapstructure:"endpoint"`
	APIKey      string `mapstructure:"api_key"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// WorkerConfig holds page-level worker pool settings.
type WorkerConfig struct {
	Concurrency     int `mapstructure:"concurrency"`
	PageTimeoutSecs int `mapstructure:"page_timeout_secs"`
}

// Load reads configuration from environment variables with the HILYTE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("HILYTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "hilyte")
	v.SetDefault("db.password", "hilyte_secret")
	v.SetDefault("db.name", "hilyte_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "hilyte-pages")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Classifier defaults
	v.SetDefault("classifier.primary.provider", "claude")
	v.SetDefault("classifier.primary.api_key", "")
	v.SetDefault("classifier.primary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("classifier.primary.timeout_secs", 60)
	v.SetDefault("classifier.secondary.provider", "")
	v.SetDefault("classifier.secondary.api_key", "")
	v.SetDefault("classifier.secondary.default_model", "")
	v.SetDefault("classifier.secondary.timeout_secs", 60)

	// OCR defaults
	v.SetDefault("ocr.endpoint", "http://localhost:8884/ocr")
	v.SetDefault("ocr.api_key", "")
	v.SetDefault("ocr.timeout_secs", 120)

	// Geometry defaults (300 DPI, 2400x1600 page renders)
	v.SetDefault("geometry.row_tolerance_px", 5.0)
	v.SetDefault("geometry.min_column_width_px", 20.0)
	v.SetDefault("geometry.assign_tolerance_px", 10.0)
	v.SetDefault("geometry.min_token_length", 4)
	v.SetDefault("geometry.min_table_confidence", 0.5)

	// Worker defaults
	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.page_timeout_secs", 300)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                         "HILYTE_SERVER_PORT",
		"server.read_timeout":                 "HILYTE_SERVER_READ_TIMEOUT",
		"server.write_timeout":                "HILYTE_SERVER_WRITE_TIMEOUT",
		"server.environment":                  "HILYTE_SERVER_ENVIRONMENT",
		"db.host":                             "HILYTE_DB_HOST",
		"db.port":                             "HILYTE_DB_PORT",
		"db.user":                             "HILYTE_DB_USER",
		"db.password":                         "HILYTE_DB_PASSWORD",
		"db.name":                             "HILYTE_DB_NAME",
		"db.sslmode":                          "HILYTE_DB_SSLMODE",
		"db.max_open":                         "HILYTE_DB_MAX_OPEN",
		"db.max_idle":                         "HILYTE_DB_MAX_IDLE",
		"s3.region":                           "HILYTE_S3_REGION",
		"s3.bucket":                           "HILYTE_S3_BUCKET",
		"s3.endpoint":                         "HILYTE_S3_ENDPOINT",
		"s3.access_key":                       "HILYTE_S3_ACCESS_KEY",
		"s3.secret_key":                       "HILYTE_S3_SECRET_KEY",
		"log.level":                           "HILYTE_LOG_LEVEL",
		"log.format":                          "HILYTE_LOG_FORMAT",
		"classifier.primary.provider":         "HILYTE_CLASSIFIER_PRIMARY_PROVIDER",
		"classifier.primary.api_key":          "HILYTE_CLASSIFIER_PRIMARY_API_KEY",
		"classifier.primary.default_model":    "HILYTE_CLASSIFIER_PRIMARY_DEFAULT_MODEL",
		"classifier.primary.timeout_secs":     "HILYTE_CLASSIFIER_PRIMARY_TIMEOUT_SECS",
		"classifier.secondary.provider":       "HILYTE_CLASSIFIER_SECONDARY_PROVIDER",
		"classifier.secondary.api_key":        "HILYTE_CLASSIFIER_SECONDARY_API_KEY",
		"classifier.secondary.default_model":  "HILYTE_CLASSIFIER_SECONDARY_DEFAULT_MODEL",
		"classifier.secondary.timeout_secs":   "HILYTE_CLASSIFIER_SECONDARY_TIMEOUT_SECS",
		"ocr.endpoint":                        "HILYTE_OCR_ENDPOINT",
		"ocr.api_key":                         "HILYTE_OCR_API_KEY",
		"ocr.timeout_secs":                    "HILYTE_OCR_TIMEOUT_SECS",
		"geometry.row_tolerance_px":           "HILYTE_GEOMETRY_ROW_TOLERANCE_PX",
		"geometry.min_column_width_px":        "HILYTE_GEOMETRY_MIN_COLUMN_WIDTH_PX",
		"geometry.assign_tolerance_px":        "HILYTE_GEOMETRY_ASSIGN_TOLERANCE_PX",
		"geometry.min_token_length":           "HILYTE_GEOMETRY_MIN_TOKEN_LENGTH",
		"geometry.min_table_confidence":       "HILYTE_GEOMETRY_MIN_TABLE_CONFIDENCE",
		"worker.concurrency":                  "HILYTE_WORKER_CONCURRENCY",
		"worker.page_timeout_secs":            "HILYTE_WORKER_PAGE_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if HILYTE_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("HILYTE_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Classifier = ClassifierConfig{
		Primary: ClassifierProviderConfig{
			Provider:     v.GetString("classifier.primary.provider"),
			APIKey:       v.GetString("classifier.primary.api_key"),
			DefaultModel: v.GetString("classifier.primary.default_model"),
			TimeoutSecs:  v.GetInt("classifier.primary.timeout_secs"),
		},
		Secondary: ClassifierProviderConfig{
			Provider:     v.GetString("classifier.secondary.provider"),
			APIKey:       v.GetString("classifier.secondary.api_key"),
			DefaultModel: v.GetString("classifier.secondary.default_model"),
			TimeoutSecs:  v.GetInt("classifier.secondary.timeout_secs"),
		},
	}
	cfg.OCR = OCRConfig{
		Endpoint:    v.GetString("ocr.endpoint"),
		APIKey:      v.GetString("ocr.api_key"),
		TimeoutSecs: v.GetInt("ocr.timeout_secs"),
	}
	cfg.Geometry = GeometryConfig{
		RowTolerancePx:     v.GetFloat64("geometry.row_tolerance_px"),
		MinColumnWidthPx:   v.GetFloat64("geometry.min_column_width_px"),
		AssignTolerancePx:  v.GetFloat64("geometry.assign_tolerance_px"),
		MinTokenLength:     v.GetInt("geometry.min_token_length"),
		MinTableConfidence: v.GetFloat64("geometry.min_table_confidence"),
	}
	cfg.Worker = WorkerConfig{
		Concurrency:     v.GetInt("worker.concurrency"),
		PageTimeoutSecs: v.GetInt("worker.page_timeout_secs"),
	}

	return cfg, nil
}
