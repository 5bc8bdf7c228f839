package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Parser  ParserConfig
	Upload  UploadConfig
	Archive ArchiveConfig
	Log     LogConfig
	CORS    CORSConfig
	Metrics MetricsConfig
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

// ParserProviderConfig holds settings for a single document model provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds the ordered list of model providers tried for extraction.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// Providers returns the configured providers in fallback order. The primary is always included.
func (p *ParserConfig) Providers() []ParserProviderConfig {
	out := []ParserProviderConfig{p.Primary}
	for _, c := range []ParserProviderConfig{p.Secondary, p.Tertiary} {
		if c.Provider != "" {
			out = append(out, c)
		}
	}
	return out
}

// UploadConfig holds settings for the temporary storage of uploaded invoices.
type UploadConfig struct {
	Dir           string `mapstructure:"dir"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
}

// ArchiveConfig holds the optional S3 archive of processed invoice images.
type ArchiveConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
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

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// TestModeEnabled reports whether order numbers are renumbered on create.
// It is evaluated on every call so the toggle can change without a restart.
// ORDERSCAN_TESTING takes precedence over the legacy TESTING variable.
func TestModeEnabled() bool {
	v := viper.New()
	_ = v.BindEnv("testing", "ORDERSCAN_TESTING", "TESTING")
	enabled, err := cast.ToBoolE(strings.ToLower(strings.TrimSpace(v.GetString("testing"))))
	return err == nil && enabled
}

// Load reads configuration from environment variables with the ORDERSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ORDERSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "orderscan")
	v.SetDefault("db.password", "orderscan_secret")
	v.SetDefault("db.name", "orderscan_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Parser defaults
	v.SetDefault("parser.primary.provider", "gemini")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "gemini-2.5-pro")
	v.SetDefault("parser.primary.max_retries", 2)
	v.SetDefault("parser.primary.timeout_secs", 120)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.max_retries", 2)
	v.SetDefault("parser.secondary.timeout_secs", 120)
	v.SetDefault("parser.tertiary.provider", "")
	v.SetDefault("parser.tertiary.api_key", "")
	v.SetDefault("parser.tertiary.default_model", "")
	v.SetDefault("parser.tertiary.max_retries", 2)
	v.SetDefault("parser.tertiary.timeout_secs", 120)

	// Upload defaults
	v.SetDefault("upload.dir", os.TempDir())
	v.SetDefault("upload.max_file_size_mb", 20)

	// Archive defaults
	v.SetDefault("archive.enabled", false)
	v.SetDefault("archive.region", "us-east-1")
	v.SetDefault("archive.bucket", "orderscan-invoices")
	v.SetDefault("archive.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "ORDERSCAN_SERVER_PORT",
		"server.read_timeout":            "ORDERSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "ORDERSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":             "ORDERSCAN_SERVER_ENVIRONMENT",
		"db.host":                        "ORDERSCAN_DB_HOST",
		"db.port":                        "ORDERSCAN_DB_PORT",
		"db.user":                        "ORDERSCAN_DB_USER",
		"db.password":                    "ORDERSCAN_DB_PASSWORD",
		"db.name":                        "ORDERSCAN_DB_NAME",
		"db.sslmode":                     "ORDERSCAN_DB_SSLMODE",
		"db.max_open":                    "ORDERSCAN_DB_MAX_OPEN",
		"db.max_idle":                    "ORDERSCAN_DB_MAX_IDLE",
		"parser.primary.provider":        "ORDERSCAN_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "ORDERSCAN_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "ORDERSCAN_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.max_retries":     "ORDERSCAN_PARSER_PRIMARY_MAX_RETRIES",
		"parser.primary.timeout_secs":    "ORDERSCAN_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "ORDERSCAN_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "ORDERSCAN_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "ORDERSCAN_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.max_retries":   "ORDERSCAN_PARSER_SECONDARY_MAX_RETRIES",
		"parser.secondary.timeout_secs":  "ORDERSCAN_PARSER_SECONDARY_TIMEOUT_SECS",
		"parser.tertiary.provider":       "ORDERSCAN_PARSER_TERTIARY_PROVIDER",
		"parser.tertiary.api_key":        "ORDERSCAN_PARSER_TERTIARY_API_KEY",
		"parser.tertiary.default_model":  "ORDERSCAN_PARSER_TERTIARY_DEFAULT_MODEL",
		"parser.tertiary.max_retries":    "ORDERSCAN_PARSER_TERTIARY_MAX_RETRIES",
		"parser.tertiary.timeout_secs":   "ORDERSCAN_PARSER_TERTIARY_TIMEOUT_SECS",
		"upload.dir":                     "ORDERSCAN_UPLOAD_DIR",
		"upload.max_file_size_mb":        "ORDERSCAN_UPLOAD_MAX_FILE_SIZE_MB",
		"archive.enabled":                "ORDERSCAN_ARCHIVE_ENABLED",
		"archive.region":                 "ORDERSCAN_ARCHIVE_REGION",
		"archive.bucket":                 "ORDERSCAN_ARCHIVE_BUCKET",
		"archive.endpoint":               "ORDERSCAN_ARCHIVE_ENDPOINT",
		"archive.access_key":             "ORDERSCAN_ARCHIVE_ACCESS_KEY",
		"archive.secret_key":             "ORDERSCAN_ARCHIVE_SECRET_KEY",
		"log.level":                      "ORDERSCAN_LOG_LEVEL",
		"log.format":                     "ORDERSCAN_LOG_FORMAT",
		"cors.allowed_origins":           "ORDERSCAN_CORS_ALLOWED_ORIGINS",
		"metrics.enabled":                "ORDERSCAN_METRICS_ENABLED",
		"metrics.path":                   "ORDERSCAN_METRICS_PATH",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Platforms like Cloud Run set PORT. Use it if ORDERSCAN_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ORDERSCAN_SERVER_PORT") == "" {
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
	cfg.Parser = ParserConfig{
		Primary:   providerConfig(v, "parser.primary"),
		Secondary: providerConfig(v, "parser.secondary"),
		Tertiary:  providerConfig(v, "parser.tertiary"),
	}
	// GOOGLE_API_KEY is the conventional Gemini credential; honour it when the primary key is unset.
	if cfg.Parser.Primary.Provider == "gemini" && cfg.Parser.Primary.APIKey == "" {
		cfg.Parser.Primary.APIKey = os.Getenv("GOOGLE_API_KEY")
	}
	cfg.Upload = UploadConfig{
		Dir:           v.GetString("upload.dir"),
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.Archive = ArchiveConfig{
		Enabled:   v.GetBool("archive.enabled"),
		Region:    v.GetString("archive.region"),
		Bucket:    v.GetString("archive.bucket"),
		Endpoint:  v.GetString("archive.endpoint"),
		AccessKey: v.GetString("archive.access_key"),
		SecretKey: v.GetString("archive.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Metrics = MetricsConfig{
		Enabled: v.GetBool("metrics.enabled"),
		Path:    v.GetString("metrics.path"),
	}

	if cfg.Upload.MaxFileSizeMB <= 0 {
		return nil, fmt.Errorf("upload.max_file_size_mb must be positive, got %d", cfg.Upload.MaxFileSizeMB)
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ParserProviderConfig {
	return ParserProviderConfig{
		Provider:     v.GetString(prefix + ".provider"),
		APIKey:       v.GetString(prefix + ".api_key"),
		DefaultModel: v.GetString(prefix + ".default_model"),
		MaxRetries:   v.GetInt(prefix + ".max_retries"),
		TimeoutSecs:  v.GetInt(prefix + ".timeout_secs"),
	}
}
