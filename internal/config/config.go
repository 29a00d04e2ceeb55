package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Upstream data provider configuration
	InsideX    InsideXConfig
	Blockberry BlockberryConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Monitor configuration
	Monitor MonitorConfig

	// Logging configuration
	Log LogConfig
}

// InsideXConfig holds connection settings for the InsideX token data provider
type InsideXConfig struct {
	BaseURL        string        `envconfig:"INSIDEX_BASE_URL" default:"https://api-ex.insidex.trade"`
	APIKey         string        `envconfig:"INSIDEX_API_KEY" default:""`
	RequestTimeout time.Duration `envconfig:"INSIDEX_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"INSIDEX_MAX_RETRIES" default:"3"`
	RetryBase      time.Duration `envconfig:"INSIDEX_RETRY_BASE" default:"2s"`
	MinSpacing     time.Duration `envconfig:"INSIDEX_MIN_SPACING" default:"0s"`
}

// BlockberryConfig holds connection settings for the Blockberry holder provider.
// The free tier allows roughly two calls a minute, hence the default spacing.
type BlockberryConfig struct {
	BaseURL        string        `envconfig:"BLOCKBERRY_BASE_URL" default:"https://api.blockberry.one"`
	APIKey         string        `envconfig:"BLOCKBERRY_API_KEY" default:""`
	RequestTimeout time.Duration `envconfig:"BLOCKBERRY_REQUEST_TIMEOUT" default:"60s"`
	MaxRetries     int           `envconfig:"BLOCKBERRY_MAX_RETRIES" default:"3"`
	RetryBase      time.Duration `envconfig:"BLOCKBERRY_RETRY_BASE" default:"2s"`
	MinSpacing     time.Duration `envconfig:"BLOCKBERRY_MIN_SPACING" default:"30s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"whalewatch"`
	Password        string        `envconfig:"DB_PASSWORD" default:"whalewatch"`
	Name            string        `envconfig:"DB_NAME" default:"whale_watch"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
}

// MonitorConfig holds whale-monitor settings
type MonitorConfig struct {
	MetricsPort int `envconfig:"MONITOR_METRICS_PORT" default:"8080"`

	// MinMarketCap filters which trending tokens enter the watchlist (USD)
	MinMarketCap float64 `envconfig:"MONITOR_MIN_MARKET_CAP" default:"1000000"`

	// MinWhaleHoldings filters which holders become tracked snapshots (USD)
	MinWhaleHoldings float64 `envconfig:"MONITOR_MIN_WHALE_HOLDINGS" default:"20000"`

	// UpdateInterval gates how often each monitoring stage may repeat
	UpdateInterval time.Duration `envconfig:"MONITOR_UPDATE_INTERVAL" default:"300s"`

	// PollInterval is the cadence of the monitoring loop itself
	PollInterval time.Duration `envconfig:"MONITOR_POLL_INTERVAL" default:"30s"`

	// ManualTokens are coin types that are always watched (comma-separated)
	ManualTokens []string `envconfig:"MONITOR_MANUAL_TOKENS" default:""`

	// Meme classification heuristic
	MemeKeywords         []string `envconfig:"MONITOR_MEME_KEYWORDS" default:"doge,pepe,inu,moon,wojak,lofi,cat,baby"`
	MemeOverrides        []string `envconfig:"MONITOR_MEME_OVERRIDES" default:""`
	MemeMarketCapCeiling float64  `envconfig:"MONITOR_MEME_MARKET_CAP_CEILING" default:"10000000"`

	// UtilityAlertThreshold gates low-priority alerts for utility tokens (USD)
	UtilityAlertThreshold float64 `envconfig:"MONITOR_UTILITY_ALERT_THRESHOLD" default:"100000"`

	// HolderPageSize is how many top holders are fetched per token
	HolderPageSize int `envconfig:"MONITOR_HOLDER_PAGE_SIZE" default:"20"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
