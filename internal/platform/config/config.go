// Package config loads process configuration from the environment.
// One struct per concern keeps wiring in main explicit; services receive
// only the fragment they need.
package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `envconfig:"VETBLOOD_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// Postgres captures data store connection parameters.
type Postgres struct {
	// DSN is required by every process that touches the database; the bot
	// runs without one, so the check lives in postgres.Open.
	DSN          string        `envconfig:"DATABASE_DSN"`
	Migrate      bool          `envconfig:"DB_MIGRATE" default:"false"`
	MaxOpenConns int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnLifetime time.Duration `envconfig:"DB_CONN_LIFETIME" default:"30m"`
}

// Redis captures cache connection parameters. URL empty means not configured.
type Redis struct {
	URL          string        `envconfig:"REDIS_URL"`
	PoolSize     int           `envconfig:"REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"REDIS_WRITE_TIMEOUT" default:"3s"`
}

// Telegram captures bot credentials and the development bypass.
type Telegram struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`
	// MockAuth accepts the sentinel init-data token and injects a fixed
	// identity. Never enable outside local development.
	MockAuth       bool  `envconfig:"TELEGRAM_MOCK_AUTH" default:"false"`
	MockTelegramID int64 `envconfig:"TELEGRAM_MOCK_ID" default:"123456789"`
}

// Bot captures the bot process settings: where the REST API lives and how
// chatty a single chat may be.
type Bot struct {
	APIBaseURL  string        `envconfig:"BOT_API_BASE_URL" default:"http://localhost:8080"`
	PollTimeout int           `envconfig:"BOT_POLL_TIMEOUT" default:"30"`
	RateLimit   int           `envconfig:"BOT_RATE_LIMIT" default:"5"`
	RateWindow  time.Duration `envconfig:"BOT_RATE_WINDOW" default:"10s"`
}

// Auth captures session token settings for the web mini-app.
type Auth struct {
	// SessionSigningKey is only needed by the API server; checked there.
	SessionSigningKey string        `envconfig:"SESSION_SIGNING_KEY"`
	SessionTTL        time.Duration `envconfig:"SESSION_TTL" default:"1h"`
	// ServiceToken lets the bot process call the API on behalf of the
	// Telegram user it is talking to. Empty disables service auth.
	ServiceToken string `envconfig:"SERVICE_AUTH_TOKEN"`
}

// Geo captures the external routing API used for distance lookups.
type Geo struct {
	BaseURL        string        `envconfig:"GEO_API_URL" default:"https://api.routing.yandex.net/v2/distancematrix"`
	APIKey         string        `envconfig:"GEO_API_KEY"`
	RequestTimeout time.Duration `envconfig:"GEO_REQUEST_TIMEOUT" default:"5s"`
	CacheTTL       time.Duration `envconfig:"GEO_CACHE_TTL" default:"15m"`
}

// Matching captures the blood search fan-out parameters.
type Matching struct {
	MaxDistanceKM float64 `envconfig:"MATCH_MAX_DISTANCE_KM" default:"50"`
	Concurrency   int     `envconfig:"MATCH_CONCURRENCY" default:"8"`
}

// Kafka captures the outbox relay transport. Brokers empty means the
// in-process delivery worker is used instead.
type Kafka struct {
	Brokers []string `envconfig:"KAFKA_BROKERS"`
	Topic   string   `envconfig:"KAFKA_NOTIFY_TOPIC" default:"vetblood.notifications"`
	Group   string   `envconfig:"KAFKA_NOTIFY_GROUP" default:"vetblood-notifier"`
}

// Media captures object storage for pet photos.
type Media struct {
	Endpoint  string `envconfig:"S3_ENDPOINT"`
	AccessKey string `envconfig:"S3_ACCESS_KEY"`
	SecretKey string `envconfig:"S3_SECRET_KEY"`
	Bucket    string `envconfig:"S3_BUCKET"`
	PublicURL string `envconfig:"S3_PUBLIC_URL"`
	UseSSL    bool   `envconfig:"S3_USE_SSL" default:"true"`
}

// Config is the full process configuration.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Telegram Telegram
	Bot      Bot
	Auth     Auth
	Geo      Geo
	Matching Matching
	Kafka    Kafka
	Media    Media
}

// Load builds the full configuration from environment variables so main
// stays lean. Missing required variables fail fast at startup.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
