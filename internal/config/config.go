package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration loaded from environment variables.
type Config struct {
	App        AppConfig
	Telegram   TelegramConfig
	RegistryDB RegistryDBConfig
	Cache      CacheConfig
	Ops        OpsServerConfig
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `envconfig:"APP_NAME" default:"bizgifts-bot"`
	Environment string `envconfig:"APP_ENV" default:"development"`
	Version     string `envconfig:"APP_VERSION" default:"1.0.0"`
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	Token          string        `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	AdminID        int64         `envconfig:"TELEGRAM_ADMIN_ID" required:"true"`
	BaseURL        string        `envconfig:"TELEGRAM_BASE_URL" default:""`
	PollTimeout    int           `envconfig:"TELEGRAM_POLL_TIMEOUT" default:"30"`
	RequestTimeout time.Duration `envconfig:"TELEGRAM_REQUEST_TIMEOUT" default:"45s"`
}

// RegistryDBConfig holds connection registry storage settings.
type RegistryDBConfig struct {
	Type string `envconfig:"REGISTRY_DB_TYPE" default:"sqlite"` // sqlite, postgres, mysql, or file
	Path string `envconfig:"REGISTRY_DB_PATH" default:"./data/connections.db"`
	// JSON file settings
	FilePath string `envconfig:"REGISTRY_FILE_PATH" default:"./data/business_connections.json"`
	// PostgreSQL / MySQL settings
	Host     string `envconfig:"REGISTRY_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"REGISTRY_DB_PORT" default:"5432"`
	Name     string `envconfig:"REGISTRY_DB_NAME" default:"bizgifts"`
	User     string `envconfig:"REGISTRY_DB_USER" default:"postgres"`
	Password string `envconfig:"REGISTRY_DB_PASS" default:""`
	SSLMode  string `envconfig:"REGISTRY_DB_SSLMODE" default:"disable"`
}

// CacheConfig holds cache settings.
type CacheConfig struct {
	Type string `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// OpsServerConfig holds the ops HTTP server settings.
type OpsServerConfig struct {
	Enabled         bool          `envconfig:"OPS_SERVER_ENABLED" default:"true"`
	Host            string        `envconfig:"OPS_SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"OPS_SERVER_PORT" default:"8080"`
	Key             string        `envconfig:"OPS_KEY" default:""`
	ReadTimeout     time.Duration `envconfig:"OPS_SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"OPS_SERVER_WRITE_TIMEOUT" default:"15s"`
	ShutdownTimeout time.Duration `envconfig:"OPS_SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// PostgresDSN returns the PostgreSQL connection string.
func (r *RegistryDBConfig) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		r.User, r.Password, r.Host, r.Port, r.Name, r.SSLMode)
}

// MySQLDSN returns the MySQL data source name.
func (r *RegistryDBConfig) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		r.User, r.Password, r.Host, r.Port, r.Name)
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// Address returns the ops server address in host:port format.
func (o *OpsServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

// IsDevelopment returns true if running in development mode.
func (a *AppConfig) IsDevelopment() bool {
	return a.Environment == "development"
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration or panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
