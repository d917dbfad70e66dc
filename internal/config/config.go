// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ShIIIrochka/SecondStagePROD/internal/platform/crypto"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerAddress string        `mapstructure:"SERVER_ADDRESS"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"SERVER_TIMEOUT_SECONDS"`

	// Auth Configuration
	RandomSecret    string        `mapstructure:"RANDOM_SECRET"`
	TokenTTLMinutes int           `mapstructure:"TOKEN_TTL_MINUTES"`
	TokenTTL        time.Duration `mapstructure:"-"`

	// Database Configuration
	PostgresHost      string        `mapstructure:"POSTGRES_HOST"`
	PostgresPort      string        `mapstructure:"POSTGRES_PORT"`
	PostgresUser      string        `mapstructure:"POSTGRES_USERNAME"`
	PostgresPassword  string        `mapstructure:"POSTGRES_PASSWORD"`
	PostgresDB        string        `mapstructure:"POSTGRES_DATABASE"`
	PostgresSSLMode   string        `mapstructure:"POSTGRES_SSL_MODE"`
	SQLitePath        string        `mapstructure:"SQLITE_PATH"`
	DBLogLevel        string        `mapstructure:"DB_LOG_LEVEL"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`

	// Redis Configuration
	RedisHost     string `mapstructure:"REDIS_HOST"`
	RedisPort     string `mapstructure:"REDIS_PORT"`
	RedisUser     string `mapstructure:"REDIS_USERNAME"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Cron Jobs
	DigestSchedule string `mapstructure:"DIGEST_SCHEDULE"`
}

// Load attempts to load configuration from a .env file (if present), an
// optional config.yaml, and environment variables. Environment always wins.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()

	// Set default values
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_ADDRESS", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("RANDOM_SECRET", "")
	v.SetDefault("TOKEN_TTL_MINUTES", 180)

	v.SetDefault("POSTGRES_HOST", "")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USERNAME", "postgres")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("POSTGRES_DATABASE", "promo")
	v.SetDefault("POSTGRES_SSL_MODE", "disable")
	v.SetDefault("SQLITE_PATH", "local.db")
	v.SetDefault("DB_LOG_LEVEL", "warn")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_USERNAME", "")
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("DIGEST_SCHEDULE", "")

	// Optional config.yaml next to the binary; absence is fine.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Convert duration fields
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.TokenTTL = time.Duration(cfg.TokenTTLMinutes) * time.Minute

	// Tokens signed with a boot-scoped secret die with the process, which is
	// still safer than a well-known default.
	if cfg.RandomSecret == "" {
		secret, err := crypto.GenerateSecureRandomString(32)
		if err != nil {
			return nil, fmt.Errorf("failed to generate fallback signing secret: %w", err)
		}
		cfg.RandomSecret = secret
	}

	return &cfg, nil
}

// UsesSQLite reports whether the sqlite fallback is in effect. The service
// runs on Postgres whenever POSTGRES_HOST is provided.
func (c *Config) UsesSQLite() bool {
	return c.PostgresHost == ""
}

// DatabaseDSN returns the GORM DSN for the configured database.
func (c *Config) DatabaseDSN() string {
	if c.UsesSQLite() {
		return c.SQLitePath
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser, c.PostgresPassword, c.PostgresHost, c.PostgresPort, c.PostgresDB, c.PostgresSSLMode)
}

// UsesRedis reports whether a Redis-backed session store is configured.
func (c *Config) UsesRedis() bool {
	return c.RedisHost != ""
}

// RedisAddr returns the host:port address of the Redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%s", c.ServerAddress, c.ServerPort)
}
