package config

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"
	_ "time/tzdata"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Security SecurityConfig
	Budget   BudgetConfig
	Broker   BrokerConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	CORSAllowOrigins []string

	// TrustedProxies are the peers whose X-Forwarded-For header is believed.
	TrustedProxies []*net.IPNet
}

type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// AutoMigrate runs the embedded SQL migrations on startup; otherwise GORM AutoMigrate is used.
	AutoMigrate         bool
	HealthCheckInterval time.Duration
	TokenCleanupEvery   time.Duration
}

type JWTConfig struct {
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	PrivateKey           *rsa.PrivateKey
	PublicKey            *rsa.PublicKey
	Issuer               string
}

type SecurityConfig struct {
	BCryptCost          int
	RateLimitPerSecond  int
	RateLimitBurst      int
	MaxFailedAttempts   int
	PasswordMinLength   int
	RequireUppercase    bool
	RequireLowercase    bool
	RequireNumbers      bool
	RequireSpecialChars bool
	// AuditRetention is how long audit log entries are kept; zero keeps them forever.
	AuditRetention time.Duration
}

// BudgetConfig controls how spending is bucketed into months and how alerts read.
type BudgetConfig struct {
	Timezone              string
	Location              *time.Location
	WarningPercent        int
	CurrencySymbol        string
	AggregationMaxWorkers int
}

// BrokerConfig configures the optional AMQP alert publisher. An empty URL disables it.
type BrokerConfig struct {
	URL                     string
	Exchange                string
	Queue                   string
	PublishTimeout          time.Duration
	BreakerFailureThreshold int
	BreakerResetTimeout     time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads the configuration from the environment. Malformed values are reported
// together rather than silently replaced by their defaults.
func Load() (*Config, error) {
	env := &envReader{}
	cfg := &Config{
		Server: ServerConfig{
			Port:             env.str("SERVER_PORT", "8080"),
			Host:             env.str("SERVER_HOST", "localhost"),
			Environment:      env.str("APP_ENV", "development"),
			ReadTimeout:      env.duration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:     env.duration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			CORSAllowOrigins: env.list("CORS_ALLOW_ORIGINS", []string{"*"}),
			TrustedProxies:   env.cidrs("TRUSTED_PROXIES"),
		},
		Database: DatabaseConfig{
			Host:                env.str("DB_HOST", "localhost"),
			Port:                env.str("DB_PORT", "5432"),
			User:                env.str("DB_USER", "budget_user"),
			Password:            env.str("DB_PASSWORD", "budget_password"),
			Name:                env.str("DB_NAME", "budget_db"),
			SSLMode:             env.str("DB_SSL_MODE", "disable"),
			MaxConnections:      env.int("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:        env.int("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:     env.duration("DB_CONN_MAX_LIFETIME", time.Hour),
			AutoMigrate:         env.bool("AUTO_MIGRATE", false),
			HealthCheckInterval: env.duration("DB_HEALTH_CHECK_INTERVAL", 15*time.Second),
			TokenCleanupEvery:   env.duration("TOKEN_CLEANUP_INTERVAL", time.Hour),
		},
		Security: SecurityConfig{
			BCryptCost:          env.int("BCRYPT_COST", 12),
			RateLimitPerSecond:  env.int("RATE_LIMIT_PER_SECOND", 10),
			RateLimitBurst:      env.int("RATE_LIMIT_BURST", 20),
			MaxFailedAttempts:   env.int("MAX_FAILED_ATTEMPTS", 5),
			PasswordMinLength:   env.int("PASSWORD_MIN_LENGTH", 6),
			RequireUppercase:    env.bool("PASSWORD_REQUIRE_UPPERCASE", false),
			RequireLowercase:    env.bool("PASSWORD_REQUIRE_LOWERCASE", false),
			RequireNumbers:      env.bool("PASSWORD_REQUIRE_NUMBERS", false),
			RequireSpecialChars: env.bool("PASSWORD_REQUIRE_SPECIAL", false),
			AuditRetention:      env.duration("AUDIT_RETENTION", 90*24*time.Hour),
		},
		Budget: BudgetConfig{
			Timezone:              env.str("BUDGET_TIMEZONE", "UTC"),
			Location:              env.location("BUDGET_TIMEZONE", time.UTC),
			WarningPercent:        env.int("BUDGET_WARNING_PERCENT", 80),
			CurrencySymbol:        env.str("BUDGET_CURRENCY_SYMBOL", "₹"),
			AggregationMaxWorkers: env.int("BUDGET_AGGREGATION_WORKERS", 8),
		},
		Broker: BrokerConfig{
			URL:                     env.str("AMQP_URL", ""),
			Exchange:                env.str("AMQP_EXCHANGE", "budget.alerts"),
			Queue:                   env.str("AMQP_QUEUE", "budget.alerts.notify"),
			PublishTimeout:          env.duration("AMQP_PUBLISH_TIMEOUT", 5*time.Second),
			BreakerFailureThreshold: env.int("AMQP_BREAKER_FAILURES", 5),
			BreakerResetTimeout:     env.duration("AMQP_BREAKER_RESET", 30*time.Second),
		},
		Log: LogConfig{
			Level:  env.str("LOG_LEVEL", "info"),
			Format: env.str("LOG_FORMAT", ""),
		},
		JWT: JWTConfig{
			AccessTokenDuration:  env.duration("JWT_ACCESS_TOKEN_DURATION", 15*time.Minute),
			RefreshTokenDuration: env.duration("JWT_REFRESH_TOKEN_DURATION", 7*24*time.Hour),
			Issuer:               env.str("JWT_ISSUER", "budget-tracker"),
		},
	}
	if err := env.err(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() && len(cfg.Server.CORSAllowOrigins) == 1 && cfg.Server.CORSAllowOrigins[0] == "*" {
		slog.Warn("CORS_ALLOW_ORIGINS allows every origin in production")
	}

	var err error
	cfg.JWT.PrivateKey, cfg.JWT.PublicKey, err = cfg.loadJWTKeys()
	if err != nil {
		return nil, fmt.Errorf("load RSA keys: %w", err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("SERVER_PORT must be numeric, got %q", c.Server.Port)
	}
	if c.Budget.WarningPercent <= 0 || c.Budget.WarningPercent >= 100 {
		return fmt.Errorf("BUDGET_WARNING_PERCENT must be between 1 and 99, got %d", c.Budget.WarningPercent)
	}
	if c.Budget.AggregationMaxWorkers <= 0 {
		return fmt.Errorf("BUDGET_AGGREGATION_WORKERS must be positive, got %d", c.Budget.AggregationMaxWorkers)
	}
	if c.Security.PasswordMinLength < 6 {
		return fmt.Errorf("PASSWORD_MIN_LENGTH must be at least 6, got %d", c.Security.PasswordMinLength)
	}
	if c.JWT.AccessTokenDuration <= 0 || c.JWT.RefreshTokenDuration <= 0 {
		return errors.New("JWT token durations must be positive")
	}
	if c.Broker.URL != "" && (c.Broker.Exchange == "" || c.Broker.Queue == "") {
		return errors.New("AMQP_EXCHANGE and AMQP_QUEUE are required when AMQP_URL is set")
	}
	return nil
}

// BrokerEnabled reports whether alerts should be published to AMQP.
func (c *Config) BrokerEnabled() bool {
	return c.Broker.URL != ""
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Address is the host:port echo listens on.
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}
