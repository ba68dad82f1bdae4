package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress  string `env:"RUN_ADDRESS"`
	DatabaseURI string `env:"DATABASE_URI"`
	StorePath   string `env:"STORE_PATH"`
	BackendURL  string `env:"BACKEND_URL"`
	RedisURL    string `env:"REDIS_URL"`

	TokenSecret     string        `env:"TOKEN_SECRET"`
	TokenSecretFile string        `env:"TOKEN_SECRET_FILE,file"`
	TokenStrategy   string        `env:"TOKEN_STRATEGY"`
	TokenTTL        time.Duration `env:"TOKEN_TTL"`
	PasswordCost    int           `env:"PASSWORD_COST"`

	WalletSealingKey string `env:"WALLET_SEALING_KEY"`

	OrderLookupDelay time.Duration `env:"ORDER_LOOKUP_DELAY"`
	AutoAdvanceDelay time.Duration `env:"AUTO_ADVANCE_DELAY"`

	AnalyticsCapacity      int           `env:"ANALYTICS_CAPACITY"`
	AnalyticsFlushInterval time.Duration `env:"ANALYTICS_FLUSH_INTERVAL"`
	AnalyticsBatchSize     int           `env:"ANALYTICS_BATCH_SIZE"`

	ClientIdleTTL   time.Duration `env:"CLIENT_IDLE_TTL"`
	MaxClients      int           `env:"MAX_CLIENTS"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT"`
	LogLevel        string        `env:"LOG_LEVEL"`
}

const (
	defaultRunAddress             = ":8080"
	defaultStorePath              = "hubsai.db"
	defaultTokenSecret            = "change-me-in-production"
	defaultTokenStrategy          = "hmac"
	defaultTokenTTL               = 720 * time.Hour
	defaultWalletSealingKey       = "change-me-wallet-sealing-key"
	defaultOrderLookupDelay       = time.Second
	defaultAutoAdvanceDelay       = 1500 * time.Millisecond
	defaultAnalyticsCapacity      = 500
	defaultAnalyticsFlushInterval = 30 * time.Second
	defaultAnalyticsBatchSize     = 100
	defaultClientIdleTTL          = 30 * time.Minute
	defaultMaxClients             = 10000
	defaultShutdownTimeout        = 10 * time.Second
	defaultLogLevel               = "info"
)

// Load parses configuration from environment variables and flags. Flags win.
func Load() (*Config, error) {
	return load(os.Args[1:], nil)
}

// load reads environ (the process environment when nil) and then args.
func load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.TokenSecretFile != "" {
		cfg.TokenSecret = strings.TrimSpace(cfg.TokenSecretFile)
	}
	cfg.applyDefaults()

	fs := flag.NewFlagSet("hubsai", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN of the shared store")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "SQLite file of the embedded store")
	fs.StringVar(&cfg.BackendURL, "b", cfg.BackendURL, "External backend base URL")
	fs.StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL of the analytics collector")
	fs.StringVar(&cfg.TokenSecret, "token-secret", cfg.TokenSecret, "Secret for signing client tokens")
	fs.StringVar(&cfg.TokenStrategy, "token-strategy", cfg.TokenStrategy, "Client token strategy (hmac or jwt)")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "Client token lifetime")
	fs.IntVar(&cfg.PasswordCost, "password-cost", cfg.PasswordCost, "bcrypt cost of stored passwords (0 for the bcrypt default)")
	fs.StringVar(&cfg.WalletSealingKey, "wallet-key", cfg.WalletSealingKey, "Secret sealing wallet keys at rest")
	fs.DurationVar(&cfg.OrderLookupDelay, "order-delay", cfg.OrderLookupDelay, "Simulated order lookup latency")
	fs.DurationVar(&cfg.AutoAdvanceDelay, "auto-advance", cfg.AutoAdvanceDelay, "External wallet auto-advance delay")
	fs.IntVar(&cfg.AnalyticsCapacity, "analytics-cap", cfg.AnalyticsCapacity, "Analytics event log capacity")
	fs.DurationVar(&cfg.AnalyticsFlushInterval, "analytics-flush", cfg.AnalyticsFlushInterval, "Analytics flush interval")
	fs.IntVar(&cfg.AnalyticsBatchSize, "analytics-batch", cfg.AnalyticsBatchSize, "Maximum events per flush")
	fs.DurationVar(&cfg.ClientIdleTTL, "client-ttl", cfg.ClientIdleTTL, "Idle client eviction timeout")
	fs.IntVar(&cfg.MaxClients, "max-clients", cfg.MaxClients, "Maximum clients kept in memory")
	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	cfg.applyDefaults()

	switch cfg.TokenStrategy {
	case "hmac", "jwt":
	default:
		return nil, fmt.Errorf("unknown token strategy %q", cfg.TokenStrategy)
	}

	return cfg, nil
}

// applyDefaults replaces empty strings and non-positive numbers.
func (c *Config) applyDefaults() {
	setString(&c.RunAddress, defaultRunAddress)
	setString(&c.StorePath, defaultStorePath)
	setString(&c.TokenSecret, defaultTokenSecret)
	setString(&c.TokenStrategy, defaultTokenStrategy)
	setString(&c.WalletSealingKey, defaultWalletSealingKey)
	setString(&c.LogLevel, defaultLogLevel)

	setDuration(&c.TokenTTL, defaultTokenTTL)
	setDuration(&c.OrderLookupDelay, defaultOrderLookupDelay)
	setDuration(&c.AutoAdvanceDelay, defaultAutoAdvanceDelay)
	setDuration(&c.AnalyticsFlushInterval, defaultAnalyticsFlushInterval)
	setDuration(&c.ClientIdleTTL, defaultClientIdleTTL)
	setDuration(&c.ShutdownTimeout, defaultShutdownTimeout)

	setInt(&c.AnalyticsCapacity, defaultAnalyticsCapacity)
	setInt(&c.AnalyticsBatchSize, defaultAnalyticsBatchSize)
	setInt(&c.MaxClients, defaultMaxClients)
}

func setString(v *string, def string) {
	if *v == "" {
		*v = def
	}
}

func setInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

func setDuration(v *time.Duration, def time.Duration) {
	if *v <= 0 {
		*v = def
	}
}
