package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Env      string `long:"env" env:"APP_ENV" default:"development" description:"Deployment environment"`
	LogLevel string `long:"log-level" env:"LOG_LEVEL" default:"info" description:"zap log level"`
	Port     string `long:"port" env:"PORT" default:"3333" description:"HTTP listen port"`

	StoreDriver string `long:"store-driver" env:"STORE_DRIVER" default:"postgres" description:"postgres or memory"`
	DatabaseURL string `long:"database-url" env:"DATABASE_URL" description:"Postgres connection string"`

	SolanaRPCURL       string `long:"solana-rpc-url" env:"SOLANA_RPC_URL" default:"https://api.devnet.solana.com" description:"Solana JSON-RPC endpoint"`
	SolanaPayRecipient string `long:"solana-pay-recipient" env:"SOLANA_PAY_RECIPIENT" description:"Merchant wallet for paid claims"`

	ConfirmBatch       int           `long:"confirm-batch" env:"DROP_CLAIM_CONFIRM_BATCH" default:"25" description:"Pending claims per confirmation sweep"`
	ConfirmConcurrency int           `long:"confirm-concurrency" env:"DROP_CLAIM_CONFIRM_CONCURRENCY" default:"4" description:"Parallel reference lookups per sweep"`
	ConfirmInterval    time.Duration `long:"confirm-interval" env:"DROP_CLAIM_CONFIRM_INTERVAL" default:"30s" description:"Background sweep interval, 0 disables it"`

	CacheSize int `long:"cache-size" env:"CACHE_SIZE" default:"128" description:"Response cache entries"`

	ClerkSecretKey string   `long:"clerk-secret-key" env:"CLERK_SECRET_KEY" description:"Clerk API key for admin routes"`
	AdminClerkIDs  []string `long:"admin-clerk-id" env:"ADMIN_CLERK_IDS" env-delim:"," description:"Clerk user IDs allowed on admin routes"`

	MetricsUser string `long:"metrics-user" env:"METRICS_USER"`
	MetricsPass string `long:"metrics-pass" env:"METRICS_PASS"`
	PprofSecret string `long:"pprof-secret" env:"PPROF_SECRET"`

	RateLimitRPS   float64 `long:"rate-limit-rps" env:"RATE_LIMIT_RPS" default:"5" description:"Requests per second per client IP"`
	RateLimitBurst int     `long:"rate-limit-burst" env:"RATE_LIMIT_BURST" default:"30" description:"Burst size per client IP"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return Parse(nil)
}

// Parse fills the config from command line flags in args. Options missing
// from args fall back to their environment variable and then their default.
func Parse(args []string) (*Config, error) {
	cfg := &Config{}
	if _, err := flags.NewParser(cfg, flags.None).ParseArgs(args); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	ids := cfg.AdminClerkIDs[:0]
	for _, id := range cfg.AdminClerkIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	cfg.AdminClerkIDs = ids

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL environment variable is not set")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.ConfirmBatch <= 0 {
		return fmt.Errorf("DROP_CLAIM_CONFIRM_BATCH must be positive, got %d", c.ConfirmBatch)
	}
	if c.ConfirmConcurrency <= 0 {
		return fmt.Errorf("DROP_CLAIM_CONFIRM_CONCURRENCY must be positive, got %d", c.ConfirmConcurrency)
	}
	if c.ConfirmInterval < 0 {
		return fmt.Errorf("DROP_CLAIM_CONFIRM_INTERVAL must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) IsAdmin(clerkID string) bool {
	for _, id := range c.AdminClerkIDs {
		if id == clerkID {
			return true
		}
	}
	return false
}
