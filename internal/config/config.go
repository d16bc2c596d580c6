package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults applied when a variable is unset.
const (
	DefaultAddr           = ":8080"
	DefaultLedgerDelay    = 1500 * time.Millisecond
	DefaultTransferDelay  = 2 * time.Second
	DefaultMaxBodyBytes   = 64 << 10
	DefaultAssistantModel = "gemini-2.5-flash"
)

// Config holds the application configuration.
type Config struct {
	Environment string
	Addr        string

	LedgerDelay   time.Duration
	TransferDelay time.Duration

	MaxBodyBytes int64
	IPAllowlist  []string

	RedisAddr         string
	RateLimitCapacity int
	RateLimitRefill   float64

	AuditSink string

	AssistantAPIKey string
	AssistantModel  string
}

// Load reads an optional .env file from the working directory, then the
// environment. Variables already set in the environment win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv builds the configuration from environment variables only.
func LoadFromEnv() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		Environment:       os.Getenv("APP_ENV"),
		Addr:              getEnv("API_ADDR", DefaultAddr),
		LedgerDelay:       p.duration("LEDGER_DELAY", DefaultLedgerDelay),
		TransferDelay:     p.duration("TRANSFER_DELAY", DefaultTransferDelay),
		MaxBodyBytes:      p.int64("API_MAX_BODY_BYTES", DefaultMaxBodyBytes),
		IPAllowlist:       splitList(os.Getenv("API_IP_ALLOWLIST")),
		RedisAddr:         os.Getenv("REDIS_ADDR"),
		RateLimitCapacity: int(p.int64("API_RATE_LIMIT_CAPACITY", 20)),
		RateLimitRefill:   p.float("API_RATE_LIMIT_REFILL_PER_SEC", 5),
		AuditSink:         os.Getenv("AUDIT_SINK"),
		AssistantAPIKey:   os.Getenv("ASSISTANT_API_KEY"),
		AssistantModel:    getEnv("ASSISTANT_MODEL", DefaultAssistantModel),
	}
	if len(p.errs) > 0 {
		return nil, errors.Join(p.errs...)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var missing []string

	if c.Environment == "" {
		missing = append(missing, "APP_ENV")
	}

	if c.IsProduction() && c.AuditSink == "" {
		missing = append(missing, "AUDIT_SINK")
	}

	if len(missing) > 0 {
		return errors.New("missing required environment variables: " + strings.Join(missing, ", "))
	}

	if c.LedgerDelay < 0 || c.TransferDelay < 0 {
		return errors.New("LEDGER_DELAY and TRANSFER_DELAY must not be negative")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("API_MAX_BODY_BYTES must be positive")
	}
	if c.RedisAddr != "" && (c.RateLimitCapacity <= 0 || c.RateLimitRefill <= 0) {
		return errors.New("rate limit capacity and refill rate must be positive when REDIS_ADDR is set")
	}
	if c.AuditSink != "" && c.AuditSink != "log" && !strings.HasPrefix(c.AuditSink, "sqlite://") {
		return errors.New("AUDIT_SINK must be log or sqlite://<path>")
	}

	return nil
}

// IsProduction reports whether the service runs in production or staging.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "staging"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

type parser struct {
	errs []error
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func (p *parser) int64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) float(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return f
}
