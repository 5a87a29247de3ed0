package app

import (
	"os"
	"slices"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

const defaultAddr = "0.0.0.0:4444"

// Config holds the complete application configuration, loadable from
// environment variables (GYM_ prefix), flags, or YAML config files.
type Config struct {
	Addr        string `default:"0.0.0.0:4444" usage:"API server listen address"`
	DatabaseURL string `usage:"PostgreSQL connection URL (GYM_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	BcryptCost  int    `default:"10" usage:"bcrypt cost for password hashes" flag:"bcrypt-cost"`
	Database    DatabaseConfig
	Redis       RedisConfig
	Kafka       KafkaConfig
	Session     SessionConfig
	RateLimit   RateLimitConfig
	CORS        CORSConfig
	Graceful    GracefulConfig
}

// DatabaseConfig controls the start-up connection retry.
type DatabaseConfig struct {
	ConnectAttempts uint          `default:"5" usage:"Connection attempts before giving up" flag:"db-connect-attempts"`
	ConnectDelay    time.Duration `default:"1s" usage:"Initial delay between connection attempts" flag:"db-connect-delay"`
}

// RedisConfig selects the session and cart backend. An empty address keeps
// both in process memory.
type RedisConfig struct {
	Addr     string `default:"" usage:"Redis address (host:port)" flag:"redis-addr"`
	Password string `default:"" usage:"Redis password" flag:"redis-password"`
	DB       int    `default:"0" usage:"Redis database number" flag:"redis-db"`
}

// KafkaConfig selects the event bus. Without brokers events are dropped.
type KafkaConfig struct {
	Brokers  []string `usage:"Kafka broker addresses" flag:"kafka-brokers"`
	Topic    string   `default:"gym.events" usage:"Kafka topic for domain events" flag:"kafka-topic"`
	ClientID string   `default:"gym-server" usage:"Kafka client id" flag:"kafka-client-id"`
}

// SessionConfig controls the login session cookie.
type SessionConfig struct {
	TTL        time.Duration `default:"24h" usage:"Session lifetime" flag:"session-ttl"`
	CookieName string        `default:"gym_sid" usage:"Session cookie name" flag:"session-cookie"`
	Secure     bool          `default:"false" usage:"Send the session cookie over HTTPS only" flag:"session-secure"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"300" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"http://localhost:4444" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"true" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config files,
// and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "GYM",
		Args:      args,
		Files:     []string{"config.yaml", "/etc/gym/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL and PORT variables
// onto the GYM_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

func (c *Config) validate() error {
	switch {
	case c.DatabaseURL == "":
		return errors.New("database URL is required: set GYM_DATABASE_URL or DATABASE_URL")
	case c.Session.TTL <= 0:
		return errors.New("session TTL must be positive")
	case c.Session.CookieName == "":
		return errors.New("session cookie name is required")
	case c.RateLimit.Max <= 0 || c.RateLimit.Window <= 0:
		return errors.New("rate limit max and window must be positive")
	case c.CORS.AllowCredentials && slices.Contains(c.CORS.Origins, "*"):
		return errors.New("CORS wildcard origin cannot be combined with credentials: list the allowed origins")
	}
	return nil
}
