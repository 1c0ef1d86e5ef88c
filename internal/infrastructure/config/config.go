package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port        string        `env:"PORT,         default=8080"`
	Env         string        `env:"ENV,          default=development"`
	LogLevel    string        `env:"LOG_LEVEL,    default=info"`
	JWTSecret   string        `env:"JWT_SECRET,   required"`
	TokenTTL    time.Duration `env:"TOKEN_TTL,    default=30m"`
	StoreDriver string        `env:"STORE_DRIVER, default=mongo"`
	CORSOrigins []string      `env:"CORS_ALLOW_ORIGINS, default=*"`

	NumberingMaxAttempts int `env:"NUMBERING_MAX_ATTEMPTS, default=10"`

	Mongo        MongoConfig
	Redis        RedisConfig
	SMTP         SMTPConfig
	Notify       NotifyConfig
	DefaultAgent DefaultAgentConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=support_desk"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

// RedisConfig enables the token revocation list when Addr is set.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,      default=0"`
	Timeout  time.Duration `env:"REDIS_TIMEOUT, default=500ms"`
}

// SMTPConfig enables email delivery when Host is set; otherwise emails are
// only logged.
type SMTPConfig struct {
	Host        string `env:"SMTP_HOST"`
	Port        int    `env:"SMTP_PORT,         default=587"`
	Username    string `env:"SMTP_USERNAME"`
	Password    string `env:"SMTP_PASSWORD"`
	FromAddress string `env:"SMTP_FROM_ADDRESS, default=no-reply@support.local"`
	FromName    string `env:"SMTP_FROM_NAME,    default=Support"`
}

type NotifyConfig struct {
	Workers        int           `env:"NOTIFY_WORKERS,         default=4"`
	Buffer         int           `env:"NOTIFY_BUFFER,          default=256"`
	Timeout        time.Duration `env:"NOTIFY_TIMEOUT,         default=10s"`
	SupportAddress string        `env:"NOTIFY_SUPPORT_ADDRESS"`
	BaseURL        string        `env:"NOTIFY_BASE_URL"`
}

// DefaultAgentConfig seeds the first agent on an empty store.
type DefaultAgentConfig struct {
	Email    string `env:"DEFAULT_AGENT_EMAIL"`
	Password string `env:"DEFAULT_AGENT_PASSWORD"`
	Nom      string `env:"DEFAULT_AGENT_NOM,    default=Support"`
	Prenom   string `env:"DEFAULT_AGENT_PRENOM, default=Agent"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	switch c.StoreDriver {
	case StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver)
	}
	if (c.DefaultAgent.Email == "") != (c.DefaultAgent.Password == "") {
		return fmt.Errorf("DEFAULT_AGENT_EMAIL and DEFAULT_AGENT_PASSWORD must be set together")
	}
	return nil
}
