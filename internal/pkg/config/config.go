package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	AppURL   string `env:"APP_URL,   default=http://localhost:8080"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Kratos   KratosConfig
	Email    EmailConfig
	Views    ViewsConfig
	Security SecurityConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=commute_planner"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type KratosConfig struct {
	PublicURL     string        `env:"KRATOS_PUBLIC_URL,     default=http://localhost:4433"`
	AdminURL      string        `env:"KRATOS_ADMIN_URL,      default=http://localhost:4434"`
	BrowserURL    string        `env:"KRATOS_BROWSER_URL,    default=http://localhost:4433"`
	SchemaID      string        `env:"KRATOS_SCHEMA_ID,      default=default"`
	SessionCookie string        `env:"KRATOS_SESSION_COOKIE, default=ory_kratos_session"`
	Timeout       time.Duration `env:"KRATOS_TIMEOUT,        default=5s"`
}

type EmailConfig struct {
	SparkPostKey     string `env:"SPARKPOST_API_KEY"`
	SparkPostBaseURL string `env:"SPARKPOST_BASE_URL, default=https://api.sparkpost.com"`
	FromEmail        string `env:"EMAIL_FROM,         default=no-reply@commuteplanner.local"`
	FromName         string `env:"EMAIL_FROM_NAME,    default=Commute Planner"`
	TemplateDir      string `env:"EMAIL_TEMPLATE_DIR, default=assets/email"`
	TestMode         bool   `env:"EMAIL_TEST_MODE,    default=false"`
	Workers          int    `env:"EMAIL_WORKERS,      default=4"`
}

type ViewsConfig struct {
	Dir          string `env:"VIEWS_DIR,      default=assets/views"`
	StaticDir    string `env:"STATIC_DIR,     default=build"`
	AppName      string `env:"APP_NAME,       default=Commute Planner"`
	SegmentIOKey string `env:"SEGMENTIO_KEY"`
}

type SecurityConfig struct {
	HookJWTSecret   string        `env:"HOOK_JWT_SECRET"`
	ResetKeyTTL     time.Duration `env:"RESET_KEY_TTL,     default=1h"`
	SessionCacheTTL time.Duration `env:"SESSION_CACHE_TTL, default=30s"`
}

// IsTest reports whether the process runs in the test environment, where
// emails are never sent.
func (c *Config) IsTest() bool {
	return c.Env == "test" || c.Email.TestMode
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
