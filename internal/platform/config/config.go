// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings for the autopost service.
type Config struct {
	AppEnv      string `env:"APP_ENV" envDefault:"local"`
	PostgresDSN string `env:"POSTGRES_DSN,required"`
	HealthPort  int    `env:"HEALTH_PORT" envDefault:"8080"`

	// TriggerSecret guards the manual generation endpoint. Empty disables it.
	TriggerSecret string `env:"TRIGGER_SECRET"`

	// Generation backends.
	GroqAPIKey       string  `env:"GROQ_API_KEY"`
	GroqBaseURL      string  `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GeminiAPIKey     string  `env:"GEMINI_API_KEY"`
	GenTemperature   float32 `env:"GEN_TEMPERATURE" envDefault:"0.85"`
	GenRateLimitRPS  float64 `env:"GEN_RATE_LIMIT_RPS" envDefault:"1"`
	GenMaxRetries    int     `env:"GEN_MAX_RETRIES" envDefault:"2"`
	GenRetryBaseWait string  `env:"GEN_RETRY_BASE_WAIT" envDefault:"3s"`

	// Image pipeline.
	StorageMode       string `env:"STORAGE_MODE" envDefault:"local"` // local or remote
	SupabaseURL       string `env:"SUPABASE_URL"`
	SupabaseKey       string `env:"SUPABASE_SERVICE_ROLE_KEY"`
	StorageBucket     string `env:"STORAGE_BUCKET" envDefault:"post-images"`
	StoragePrefix     string `env:"STORAGE_PREFIX" envDefault:"generated"`
	ImageSourceDir    string `env:"IMAGE_SOURCE_DIR" envDefault:"./public/workimages"`
	ImageOutputDir    string `env:"IMAGE_OUTPUT_DIR" envDefault:"./public/images/generated"`
	ImagePublicPrefix string `env:"IMAGE_PUBLIC_PREFIX" envDefault:"/images/generated"`
	FallbackImageURL  string `env:"FALLBACK_IMAGE_URL" envDefault:"/images/default-og.jpg"`
	FontPath          string `env:"FONT_PATH" envDefault:"./assets/fonts/NotoSansKR-Bold.ttf"`

	// Branding for the composited overlay and the CTA footer.
	BusinessName  string `env:"BUSINESS_NAME" envDefault:"전북배관"`
	BusinessPhone string `env:"BUSINESS_PHONE" envDefault:"010-8184-3496"`

	// Scheduler.
	SchedulerTickInterval time.Duration `env:"SCHEDULER_TICK_INTERVAL" envDefault:"10m"`

	// Database pool.
	DBMaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"10"`
	DBMinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"2"`
	DBMaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"30m"`
	DBMaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	DBHealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// RetryBaseWait parses the configured base backoff delay, falling back to
// the default when malformed.
func (c *Config) RetryBaseWait() time.Duration {
	d, err := time.ParseDuration(c.GenRetryBaseWait)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}

	return d
}

// RemoteStorage reports whether the remote object store should be used for
// image sourcing and publishing.
func (c *Config) RemoteStorage() bool {
	return c.StorageMode == "remote"
}

// Load reads configuration from the environment, optionally sourcing a
// local .env file first.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	return cfg, nil
}
