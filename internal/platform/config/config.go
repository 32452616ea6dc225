package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

const (
	AIProviderStatic = "static"
	AIProviderOpenAI = "openai"
	AIProviderGemini = "gemini"
)

// Config se arma desde env (y .env opcional en dev).
type Config struct {
	Port         string        `env:"PORT,default=8080"`
	ReadTimeout  time.Duration `env:"HTTP_READ_TIMEOUT,default=5s"`
	WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT,default=45s"`

	// Si DB_DSN viene vacío, se usa storage in-memory.
	DatabaseDSN string `env:"DB_DSN"`
	// Si REDIS_URL viene, el rate limit de care plans se comparte entre instancias.
	RedisURL string `env:"REDIS_URL"`

	Timezone string `env:"APP_TIMEZONE,default=Local"`
	AppName  string `env:"APP_NAME,default=pet-care-tracker"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	AIProvider          string        `env:"AI_PROVIDER,default=static"`
	AITimeout           time.Duration `env:"AI_TIMEOUT,default=20s"`
	AIRequestsPerSecond float64       `env:"AI_REQUESTS_PER_SECOND,default=2"`

	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIModel   string `env:"OPENAI_MODEL,default=gpt-4o-mini"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL,default=https://api.openai.com/v1"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL,default=gemini-2.0-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL,default=https://generativelanguage.googleapis.com/v1beta"`

	CarePlanRateLimit  int           `env:"CARE_PLAN_RATE_LIMIT,default=5"`
	CarePlanRateWindow time.Duration `env:"CARE_PLAN_RATE_WINDOW,default=60s"`

	SupabaseURL       string `env:"SUPABASE_URL"`
	SupabaseAnonKey   string `env:"SUPABASE_ANON_KEY"`
	SupabaseJWTSecret string `env:"SUPABASE_JWT_SECRET"`

	SeedDemo bool `env:"SEED_DEMO,default=false"`
}

// Load lee .env (si existe) y decodifica el entorno.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config: load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv decodifica sin tocar .env (tests).
func FromEnv() (Config, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.AIProvider)) {
	case AIProviderStatic:
	case AIProviderOpenAI:
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			return errors.New("config: OPENAI_API_KEY required when AI_PROVIDER=openai")
		}
	case AIProviderGemini:
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			return errors.New("config: GEMINI_API_KEY required when AI_PROVIDER=gemini")
		}
	default:
		return fmt.Errorf("config: unknown AI_PROVIDER %q", c.AIProvider)
	}
	if c.CarePlanRateLimit <= 0 {
		return errors.New("config: CARE_PLAN_RATE_LIMIT must be > 0")
	}
	if c.CarePlanRateWindow <= 0 {
		return errors.New("config: CARE_PLAN_RATE_WINDOW must be > 0")
	}
	if c.AITimeout <= 0 {
		return errors.New("config: AI_TIMEOUT must be > 0")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resuelve APP_TIMEZONE; "Local" o vacío usa la zona del proceso.
func (c Config) Location() (*time.Location, error) {
	tz := strings.TrimSpace(c.Timezone)
	if tz == "" || strings.EqualFold(tz, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("config: invalid APP_TIMEZONE %q: %w", tz, err)
	}
	return loc, nil
}

func (c Config) Addr() string {
	return ":" + strings.TrimPrefix(strings.TrimSpace(c.Port), ":")
}

// AuthEnabled indica si hay verifier real; sin él se usa el header de dev.
func (c Config) AuthEnabled() bool {
	return strings.TrimSpace(c.SupabaseJWTSecret) != "" || strings.TrimSpace(c.SupabaseURL) != ""
}
