package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"pet-care-tracker/internal/adapters/ai/gemini"
	"pet-care-tracker/internal/adapters/ai/openai"
	"pet-care-tracker/internal/adapters/ai/static"
	"pet-care-tracker/internal/adapters/auth/supabase"
	redislimit "pet-care-tracker/internal/adapters/ratelimit/redis"
	mem "pet-care-tracker/internal/adapters/storage/memory"
	pg "pet-care-tracker/internal/adapters/storage/postgres"
	"pet-care-tracker/internal/platform/config"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/platform/ratelimit"
	"pet-care-tracker/internal/ports/ai"
	"pet-care-tracker/internal/ports/auth"
	"pet-care-tracker/internal/router"
)

// @title           Pet Care Tracker API
// @version         1.0
// @description     Mascotas, actividades diarias con rachas y XP, y planes de cuidado generados por IA.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	if s, ok := log.(interface{ Sync() error }); ok {
		defer func() { _ = s.Sync() }()
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		Logger:    log,
		Location:  loc,
		AITimeout: cfg.AITimeout,
	}

	// Storage: Postgres si hay DSN, si no in-memory.
	var db *sql.DB
	if dsn := strings.TrimSpace(cfg.DatabaseDSN); dsn != "" {
		db, err = pg.Open(ctx, dsn)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		defer db.Close()

		if err := pg.Migrate(db); err != nil {
			return err
		}
		opts.DB = db
		log.Info("storage ready", map[string]any{"driver": "postgres"})
	} else {
		memDB := mem.New()
		if cfg.SeedDemo {
			memDB.SeedDemo(time.Now(), loc)
			log.Info("demo data seeded", map[string]any{"owner_id": mem.DemoOwnerID, "pet_id": mem.DemoPetID})
		}
		opts.Memory = memDB
		log.Info("storage ready", map[string]any{"driver": "memory"})
	}

	limiter, closeLimiter, err := buildLimiter(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLimiter()
	opts.Limiter = limiter

	detector, generator, err := buildAI(cfg)
	if err != nil {
		return err
	}
	opts.Detector = detector
	opts.Generator = generator
	log.Info("ai provider", map[string]any{"provider": cfg.AIProvider, "breed_detection": detector != nil})

	verifier, err := buildVerifier(cfg)
	if err != nil {
		return err
	}
	if verifier == nil {
		log.Warn("auth disabled: identity comes from the X-Owner-ID header", nil)
	} else {
		opts.AuthVerifier = verifier
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.NewRouter(opts),
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildLimiter: Redis si hay REDIS_URL (cuota compartida entre instancias), si no ventana fija local.
func buildLimiter(ctx context.Context, cfg config.Config) (ratelimit.Limiter, func(), error) {
	url := strings.TrimSpace(cfg.RedisURL)
	if url == "" {
		return ratelimit.NewFixedWindow(cfg.CarePlanRateLimit, cfg.CarePlanRateWindow), func() {}, nil
	}
	client, err := redislimit.Open(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("open redis: %w", err)
	}
	l := redislimit.New(client, redislimit.Options{
		Limit:  cfg.CarePlanRateLimit,
		Window: cfg.CarePlanRateWindow,
	})
	return l, func() { _ = client.Close() }, nil
}

// buildAI devuelve detector nil con el proveedor static: no hay detección de raza offline.
func buildAI(cfg config.Config) (ai.BreedDetector, ai.CarePlanGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.AIProvider)) {
	case config.AIProviderOpenAI:
		c, err := openai.NewClient(openai.Config{
			APIKey:            cfg.OpenAIAPIKey,
			Model:             cfg.OpenAIModel,
			BaseURL:           cfg.OpenAIBaseURL,
			Timeout:           cfg.AITimeout,
			RequestsPerSecond: cfg.AIRequestsPerSecond,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	case config.AIProviderGemini:
		c, err := gemini.NewClient(gemini.Config{
			APIKey:            cfg.GeminiAPIKey,
			Model:             cfg.GeminiModel,
			BaseURL:           cfg.GeminiBaseURL,
			Timeout:           cfg.AITimeout,
			RequestsPerSecond: cfg.AIRequestsPerSecond,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, c, nil
	default:
		return nil, static.New(), nil
	}
}

func buildVerifier(cfg config.Config) (auth.AuthVerifier, error) {
	if !cfg.AuthEnabled() {
		return nil, nil
	}

	var client *supabase.Client
	if strings.TrimSpace(cfg.SupabaseURL) != "" {
		c, err := supabase.NewClient(supabase.Config{
			URL:       cfg.SupabaseURL,
			AnonKey:   cfg.SupabaseAnonKey,
			JWTSecret: cfg.SupabaseJWTSecret,
		})
		if err != nil {
			return nil, err
		}
		client = c
	}

	v, err := supabase.NewVerifier(cfg.SupabaseJWTSecret, client)
	if err != nil {
		return nil, err
	}
	return v, nil
}
