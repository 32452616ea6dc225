package router

import (
	"database/sql"
	"net/http"
	"time"

	_ "pet-care-tracker/docs"
	"pet-care-tracker/internal/adapters/ai/static"
	mem "pet-care-tracker/internal/adapters/storage/memory"
	pg "pet-care-tracker/internal/adapters/storage/postgres"
	"pet-care-tracker/internal/domain/activities"
	"pet-care-tracker/internal/domain/careplans"
	"pet-care-tracker/internal/domain/owners"
	"pet-care-tracker/internal/domain/pets"
	"pet-care-tracker/internal/domain/stats"
	"pet-care-tracker/internal/middleware"
	"pet-care-tracker/internal/platform/logger"
	"pet-care-tracker/internal/platform/metrics"
	"pet-care-tracker/internal/platform/ratelimit"
	"pet-care-tracker/internal/ports/ai"
	"pet-care-tracker/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	Logger       logger.Logger
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev, header X-Owner-ID)

	// Si viene DB usa Postgres; si no, Memory (o uno nuevo).
	DB     *sql.DB
	Memory *mem.DB

	Limiter   ratelimit.Limiter    // nil => ventana fija en memoria
	Detector  ai.BreedDetector     // nil => sin detección de raza
	Generator ai.CarePlanGenerator // nil => generador heurístico
	Location  *time.Location       // día local para rachas y planes
	AITimeout time.Duration
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	gen := opts.Generator
	if gen == nil {
		gen = static.New()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))
	r.Use(metrics.InstrumentHandler)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	var (
		ownerRepo owners.Repository
		petRepo   pets.Repository
		actRepo   activities.Repository
		planRepo  careplans.Repository
	)

	if opts.DB != nil {
		repos := pg.NewRepos(opts.DB)
		ownerRepo, petRepo, actRepo, planRepo = repos.Owners, repos.Pets, repos.Activities, repos.CarePlans
	} else {
		db := opts.Memory
		if db == nil {
			db = mem.New()
		}
		repos := db.Repos()
		ownerRepo, petRepo, actRepo, planRepo = repos.Owners, repos.Pets, repos.Activities, repos.CarePlans
	}

	// Services por módulo
	ownersSvc := owners.NewService(ownerRepo)
	petsSvc := pets.NewService(petRepo, pets.Options{
		Detector:      opts.Detector,
		Logger:        log,
		DetectTimeout: opts.AITimeout,
	})
	actsSvc := activities.NewService(actRepo, petsSvc, loc)
	plansSvc := careplans.NewService(planRepo, petsSvc, actsSvc, careplans.Options{
		Limiter:   opts.Limiter,
		Generator: gen,
		Location:  loc,
		Timeout:   opts.AITimeout,
		Logger:    log,
	})
	statsSvc := stats.NewService(ownersSvc, petsSvc, actsSvc, plansSvc, loc)

	// Rutas por módulo
	owners.RegisterRoutes(r, ownersSvc, log)
	stats.RegisterRoutes(r, statsSvc, log)
	pets.RegisterRoutes(r, petsSvc, log, stats.PetReadRoutes(statsSvc, log))
	activities.RegisterRoutes(r, actsSvc, log)
	careplans.RegisterRoutes(r, plansSvc, log)

	return r
}
