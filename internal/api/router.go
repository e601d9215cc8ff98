package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ForDaCulture/document-processing-system/internal/api/handlers"
	"github.com/ForDaCulture/document-processing-system/internal/api/middleware"
	"github.com/ForDaCulture/document-processing-system/internal/config"
	"github.com/ForDaCulture/document-processing-system/internal/llm"
	"github.com/ForDaCulture/document-processing-system/internal/metrics"
	"github.com/ForDaCulture/document-processing-system/internal/store"
)

// Deps carries everything the HTTP surface needs. Optional members (db,
// redis, indexer, metrics) may be nil; the router degrades gracefully.
type Deps struct {
	Store   store.DocumentStore
	Engine  handlers.SuggestionGenerator
	Gateway llm.Gateway
	Indexer handlers.Indexer
	Metrics *metrics.Metrics
	DB      *pgxpool.Pool
	Redis   *redis.Client
	Config  *config.Config
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))

	rl := middleware.NewRateLimiter(100, 200)
	r.Use(rl.Limit)

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
		r.Mount("/metrics", deps.Metrics.Handler())
	}

	health := handlers.NewHealthHandler(deps.DB, deps.Redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	docH := handlers.NewDocumentHandler(deps.Store, deps.Indexer)

	var observer handlers.RunObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}
	sugH := handlers.NewSuggestionHandler(deps.Engine, deps.Store, observer)

	aiH := handlers.NewAIConfigHandler(deps.Config.LLM, deps.Gateway)

	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", docH.Create)
			r.Get("/", docH.List)
			r.Get("/{id}", docH.Get)
			r.Patch("/{id}", docH.Update)

			r.Post("/{id}/data", docH.CreateData)
			r.Get("/{id}/data", docH.GetData)

			r.Post("/{id}/suggestions/generate", sugH.Generate)
			r.Get("/{id}/suggestions", sugH.Get)
			r.Post("/{id}/suggestions/{field}", sugH.Apply)
		})

		r.Route("/config", func(r chi.Router) {
			r.Get("/ai", aiH.Get)
			r.Post("/ai", aiH.Update)
		})
	})

	return r
}
