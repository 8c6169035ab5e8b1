package api

import (
	"time"

	"github.com/St1cky1/kanban-service/internal/api/handlers"
	"github.com/St1cky1/kanban-service/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterConfig struct {
	FrontendURL string
	Timeout     time.Duration
	// Detail exposes internal error text in 500 responses.
	Detail bool
}

func NewRouter(
	cfg RouterConfig,
	taskService handlers.TaskUsecase,
	sectionService handlers.SectionUsecase,
	store handlers.Pinger,
	metrics *Metrics,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  logger.StandardLog(),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{cfg.FrontendURL},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))
	if metrics != nil {
		r.Use(metrics.Middleware)
		r.Method("GET", "/metrics", metrics.Handler())
	}

	errs := handlers.ErrorWriter{Detail: cfg.Detail}
	taskHandler := handlers.NewTaskHandler(taskService, errs)
	sectionHandler := handlers.NewSectionHandler(sectionService, errs)
	healthHandler := handlers.NewHealthHandler(store)

	r.Get("/", healthHandler.Root)
	r.Get("/healthz", healthHandler.Ready)

	r.Route("/api", func(r chi.Router) {
		if cfg.Timeout > 0 {
			r.Use(middleware.Timeout(cfg.Timeout))
		}

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.ListTasks)
			r.Post("/", taskHandler.CreateTask)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTask)
				r.Put("/", taskHandler.UpdateTask)
				r.Delete("/", taskHandler.DeleteTask)
				r.Get("/history", taskHandler.TaskHistory)
			})
		})

		r.Route("/sections", func(r chi.Router) {
			r.Get("/", sectionHandler.ListSections)
			r.Post("/", sectionHandler.AddSection)
			r.Put("/{id}", sectionHandler.RenameSection)
			r.Delete("/{id}", sectionHandler.DeleteSection)
		})
	})

	return r
}
