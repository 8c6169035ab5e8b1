package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/kanban-service/internal/api"
	"github.com/St1cky1/kanban-service/internal/api/handlers"
	"github.com/St1cky1/kanban-service/internal/config"
	"github.com/St1cky1/kanban-service/internal/infrastructure/client"
	"github.com/St1cky1/kanban-service/internal/logger"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/St1cky1/kanban-service/internal/repository/mongodb"
	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/St1cky1/kanban-service/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// store bundles the repositories of one storage driver.
type store struct {
	sections repository.ISectionRepository
	tasks    repository.ITaskRepository
	audit    repository.IAuditRepository
	pinger   handlers.Pinger
	close    func()
}

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to yaml config")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger.Init(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	var wg sync.WaitGroup

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()

	// Аудит включается только при заданном RABBITMQ_URL
	var publisher usecase.AuditPublisher
	if cfg.RabbitMQ.URL != "" {
		rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			return err
		}
		defer rabbitMQ.Close()
		publisher = rabbitMQ
		logger.Info("connected to rabbitmq", "queue", rabbitMQ.QueueName())

		auditWorker := worker.NewAuditWorker(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, st.audit)
		wg.Add(1)
		go func() {
			defer wg.Done()
			auditWorker.Start(ctx)
		}()
	} else {
		logger.Warn("RABBITMQ_URL is empty, audit trail disabled")
	}

	sectionService := usecase.NewSectionService(st.sections, st.tasks, publisher)
	taskService := usecase.NewTaskService(st.tasks, st.audit, sectionService, publisher)

	if err := sectionService.EnsureDefaults(ctx); err != nil {
		return err
	}
	if cfg.ReconcileOnStart {
		if _, err := sectionService.Reconcile(ctx); err != nil {
			logger.Error("reconcile failed", "error", err)
		}
	}

	router := api.NewRouter(api.RouterConfig{
		FrontendURL: cfg.HTTP.FrontendURL,
		Timeout:     cfg.HTTP.Timeout,
		Detail:      cfg.IsDevelopment(),
	}, taskService, sectionService, st.pinger, api.NewMetrics())

	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "address", cfg.HTTP.Address, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	wg.Wait()
	return nil
}

func openStore(ctx context.Context, cfg config.Config) (*store, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pg := cfg.Storage.Postgres
		db, err := client.NewPostgresClient(ctx, client.PostgresOptions{
			URL:        pg.URL(),
			RetryDelay: cfg.Storage.ConnectRetryDelay,
		})
		if err != nil {
			return nil, err
		}
		// Запускаем миграции
		if err := repository.RunMigrations(pg.URL()); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("connected to postgres", "host", pg.Host, "database", pg.DBName)

		return &store{
			sections: repository.NewSectionRepository(db.Pool),
			tasks:    repository.NewTaskRepository(db.Pool),
			audit:    repository.NewAuditRepository(db.Pool),
			pinger:   db,
			close:    db.Close,
		}, nil

	default:
		m := cfg.Storage.Mongo
		mc, err := client.NewMongoClient(ctx, client.MongoOptions{
			URI:                    m.URI,
			Database:               m.Database,
			ServerSelectionTimeout: m.ServerSelectionTimeout,
			RetryDelay:             cfg.Storage.ConnectRetryDelay,
		})
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, mc.Database()); err != nil {
			_ = mc.Close(context.Background())
			return nil, err
		}
		logger.Info("connected to mongodb", "database", m.Database)

		db := mc.Database()
		return &store{
			sections: mongodb.NewSectionRepository(db),
			tasks:    mongodb.NewTaskRepository(db),
			audit:    mongodb.NewAuditRepository(db),
			pinger:   mc,
			close: func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = mc.Close(closeCtx)
			},
		}, nil
	}
}
