package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"taskLists/internal/config"
	"taskLists/internal/events"
	"taskLists/internal/handlers"
	"taskLists/internal/logger"
	"taskLists/internal/middleware"
	"taskLists/internal/repository/inmemory"
	"taskLists/internal/repository/postgres"
	"taskLists/internal/repository/sqlite"
	"taskLists/internal/service"
	"taskLists/internal/worker"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type App struct {
	config      *config.Config
	server      *http.Server
	router      *chi.Mux
	storage     service.Storage
	publisher   events.Publisher
	listService *service.ListService
	taskService *service.TaskService
	worker      *worker.OverdueWorker
	shutdowns   []func() // run in reverse order on shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development, a.config.Logging.Level); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	if err := a.initStorage(ctx); err != nil {
		return err
	}
	if err := a.initEvents(); err != nil {
		return err
	}

	a.listService = service.NewListService(a.storage, a.publisher)
	a.taskService = service.NewTaskService(a.storage, a.publisher)

	if a.config.Events.Enabled {
		a.worker = worker.NewOverdueWorker(a.storage, a.publisher,
			a.config.Worker.OverdueInterval, a.config.Worker.BatchSize)
	}

	a.initRouter()
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      a.router,
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
		IdleTimeout:  a.config.Server.IdleTimeout,
	}

	logger.Info("App: initialized",
		zap.String("repository", a.config.Repository.Type),
		zap.Bool("events", a.config.Events.Enabled),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) initStorage(ctx context.Context) error {
	switch a.config.Repository.Type {
	case config.RepositoryPostgres:
		storage, err := postgres.New(ctx, a.config.Database.URL, postgres.PoolConfig{
			MaxConns:        a.config.Database.MaxConnections,
			MinConns:        a.config.Database.MinConnections,
			MaxConnIdleTime: a.config.Database.IdleTimeout,
		})
		if err != nil {
			return fmt.Errorf("init postgres storage: %w", err)
		}
		if err := storage.Migrate(); err != nil {
			storage.Close()
			return fmt.Errorf("migrate postgres: %w", err)
		}
		a.storage = storage

	case config.RepositorySQLite:
		storage, err := sqlite.New(ctx, a.config.Database.SQLitePath)
		if err != nil {
			return fmt.Errorf("init sqlite storage: %w", err)
		}
		a.storage = storage

	default:
		a.storage = inmemory.New()
	}

	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: closing storage")
		a.storage.Close()
	})
	return nil
}

func (a *App) initEvents() error {
	if !a.config.Events.Enabled {
		a.publisher = events.Nop{}
		return nil
	}

	publisher, err := events.NewRabbitMQPublisher(a.config.Events.URL, a.config.Events.Queue)
	if err != nil {
		return fmt.Errorf("init events: %w", err)
	}
	a.publisher = publisher
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: closing events publisher")
		if err := publisher.Close(); err != nil {
			logger.Warn("App: close events publisher", zap.Error(err))
		}
	})
	return nil
}

func (a *App) initRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CORS(a.config.Server.CORSOrigins))
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	if a.config.Server.RequestTimeout > 0 {
		r.Use(chimw.Timeout(a.config.Server.RequestTimeout))
	}

	r.Mount("/", handlers.NewRouter(a.listService, a.taskService, a.storage))
	a.router = r
}

// Handler exposes the fully wired router, mostly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	if a.worker != nil {
		go a.worker.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		a.Shutdown()
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("App: shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout())
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: http server shutdown", err)
	}
	a.Shutdown()
	return nil
}

func (a *App) shutdownTimeout() time.Duration {
	if a.config.Server.ShutdownTimeout > 0 {
		return a.config.Server.ShutdownTimeout
	}
	return 10 * time.Second
}

// Shutdown releases everything Init acquired, newest first.
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
