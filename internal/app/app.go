package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/corvid-labs/taskline-backend/internal/db"
	"github.com/corvid-labs/taskline-backend/internal/middleware"
	"github.com/corvid-labs/taskline-backend/internal/pkg/apperrors"
	"github.com/corvid-labs/taskline-backend/internal/pkg/logger"
	"github.com/corvid-labs/taskline-backend/internal/repos"
)

type App struct {
	Log    *logger.Logger
	Cfg    Config
	Router *gin.Engine

	pg     *db.PostgresService
	server *http.Server
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	var (
		pg      *db.PostgresService
		factory RepoFactory
	)
	switch cfg.DBMode {
	case "memory":
		// One in-process store for the App's lifetime; each request
		// still gets its own scope bound over it.
		store := repos.NewMemoryTaskRepo()
		factory = func(ctx context.Context) (repos.TaskRepo, error) {
			return store, nil
		}
	default:
		pg, err = db.NewPostgresService(log)
		if err != nil {
			log.Sync()
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		if err := pg.AutoMigrateAll(); err != nil {
			log.Sync()
			return nil, fmt.Errorf("postgres automigrate: %w", err)
		}
		factory = postgresRepoFactory(pg.DB(), log)
	}

	resolver := NewScopeResolver(factory, log)
	authMW := middleware.NewAuthMiddleware(log, cfg.JWTSecretKey, cfg.TokenIssuer)
	router := wireRouter(cfg, resolver, authMW)

	return &App{
		Log:    log,
		Cfg:    cfg,
		Router: router,
		pg:     pg,
	}, nil
}

// postgresRepoFactory borrows from the shared pool for each request:
// a fresh gorm session carries the request context so cancellation
// aborts in-flight statements, and statements apply atomically.
func postgresRepoFactory(gdb *gorm.DB, log *logger.Logger) RepoFactory {
	return func(ctx context.Context) (repos.TaskRepo, error) {
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, apperrors.NewPersistence("postgresRepoFactory", "acquire pool handle", err)
		}
		if sqlDB == nil {
			return nil, apperrors.NewPersistence("postgresRepoFactory", "pool not initialized", nil)
		}
		session := gdb.Session(&gorm.Session{NewDB: true, Context: ctx})
		return repos.NewTaskRepo(session, log), nil
	}
}

func (a *App) Run() error {
	a.server = &http.Server{
		Addr:    ":" + a.Cfg.Port,
		Handler: a.Router,
	}
	a.Log.Info("Starting server", "port", a.Cfg.Port, "db_mode", a.Cfg.DBMode)
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.server != nil {
		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil {
			a.Log.Warn("closing postgres pool", "error", err)
		}
	}
	a.Log.Sync()
	return nil
}
