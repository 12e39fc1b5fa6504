package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"session_auth/internal/config"
	"session_auth/internal/handlers"
	"session_auth/internal/logger"
	"session_auth/internal/repository"
	"session_auth/internal/repository/db"
	"session_auth/internal/server"
	"session_auth/internal/service"
	"session_auth/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		// the configured logger when run got that far, a console one otherwise
		logger.Get(logger.InfoLevel, logger.ConsoleFormat).Errorw("server stopped", "err", err)
		os.Exit(1)
	}
}

// run wires the application and blocks until a signal or a server failure.
// Deferred cleanup always runs before main exits.
func run() error {
	// load configs/config.yml, .env and APP_* overrides
	cfg, err := config.Load("configs")
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()
	gin.SetMode(cfg.Server.Mode)

	// open DB
	repos, closeDB, err := openRepository(cfg.DB)
	if err != nil {
		return fmt.Errorf("open %s database: %w", cfg.DB.Driver, err)
	}
	defer func() {
		if cerr := closeDB.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	// context for background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// session store
	store, closeStore, err := openSessionStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s session store: %w", cfg.Session.Store, err)
	}
	defer func() {
		if cerr := closeStore.Close(); cerr != nil {
			log.Errorw("failed to close session store", "err", cerr)
		}
	}()

	// wire dependencies
	services := service.NewService(repos, store, service.Options{
		BcryptCost: cfg.Auth.BcryptCost,
		SessionTTL: cfg.Session.TTL,
	})
	cookie := session.NewCookie(session.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secret: cookieSecret(cfg, log),
		Secure: cfg.Session.CookieSecure,
	})
	apiHandler := handlers.NewHandler(services, cookie, handlers.Options{
		MinPasswordLength: cfg.Auth.MinPasswordLength,
		CORSOrigins:       cfg.Server.CORSOrigins,
	}, log)

	// start HTTP server
	srv := server.New(server.Timeouts{})
	serverErr := runHTTPServer(srv, cfg.Server.Port, apiHandler, log)

	// graceful shutdown
	return waitForShutdown(cancel, srv, serverErr, log)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openRepository opens the configured user database.
func openRepository(cfg config.DBConfig) (*repository.Repository, io.Closer, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		gdb, err := db.OpenPostgres(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, nil, err
		}
		return repository.NewGormRepository(gdb), sqlDB, nil
	default:
		sqlDB, err := db.InitDB(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewRepository(sqlDB), sqlDB, nil
	}
}

// openSessionStore builds the configured session backend. The memory store
// gets a janitor goroutine bound to ctx.
func openSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (session.Store, io.Closer, error) {
	switch cfg.Session.Store {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		log.Infow("session store ready", "store", config.StoreRedis, "addr", cfg.Redis.Addr)
		return session.NewRedisStore(client), client, nil
	default:
		store := session.NewMemoryStore()
		go store.RunJanitor(ctx, cfg.Session.SweepInterval)
		log.Infow("session store ready", "store", config.StoreMemory, "sweep_interval", cfg.Session.SweepInterval)
		return store, closerFunc(func() error { return nil }), nil
	}
}

// cookieSecret returns the configured signing key. Outside release mode an
// empty secret is replaced by a random one, so cookies do not survive restarts.
func cookieSecret(cfg *config.Config, log *logger.Logger) []byte {
	if cfg.Session.Secret != "" {
		return []byte(cfg.Session.Secret)
	}
	log.Warnw("session.secret not set; using a random per-process secret", "mode", cfg.Server.Mode)
	return []byte(uuid.NewString())
}

// runHTTPServer runs the HTTP server in a separate goroutine. The returned
// channel receives the error if the server stops on its own.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Infow("http server listening", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	return errCh
}

// waitForShutdown blocks until a termination signal or a server failure, then
// stops background work and drains in-flight requests.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, serverErr <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	var runErr error
	select {
	case sig := <-quit:
		log.Infow("shutting down server...", "signal", sig.String())
	case runErr = <-serverErr:
		log.Errorw("http server failed, shutting down", "err", runErr)
	}

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		return errors.Join(runErr, fmt.Errorf("server forced to shutdown: %w", err))
	}
	return runErr
}
