package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fastprodman/walletsvc/internal/api"
	"github.com/fastprodman/walletsvc/internal/config"
	"github.com/fastprodman/walletsvc/internal/infra/logging"
	"github.com/fastprodman/walletsvc/internal/infra/pgutils"
	playerspg "github.com/fastprodman/walletsvc/internal/repos/players/postgres"
	transferspg "github.com/fastprodman/walletsvc/internal/repos/transfers/postgres"
	"github.com/fastprodman/walletsvc/internal/services/auth"
	"github.com/fastprodman/walletsvc/internal/services/transfer"
	"github.com/fastprodman/walletsvc/internal/sessions"
	sessionsmem "github.com/fastprodman/walletsvc/internal/sessions/memory"
	sessionsredis "github.com/fastprodman/walletsvc/internal/sessions/redis"
	"github.com/fastprodman/walletsvc/pkg/shutdownqueue"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running api: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context) (retErr error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	// --- Infra ---
	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error {
		return db.Close()
	})

	sessionStore, err := openSessionStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	// --- Services ---
	playersRepo := playerspg.New(db)
	transfersRepo := transferspg.New(db)

	deps := api.Deps{
		Auth:      auth.New(playersRepo, sessionStore),
		Transfer:  transfer.New(playersRepo, transfersRepo),
		Players:   playersRepo,
		Transfers: transfersRepo,
		Sessions:  sessionStore,
	}

	// --- HTTP server ---
	srv := api.NewServer(cfg.Port, api.NewRouter(deps))

	shutdownqueue.Add(func(c context.Context) error {
		slog.Info("Shut down server")

		err := srv.Shutdown(c)
		if err != nil {
			return fmt.Errorf("shutdown srv: %w", err)
		}

		return nil
	})

	errCh := make(chan error, 1)

	go func() {
		serr := srv.ListenAndServe()
		// http.ErrServerClosed is the normal path during Shutdown
		if serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			errCh <- serr
			return
		}

		errCh <- nil
	}()

	slog.Info("API started", "port", cfg.Port)

	select {
	case <-ctx.Done():
		// graceful path; deferred shutdownqueue.Shutdown will run
		return nil
	case serr := <-errCh:
		if serr != nil {
			return fmt.Errorf("server error: %w", serr)
		}

		return nil
	}
}

func openSessionStore(ctx context.Context, cfg config.Config) (sessions.Store, error) {
	if cfg.RedisURL == "" {
		slog.Info("using in-memory session store")
		return sessionsmem.New(cfg.SessionTTL), nil
	}

	store, err := sessionsredis.New(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		return nil, err
	}

	shutdownqueue.Add(func(context.Context) error {
		return store.Shutdown()
	})

	slog.Info("using redis session store")

	return store, nil
}
