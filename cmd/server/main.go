package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/event-ticket-reservation/internal/clock"
	"github.com/iliyamo/event-ticket-reservation/internal/config"
	"github.com/iliyamo/event-ticket-reservation/internal/database"
	"github.com/iliyamo/event-ticket-reservation/internal/handler"
	"github.com/iliyamo/event-ticket-reservation/internal/logger"
	"github.com/iliyamo/event-ticket-reservation/internal/queue"
	"github.com/iliyamo/event-ticket-reservation/internal/repository"
	"github.com/iliyamo/event-ticket-reservation/internal/router"
	"github.com/iliyamo/event-ticket-reservation/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // a missing .env is fine; the environment may be set directly

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Connect to the database ─────────────────────────────────────────
	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	log.Info("connected to database", "driver", cfg.DB.Driver)

	// ── 2. Optional infrastructure ─────────────────────────────────────────
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and caching disabled", "addr", cfg.Redis.Address())
	} else {
		defer rdb.Close()
	}

	var publisher service.Publisher = queue.NoopPublisher{}
	if cfg.Queue.Enabled {
		publisher = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name)
		if cfg.Queue.ConsumerEnabled {
			consumer := queue.NewConsumer(cfg.Queue.URL, cfg.Queue.Name, cfg.Queue.LogDir, log)
			go func() {
				if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
					log.Error("reservation consumer stopped", "err", err)
				}
			}()
		}
	}

	// ── 3. Wire up layers ──────────────────────────────────────────────────
	store := repository.NewStore(db)
	events := repository.NewEventRepo(db)
	reservations := repository.NewReservationRepo(db)
	clk := clock.NewSystem()

	authSvc := service.NewAuthService(repository.NewUserRepo(db), repository.NewTokenRepo(db),
		cfg.JWTSecret, cfg.AccessTTL, cfg.BcryptCost, clk)
	eventSvc := service.NewEventService(store, events, reservations)
	reservationSvc := service.NewReservationService(store, events, reservations, publisher,
		clk, cfg.ReservationHorizon, log)

	e := router.New(router.Deps{
		Config:       cfg,
		Log:          log,
		Redis:        rdb,
		DB:           db,
		Auth:         authSvc,
		AuthH:        handler.NewAuthHandler(authSvc),
		Events:       handler.NewEventHandler(eventSvc),
		Reservations: handler.NewReservationHandler(reservationSvc),
	})

	// ── 4. Start server with graceful shutdown ─────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
