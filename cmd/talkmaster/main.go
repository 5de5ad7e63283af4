// @title TalkMaster API
// @version 1.0
// @description Conference talk submission, review and room scheduling.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"talkmaster/config"
	"talkmaster/internal/adapters/auth"
	"talkmaster/internal/adapters/calendar"
	httpdelivery "talkmaster/internal/delivery/http"
	"talkmaster/internal/delivery/http/controllers"
	"talkmaster/internal/delivery/http/middleware"
	"talkmaster/internal/repository/postgres"
	"talkmaster/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	stores := postgres.NewStores(db)
	tx := postgres.NewTransactor(db)

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	userService := services.NewUserService(stores.Users, auth.NewBcryptHasher(bcrypt.DefaultCost), auth.NewJWTIssuer(cfg.JWTSecret), cfg.JWTExpiry, cfg.RequestTimeout)
	talkService := services.NewTalkService(stores, tx, cfg.Location, cfg.RequestTimeout)
	planningService := services.NewPlanningService(stores, tx, cfg.Location, cfg.RequestTimeout)
	roomService := services.NewRoomService(stores.Rooms, cfg.RequestTimeout)

	mux := httpdelivery.NewRouter(httpdelivery.Controllers{
		Auth:     controllers.NewAuthController(logger, userService),
		Talks:    controllers.NewTalkController(logger, talkService),
		Planning: controllers.NewPlanningController(logger, planningService, calendar.NewICSRenderer("-//TalkMaster//Planning//EN")),
		Rooms:    controllers.NewRoomController(logger, roomService),
	}, verifier, logger)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpdelivery.NewHandler(mux, httpdelivery.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			RateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
		}, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", "addr", srv.Addr, "env", cfg.Environment, "timezone", cfg.Location.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
