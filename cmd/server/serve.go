package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/villa-booking/internal/config"
	"github.com/iliyamo/villa-booking/internal/handler"
	"github.com/iliyamo/villa-booking/internal/middleware"
	"github.com/iliyamo/villa-booking/internal/model"
	"github.com/iliyamo/villa-booking/internal/payment"
	"github.com/iliyamo/villa-booking/internal/queue"
	"github.com/iliyamo/villa-booking/internal/router"
	"github.com/iliyamo/villa-booking/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (and the booking consumer when AMQP is enabled)",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer.Close()
	if n, err := seedVillas(ctx, store, []model.Villa{model.SampleVilla()}); err != nil {
		return err
	} else if n > 0 {
		logger.Info("seeded sample villa")
	}

	rdb, err := config.NewRedisClient(ctx, config.LoadRedisConfig())
	if err != nil {
		logger.Warn("redis unavailable: caching and rate limiting disabled", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var events service.Publisher = queue.NopPublisher{}
	if cfg.AMQPEnabled {
		events = queue.NewPublisher(cfg.AMQPURL, logger)
	}
	processor := payment.NewMockProcessor(cfg.PaymentDelay, logger)
	bookings := service.NewBookingService(store, processor, events, logger, cfg.Currency)
	payments := service.NewPaymentService(store, processor, logger, cfg.Currency)

	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger)

	e := router.New(logger)
	router.RegisterRoutes(e, &handler.HealthHandler{Store: store})
	router.RegisterPublic(e, router.Public{
		Villas:   &handler.VillaHandler{Store: store, Bookings: bookings, Logger: logger},
		Bookings: &handler.BookingHandler{Bookings: bookings, Logger: logger},
		Payments: &handler.PaymentHandler{Payments: payments, Logger: logger},
		Cache:    cache,
		Limiter:  limiter,
	})
	jwtSecret := ""
	if cfg.AdminEnabled() {
		jwtSecret = cfg.JWTSecret
	} else {
		logger.Info("admin endpoints disabled: set ADMIN_EMAIL, ADMIN_PASSWORD_HASH and JWT_SECRET")
	}
	router.RegisterAdmin(e, &handler.AdminHandler{Cfg: cfg, Bookings: bookings, Payments: payments, Logger: logger}, jwtSecret, limiter)

	g, gctx := errgroup.WithContext(ctx)
	addr := ":" + cfg.Port
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", store.Driver()))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return e.Shutdown(shCtx)
	})
	if cfg.AMQPEnabled {
		consumer := queue.NewConsumer(cfg.AMQPURL, cfg.BookingLogDir, logger)
		g.Go(func() error { return consumer.Run(gctx) })
	}
	return g.Wait()
}
