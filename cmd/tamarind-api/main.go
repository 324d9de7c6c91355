// README: Entry point; loads config, wires stores and services, serves HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tamarind/internal/config"
	httptransport "tamarind/internal/http"
	"tamarind/internal/infra"
	"tamarind/internal/livesync"
	"tamarind/internal/modules/booking"
	"tamarind/internal/modules/driver"
	"tamarind/internal/modules/route"
	"tamarind/internal/modules/session"
)

func main() {
	logger, err := infra.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sessionStore session.Store
	var bookingStore booking.Store
	var driverStore driver.Store

	if cfg.DB.DSN == "memory" {
		sessionStore = session.NewMemStore()
		bookingStore = booking.NewMemStore()
		driverStore = driver.NewMemStore()
		logger.Info("running with in-memory stores")
	} else {
		dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			logger.Fatal("connect db", zap.Error(err))
		}
		defer dbPool.Close()
		redisClient := infra.NewRedis(cfg.Redis.Addr)
		sessionStore = session.NewPGStore(dbPool)
		bookingStore = booking.NewPGStore(dbPool)
		driverStore = driver.NewPGStore(dbPool, redisClient)
	}

	sessionSvc := session.NewService(cfg.Catalog.Sessions, sessionStore, cfg.Catalog.CacheTTL)
	if err := sessionSvc.Seed(ctx); err != nil {
		logger.Fatal("seed session catalog", zap.Error(err))
	}

	driverSvc := driver.NewService(driverStore)

	var picker booking.DriverPicker
	switch cfg.Dispatch.Policy {
	case "least_loaded":
		picker = driver.LeastLoaded{Store: driverStore, Loads: bookingStore}
	case "manual":
		picker = driver.Manual{}
	default:
		picker = driver.FirstAvailable{Store: driverStore}
	}

	bookingSvc := booking.NewService(bookingStore, sessionSvc, picker, driverSvc, logger)
	routeSvc := route.NewService(bookingStore, logger)
	poller := livesync.New(bookingStore, cfg.LiveSync.Interval, logger)

	eta, err := route.NewEstimator(cfg.Maps.APIKey)
	if err != nil {
		logger.Fatal("init eta estimator", zap.Error(err))
	}

	router := httptransport.NewRouter(httptransport.ServerDeps{
		Bookings: bookingSvc,
		Routes:   routeSvc,
		Sessions: sessionSvc,
		Drivers:  driverSvc,
		ETA:      eta,
		Sync:     poller,
		Config:   cfg,
		Log:      logger,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}
