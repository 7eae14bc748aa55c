package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mtlh01p/project-altar-server/internal/checkout"
	"github.com/mtlh01p/project-altar-server/internal/clients"
	"github.com/mtlh01p/project-altar-server/internal/config"
	"github.com/mtlh01p/project-altar-server/internal/db"
	"github.com/mtlh01p/project-altar-server/internal/events"
	httpapi "github.com/mtlh01p/project-altar-server/internal/http"
	"github.com/mtlh01p/project-altar-server/internal/http/handlers"
	"github.com/mtlh01p/project-altar-server/internal/journal"
	"github.com/mtlh01p/project-altar-server/internal/middleware"
)

func main() {
	cfg := config.Load()
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Base HTTP client (shared)
	sharedHTTP := &http.Client{
		Timeout: cfg.UpstreamTimeout,
	}

	backend := clients.NewClient("backend", cfg.BackendURL, sharedHTTP)

	opts := []checkout.Option{checkout.WithMaxUnits(cfg.CheckoutMaxUnits)}
	pingers := map[string]handlers.Pinger{}

	// --- Journal ---
	if cfg.DatabaseURL != "" {
		if cfg.RunMigrations {
			if err := db.RunMigrations(cfg.DatabaseURL, logger); err != nil {
				logger.WithError(err).Fatal("db migrate")
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.WithError(err).Fatal("db connect")
		}
		defer pool.Close()

		repo := journal.NewPostgresRepository(pool)
		opts = append(opts, checkout.WithJournal(repo))
		pingers["checkout-journal"] = repo
		logger.Info("checkout journal enabled")
	}

	// --- Events ---
	if cfg.RabbitMQURL != "" {
		conn, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.WithError(err).Fatal("rabbitmq connect")
		}
		defer conn.Close()

		pub, err := events.NewPublisher(conn, cfg.EventsExchange)
		if err != nil {
			logger.WithError(err).Fatal("events publisher")
		}
		defer pub.Close()

		opts = append(opts, checkout.WithPublisher(pub))
		logger.WithField("exchange", cfg.EventsExchange).Info("checkout events enabled")
	}

	var loginLimiter *middleware.RateLimiter
	if cfg.LoginRatePerSec > 0 {
		loginLimiter = middleware.NewRateLimiter(cfg.LoginRatePerSec, cfg.LoginRateBurst, logger)
		loginLimiter.StartCleanup(ctx, time.Minute)
	}

	trusted, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		logger.WithError(err).Fatal("TRUSTED_PROXIES")
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         logger,
		Cfg:            cfg,
		Auth:           clients.NewAuthClient(backend),
		Products:       clients.NewProductClient(backend),
		Inventory:      clients.NewInventoryClient(backend),
		Cart:           clients.NewCartClient(backend),
		Transactions:   clients.NewTransactionClient(backend),
		Checkout:       checkout.NewService(clients.NewCheckoutBackend(backend), logger, opts...),
		LoginLimiter:   loginLimiter,
		TrustedProxies: trusted,
		HealthProbes: []clients.HealthProbe{
			{Name: "backend", Client: backend, Path: "/health"},
		},
		Pingers: pingers,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"backend": cfg.BackendURL,
			"env":     cfg.Env,
		}).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.WithError(err).Error("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("shutdown error")
	}
	logger.Info("shutdown complete")
}

func newLogger(cfg config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	if cfg.Production() {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
