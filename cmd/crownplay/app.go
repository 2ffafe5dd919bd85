package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nkiryanov/crownplay/internal/cache"
	"github.com/nkiryanov/crownplay/internal/db"
	"github.com/nkiryanov/crownplay/internal/events"
	"github.com/nkiryanov/crownplay/internal/handlers"
	"github.com/nkiryanov/crownplay/internal/jobs"
	"github.com/nkiryanov/crownplay/internal/logger"
	"github.com/nkiryanov/crownplay/internal/metrics"
	"github.com/nkiryanov/crownplay/internal/repository/postgres"
	"github.com/nkiryanov/crownplay/internal/service/admin"
	"github.com/nkiryanov/crownplay/internal/service/auth"
	"github.com/nkiryanov/crownplay/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/crownplay/internal/service/catalog"
	"github.com/nkiryanov/crownplay/internal/service/payment"
	"github.com/nkiryanov/crownplay/internal/service/purchase"
	"github.com/nkiryanov/crownplay/internal/service/redemption"
	"github.com/nkiryanov/crownplay/internal/service/user"
	"github.com/nkiryanov/crownplay/internal/service/wallet"
	"github.com/nkiryanov/crownplay/internal/tracing"
)

const (
	serviceName     = "crownplay"
	shutdownTimeout = 5 * time.Second
)

type closer struct {
	name  string
	close func(ctx context.Context) error
}

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger        logger.Logger
	scheduler     *jobs.Scheduler
	reconcileSpec string

	// Released in reverse order on shutdown
	closers []closer
}

func NewServerApp(ctx context.Context, c *Config) (app *ServerApp, err error) {
	app = &ServerApp{ListenAddr: c.ListenAddr, reconcileSpec: c.Integrations.ReconcileSpec}

	// Release whatever was opened if app could not be built
	defer func() {
		if err != nil {
			app.release(context.Background())
		}
	}()

	app.logger, err = logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return app, fmt.Errorf("error while initializing logger: %w", err)
	}
	l := app.logger

	shutdownTracing, err := tracing.Setup(ctx, c.Integrations.OTLPEndpoint, serviceName, c.Integrations.OTLPInsecure)
	if err != nil {
		return app, fmt.Errorf("error while setting up tracing. Err: %w", err)
	}
	app.onClose("tracing", shutdownTracing)

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return app, fmt.Errorf("error while connecting to db. Err: %w", err)
	}
	app.onClose("database", func(context.Context) error { pool.Close(); return nil })

	var catalogCache cache.Cache
	if c.Integrations.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, c.Integrations.RedisAddr, c.Integrations.RedisPassword, c.Integrations.RedisDB)
		if err != nil {
			return app, fmt.Errorf("error while connecting to redis. Err: %w", err)
		}
		app.onClose("redis", func(context.Context) error { return rc.Close() })
		catalogCache = rc
	}

	var publisher events.Publisher = events.NoopPublisher{}
	if len(c.Integrations.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(c.Integrations.KafkaBrokers, c.Integrations.KafkaTopic)
		dispatcher := events.NewDispatcher(kp, events.DefaultDispatchWorkers, events.DefaultQueueSize, l)
		app.onClose("kafka", func(context.Context) error { return dispatcher.Close() })
		publisher = dispatcher
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	authority, err := newAuthority(c, l)
	if err != nil {
		return app, err
	}

	// Initialize services
	storage := postgres.NewStorage(pool)

	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey, AccessTTL: c.TokenTTL})
	if err != nil {
		return app, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	userService := user.NewService(user.DefaultHasher, storage)
	authService, err := auth.NewService(auth.Config{}, tokenManager, userService)
	if err != nil {
		return app, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	walletService := wallet.NewService(storage)

	if c.AdminEmail != "" && c.AdminPassword != "" {
		if _, err := userService.EnsureAdmin(ctx, c.AdminEmail, c.AdminPassword); err != nil {
			return app, fmt.Errorf("error while ensuring admin account. Err: %w", err)
		}
	}

	app.scheduler = jobs.NewScheduler(walletService, m, l)

	app.Handler = handlers.NewRouter(handlers.Services{
		Auth:       authService,
		Users:      userService,
		Wallet:     walletService,
		Purchase:   purchase.NewProcessor(storage, authority, publisher, m, l),
		Redemption: redemption.NewService(storage, publisher, m, l),
		Catalog:    catalog.NewService(storage, catalogCache, c.Integrations.CacheTTL, l),
		Admin:      admin.NewService(storage, publisher, m, l),
	}, m, l)

	return app, nil
}

func newAuthority(c *Config, l logger.Logger) (payment.Authority, error) {
	switch c.PaymentProvider {
	case providerSquare:
		return payment.NewSquareClient(payment.SquareConfig{
			BaseURL:     c.Integrations.SquareBaseURL,
			AccessToken: c.Integrations.SquareAccessToken,
			LocationID:  c.Integrations.SquareLocationID,
		}, l), nil
	case providerRazorpay:
		return payment.NewRazorpayClient(c.Integrations.RazorpayKeyID, c.Integrations.RazorpayKeySecret, l), nil
	default:
		return nil, fmt.Errorf("unknown payment provider %q", c.PaymentProvider)
	}
}

func (s *ServerApp) onClose(name string, fn func(ctx context.Context) error) {
	s.closers = append(s.closers, closer{name: name, close: fn})
}

// Release opened resources, the latest opened first
func (s *ServerApp) release(ctx context.Context) {
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		if err := c.close(ctx); err != nil && s.logger != nil {
			s.logger.Warn("Resource not released", "resource", c.name, "error", err)
		}
	}
	s.closers = nil
}

// Run starts scheduler and http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := s.scheduler.Start(ctx, s.reconcileSpec); err != nil {
		s.release(context.Background())
		return err
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")

		s.scheduler.Stop()
		s.release(timeoutCtx)
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
