package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/efitness/internal/domain/account"
	"github.com/xenking/efitness/internal/domain/attendance"
	"github.com/xenking/efitness/internal/domain/cart"
	"github.com/xenking/efitness/internal/domain/dashboard"
	"github.com/xenking/efitness/internal/domain/notification"
	"github.com/xenking/efitness/internal/domain/order"
	"github.com/xenking/efitness/internal/domain/product"
	"github.com/xenking/efitness/internal/domain/progress"
	"github.com/xenking/efitness/internal/domain/subscription"
	"github.com/xenking/efitness/internal/domain/training"
	"github.com/xenking/efitness/internal/events"
	"github.com/xenking/efitness/internal/handler"
	"github.com/xenking/efitness/internal/repository"
	"github.com/xenking/efitness/internal/session"
	"github.com/xenking/efitness/pkg/health"
	"github.com/xenking/efitness/pkg/httpmiddleware"
)

// Telemetry provides the meter and tracer providers. *app.Telemetry from the
// sdk satisfies it.
type Telemetry interface {
	MeterProvider() metric.MeterProvider
	TracerProvider() trace.TracerProvider
}

// publisher is an event sink that owns a connection.
type publisher interface {
	events.Publisher
	Close() error
}

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.Connect(ctx, cfg.DatabaseURL, cfg.Database.ConnectAttempts, cfg.Database.ConnectDelay)
	if err != nil {
		return errors.Wrap(err, "connect db")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, health.PingCheck(pool))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	// Sessions and carts live in Redis when configured, in memory otherwise.
	var (
		sessionStore session.Store
		cartStore    cart.Store
	)
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()

		healthSvc.AddReadinessCheck("redis", 2*time.Second, func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		sessionStore = session.NewRedisStore(rdb)
		cartStore = repository.NewRedisCartStore(rdb, cfg.Session.TTL)
		lg.Info("Using redis session store", zap.String("redis", cfg.Redis.Addr))
	} else {
		memSessions := session.NewMemoryStore()
		memCarts := repository.NewMemoryCartStore(cfg.Session.TTL)
		go memSessions.Run(ctx, time.Minute)
		go memCarts.Run(ctx, time.Minute)
		sessionStore, cartStore = memSessions, memCarts
		lg.Info("Using in-memory session store")
	}

	// Domain event bus.
	var bus publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := events.NewKafka(events.KafkaConfig{
			Brokers:  cfg.Kafka.Brokers,
			Topic:    cfg.Kafka.Topic,
			ClientID: cfg.Kafka.ClientID,
		})
		if err != nil {
			return errors.Wrap(err, "create kafka producer")
		}
		bus = k
		lg.Info("Publishing events to kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
	}
	defer func() {
		if err := bus.Close(); err != nil {
			lg.Warn("Close event publisher", zap.Error(err))
		}
	}()

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Domain services.
	meter := m.MeterProvider().Meter("gym")
	clock := time.Now

	accounts := account.NewService(repository.NewAccountRepository(pool), account.BcryptHasher{Cost: cfg.BcryptCost})
	products := product.NewService(repository.NewProductRepository(pool))
	carts := cart.NewService(cartStore, products)
	trainingSvc := training.NewService(repository.NewTrainingRepository(pool))

	orders, err := order.NewService(repository.NewOrderRepository(pool), cartStore, accounts, bus, meter)
	if err != nil {
		return errors.Wrap(err, "create order service")
	}
	subscriptions, err := subscription.NewService(repository.NewSubscriptionRepository(pool), accounts, bus, meter)
	if err != nil {
		return errors.Wrap(err, "create subscription service")
	}

	sessions := session.NewManager(sessionStore, cartStore, session.Config{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Session.Secure,
	})

	h := handler.New(handler.Deps{
		Sessions:      sessions,
		Accounts:      accounts,
		Products:      products,
		Carts:         carts,
		Orders:        orders,
		Subscriptions: subscriptions,
		Attendance:    attendance.NewService(repository.NewAttendanceRepository(pool), bus, clock),
		Progress:      progress.NewService(repository.NewProgressRepository(pool), accounts, trainingSvc, clock),
		Training:      trainingSvc,
		Notifications: notification.NewService(repository.NewNotificationRepository(pool), accounts, bus),
		Dashboards:    dashboard.NewService(repository.NewDashboardRepository(pool), clock),
	})

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(
		httpmiddleware.Recovery(),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
	)
	engine.GET("/livez", healthSvc.Live)
	engine.GET("/readyz", healthSvc.Ready)

	api := engine.Group("", sessions.Load())
	h.Register(api)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(engine, "gym-api",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
