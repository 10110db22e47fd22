package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/propdesk/backoffice/libs/auth"
	"github.com/propdesk/backoffice/libs/config"
	"github.com/propdesk/backoffice/libs/db"
	"github.com/propdesk/backoffice/libs/grpcx"
	"github.com/propdesk/backoffice/libs/httpx"
	"github.com/propdesk/backoffice/libs/kafkax"
	otelx "github.com/propdesk/backoffice/libs/otel"
	"github.com/propdesk/backoffice/libs/runtime"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/cache"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/cleaning"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/directory"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/grpcserver"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/handlers"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/outbox"
	"github.com/propdesk/backoffice/services/cleaning-service/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = config.LoadDotEnv(config.String("DOTENV_PATH", ".env"))

	service := config.String("SERVICE_NAME", "cleaning-service")
	port, err := config.Port("PORT", "8090")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9095")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	var checks []runtime.ReadyCheck
	opts := cleaning.Options{
		Logger:        logger,
		NotifyTimeout: config.Seconds("NOTIFY_TIMEOUT_SECONDS", 5*time.Second),
	}

	var store storage.Store
	switch backend := config.String("STORAGE_BACKEND", "postgres"); backend {
	case "memory":
		logger.Warn("using in-memory storage; data is lost on restart")
		store = storage.NewMemoryStore()
		opts.Notifier = outbox.NewLogNotifier(logger)
	case "postgres":
		dbURL, err := config.RequiredString("DATABASE_URL")
		if err != nil {
			panic(err)
		}
		pool, err := db.Open(ctx, dbURL, db.Options{MaxConns: int32(config.Int("DB_MAX_CONNS", 10))})
		if err != nil {
			logger.Error("db connection failed", "err", err)
			panic(err)
		}
		defer pool.Close()

		store = storage.NewPostgresStore(pool)
		outboxRepo := outbox.NewRepository(pool)
		opts.Notifier = outbox.NewNotifier(pool, outboxRepo)
		checks = append(checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})

		brokers := config.String("KAFKA_BROKERS", "")
		publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
			Brokers:   brokers,
			PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
			BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
		})
		go publisher.Run(ctx)
		if brokers != "" {
			checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
		}
	default:
		logger.Error("unknown storage backend", "backend", backend)
		panic("STORAGE_BACKEND must be postgres or memory")
	}

	perMinute := config.Int("BOOKING_RATE_LIMIT_PER_MINUTE", 30)
	var limiter httpx.Limiter = httpx.NewMemoryRateLimiter(perMinute, time.Minute)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer func() { _ = rdb.Close() }()
		opts.Cache = cache.NewRedisCache(rdb, config.Seconds("SCHEDULE_CACHE_TTL_SECONDS", time.Minute), logger)
		limiter = httpx.NewRedisRateLimiter(rdb, perMinute, time.Minute, "cleaning:ratelimit:book:")
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: cache.ReadyCheck(rdb)})
	}

	if addr := config.String("DIRECTORY_GRPC_ADDR", ""); addr != "" {
		conn, err := grpcx.Dial(addr, grpcx.DialOptions{JSON: true})
		if err != nil {
			logger.Error("directory client init failed", "err", err)
			panic(err)
		}
		defer func() { _ = conn.Close() }()
		opts.Directory = directory.NewClient(conn, config.Seconds("DIRECTORY_TIMEOUT_SECONDS", 2*time.Second))
	}

	svc := cleaning.NewService(store, opts)

	authn, err := authenticator(logger)
	if err != nil {
		panic(err)
	}

	mux := runtime.NewBaseMuxWithReady(checks...)
	handlers.Routes{
		Schedules:    handlers.NewScheduleHandler(svc, logger),
		Tenant:       handlers.NewTenantHandler(svc, logger),
		Authn:        authn,
		BookingLimit: httpx.RateLimit(limiter, handlers.PrincipalKey, logger, config.Bool("RATE_LIMIT_FAIL_OPEN", false)),
	}.Register(mux)

	httpHandler := httpx.Chain(mux,
		httpx.WithRecover,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins:   config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowCredentials: true,
			MaxAge:           10 * time.Minute,
		}),
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 10*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "cleaning")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := grpcx.NewServer(grpcx.UnaryServerLogInterceptor(logger))
	grpcserver.Register(grpcSrv, grpcserver.New(svc, logger))
	lis, err := net.Listen("tcp", ":"+grpcPort)
	if err != nil {
		logger.Error("grpc listen failed", "err", err)
		panic(err)
	}

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()
	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := runtime.ShutdownContext(10 * time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	grpcSrv.GracefulStop()
	logger.Info("servers stopped")
}

func authenticator(logger *slog.Logger) (httpx.Middleware, error) {
	if config.Bool("AUTH_DISABLED", false) {
		logger.Warn("authentication disabled; trusting identity headers")
		return handlers.Authenticate(nil, true), nil
	}

	var jwks *auth.JWKSClient
	if url := config.String("JWKS_URL", ""); url != "" {
		jwks = auth.NewJWKSClient(url, config.Seconds("JWKS_CACHE_SECONDS", 5*time.Minute), &http.Client{Timeout: 5 * time.Second})
	}
	secret := config.String("JWT_SECRET", "")
	if secret == "" && jwks == nil {
		return nil, errors.New("JWT_SECRET or JWKS_URL is required unless AUTH_DISABLED=true")
	}
	return handlers.Authenticate(auth.NewVerifier(secret, jwks), false), nil
}
