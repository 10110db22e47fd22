package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/propdesk/backoffice/libs/config"
	"github.com/propdesk/backoffice/libs/db"
	"github.com/propdesk/backoffice/libs/httpx"
	"github.com/propdesk/backoffice/libs/kafkax"
	otelx "github.com/propdesk/backoffice/libs/otel"
	"github.com/propdesk/backoffice/libs/runtime"
	"github.com/propdesk/backoffice/services/notification-service/internal/consumer"
	"github.com/propdesk/backoffice/services/notification-service/internal/delivery"
	"github.com/propdesk/backoffice/services/notification-service/internal/inbox"
	"github.com/propdesk/backoffice/services/notification-service/internal/messaging"
	"github.com/propdesk/backoffice/services/notification-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	_ = config.LoadDotEnv(config.String("DOTENV_PATH", ".env"))

	service := config.String("SERVICE_NAME", "notification-service")
	port, err := config.Port("PORT", "8091")
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

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, db.Options{})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	sender, err := messaging.NewSender(messaging.ProviderConfig{
		Provider:     config.String("MESSAGING_PROVIDER", "noop"),
		WebhookURL:   config.String("MESSAGING_WEBHOOK_URL", ""),
		WebhookToken: config.String("MESSAGING_WEBHOOK_TOKEN", ""),
		TwilioSID:    config.String("TWILIO_ACCOUNT_SID", ""),
		TwilioToken:  config.String("TWILIO_AUTH_TOKEN", ""),
		TwilioFrom:   config.String("TWILIO_FROM_NUMBER", ""),
	})
	if err != nil {
		logger.Error("messaging provider init failed", "err", err)
		panic(err)
	}
	logger.Info("messaging provider ready", "provider", sender.ProviderID())

	brokers := config.String("KAFKA_BROKERS", "")
	handler := delivery.NewHandler(sender, storage.NewRepository(pool), logger, config.Seconds("SEND_TIMEOUT_SECONDS", 10*time.Second))
	eventConsumer := consumer.New(logger, inbox.NewRepository(pool), consumer.Config{
		Brokers: brokers,
		GroupID: config.String("KAFKA_GROUP_ID", "notification-service"),
		Topic:   config.String("KAFKA_CONSUME_TOPIC", "cleaning.slot.booked.v1"),
	}, handler.Handle)
	go eventConsumer.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)},
	)
	httpHandler := httpx.Chain(mux,
		httpx.WithRecover,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "notification")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

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
	logger.Info("http server stopped")
}
