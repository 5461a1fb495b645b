package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/notHospitalet/la-llosa-website/libs/config"
	"github.com/notHospitalet/la-llosa-website/libs/db"
	"github.com/notHospitalet/la-llosa-website/libs/httpx"
	"github.com/notHospitalet/la-llosa-website/libs/kafkax"
	otelx "github.com/notHospitalet/la-llosa-website/libs/otel"
	"github.com/notHospitalet/la-llosa-website/libs/runtime"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/availability"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/consumer"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/handlers"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/inbox"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/outbox"
	"github.com/notHospitalet/la-llosa-website/services/reservation-service/internal/storage"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "reservation-service")
	port, err := config.Port("PORT", "8082")
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

	pool, err := db.Open(ctx, dbURL)
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	repo := storage.NewReservationRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	inboxRepo := inbox.NewRepository(pool)
	startConsumer := func(topic string, handler consumer.Handler) {
		if strings.TrimSpace(topic) == "" {
			return
		}
		consumerCfg := consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "reservation-service"),
			Topic:   topic,
		}
		eventConsumer := consumer.New(logger, inboxRepo, consumerCfg, handler)
		go eventConsumer.Run(ctx)
	}

	// Pass lifecycle events maintain the local active_passes cache that zeroes
	// gym and pool prices at reservation time.
	startConsumer(config.String("KAFKA_PASS_ACTIVATED_TOPIC", "bono.activated.v1"), func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			PassID     string    `json:"pass_id"`
			UserID     string    `json:"user_id"`
			Kind       string    `json:"kind"`
			ValidFrom  time.Time `json:"valid_from"`
			ValidUntil time.Time `json:"valid_until"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.PassID == "" || payload.UserID == "" || payload.Kind == "" {
			logger.Error("missing required event fields", "topic", msg.Topic)
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := repo.UpsertActivePass(ctx, tx, storage.ActivePass{
			PassID:     payload.PassID,
			UserID:     payload.UserID,
			Kind:       payload.Kind,
			ValidFrom:  payload.ValidFrom,
			ValidUntil: payload.ValidUntil,
		}); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})
	startConsumer(config.String("KAFKA_PASS_CANCELLED_TOPIC", "bono.cancelled.v1"), func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			PassID string `json:"pass_id"`
		}
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid event payload", "err", err, "topic", msg.Topic)
			return nil
		}
		if payload.PassID == "" {
			logger.Error("missing required event fields", "topic", msg.Topic)
			return nil
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := repo.RemoveActivePass(ctx, tx, payload.PassID); err != nil {
			return err
		}
		return tx.Commit(ctx)
	})

	// REFERENCE_NOW pins the clock for demo environments; unset means wall clock.
	referenceNow := config.Time("REFERENCE_NOW", time.Time{})
	nowFunc := func() time.Time { return time.Now().UTC() }
	if !referenceNow.IsZero() {
		logger.Info("using fixed reference clock", "now", referenceNow)
		nowFunc = func() time.Time { return referenceNow }
	}
	reservationHandler := handlers.NewReservationHandler(repo, outboxRepo, logger, availability.DefaultSeasons(), nowFunc)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	mux.HandleFunc("/api/v1/public/slots", reservationHandler.Slots)
	mux.HandleFunc("/api/v1/reservations", reservationHandler.Create)
	mux.HandleFunc("/api/v1/reservations/list", reservationHandler.List)
	mux.HandleFunc("/api/v1/reservations/cancel", reservationHandler.Cancel)
	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "reservation")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
