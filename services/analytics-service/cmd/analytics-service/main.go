package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/notHospitalet/la-llosa-website/libs/config"
	"github.com/notHospitalet/la-llosa-website/libs/db"
	"github.com/notHospitalet/la-llosa-website/libs/httpx"
	"github.com/notHospitalet/la-llosa-website/libs/kafkax"
	otelx "github.com/notHospitalet/la-llosa-website/libs/otel"
	"github.com/notHospitalet/la-llosa-website/libs/runtime"
	"github.com/notHospitalet/la-llosa-website/services/analytics-service/internal/consumer"
	"github.com/notHospitalet/la-llosa-website/services/analytics-service/internal/inbox"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "analytics-service")
	port, err := config.Port("PORT", "8086")
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

	inboxRepo := inbox.NewRepository(pool)
	startConsumer := func(topic string, handler consumer.Handler) {
		cfg := consumer.Config{
			Brokers: config.String("KAFKA_BROKERS", ""),
			GroupID: config.String("KAFKA_GROUP_ID", "analytics-service"),
			Topic:   topic,
		}
		c := consumer.New(logger, inboxRepo, cfg, handler)
		go c.Run(ctx)
	}

	handleReservationEvent := func(ctx context.Context, msg kafka.Message, kind string) error {
		var payload struct {
			ReservationID string `json:"reservation_id"`
			Facility      string `json:"facility"`
			Date          string `json:"date"`
			StartHour     string `json:"start_hour"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid reservation payload", "err", err)
			return nil
		}
		if payload.ReservationID == "" || payload.Facility == "" || payload.Date == "" {
			logger.Error("missing reservation fields")
			return nil
		}
		day, err := time.Parse("2006-01-02", payload.Date)
		if err != nil {
			logger.Error("invalid date", "err", err)
			return nil
		}

		meta := kafkax.ExtractEventMeta(msg)

		tx, err := pool.Begin(ctx)
		if err != nil {
			logger.Error("db begin failed", "err", err)
			return err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		tag, err := tx.Exec(ctx, `
			INSERT INTO reservation_events (event_id, event_type, facility, reservation_id, occurred_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (event_id) DO NOTHING
		`, meta.EventID, meta.EventType, payload.Facility, payload.ReservationID, day.UTC())
		if err != nil {
			logger.Error("failed to insert reservation event", "err", err)
			return err
		}
		if tag.RowsAffected() == 0 {
			_ = tx.Commit(ctx)
			return nil
		}

		bookedInc := 0
		cancelledInc := 0
		if kind == "booked" {
			bookedInc = 1
		} else if kind == "cancelled" {
			cancelledInc = 1
		}

		if _, err := tx.Exec(ctx, `
			INSERT INTO daily_facility_metrics (facility, day, booked_count, cancelled_count)
			VALUES ($1, $2::date, $3, $4)
			ON CONFLICT (facility, day)
			DO UPDATE SET booked_count = daily_facility_metrics.booked_count + EXCLUDED.booked_count,
			              cancelled_count = daily_facility_metrics.cancelled_count + EXCLUDED.cancelled_count,
			              updated_at = now()
		`, payload.Facility, day.UTC(), bookedInc, cancelledInc); err != nil {
			logger.Error("failed to update daily metrics", "err", err)
			return err
		}

		if err := tx.Commit(ctx); err != nil {
			logger.Error("failed to commit reservation metric", "err", err)
			return err
		}

		logger.Info("reservation metric recorded", "reservation_id", payload.ReservationID, "facility", payload.Facility, "event_type", meta.EventType)
		return nil
	}

	startConsumer("reserva.confirmed.v1", func(ctx context.Context, msg kafka.Message) error {
		return handleReservationEvent(ctx, msg, "booked")
	})
	startConsumer("reserva.cancelled.v1", func(ctx context.Context, msg kafka.Message) error {
		return handleReservationEvent(ctx, msg, "cancelled")
	})

	startConsumer("bono.activated.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			PassID    string `json:"pass_id"`
			Kind      string `json:"kind"`
			PassType  string `json:"pass_type"`
			ValidFrom string `json:"valid_from"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid pass payload", "err", err)
			return nil
		}
		if payload.PassID == "" || payload.Kind == "" || payload.PassType == "" || payload.ValidFrom == "" {
			logger.Error("missing pass fields")
			return nil
		}
		from, err := time.Parse(time.RFC3339, payload.ValidFrom)
		if err != nil {
			logger.Error("invalid valid_from", "err", err)
			return nil
		}

		_, err = pool.Exec(ctx, `
			INSERT INTO daily_pass_metrics (kind, pass_type, day, sold_count)
			VALUES ($1, $2, $3::date, 1)
			ON CONFLICT (kind, pass_type, day)
			DO UPDATE SET sold_count = daily_pass_metrics.sold_count + 1,
			              updated_at = now()
		`, payload.Kind, payload.PassType, from.UTC())
		if err != nil {
			logger.Error("failed to update pass metrics", "err", err)
			return err
		}

		logger.Info("pass metric recorded", "pass_id", payload.PassID, "kind", payload.Kind)
		return nil
	})

	startConsumer("auth.audit.v1", func(ctx context.Context, msg kafka.Message) error {
		var payload struct {
			EventType string          `json:"event_type"`
			ActorID   string          `json:"actor_id"`
			Metadata  json.RawMessage `json:"metadata"`
			CreatedAt string          `json:"created_at"`
		}

		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logger.Error("invalid auth audit payload", "err", err)
			return nil
		}
		if payload.EventType == "" || payload.CreatedAt == "" {
			logger.Error("missing auth audit fields")
			return nil
		}
		if _, err := time.Parse(time.RFC3339, payload.CreatedAt); err != nil {
			logger.Error("invalid auth audit created_at", "err", err)
			return nil
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO security_audit_events (event_type, actor_id, metadata, created_at)
			VALUES ($1, NULLIF($2, ''), $3, $4)
		`, payload.EventType, payload.ActorID, payload.Metadata, payload.CreatedAt)
		if err != nil {
			logger.Error("failed to write security audit event", "err", err)
			return err
		}

		logger.Info("security audit recorded", "event_type", payload.EventType)
		return nil
	})

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)
	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "analytics")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
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
