package main

import (
	"context"
	"net/http"
	"time"

	"github.com/notHospitalet/la-llosa-website/libs/config"
	"github.com/notHospitalet/la-llosa-website/libs/db"
	"github.com/notHospitalet/la-llosa-website/libs/httpx"
	"github.com/notHospitalet/la-llosa-website/libs/kafkax"
	otelx "github.com/notHospitalet/la-llosa-website/libs/otel"
	"github.com/notHospitalet/la-llosa-website/libs/runtime"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/handlers"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/outbox"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/passes"
	"github.com/notHospitalet/la-llosa-website/services/pass-service/internal/storage"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	service := config.String("SERVICE_NAME", "pass-service")
	port, err := config.Port("PORT", "8084")
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

	repo := storage.NewRepository(pool)
	outboxRepo := outbox.NewRepository(pool)
	passSvc := passes.New(repo, outboxRepo)
	outboxPublisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   config.String("KAFKA_BROKERS", ""),
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go outboxPublisher.Run(ctx)

	mux := runtime.NewBaseMuxWithReady(
		runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)},
		runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(config.String("KAFKA_BROKERS", ""))},
	)

	// REFERENCE_NOW pins the clock for demo environments; unset means wall clock.
	referenceNow := config.Time("REFERENCE_NOW", time.Time{})
	nowFunc := func() time.Time { return time.Now().UTC() }
	if !referenceNow.IsZero() {
		logger.Info("using fixed reference clock", "now", referenceNow)
		nowFunc = func() time.Time { return referenceNow }
	}

	h := handlers.New(repo, passSvc, logger, nowFunc)
	mux.HandleFunc("/api/v1/passes", h.Purchase)
	mux.HandleFunc("/api/v1/passes/list", h.List)
	mux.HandleFunc("/api/v1/passes/cancel", h.Cancel)

	handler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
	)
	handler = otelhttp.NewHandler(handler, "pass")
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
