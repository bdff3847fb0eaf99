package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"example.com/grind/internal/api"
	"example.com/grind/internal/auth"
	"example.com/grind/internal/config"
	"example.com/grind/internal/domain"
	"example.com/grind/internal/outbox"
	persistence "example.com/grind/internal/persistence/postgres"
	httptransport "example.com/grind/internal/transport/http"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers, logger)
	defer producer.Close()

	dispatcher := outbox.NewDispatcher(pool, producer, cfg.OutboxPollInterval, cfg.OutboxBatchSize, logger)
	go dispatcher.Start(ctx)

	service := domain.NewService(repo)

	handler := api.NewHandler(service, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	requestLogger := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
			next.ServeHTTP(w, r)
		})
	}

	authMiddleware := auth.NewMiddleware(
		auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer},
		"/healthz", "/metrics",
	)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address: cfg.HTTPAddress,
	}, authMiddleware.Wrap(requestLogger(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("address", cfg.HTTPAddress).Msg("grind service listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	dispatcher.Wait()
}
