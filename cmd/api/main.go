package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	// Autoloads .env file to supply environment variables
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"example.com/fitscribe/internal/api"
	"example.com/fitscribe/internal/assistant"
	"example.com/fitscribe/internal/auth"
	"example.com/fitscribe/internal/config"
	"example.com/fitscribe/internal/domain"
	"example.com/fitscribe/internal/journal"
	"example.com/fitscribe/internal/outbox"
	"example.com/fitscribe/internal/persistence/memory"
	persistence "example.com/fitscribe/internal/persistence/postgres"
	"example.com/fitscribe/internal/session"
	httptransport "example.com/fitscribe/internal/transport/http"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var entryRepo domain.EntryRepository
	var accountRepo auth.AccountRepository
	var dispatcher *outbox.Dispatcher

	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		entryRepo = persistence.NewEntryRepository(pool)
		accountRepo = persistence.NewAccountRepository(pool)

		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
		dispatcher = outbox.NewDispatcher(pool, producer, logger, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
		go dispatcher.Start(ctx)
	} else {
		logger.Warn("POSTGRES_URL not set; using in-memory store")
		entryRepo = memory.NewEntryRepository()
		accountRepo = memory.NewAccountRepository()
	}

	sessions, err := session.NewStore(ctx, cfg.RedisURL, cfg.SessionTTL)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}

	gateway, err := assistant.New(ctx, assistant.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel})
	if err != nil {
		logger.Fatal("failed to create model gateway", zap.Error(err))
	}

	authCfg := auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer, TokenTTL: cfg.TokenTTL}
	accounts := auth.NewService(accountRepo, authCfg)
	entries := domain.NewService(entryRepo)
	registry := journal.NewRegistry(journal.Deps{
		Entries:      entries,
		Extractor:    gateway,
		Recommender:  gateway,
		Logger:       logger,
		TextDebounce: cfg.TextSaveDebounce,
	})

	handler := api.NewHandler(accounts, sessions, registry, entries, logger)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	requestLog := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Info("request", zap.String("method", r.Method), zap.String("path", r.URL.Path))
			next.ServeHTTP(w, r)
		})
	}

	skipper := func(r *http.Request) bool {
		switch r.URL.Path {
		case "/healthz", "/metrics", "/v1/auth/signup", "/v1/auth/login":
			return true
		}
		return false
	}
	authMiddleware := auth.NewMiddleware(authCfg, sessions, skipper)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, authMiddleware.Wrap(requestLog(mux)))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("fitscribe listening", zap.String("address", cfg.HTTPAddress))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
	}

	if dispatcher != nil {
		dispatcher.Wait()
	}
}
