package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datagrail/karmabot/internal/config"
	"github.com/datagrail/karmabot/internal/database"
	"github.com/datagrail/karmabot/internal/karma"
	"github.com/datagrail/karmabot/internal/logging"
	"github.com/datagrail/karmabot/internal/metrics"
	"github.com/datagrail/karmabot/internal/redis"
	"github.com/datagrail/karmabot/internal/server"
	"github.com/datagrail/karmabot/internal/slack"
	"github.com/datagrail/karmabot/internal/version"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func runGracefulShutdown(srv *server.Server) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	// Initialize structured logging
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)

	pool := setupDB(cfg)
	defer pool.Close()

	redisClient := setupRedis(context.Background(), cfg)
	defer func() { _ = redisClient.Close() }()

	ledger := redis.NewEventLedger(redisClient)
	karmaRepo := database.NewKarmaRepo(pool)
	directoryRepo := database.NewDirectoryRepo(pool)

	slackClient := slack.NewClient(cfg.SlackBotToken)
	verifier := slack.NewSignatureVerifier(cfg.SlackSigningSecret, clock)

	dispatcher := karma.NewEventDispatcher(
		ledger,
		karma.NewEntityResolver(directoryRepo),
		karma.NewKarmaMutator(karmaRepo),
		karma.NewDirectoryRefresher(slackClient, directoryRepo),
		slackClient,
		cfg.ReloadCommand,
	)
	webhook := slack.NewWebhookHandler(verifier, dispatcher)

	srv := server.NewServer(cfg, webhook, pool, redisClient)

	done := runGracefulShutdown(srv)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
