// Command api bootstraps the certification workflow core: configuration,
// structured logging, the certification store, the visitor registry, and the
// job handler wiring. The REST layer and the engine client are provided by
// external collaborators; this process exposes health and metrics.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"certflow/badge"
	"certflow/config"
	"certflow/db"
	"certflow/demande"
	"certflow/notification"
	"certflow/visitor"
	"certflow/worker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("load config")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	var (
		demandeRepo demande.Repository
		badgeRepo   badge.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("bootstrap database pool")
		}
		defer pool.Close()
		demandeRepo = demande.NewPGRepository(pool)
		badgeRepo = badge.NewPGRepository(pool)
	} else {
		logger.Warn().Msg("no database_url configured, using in-memory stores")
		demandeRepo = demande.NewMemRepository()
		badgeRepo = badge.NewMemRepository()
	}

	registry := visitor.NewRegistry(visitor.WithTTL(cfg.RegistryTTL()))
	if cfg.RegistryTTL() > 0 {
		go registry.RunEviction(ctx, cfg.EvictionInterval())
	}

	demandeSvc := demande.NewService(demandeRepo)
	badgeSvc := badge.NewService(badgeRepo, badge.NewPreuveEvaluator(badge.StaticPreuves{}))
	notifier := notification.NewLogNotifier(logger)
	handlers := worker.NewHandlers(demandeSvc, badgeSvc, notifier, logger)
	logger.Info().Strs("job_types", handlers.Types()).Msg("job handlers wired, awaiting engine client")

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	logger.Info().
		Str("addr", cfg.Addr).
		Int("workers", cfg.WorkerCount).
		Int("registry_size", registry.Len()).
		Msg("certification core ready")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("http server")
	}
}
