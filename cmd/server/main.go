package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aconic-ni/customspayapp/internal/audit"
	"github.com/aconic-ni/customspayapp/internal/export"
	"github.com/aconic-ni/customspayapp/internal/platform/config"
	"github.com/aconic-ni/customspayapp/internal/platform/database"
	"github.com/aconic-ni/customspayapp/internal/platform/httpserver"
	"github.com/aconic-ni/customspayapp/internal/platform/logger"
	"github.com/aconic-ni/customspayapp/internal/platform/metrics"
	platformredis "github.com/aconic-ni/customspayapp/internal/platform/redis"
	"github.com/aconic-ni/customspayapp/internal/request"
	"github.com/aconic-ni/customspayapp/internal/resolution"
	"github.com/aconic-ni/customspayapp/internal/search"
	transporthttp "github.com/aconic-ni/customspayapp/internal/transport/http"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		requestStore    request.Store
		resolutionStore resolution.Store
	)
	if cfg.PostgresDSN != "" {
		db, err := database.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		requestStore = request.NewPostgresStore(db)
		resolutionStore = resolution.NewPostgresStore(db)
		log.Info("postgres stores ready")
	} else {
		requestStore = request.NewMemoryStore()
		resolutionStore = resolution.NewMemoryStore()
		log.Warn("no postgres dsn configured, using in-memory stores")
	}

	if cfg.RedisURL != "" {
		client, err := platformredis.New(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		resolutionStore = resolution.NewCachedStore(resolutionStore, client, cfg.ResolutionCacheTTL, log)
		log.Info("resolution cache enabled")
	}

	inbox := make(chan audit.Event, 256)
	auditWorker := audit.NewWorker(audit.NewMemoryStore(), inbox, log)
	go auditWorker.Run(ctx)
	emitter := audit.NewPublisher(inbox, m.IncAuditDropped)

	modes := search.Modes{
		DateRange:    cfg.EnableDateRange,
		CurrentMonth: cfg.EnableCurrentMonth,
	}
	searchService := search.NewService(requestStore, modes, log, m)
	recordService := request.NewService(requestStore, emitter, log, m)
	exporter := export.NewSerializer(requestStore, log)
	sessions := transporthttp.NewSessionRegistry(func() *resolution.Tracker {
		return resolution.NewTracker(resolutionStore, emitter, log, m)
	})

	handler := transporthttp.NewHandler(log, searchService, recordService, exporter, sessions, m)
	router := transporthttp.NewRouter(handler, transporthttp.RouterConfig{
		JWTSigningKey:  []byte(cfg.JWTSigningKey),
		RequestTimeout: cfg.RequestTimeout,
	})

	server := httpserver.New(cfg.Addr, router, log)
	return server.Run(ctx, cfg.ShutdownTimeout)
}
