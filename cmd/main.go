package main

import (
	"context"
	"expvar"
	"log"
	"runtime"

	"github.com/openpair/coderoom/internal/domain"
	"github.com/openpair/coderoom/internal/infrastructure/configs"
	"github.com/openpair/coderoom/internal/infrastructure/events"
	"github.com/openpair/coderoom/internal/infrastructure/logging"
	"github.com/openpair/coderoom/internal/infrastructure/messaging"
	"github.com/openpair/coderoom/internal/infrastructure/metrics"
	"github.com/openpair/coderoom/internal/infrastructure/ratelimiter"
	"github.com/openpair/coderoom/internal/infrastructure/runner"
	"github.com/openpair/coderoom/internal/infrastructure/tracing"
	"github.com/openpair/coderoom/internal/infrastructure/ws"
	"github.com/openpair/coderoom/internal/persistence/db"
	"github.com/openpair/coderoom/internal/persistence/repository"
	"github.com/openpair/coderoom/internal/presentation/api"
	"github.com/openpair/coderoom/internal/presentation/handler/execute"
	"github.com/openpair/coderoom/internal/presentation/handler/health"
	"github.com/openpair/coderoom/internal/presentation/handler/rooms"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	serviceName = "coderoom-api"
)

func main() {
	tracerCfg := tracing.NewDefaultConfig(serviceName)

	sh, err := tracing.InitTracer(tracerCfg)
	if err != nil {
		log.Fatalf("Failed to initialize the tracer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer sh(ctx)

	configPath := configs.DetermineConfigPath()
	cfg, err := configs.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		FilePath: cfg.Logging.FilePath,
		Level:    cfg.Logging.Level,
		Backend:  cfg.Logging.Backend,
	})

	registry := ws.NewRegistry()
	realtimeMetrics := metrics.NewRealtime(prometheus.DefaultRegisterer)

	coreOpts := []ws.CoreOption{
		ws.WithMetrics(realtimeMetrics),
		ws.WithChatLimit(cfg.Room.MaxChatBytes),
	}

	var auditRepository domain.PresenceAuditRepository
	if cfg.Mongo.Enabled {
		mongoCfg := &db.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		}
		mongoClient, err := db.ConnectMongo(ctx, mongoCfg)
		if err != nil {
			log.Fatal(err)
		}
		defer db.DisconnectMongo(context.Background(), mongoClient)

		auditRepository = repository.NewPresenceAuditLogRepository(db.GetDatabase(mongoClient, mongoCfg))
		if err := auditRepository.EnsureIndexes(ctx); err != nil {
			log.Fatal(err)
		}
	}

	if cfg.AMQP.Enabled {
		rabbitmq, err := messaging.NewRabbitMQ(cfg.AMQP.URI)
		if err != nil {
			log.Fatal(err)
		}
		defer rabbitmq.Close()

		logger.Info(logging.RabbitMQ, logging.Startup, "rabbitmq connection established", nil)

		publisher := events.NewPresencePublisher(rabbitmq)
		coreOpts = append(coreOpts, ws.WithRecorder(publisher))

		if auditRepository != nil {
			consumer := events.NewPresenceConsumer(rabbitmq, auditRepository)
			go consumer.Listen()
		}
	}

	core := ws.NewCore(registry, coreOpts...)
	go core.Run(ctx)

	upgrader := ws.NewUpgrader(cfg.HTTP.AllowedOrigins)
	runnerClient := runner.NewClient(cfg.Runner.BaseURL, cfg.Runner.Timeout)

	roomsHandler := rooms.NewHandler(registry, core, upgrader, logger, cfg.Room, auditRepository)
	healthHandler := health.NewHandler(registry)
	executeHandler := execute.NewHandler(runnerClient, logger)

	rl := ratelimiter.New(ratelimiter.Options{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})
	app := api.NewApplication(*cfg, roomsHandler, healthHandler, executeHandler, logger, rl)

	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.Mount()
	if err := app.Run(mux); err != nil {
		logger.Fatal(logging.General, logging.Shutdown, "server exited with error", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
	}
}
