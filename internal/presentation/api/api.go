package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/openpair/coderoom/internal/infrastructure/configs"
	"github.com/openpair/coderoom/internal/infrastructure/logging"
	"github.com/openpair/coderoom/internal/infrastructure/ratelimiter"
	"github.com/openpair/coderoom/internal/presentation/docs"
	executeHandler "github.com/openpair/coderoom/internal/presentation/handler/execute"
	healthHandler "github.com/openpair/coderoom/internal/presentation/handler/health"
	roomsHandler "github.com/openpair/coderoom/internal/presentation/handler/rooms"
)

type Application struct {
	config         configs.Config
	roomsHandler   *roomsHandler.Handler
	healthHandler  *healthHandler.Handler
	executeHandler *executeHandler.Handler
	logger         logging.Logger
	ratelimiter    ratelimiter.Limiter
}

func NewApplication(
	config configs.Config,
	roomsHandler *roomsHandler.Handler,
	healthHandler *healthHandler.Handler,
	executeHandler *executeHandler.Handler,
	logger logging.Logger,
	ratelimiter ratelimiter.Limiter,
) *Application {
	return &Application{
		config:         config,
		roomsHandler:   roomsHandler,
		healthHandler:  healthHandler,
		executeHandler: executeHandler,
		logger:         logger,
		ratelimiter:    ratelimiter,
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(app.loggerMiddleware)
	r.Use(app.enableCors)

	// The websocket endpoint lives outside the timeout and rate limit
	// middleware. A room connection is long-lived by design, and limiting it
	// per request would cut off the very clients it serves.
	r.Get("/api/ws", app.roomsHandler.AttachHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(app.rateLimiterMiddleware)

		r.Route("/api", func(r chi.Router) {
			r.Route("/rooms", func(r chi.Router) {
				r.Get("/{roomId}/members", app.roomsHandler.GetMembersHandler)
				r.Get("/{roomId}/presence", app.roomsHandler.GetPresenceHandler)
			})

			r.Post("/run-code", app.executeHandler.RunCodeHandler)

			r.Get("/health", app.healthHandler.GetHealth)
			r.Get("/healthz", app.healthHandler.GetHealth)
			r.Get("/ready", app.healthHandler.GetHealth)
			r.Get("/live", app.healthHandler.GetHealth)
		})

		r.Handle("/metrics", promhttp.Handler())
		r.Handle("/debug/vars", expvar.Handler())

		r.Get("/swagger/doc.json", docs.ServeOpenAPI)
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	})

	return r
}

func (app *Application) Run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", app.config.HTTP.Host, app.config.HTTP.Port),
		Handler:      mux,
		WriteTimeout: app.config.HTTP.WriteTimeout,
		ReadTimeout:  app.config.HTTP.ReadTimeout,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		healthHandler.SetUnhealthy()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Info(logging.General, logging.Shutdown, "signal caught", map[logging.ExtraKey]any{
			"signal": s.String(),
		})

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Info(logging.General, logging.Startup, "server has started", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Info(logging.General, logging.Shutdown, "server has stopped", map[logging.ExtraKey]any{
		"addr": srv.Addr,
	})

	return nil
}
