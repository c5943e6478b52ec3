package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "github.com/de-tools/fraud-atlas/pkg/handlers/console"
	fraudatlasmiddleware "github.com/de-tools/fraud-atlas/pkg/server/middleware"
	"github.com/de-tools/fraud-atlas/pkg/services/aggregate"
	"github.com/de-tools/fraud-atlas/pkg/services/table"
	"github.com/de-tools/fraud-atlas/pkg/services/workflow"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const defaultShutdownTimeout = 10 * time.Second

type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server
	config Config
}

type Dependencies struct {
	Controller *workflow.Controller
	Projection *aggregate.Projection
	Table      *table.State
	Location   *time.Location
	Logger     zerolog.Logger
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func ConfigureRouter(config Config) *chi.Mux {
	deps := config.Dependencies
	consoleHandler := handlers.NewHandler(deps.Controller, deps.Projection, deps.Table, deps.Location)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(fraudatlasmiddleware.Logger(&deps.Logger))
	router.Use(middleware.Recoverer)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", consoleHandler.GetDashboard)

		r.Get("/transactions", consoleHandler.ListTransactions)
		r.Post("/transactions/refresh", consoleHandler.RefreshTransactions)
		r.Put("/transactions/page", consoleHandler.SetPage)

		r.Get("/draft", consoleHandler.GetDraft)
		r.Post("/draft", consoleHandler.OpenDraft)
		r.Patch("/draft", consoleHandler.EditDraft)
		r.Delete("/draft", consoleHandler.CancelDraft)
		r.Post("/draft/submit", consoleHandler.SubmitDraft)

		r.Get("/analysis", consoleHandler.GetAnalysis)
		r.Post("/analysis", consoleHandler.AnalyzeTransaction)

		r.Get("/training", consoleHandler.GetTraining)
		r.Post("/training", consoleHandler.StartTraining)
	})

	return router
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	config.Dependencies.Logger = logger
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaultShutdownTimeout
	}
	router := ConfigureRouter(config)

	return &WebAPI{
		router: router,
		logger: &logger,
		config: config,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start serves until ctx is cancelled or the process receives SIGINT/SIGTERM.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")
	case <-ctx.Done():
		w.logger.Info().Msg("context cancelled, shutting down")
	}

	// Give outstanding requests a deadline for completion.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.config.ShutdownTimeout)
	defer cancel()

	err := w.server.Shutdown(shutdownCtx)
	if err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		err = w.server.Close()
	}
	return err
}
