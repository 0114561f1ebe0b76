package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/petpassport/petpassport/internal/config"
	"github.com/petpassport/petpassport/internal/database"
	"github.com/petpassport/petpassport/pkg/reminder"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg       config.Application
	db        *pgxpool.Pool
	router    *mux.Router
	srv       *http.Server
	scheduler *reminder.Scheduler
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context, configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// DB + migrations
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	r := mux.NewRouter()

	// Build dependencies (services, handlers...)
	deps := BuildDependencies(db, cfg)

	// Middleware chain
	SetupMiddleware(r, deps)

	// Routes
	RegisterRoutes(r, deps)

	var scheduler *reminder.Scheduler
	if cfg.Reminder.Enabled {
		scheduler, err = reminder.NewScheduler(cfg.Reminder.Cron, deps.ReminderJob)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Listen,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, router: r, srv: srv, scheduler: scheduler}, nil
}

// Run starts the HTTP server and the reminder scheduler and blocks until ctx is cancelled
// or the server fails.
func (a *Application) Run(ctx context.Context) error {
	defer a.db.Close()

	if a.scheduler != nil {
		a.scheduler.Start()
		defer func() {
			<-a.scheduler.Stop().Done()
			log.Info("reminder scheduler stopped")
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		serverErr <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	}
}
