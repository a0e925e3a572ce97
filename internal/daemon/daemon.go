package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/steady-app/steady/internal/api"
	"github.com/steady-app/steady/internal/app/challenge"
	"github.com/steady-app/steady/internal/app/groups"
	"github.com/steady-app/steady/internal/app/tracker"
	"github.com/steady-app/steady/internal/health"
	_ "github.com/steady-app/steady/internal/infra/metrics" // register Prometheus metrics
	"github.com/steady-app/steady/internal/infra/sqlite"
)

// Daemon is the core Steady runtime. It wires together all services.
type Daemon struct {
	Config     Config
	DB         *sqlite.DB
	Tracker    *tracker.Service
	Challenges *challenge.Service
	Groups     *groups.Service
	Health     *health.Checker
	Server     *api.Server

	cancel context.CancelFunc
}

// New creates and initializes a Daemon with all services wired.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	db, err := sqlite.Open(steadyHome())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	tr := tracker.New(db)
	tr.SetWindow(cfg.Tracking.WindowDays)
	tr.SetDefaultFreezes(cfg.Tracking.StreakFreezes)
	ch := challenge.NewService(db)
	gr := groups.NewService(db, ch)

	hc := health.NewChecker(db, steadyHome(), cfg.User.Timezone)

	srv := api.NewServer(tr, gr, ch)
	srv.SetDefaultTimezone(cfg.User.Timezone)
	srv.SetHealth(hc)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0700); err == nil {
			if f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600); err == nil {
				log.SetOutput(f)
			}
		}
	}

	return &Daemon{
		Config:     cfg,
		DB:         db,
		Tracker:    tr,
		Challenges: ch,
		Groups:     gr,
		Health:     hc,
		Server:     srv,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		_ = d.DB.Close()
	}()

	fmt.Printf("Steady serving on http://%s\n", addr)
	if d.Config.Telemetry.Prometheus {
		fmt.Printf("  Metrics: http://%s/metrics\n", addr)
	}

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down all daemon resources.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.DB != nil {
		_ = d.DB.Close()
	}
}
