package daemon

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nova-wellness/nova/internal/api"
	"github.com/nova-wellness/nova/internal/app/activity"
	"github.com/nova-wellness/nova/internal/app/quest"
	"github.com/nova-wellness/nova/internal/app/reward"
	"github.com/nova-wellness/nova/internal/app/streak"
	"github.com/nova-wellness/nova/internal/health"
	_ "github.com/nova-wellness/nova/internal/infra/metrics" // Register Prometheus metrics
	"github.com/nova-wellness/nova/internal/infra/sqlite"
)

// Daemon is the core Nova runtime. It wires together all services.
type Daemon struct {
	Config Config
	DB     *sqlite.DB
	Server *api.Server
	cancel context.CancelFunc

	Rewards   *reward.Service
	Streaks   *streak.Tracker
	Catalog   *quest.Catalog
	Evaluator *quest.Evaluator
	Logger    *activity.Logger
	Health    *health.Checker
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
	dataDir := cfg.Database.Dir
	if dataDir == "" {
		dataDir = novaHome()
	}

	db, err := sqlite.Open(dataDir)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	d := &Daemon{
		Config:  cfg,
		DB:      db,
		Rewards: reward.NewService(db, db),
		Streaks: streak.NewTracker(db),
		Catalog: quest.NewCatalog(db),
		Health:  health.NewChecker(db, dataDir),
	}
	d.Evaluator = quest.NewEvaluator(db, db, db)
	d.Logger = activity.NewLogger(db, db, d.Rewards, d.Streaks, d.Evaluator)

	if cfg.Gamification.SeedDefaultQuests {
		seeded, err := d.Catalog.SeedDefaults()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("seed quests: %w", err)
		}
		if len(seeded) > 0 {
			log.Printf("[daemon] seeded %d default quests", len(seeded))
		}
	}

	srv := api.NewServer(db, d.Logger, d.Catalog, d.Rewards)
	srv.SetHealthChecker(d.Health)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}
	d.Server = srv

	return d, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Health checker (always runs)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
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

	fmt.Printf("Nova serving on http://%s\n", addr)
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
