package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/flyingstars/internal/api"
	"github.com/talgya/flyingstars/internal/config"
	"github.com/talgya/flyingstars/internal/persistence"
)

func serveCmd() *cobra.Command {
	var cfgPath string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			db, err := persistence.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer db.Close()
			slog.Info("database opened", "path", cfg.Database.Path)

			prev, err := db.RecordStart(time.Now())
			if err != nil {
				return err
			}
			if prev != "" {
				slog.Info("previous start", "at", prev)
			}

			if cfg.Server.AdminKey == "" {
				slog.Warn("FENGSHUI_ADMIN_KEY not set, admin POST endpoints will be disabled")
			}

			limiter := api.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
			defer limiter.Stop()

			srv := &api.Server{
				DB:            db,
				Port:          cfg.Server.Port,
				AdminKey:      cfg.Server.AdminKey,
				CORSOrigins:   cfg.Server.CORSOrigins,
				DefaultPeriod: cfg.Defaults.Period,
				BatchLimiter:  limiter,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}

	c.Flags().StringVarP(&cfgPath, "config", "c", "fengshui.yaml", "YAML config file (optional)")
	return c
}
