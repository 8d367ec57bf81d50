package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/narration-flow/internal/config"
	"github.com/nguyentantai21042004/narration-flow/internal/logger"
	"github.com/nguyentantai21042004/narration-flow/internal/watcher"
)

func main() {
	_ = godotenv.Load() // best-effort: load .env if present

	var configPath string

	root := &cobra.Command{
		Use:          "narrator",
		Short:        "Narrate a video as a nature documentary",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), configPath, true, func(ctx context.Context, a *app) error {
				_, err := a.proc.Process(ctx)
				return err
			})
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "transcript",
		Short: "Rebuild the transcript from cached narrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), configPath, false, func(ctx context.Context, a *app) error {
				res, err := a.proc.Assemble(ctx)
				if err != nil {
					return err
				}
				a.log.Info(ctx, "Transcript written: %s (%d sections)", res.TextPath, res.Sections)
				return nil
			})
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Re-run the pipeline whenever the description file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd.Context(), configPath, true, runWatch)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root.SilenceErrors = true
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// withApp loads the config, builds the pipeline and runs fn with it.
func withApp(ctx context.Context, configPath string, full bool, fn func(context.Context, *app) error) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if full {
		if err := cfg.RequireCredentials(); err != nil {
			return err
		}
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	a, err := newApp(ctx, cfg, log, full)
	if err != nil {
		log.Error(ctx, "Failed to initialize: %v", err)
		return err
	}

	if err := fn(ctx, a); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Warn(ctx, "Interrupted")
		} else {
			log.Error(ctx, "Run failed: %v", err)
		}
		return err
	}
	return nil
}

func runWatch(ctx context.Context, a *app) error {
	run := func(ctx context.Context) error {
		_, err := a.proc.Process(ctx)
		return err
	}

	// first pass before waiting for changes
	if err := run(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.log.Error(ctx, "Initial run failed: %v", err)
	}

	w, err := watcher.New(a.cfg.Paths.Description, run, a.cfg.Watch.Debounce, a.log)
	if err != nil {
		return err
	}
	defer w.Stop()

	a.log.Info(ctx, "Press Ctrl+C to stop")
	if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.log.Info(ctx, "Watcher stopped")
	return nil
}
