package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go-accident-dashboard/internal/api"
	"go-accident-dashboard/internal/api/handler"
	"go-accident-dashboard/internal/export"
	"go-accident-dashboard/internal/render"
	"go-accident-dashboard/internal/session"
	"go-accident-dashboard/pkg/router"
	"go-accident-dashboard/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard HTTP API",
	Long: `Load the dataset and serve the dashboard API until interrupted.

Every view is kept current for the session filter. When chart_dir is set
the views are also written there as PNG files, and when reload_schedule
is set the dataset is reloaded on that cron schedule.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.ListenAddr
	if cmd.Flags().Changed("addr") {
		addr = flagAddr
	}

	views := render.NewRegistry()
	var presenter render.Presenter = views
	if cfg.ChartDir != "" {
		presenter = render.Multi(views, render.NewPNGPresenter(cfg.ChartDir))
	}

	s, err := newSession(ctx, session.Options{Presenter: presenter})
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}
	if _, err := s.Refresh(); err != nil {
		utils.LogWarn("initial views incomplete", map[string]interface{}{"error": err.Error()})
	}

	exports := export.NewManager(cfg.OutputDir)
	if err := exports.EnsureBaseDir(); err != nil {
		return err
	}

	h := handler.New(s, views, exports, cfg.Loader(), cfg.DatasetSource())
	r := api.NewRouter(h)
	r.GracePeriod = utils.ParseDuration(cfg.ShutdownTimeout, router.ShutdownTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.Start(gctx, addr)
	})

	if cfg.ReloadSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.ReloadSchedule, func() {
			if _, err := s.Reload(gctx, h.Loader, h.Source); err != nil {
				utils.LogWarn("scheduled reload incomplete", map[string]interface{}{"error": err.Error()})
			}
		}); err != nil {
			return fmt.Errorf("schedule reload: %w", err)
		}
		c.Start()
		utils.LogInfo("reload scheduled", map[string]interface{}{"schedule": cfg.ReloadSchedule})

		g.Go(func() error {
			<-gctx.Done()
			<-c.Stop().Done()
			return nil
		})
	}

	return g.Wait()
}
