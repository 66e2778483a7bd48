package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/techtech0521/schedule-timeline/internal/battery"
	"github.com/techtech0521/schedule-timeline/internal/config"
	"github.com/techtech0521/schedule-timeline/internal/ics"
	appLog "github.com/techtech0521/schedule-timeline/internal/log"
	"github.com/techtech0521/schedule-timeline/internal/render"
	"github.com/techtech0521/schedule-timeline/internal/schedule"
	"github.com/techtech0521/schedule-timeline/internal/scheduler"
	"github.com/techtech0521/schedule-timeline/internal/web"
)

const version = "0.1.0"

type flagConfig struct {
	configPath string
	listen     string
	once       bool
	renderOnly bool
	dump       bool
	width      int
}

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	flags := parseFlags()

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		if cfg == nil {
			appLog.Error("failed to load config", err, "config_path", flags.configPath)
			os.Exit(1)
		}
		appLog.Error("could not write default config; continuing with defaults", err, "config_path", flags.configPath)
	}
	if flags.listen != "" {
		cfg.Listen = flags.listen
	}
	appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))

	appLog.Info("schedtl starting",
		"version", version,
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"refresh", cfg.RefreshCron,
		"static_events", len(cfg.Events),
		"ics_count", len(cfg.ICS),
		"once", flags.once,
		"render_only", flags.renderOnly,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := ics.NewFetcher(filepath.Join(cfg.OutputDir, "ics-cache"), nil)
	builder := schedule.NewBuilder(cfg, fetcher)

	var br battery.Reader
	if cfg.ShowBattery {
		br = battery.NewCached(battery.DefaultReader(), 30*time.Second)
	}

	server := web.NewServer(cfg, builder, br, filepath.Join(cfg.OutputDir, "preview.png"))

	if flags.renderOnly {
		if err := render.Text(os.Stdout, server.View(ctx), flags.width); err != nil {
			appLog.Error("terminal render failed", err)
			os.Exit(1)
		}
		return
	}

	if err := run(ctx, cfg, server, flags); err != nil {
		appLog.Error("schedtl stopped with error", err)
		os.Exit(1)
	}
	appLog.Info("schedtl exiting")
}

func run(ctx context.Context, cfg *config.Config, server *web.Server, flags flagConfig) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe(ctx)
	}()

	p := &pipeline{cfg: cfg, server: server, dump: flags.dump}
	job := scheduler.NewSerial(p.Run)

	if flags.once {
		// Give the listener a moment before Chromium connects.
		time.Sleep(200 * time.Millisecond)
		err := job.Run(ctx)
		cancel()
		return errors.Join(err, <-serveErr)
	}

	sched := scheduler.New(schedule.Location(cfg.Timezone))
	if err := sched.Schedule("capture", cfg.RefreshCron, job.Run); err != nil {
		return err
	}
	sched.Start()
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		sched.Stop(stopCtx)
	}()

	go func() {
		time.Sleep(200 * time.Millisecond)
		if err := job.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLog.Error("initial capture failed", err)
		}
	}()

	return <-serveErr
}

func parseFlags() flagConfig {
	var cfg flagConfig

	defaultConfig := "/etc/schedtl/config.yaml"
	if v := os.Getenv("SCHEDTL_CONFIG"); v != "" {
		defaultConfig = v
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (env SCHEDTL_CONFIG)")
	flag.StringVar(&cfg.listen, "listen", os.Getenv("SCHEDTL_LISTEN"), "HTTP listen address (overrides config if set; env SCHEDTL_LISTEN)")
	flag.BoolVar(&cfg.once, "once", false, "Run one capture+pack cycle and exit")
	flag.BoolVar(&cfg.renderOnly, "render-only", false, "Print today's timeline to the terminal and exit")
	flag.BoolVar(&cfg.dump, "dump", false, "Also write timeline.html and timeline.json next to the panel planes")
	flag.IntVar(&cfg.width, "width", 80, "Terminal width for --render-only")

	flag.Parse()

	return cfg
}
