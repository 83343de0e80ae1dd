package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/nbaedge/config"
	"github.com/alejandrodnm/nbaedge/internal/adapters/gemini"
	"github.com/alejandrodnm/nbaedge/internal/adapters/httpapi"
	"github.com/alejandrodnm/nbaedge/internal/adapters/metrics"
	"github.com/alejandrodnm/nbaedge/internal/adapters/notify"
	"github.com/alejandrodnm/nbaedge/internal/adapters/polymarket"
	"github.com/alejandrodnm/nbaedge/internal/application/dashboard"
	"github.com/alejandrodnm/nbaedge/internal/application/engine/paper"
	"github.com/alejandrodnm/nbaedge/internal/application/scanner"
	"github.com/alejandrodnm/nbaedge/internal/application/scheduler"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (optional)")
	once := flag.Bool("once", false, "run one scan + monitor cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full per-game tables (default: compact 1-line)")
	report := flag.Bool("report", false, "print paper positions report and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	loc, err := cfg.Location()
	if err != nil {
		slog.Error("invalid time zone", "err", err)
		os.Exit(1)
	}

	slog.Info("nbaedge starting",
		"config", *configPath,
		"once", *once,
		"threshold", cfg.Strategy.NEAThreshold,
		"monitor_interval", cfg.MonitorInterval(),
		"daily_scan_hour", cfg.Scheduler.DailyScanHour,
		"zone", loc.String(),
		"storage", cfg.Storage.Driver,
	)

	store, err := openStore(cfg.Storage)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole(*table, cfg.Strategy.NEAThreshold)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *report {
		if err := printReport(ctx, store, console, cfg.Strategy.Bankroll); err != nil {
			slog.Error("report failed", "err", err)
			os.Exit(1)
		}
		return
	}

	client := polymarket.NewClient(cfg.API.CLOBBase, cfg.API.GammaBase,
		polymarket.WithEventQuery(polymarket.EventQuery{
			SeriesID: cfg.API.SeriesID,
			TagID:    cfg.API.TagID,
			Limit:    cfg.API.EventsLimit,
		}),
	)

	// Sin API key el Generator queda nil: el analista usa siempre el default.
	var gen gemini.Generator
	if cfg.Analysis.APIKey != "" {
		gc, err := gemini.NewClient(ctx, cfg.Analysis.APIKey, cfg.Analysis.Model)
		if err != nil {
			slog.Error("failed to create gemini client", "err", err)
			os.Exit(1)
		}
		gen = gc
	} else {
		slog.Warn("GEMINI_API_KEY not set, analysis will use defaults")
	}
	analyst := gemini.NewAnalyst(gen, cfg.AnalysisTimeout())

	recorder := metrics.NewRecorder()

	scan := scanner.New(
		scanner.Config{Threshold: cfg.Strategy.NEAThreshold, Location: loc},
		client, client, analyst, store, console, recorder,
	)

	positions := paper.New(store, client, recorder, paper.Config{
		MinFairValue: cfg.Strategy.MinFairValue,
		TakeProfit:   cfg.Strategy.TakeProfitPrice,
		Bankroll:     cfg.Strategy.Bankroll,
		RiskPerTrade: cfg.Strategy.RiskPerTrade,
	})

	sched := scheduler.New(scheduler.Config{
		Tick:            cfg.Tick(),
		MonitorInterval: cfg.MonitorInterval(),
		DailyHour:       cfg.Scheduler.DailyScanHour,
		Location:        loc,
	}, scan, positions, store, console)

	if *once {
		if err := sched.RunOnce(ctx); err != nil {
			slog.Error("run failed", "err", err)
			os.Exit(1)
		}
		if err := printReport(ctx, store, console, cfg.Strategy.Bankroll); err != nil {
			slog.Warn("report failed", "err", err)
		}
		return
	}

	svc := dashboard.New(store, sched, dashboard.Settings{
		NEAThreshold:    cfg.Strategy.NEAThreshold,
		MinFairValue:    cfg.Strategy.MinFairValue,
		TakeProfitPrice: cfg.Strategy.TakeProfitPrice,
		MonitorInterval: cfg.Scheduler.MonitorIntervalSeconds,
		Bankroll:        cfg.Strategy.Bankroll,
		RiskPerTrade:    cfg.Strategy.RiskPerTrade,
		StakePerTrade:   positions.Stake(),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })
	if cfg.HTTP.Addr != "" {
		srv := httpapi.New(cfg.HTTP.Addr, httpapi.NewRouter(svc, recorder.Handler(), cfg.HTTP.CORSOrigins))
		g.Go(func() error { return srv.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		slog.Error("nbaedge exited with error", "err", err)
		os.Exit(1)
	}
	slog.Info("nbaedge stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
