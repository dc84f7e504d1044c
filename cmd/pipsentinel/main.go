package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"PipSentinel/internal/collector"
	"PipSentinel/internal/config"
	"PipSentinel/internal/exporter"
	"PipSentinel/internal/metrics"
	"PipSentinel/internal/notifier"
	"PipSentinel/internal/recorder"
	"PipSentinel/internal/scheduler"
	"PipSentinel/internal/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PipSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	opts, err := collectorOptions(cfg)
	if err != nil {
		log.Fatalf("[FATAL] config: %v", err)
	}

	// Patterns keep their {pair} placeholder; the source expands it per pair.
	src := &collector.FileSource{
		MinutePattern: cfg.SourcePath(cfg.Sources.MinuteFile, "{pair}"),
		FixPath:       cfg.SourcePath(cfg.Sources.FixFile, "{pair}"),
		DailyPattern:  cfg.SourcePath(cfg.Sources.DailyFile, "{pair}"),
	}
	log.Printf("[INFO] data source: %s (%s)", src.Name(), cfg.Sources.Dir)

	m := metrics.New()
	col := collector.NewCollector(src, opts)
	col.Observer = m.ForPair

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer := exporter.NewWorkbookWriter(cfg.Output.SheetName, cfg.Output.ColumnWidth)
	sched := scheduler.NewScheduler(ctx, col, writer, rec, m, cfg.Setup.CurrencyPairs, cfg.Output.Dir)

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sched.OnFinish = func(ctx context.Context, res *scheduler.RunResult) {
			if err := tn.SendWithRetry(ctx, notifier.FormatRunReport(res), 3); err != nil {
				log.Printf("[ERROR] send run report: %v", err)
			}
		}
	}

	// Without a schedule this is a one-shot batch job.
	if cfg.Schedule.Cron == "" {
		res, err := sched.RunOnce(ctx)
		if err != nil {
			log.Printf("[ERROR] run failed: %v", err)
			rec.Close()
			os.Exit(1)
		}
		log.Printf("[INFO] results written to %s", res.Folder)
		return
	}

	if err := sched.Register(cfg.Schedule.Cron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, notifier.Commands(sched))
		log.Println("[INFO] Telegram polling started")
	}

	if cfg.Schedule.RunOnStart {
		log.Println("[INFO] run_on_start enabled, executing batch now")
		go sched.RunNow()
	}

	if addr := cfg.Server.ListenAddr; addr != "" {
		srv := server.New(sched, m.Registry)
		go func() {
			if err := srv.ListenAndServe(ctx, addr); err != nil {
				log.Printf("[ERROR] status server: %v", err)
			}
		}()
	}

	log.Println("[INFO] PipSentinel is running. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
}

func collectorOptions(cfg *config.Config) (collector.Options, error) {
	var (
		opts collector.Options
		err  error
	)
	if opts.Window, err = cfg.Window(); err != nil {
		return opts, err
	}
	if opts.Dates, err = cfg.DateRange(); err != nil {
		return opts, err
	}
	if opts.Benchmarks, err = cfg.Benchmarks(); err != nil {
		return opts, err
	}
	if opts.Shifts, err = cfg.DSTShifts(); err != nil {
		return opts, err
	}
	if opts.MinuteSections, err = cfg.MinuteSections(); err != nil {
		return opts, err
	}
	if opts.AverageWindows, err = cfg.AverageSections(); err != nil {
		return opts, err
	}
	opts.IncludeOHLC = cfg.Metrics.IncludeOHLC
	opts.LongShort = cfg.Metrics.LongShort
	return opts, nil
}
