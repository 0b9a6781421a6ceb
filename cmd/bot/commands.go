package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TacticalSentinel/internal/collector"
	"TacticalSentinel/internal/metrics"
	"TacticalSentinel/internal/model"
	"TacticalSentinel/internal/notifier"
	"TacticalSentinel/internal/recorder"
	"TacticalSentinel/internal/scheduler"
)

var (
	runMock    bool
	runSend    bool
	runTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the daily schedule and answer Telegram commands",
	RunE:  runServe,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute today's allocation once and print the report",
	Long: `Fetches the price window, computes the target weights and prints the report.

Example usage:
  bot run                 # live data, print only
  bot run --send          # also deliver to Telegram
  bot run --mock          # synthetic data, no network`,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runMock, "mock", false, "Use synthetic price history instead of a live source")
	runCmd.Flags().BoolVar(&runSend, "send", false, "Deliver the report to Telegram")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 2*time.Minute, "Deadline for fetching price history")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateNotifier(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log.Info().Msg("tactical sentinel starting")

	params := cfg.Strategy.Params()
	reg := metrics.NewRegistry()
	latest := &metrics.Latest{}
	col := newCollector(newFetcher(cfg), params, reg)
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
			defer sr.Close()
		}
	}

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := scheduler.NewScheduler(col, params, tn, rec, reg, latest)
	if err := sched.RegisterDaily(ctx, cfg.Schedule.DailyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Metrics.ListenAddr != "" {
		srv := metrics.NewServer(cfg.Metrics.ListenAddr, reg, latest)
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("status server shutdown")
			}
		}()
	}

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Info().Msg("telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing allocation now")
		go sched.Run(ctx, model.TriggerManual)
	}

	log.Info().Str("cron", cfg.Schedule.DailyCron).Msg("tactical sentinel is running, press Ctrl+C to stop")
	<-ctx.Done()
	log.Info().Msg("shutdown signal received, stopping")
	return nil
}

func runOnce(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	params := cfg.Strategy.Params()

	var f collector.Fetcher
	if runMock {
		f = collector.NewDemoFetcher(params.Symbols(), 260, time.Now())
	} else {
		f = newFetcher(cfg)
	}

	var sender notifier.Sender
	if runSend {
		if err := cfg.ValidateNotifier(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}
		sender = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
	defer cancel()

	sched := scheduler.NewScheduler(newCollector(f, params, nil), params, sender, nil, nil, nil)
	res := sched.Run(ctx, model.TriggerManual)
	if res.Err != nil {
		return res.Err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Report)
	return nil
}
