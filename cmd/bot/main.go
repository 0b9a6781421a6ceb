package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TacticalSentinel/internal/collector"
	"TacticalSentinel/internal/config"
	"TacticalSentinel/internal/metrics"
	"TacticalSentinel/internal/model"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Daily tactical asset allocation signals",
	Long: `Computes daily target weights for an equity / gold / tactical-bond portfolio
from moving-average trend scores and an interest-rate regime switch, and
delivers the report to Telegram.`,
	SilenceUsage: true,
}

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultPath, "Path to the YAML config file")
	rootCmd.AddCommand(serveCmd, runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads and validates the config, then sets up logging from it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	setupLogging(cfg)
	return cfg, nil
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// newFetcher picks the data source: vstrader when a base URL is configured, Yahoo otherwise.
func newFetcher(cfg *config.Config) collector.Fetcher {
	var f collector.Fetcher
	if cfg.DataSource.BaseURL != "" {
		f = collector.NewVsTraderFetcher(cfg.DataSource.BaseURL, cfg.DataSource.APIKey, cfg.Proxy, cfg.DataSource.Timeout)
	} else {
		f = collector.NewYahooFetcher(cfg.Proxy, cfg.DataSource.Timeout)
	}
	return collector.Guard(f, cfg.DataSource.RequestsPerSecond)
}

func newCollector(f collector.Fetcher, params model.Params, reg *metrics.Registry) *collector.Collector {
	col := collector.NewCollector(f, params.Symbols(), params.LookbackDays)
	if reg != nil {
		col.Observe = reg.ObserveFetch
	}
	log.Info().Str("source", f.Name()).Strs("symbols", params.Symbols()).Int("lookback_days", params.LookbackDays).
		Msg("collector ready")
	return col
}
