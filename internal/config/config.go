package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"TacticalSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	DataSource struct {
		BaseURL           string        `yaml:"base_url"`
		APIKey            string        `yaml:"api_key"`
		RequestsPerSecond float64       `yaml:"requests_per_second"`
		Timeout           time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
	Strategy Strategy `yaml:"strategy"`
	Proxy    string   `yaml:"proxy"`
}

// Strategy is the YAML form of model.Params.
type Strategy struct {
	Equity       string             `yaml:"equity"`
	Gold         string             `yaml:"gold"`
	BondRising   string             `yaml:"bond_rising"`
	BondFalling  string             `yaml:"bond_falling"`
	Rate         string             `yaml:"rate"`
	Cash         string             `yaml:"cash"`
	CashLabel    string             `yaml:"cash_label"`
	BaseWeights  map[string]float64 `yaml:"base_weights"`
	MAWindows    []int              `yaml:"ma_windows"`
	RateMAWindow int                `yaml:"rate_ma_window"`
	Scalars      map[int]float64    `yaml:"scalars"`
	LookbackDays int                `yaml:"lookback_days"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("VSTRADER_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("VSTRADER_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.ListenAddr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOOKBACK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Strategy.LookbackDays = n
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.RequestsPerSecond == 0 {
		c.DataSource.RequestsPerSecond = 2
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Schedule.DailyCron == "" {
		c.Schedule.DailyCron = "0 30 6 * * 2-6"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/tactical_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}

	def := model.DefaultParams()
	s := &c.Strategy
	setString := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	setString(&s.Equity, def.Instruments.Equity)
	setString(&s.Gold, def.Instruments.Gold)
	setString(&s.BondRising, def.Instruments.BondRising)
	setString(&s.BondFalling, def.Instruments.BondFalling)
	setString(&s.Rate, def.Instruments.Rate)
	setString(&s.Cash, def.Instruments.Cash)
	setString(&s.CashLabel, def.Instruments.CashLabel)
	if len(s.BaseWeights) == 0 {
		s.BaseWeights = make(map[string]float64, len(def.BaseWeights))
		for k, v := range def.BaseWeights {
			s.BaseWeights[string(k)] = v
		}
	}
	if len(s.MAWindows) == 0 {
		s.MAWindows = append([]int(nil), def.MAWindows...)
	}
	if s.RateMAWindow == 0 {
		s.RateMAWindow = def.RateMAWindow
	}
	if len(s.Scalars) == 0 {
		s.Scalars = make(map[int]float64, len(def.Scalars))
		for k, v := range def.Scalars {
			s.Scalars[k] = v
		}
	}
	if s.LookbackDays == 0 {
		s.LookbackDays = def.LookbackDays
	}
}

// Validate checks that the strategy section is usable.
func (c *Config) Validate() error {
	if c.DataSource.RequestsPerSecond < 0 {
		return errors.New("data_source.requests_per_second must not be negative")
	}
	return c.Strategy.Validate()
}

// ValidateNotifier checks the fields the long-running bot needs to deliver reports.
func (c *Config) ValidateNotifier() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// Validate checks identifiers, windows, base weights and the scalar table.
func (s *Strategy) Validate() error {
	ids := map[string]string{
		"equity": s.Equity, "gold": s.Gold, "bond_rising": s.BondRising,
		"bond_falling": s.BondFalling, "rate": s.Rate, "cash": s.Cash, "cash_label": s.CashLabel,
	}
	keys := make([]string, 0, len(ids))
	for k := range ids {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	seen := make(map[string]string, len(ids))
	for _, k := range keys {
		v := ids[k]
		if v == "" {
			return fmt.Errorf("strategy.%s is required", k)
		}
		if other, dup := seen[v]; dup {
			return fmt.Errorf("strategy.%s and strategy.%s both use %q", other, k, v)
		}
		seen[v] = k
	}

	if len(s.MAWindows) == 0 {
		return errors.New("strategy.ma_windows must not be empty")
	}
	for _, w := range s.MAWindows {
		if w <= 0 {
			return fmt.Errorf("strategy.ma_windows: window %d must be positive", w)
		}
	}
	if s.RateMAWindow <= 0 {
		return errors.New("strategy.rate_ma_window must be positive")
	}
	if s.LookbackDays <= 0 {
		return errors.New("strategy.lookback_days must be positive")
	}

	sum := 0.0
	for _, sl := range model.Sleeves {
		w, ok := s.BaseWeights[string(sl)]
		if !ok {
			return fmt.Errorf("strategy.base_weights.%s is required", sl)
		}
		if w < 0 {
			return fmt.Errorf("strategy.base_weights.%s must not be negative", sl)
		}
		sum += w
	}
	for k := range s.BaseWeights {
		if !isSleeve(k) {
			return fmt.Errorf("strategy.base_weights: unknown sleeve %q", k)
		}
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("strategy.base_weights must sum to 1, got %.6f", sum)
	}

	prev := math.Inf(-1)
	for score := 0; score <= len(s.MAWindows); score++ {
		v, ok := s.Scalars[score]
		if !ok {
			return fmt.Errorf("strategy.scalars: missing score %d", score)
		}
		if v < 0 || v > 1 {
			return fmt.Errorf("strategy.scalars: score %d maps to %.4f, outside [0,1]", score, v)
		}
		if v < prev {
			return fmt.Errorf("strategy.scalars: score %d maps below score %d", score, score-1)
		}
		prev = v
	}
	return nil
}

// Params converts the strategy section into the immutable parameter set.
func (s *Strategy) Params() model.Params {
	p := model.Params{
		Instruments: model.Instruments{
			Equity:      s.Equity,
			Gold:        s.Gold,
			BondRising:  s.BondRising,
			BondFalling: s.BondFalling,
			Rate:        s.Rate,
			Cash:        s.Cash,
			CashLabel:   s.CashLabel,
		},
		BaseWeights:  make(map[model.Sleeve]float64, len(s.BaseWeights)),
		MAWindows:    s.MAWindows,
		RateMAWindow: s.RateMAWindow,
		Scalars:      s.Scalars,
		LookbackDays: s.LookbackDays,
	}
	for k, v := range s.BaseWeights {
		p.BaseWeights[model.Sleeve(k)] = v
	}
	return p.Clone()
}

func isSleeve(name string) bool {
	for _, s := range model.Sleeves {
		if string(s) == name {
			return true
		}
	}
	return false
}
