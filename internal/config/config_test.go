package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TacticalSentinel/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0 30 6 * * 2-6", cfg.Schedule.DailyCron)
	assert.Equal(t, 30*time.Second, cfg.DataSource.Timeout)
	assert.Equal(t, 2.0, cfg.DataSource.RequestsPerSecond)
	assert.Equal(t, "info", cfg.Log.Level)

	p := cfg.Strategy.Params()
	def := model.DefaultParams()
	assert.Equal(t, def.Instruments, p.Instruments)
	assert.Equal(t, def.BaseWeights, p.BaseWeights)
	assert.Equal(t, def.MAWindows, p.MAWindows)
	assert.Equal(t, def.Scalars, p.Scalars)
	assert.Equal(t, 200, p.RateMAWindow)
	assert.Equal(t, 400, p.LookbackDays)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: file-token
  chat_id: "42"
data_source:
  timeout: 5s
strategy:
  equity: SPY
  base_weights:
    equity: 0.5
    gold: 0.1
    tactical_bond: 0.4
  ma_windows: [10, 50]
  scalars:
    0: 0
    1: 0.5
    2: 1
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("CRON_DAILY", "0 0 7 * * *")
	t.Setenv("LOOKBACK_DAYS", "300")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.ValidateNotifier())

	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, "0 0 7 * * *", cfg.Schedule.DailyCron)
	assert.Equal(t, 5*time.Second, cfg.DataSource.Timeout)

	p := cfg.Strategy.Params()
	assert.Equal(t, "SPY", p.Instruments.Equity)
	assert.Equal(t, "GLD", p.Instruments.Gold)
	assert.Equal(t, []int{10, 50}, p.MAWindows)
	assert.Equal(t, 2, p.MaxScore())
	assert.Equal(t, 0.5, p.BaseWeights[model.SleeveEquity])
	assert.Equal(t, 300, p.LookbackDays)
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "strategy: [not a map"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestStrategyValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Strategy)
		wantErr string
	}{
		{"defaults", func(s *Strategy) {}, ""},
		{"missing ticker", func(s *Strategy) { s.Gold = "" }, "strategy.gold is required"},
		{"duplicate ticker", func(s *Strategy) { s.BondFalling = s.BondRising }, "both use"},
		{"zero window", func(s *Strategy) { s.MAWindows = []int{20, 0} }, "must be positive"},
		{"weights sum", func(s *Strategy) { s.BaseWeights["gold"] = 0.3 }, "must sum to 1"},
		{"negative weight", func(s *Strategy) {
			s.BaseWeights["gold"] = -0.2
			s.BaseWeights["equity"] = 0.8
		}, "must not be negative"},
		{"unknown sleeve", func(s *Strategy) { s.BaseWeights["crypto"] = 0 }, "unknown sleeve"},
		{"missing score", func(s *Strategy) { delete(s.Scalars, 2) }, "missing score 2"},
		{"scalar range", func(s *Strategy) { s.Scalars[3] = 1.5 }, "outside [0,1]"},
		{"non monotonic", func(s *Strategy) { s.Scalars[2] = 0.25 }, "maps below"},
		{"rate window", func(s *Strategy) { s.RateMAWindow = -1 }, "rate_ma_window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(&cfg.Strategy)
			err := cfg.Strategy.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateNotifier(t *testing.T) {
	cfg := &Config{}
	assert.ErrorContains(t, cfg.ValidateNotifier(), "bot_token")
	cfg.Telegram.BotToken = "x"
	assert.ErrorContains(t, cfg.ValidateNotifier(), "chat_id")
}

func TestParams_IsIndependentCopy(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()
	p := cfg.Strategy.Params()
	cfg.Strategy.Scalars[3] = 0.1
	cfg.Strategy.MAWindows[0] = 5
	assert.Equal(t, 1.0, p.Scalar(3))
	assert.Equal(t, 20, p.MAWindows[0])
}
