package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // рядом нет configs/

	cfg, err := NewConfig()
	require.NoError(t, err)

	require.Equal(t, []string{"BTCUSD", "ETHUSD"}, cfg.Symbols)
	require.Equal(t, "wss://api-pub.bitfinex.com/ws/2", cfg.WSURL)
	require.Equal(t, "https://api-pub.bitfinex.com/v2", cfg.RESTURL)
	require.Equal(t, []int{5, 10, 20}, cfg.MAPeriods)
	require.Equal(t, 1000.0, cfg.SpendCapUSD)
	require.Zero(t, cfg.HistoryLimit)
	require.Zero(t, cfg.WarmupCandles)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, 8080, cfg.Service.AdminPort)
	require.Equal(t, 2*time.Second, cfg.ReconnectMinDelay)
	require.Equal(t, time.Minute, cfg.ReportEvery)
	require.False(t, cfg.Jaeger.Enabled)
}

func TestNewConfigEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SYMBOLS", "btcusd, ethusd ,solusd")
	t.Setenv("WS_URL", "wss://stream.test/ws/2")
	t.Setenv("REST_URL", "https://rest.test/v2")
	t.Setenv("SPEND_CAP_USD", "250.5")
	t.Setenv("WARMUP_CANDLES", "50")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("ADMIN_PORT", "9999")
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100500")
	t.Setenv("JAEGER_ENABLED", "true")
	t.Setenv("RECONNECT_MIN_DELAY", "150ms")

	cfg, err := NewConfig()
	require.NoError(t, err)

	require.Equal(t, []string{"BTCUSD", "ETHUSD", "SOLUSD"}, cfg.Symbols)
	require.Equal(t, "wss://stream.test/ws/2", cfg.WSURL)
	require.Equal(t, "https://rest.test/v2", cfg.RESTURL)
	require.Equal(t, 250.5, cfg.SpendCapUSD)
	require.Equal(t, 50, cfg.WarmupCandles)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, 9999, cfg.Service.AdminPort)
	require.Equal(t, "123:abc", cfg.Telegram.Token)
	require.Equal(t, int64(-100500), cfg.Telegram.ChatID)
	require.True(t, cfg.Jaeger.Enabled)
	require.Equal(t, 150*time.Millisecond, cfg.ReconnectMinDelay)
}

func TestNewConfigHistoryLimitClamp(t *testing.T) {
	chdir(t, t.TempDir())

	// меньше самого длинного периода — прижимается к нему
	t.Setenv("HISTORY_LIMIT", "5")
	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, 20, cfg.HistoryLimit)

	// достаточное окно остаётся как есть
	t.Setenv("HISTORY_LIMIT", "100")
	cfg, err = NewConfig()
	require.NoError(t, err)
	require.Equal(t, 100, cfg.HistoryLimit)
}

func TestNewConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))

	raw := `
telegram:
  token: "42:file-token"
  chat_id: 777
service:
  admin_port: 9090
symbols:
  - trxusd
ws_url: "wss://file.test/ws/2"
ma_periods: [3, 7]
spend_cap_usd: 500
history_limit: 50
warmup_candles: 30
log_level: warn
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "values_local.yaml"), []byte(raw), 0o644))
	t.Chdir(dir)
	// env сильнее файла
	t.Setenv("SPEND_CAP_USD", "42")

	cfg, err := NewConfig()
	require.NoError(t, err)

	require.Equal(t, []string{"TRXUSD"}, cfg.Symbols)
	require.Equal(t, "wss://file.test/ws/2", cfg.WSURL)
	require.Equal(t, []int{3, 7}, cfg.MAPeriods)
	require.Equal(t, 42.0, cfg.SpendCapUSD)
	require.Equal(t, 50, cfg.HistoryLimit)
	require.Equal(t, 30, cfg.WarmupCandles)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, 9090, cfg.Service.AdminPort)
	require.Equal(t, "42:file-token", cfg.Telegram.Token)
	require.Equal(t, int64(777), cfg.Telegram.ChatID)
}

func TestNewConfigCustomFileName(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "staging.yaml"), []byte("log_level: error\n"), 0o644))
	t.Chdir(dir)
	t.Setenv("CONFIG_FILE", "staging.yaml")

	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, "error", cfg.LogLevel)
}

func TestNewConfigBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "configs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "configs", "values_local.yaml"), []byte("symbols: [unterminated"), 0o644))
	t.Chdir(dir)

	_, err := NewConfig()
	require.Error(t, err)
	require.Contains(t, err.Error(), "decode config file")
}

func TestDurationFromEnvFallback(t *testing.T) {
	t.Setenv("RECONNECT_MIN_DELAY", "soon")
	require.Equal(t, 2*time.Second, durationFromEnv("RECONNECT_MIN_DELAY", "2s"))

	t.Setenv("RECONNECT_MIN_DELAY", "250ms")
	require.Equal(t, 250*time.Millisecond, durationFromEnv("RECONNECT_MIN_DELAY", "2s"))
}
