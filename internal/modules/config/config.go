package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"paper_bot/internal/helper"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	chatTelegramENV   = "TELEGRAM_CHAT_ID"
	symbolsENV        = "SYMBOLS"
)

// Config ...
type Config struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Service struct {
		AdminPort int `yaml:"admin_port"`
	} `yaml:"service"`
	Jaeger struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"jaeger"`

	// Рынок: канонические символы без префикса стороны книги ("BTCUSD").
	Symbols []string `yaml:"symbols"`
	WSURL   string   `yaml:"ws_url"`
	RESTURL string   `yaml:"rest_url"`

	// Движок
	MAPeriods   []int   `yaml:"ma_periods"`
	SpendCapUSD float64 `yaml:"spend_cap_usd"`
	// 0 — история не ограничена; иначе окно прижимается снизу
	// к самому длинному периоду, чтобы сигналы не менялись.
	HistoryLimit int `yaml:"history_limit"`
	// 0 — REST-прогрев выключен.
	WarmupCandles int `yaml:"warmup_candles"`

	LogLevel string `yaml:"log_level"`

	// Интервалы только из env: yaml.v2 не умеет "2s" в time.Duration.
	ReconnectMinDelay time.Duration `yaml:"-"`
	ReportEvery       time.Duration `yaml:"-"`
}

func NewConfig() (*Config, error) {
	config := Config{
		Symbols: []string{"BTCUSD", "ETHUSD"},
		WSURL:   "wss://api-pub.bitfinex.com/ws/2",
		RESTURL: "https://api-pub.bitfinex.com/v2",

		MAPeriods:     []int{5, 10, 20},
		SpendCapUSD:   1000,
		HistoryLimit:  0,
		WarmupCandles: 0,

		LogLevel: "info",

		ReconnectMinDelay: durationFromEnv("RECONNECT_MIN_DELAY", "2s"),
		ReportEvery:       durationFromEnv("REPORT_EVERY", "60s"),
	}
	config.Service.AdminPort = 8080
	config.Jaeger.Host = "127.0.0.1"
	config.Jaeger.Port = 6831

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		// паперный движок полностью рабочий на дефолтах и env
		log.Printf("[CONFIG] %v — using defaults and env", err)
	} else {
		defer func() {
			_ = file.Close()
		}()
		if err := yaml.NewDecoder(file).Decode(&config); err != nil {
			return nil, errors.Wrap(err, "decode config file")
		}
	}

	// env поверх файла
	if v := os.Getenv(symbolsENV); v != "" {
		config.Symbols = helper.SplitList(v)
	}
	if token := os.Getenv(tokenTelegramENV); token != "" {
		config.Telegram.Token = token
	}
	if chat := int64FromEnv(chatTelegramENV, 0); chat != 0 {
		config.Telegram.ChatID = chat
	}
	config.WSURL = getenvDefault("WS_URL", config.WSURL)
	config.RESTURL = getenvDefault("REST_URL", config.RESTURL)
	config.SpendCapUSD = floatFromEnv("SPEND_CAP_USD", config.SpendCapUSD)
	config.HistoryLimit = intFromEnv("HISTORY_LIMIT", config.HistoryLimit)
	config.WarmupCandles = intFromEnv("WARMUP_CANDLES", config.WarmupCandles)
	config.LogLevel = getenvDefault("LOG_LEVEL", config.LogLevel)
	config.Service.AdminPort = intFromEnv("ADMIN_PORT", config.Service.AdminPort)
	config.Jaeger.Enabled = boolFromEnv("JAEGER_ENABLED", config.Jaeger.Enabled)

	// канонизируем прямо тут: дальше по коду ключи всегда без префикса
	for i, s := range config.Symbols {
		config.Symbols[i] = strings.ToUpper(strings.TrimSpace(s))
	}

	if len(config.MAPeriods) == 0 {
		config.MAPeriods = []int{5, 10, 20}
	}
	if config.SpendCapUSD <= 0 {
		config.SpendCapUSD = 1000
	}
	if maxP := helper.MaxPeriod(config.MAPeriods); config.HistoryLimit > 0 && config.HistoryLimit < maxP {
		log.Printf("[CONFIG] history_limit %d < longest period %d, clamped", config.HistoryLimit, maxP)
		config.HistoryLimit = maxP
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func int64FromEnv(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
