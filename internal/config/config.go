// Package config
package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/mixma5ter/binance-trading-bot/internal/apperr"
	"github.com/mixma5ter/binance-trading-bot/internal/tfutils"
)

/*
YAML config example:

exchange: "binance"
symbol: "BTCUSDT"
timeframe: "1h"
candle_limit: 250
rsi_period: 14
rsi_lower: 30
rsi_upper: 70
order_step: 0.001
poll_interval: 10s
notification_retries: 3
notification_delay: 5s
log_file: "output.log"

Credentials never live in the file; they come from the environment
(or a .env file): BINANCE_API_KEY, BINANCE_PRIVATE_KEY,
BINANCE_MARKET_TYPE, WALLEX_API_KEY, TELEGRAM_TOKEN, TELEGRAM_CHAT_ID.
*/

// Config holds every tunable, built once at startup and passed by
// value. There is no ambient global configuration state.
type Config struct {
	Exchange    string `yaml:"exchange"`
	Symbol      string `yaml:"symbol"`
	Timeframe   string `yaml:"timeframe"`
	CandleLimit int    `yaml:"candle_limit"`

	RSIPeriod int     `yaml:"rsi_period"`
	RSILower  float64 `yaml:"rsi_lower"`
	RSIUpper  float64 `yaml:"rsi_upper"`

	OrderStep    float64       `yaml:"order_step"`
	PollInterval time.Duration `yaml:"poll_interval"`

	NotificationRetries int           `yaml:"notification_retries"`
	NotificationDelay   time.Duration `yaml:"notification_delay"`

	LogFile string `yaml:"log_file"`

	BinanceAPIKey     string `yaml:"-"`
	BinanceSecretKey  string `yaml:"-"`
	BinanceMarketType string `yaml:"-"`
	WallexAPIKey      string `yaml:"-"`
	TelegramToken     string `yaml:"-"`
	TelegramChatID    int64  `yaml:"-"`
}

// Default returns the built-in tunables.
func Default() Config {
	return Config{
		Exchange:            "binance",
		Symbol:              "BTCUSDT",
		Timeframe:           "1h",
		CandleLimit:         250,
		RSIPeriod:           14,
		RSILower:            30,
		RSIUpper:            70,
		OrderStep:           0.001,
		PollInterval:        10 * time.Second,
		NotificationRetries: 3,
		NotificationDelay:   5 * time.Second,
		LogFile:             "output.log",
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// command-line flags and the environment, then validates it. A .env
// file in the working directory is honored when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	configFile := flag.String("config", "", "Path to YAML config file")
	exchangeName := flag.String("exchange", "", "Exchange: binance or wallex")
	symbol := flag.String("symbol", "", "Trading symbol")
	timeframe := flag.String("timeframe", "", "Candle timeframe (e.g., 1h)")
	pollInterval := flag.Duration("poll-interval", 0, "Delay between monitoring cycles (e.g., 10s)")
	flag.Parse()

	cfg := Default()

	if *configFile != "" {
		data, err := os.ReadFile(*configFile)
		if err != nil {
			return Config{}, apperr.Wrap(apperr.ErrConfiguration, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, apperr.Wrap(apperr.ErrConfiguration, err)
		}
	}

	if *exchangeName != "" {
		cfg.Exchange = *exchangeName
	}
	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if *timeframe != "" {
		cfg.Timeframe = *timeframe
	}
	if *pollInterval > 0 {
		cfg.PollInterval = *pollInterval
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv reads credentials (and the market type) from the
// environment through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("BINANCE_API_KEY"); ok {
		c.BinanceAPIKey = v
	}
	if v, ok := lookup("BINANCE_PRIVATE_KEY"); ok {
		c.BinanceSecretKey = v
	}
	if v, ok := lookup("BINANCE_MARKET_TYPE"); ok {
		c.BinanceMarketType = v
	}
	if v, ok := lookup("WALLEX_API_KEY"); ok {
		c.WallexAPIKey = v
	}
	if v, ok := lookup("TELEGRAM_TOKEN"); ok {
		c.TelegramToken = v
	}
	if v, ok := lookup("TELEGRAM_CHAT_ID"); ok {
		chatID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return apperr.Errorf(apperr.ErrConfiguration, "TELEGRAM_CHAT_ID must be an integer, got %q", v)
		}
		c.TelegramChatID = chatID
	}
	return nil
}

// Validate reports the first missing or inconsistent setting. Any
// error here is fatal before the first cycle runs.
func (c *Config) Validate() error {
	switch c.Exchange {
	case "binance":
		if c.BinanceAPIKey == "" || c.BinanceSecretKey == "" || c.BinanceMarketType == "" {
			return apperr.Errorf(apperr.ErrConfiguration,
				"missing required environment variables: BINANCE_API_KEY, BINANCE_PRIVATE_KEY, BINANCE_MARKET_TYPE")
		}
	case "wallex":
		if c.WallexAPIKey == "" {
			return apperr.Errorf(apperr.ErrConfiguration,
				"missing required environment variable: WALLEX_API_KEY")
		}
	default:
		return apperr.Errorf(apperr.ErrConfiguration, "unsupported exchange %q", c.Exchange)
	}

	if c.TelegramToken == "" || c.TelegramChatID == 0 {
		return apperr.Errorf(apperr.ErrConfiguration,
			"missing required environment variables: TELEGRAM_TOKEN, TELEGRAM_CHAT_ID")
	}

	if c.Symbol == "" {
		return apperr.Errorf(apperr.ErrConfiguration, "symbol must not be empty")
	}
	if !tfutils.IsValidTimeframe(c.Timeframe) {
		return apperr.Errorf(apperr.ErrConfiguration, "unsupported timeframe %q", c.Timeframe)
	}
	if c.RSIPeriod < 2 {
		return apperr.Errorf(apperr.ErrConfiguration, "rsi_period must be at least 2, got %d", c.RSIPeriod)
	}
	if c.CandleLimit <= c.RSIPeriod+1 {
		return apperr.Errorf(apperr.ErrConfiguration,
			"candle_limit must exceed rsi_period+1 (%d), got %d", c.RSIPeriod+1, c.CandleLimit)
	}
	if c.RSILower <= 0 || c.RSIUpper >= 100 || c.RSILower >= c.RSIUpper {
		return apperr.Errorf(apperr.ErrConfiguration,
			"thresholds must satisfy 0 < rsi_lower < rsi_upper < 100, got %v and %v", c.RSILower, c.RSIUpper)
	}
	if c.OrderStep <= 0 {
		return apperr.Errorf(apperr.ErrConfiguration, "order_step must be positive, got %v", c.OrderStep)
	}
	if c.PollInterval <= 0 {
		return apperr.Errorf(apperr.ErrConfiguration, "poll_interval must be positive, got %v", c.PollInterval)
	}
	if c.NotificationRetries < 1 {
		return apperr.Errorf(apperr.ErrConfiguration, "notification_retries must be at least 1, got %d", c.NotificationRetries)
	}
	if c.NotificationDelay < 0 {
		return apperr.Errorf(apperr.ErrConfiguration, "notification_delay must not be negative, got %v", c.NotificationDelay)
	}
	return nil
}
