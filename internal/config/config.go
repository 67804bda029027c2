package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	ProviderCoinGecko   = "coingecko"
	ProviderBybit       = "bybit"
	ProviderBybitStream = "bybit-stream"

	MessengerTwilio   = "twilio"
	MessengerTelegram = "telegram"
)

// Config - process configuration, read once at startup
type Config struct {
	Env         string        `yaml:"env"` // "local", "prod"
	Port        int           `yaml:"port"`
	LogLevel    string        `yaml:"log_level"`
	Schedule    string        `yaml:"schedule"` // cron expression
	TickTimeout time.Duration `yaml:"tick_timeout"`

	Asset     Asset     `yaml:"asset"`
	Price     Price     `yaml:"price"`
	Messenger Messenger `yaml:"messenger"`
}

type Asset struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Symbol   string `yaml:"symbol"`
	Currency string `yaml:"currency"`
}

type Price struct {
	Provider     string        `yaml:"provider"`
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	Testnet      bool          `yaml:"testnet"`
	StreamMaxAge time.Duration `yaml:"stream_max_age"`
}

type Messenger struct {
	Type     string   `yaml:"type"`
	Twilio   Twilio   `yaml:"twilio"`
	Telegram Telegram `yaml:"telegram"`
}

type Twilio struct {
	AccountSID string `yaml:"account_sid"`
	AuthToken  string `yaml:"auth_token"`
	From       string `yaml:"from"`
	To         string `yaml:"to"`
}

type Telegram struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Env:         "local",
		Port:        4000,
		LogLevel:    "info",
		Schedule:    "0 * * * *",
		TickTimeout: 30 * time.Second,
		Asset: Asset{
			ID:       "solana",
			Name:     "Solana",
			Symbol:   "SOL",
			Currency: "usd",
		},
		Price: Price{
			Provider:     ProviderCoinGecko,
			Timeout:      10 * time.Second,
			StreamMaxAge: 2 * time.Minute,
		},
		Messenger: Messenger{
			Type: MessengerTwilio,
		},
	}
}

// LoadConfig - defaults, then the optional YAML file from CONFIG_FILE, then env.
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Env, "ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.Schedule, "CRON_SCHEDULE")

	setString(&c.Asset.ID, "ASSET_ID")
	setString(&c.Asset.Name, "ASSET_NAME")
	setString(&c.Asset.Symbol, "ASSET_SYMBOL")
	setString(&c.Asset.Currency, "QUOTE_CURRENCY")

	setString(&c.Price.Provider, "PRICE_PROVIDER")
	setString(&c.Price.BaseURL, "PRICE_API_URL")
	setString(&c.Price.APIKey, "PRICE_API_KEY")
	setString(&c.Price.UserAgent, "PRICE_USER_AGENT")

	setString(&c.Messenger.Type, "MESSENGER")
	setString(&c.Messenger.Twilio.AccountSID, "ACCOUNT_SID")
	setString(&c.Messenger.Twilio.AuthToken, "AUTH_TOKEN")
	setString(&c.Messenger.Twilio.From, "TWILIO_WHATSAPP")
	setString(&c.Messenger.Twilio.To, "MY_WHATSAPP")
	setString(&c.Messenger.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")

	var errs []error
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("PORT: %w", err))
		}
		c.Port = p
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("TELEGRAM_CHAT_ID: %w", err))
		}
		c.Messenger.Telegram.ChatID = id
	}
	if v := os.Getenv("BYBIT_TESTNET"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("BYBIT_TESTNET: %w", err))
		}
		c.Price.Testnet = b
	}
	errs = append(errs,
		setDuration(&c.TickTimeout, "TICK_TIMEOUT"),
		setDuration(&c.Price.Timeout, "PRICE_TIMEOUT"),
		setDuration(&c.Price.StreamMaxAge, "PRICE_STREAM_MAX_AGE"),
	)
	return errors.Join(errs...)
}

// Validate checks everything the process needs before it starts polling.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Port))
	}
	if strings.TrimSpace(c.Schedule) == "" {
		errs = append(errs, errors.New("schedule is required"))
	}
	if c.TickTimeout <= 0 {
		errs = append(errs, errors.New("tick timeout must be positive"))
	}
	if strings.TrimSpace(c.Asset.ID) == "" {
		errs = append(errs, errors.New("asset id is required"))
	}

	switch c.Price.Provider {
	case ProviderCoinGecko, ProviderBybit:
	case ProviderBybitStream:
		if c.Price.StreamMaxAge <= 0 {
			errs = append(errs, errors.New("price stream max age must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown price provider: %q", c.Price.Provider))
	}
	if c.Price.Timeout <= 0 {
		errs = append(errs, errors.New("price timeout must be positive"))
	}

	switch c.Messenger.Type {
	case MessengerTwilio:
		t := c.Messenger.Twilio
		if t.AccountSID == "" || t.AuthToken == "" {
			errs = append(errs, errors.New("twilio credentials are required (ACCOUNT_SID, AUTH_TOKEN)"))
		}
		if t.From == "" || t.To == "" {
			errs = append(errs, errors.New("twilio sender and recipient are required (TWILIO_WHATSAPP, MY_WHATSAPP)"))
		}
	case MessengerTelegram:
		if c.Messenger.Telegram.BotToken == "" {
			errs = append(errs, errors.New("telegram bot token is required (TELEGRAM_BOT_TOKEN)"))
		}
		if c.Messenger.Telegram.ChatID == 0 {
			errs = append(errs, errors.New("telegram chat id is required (TELEGRAM_CHAT_ID)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown messenger: %q", c.Messenger.Type))
	}

	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ListenAddr - address for the HTTP listener
func (c *Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// SlogLevel maps LogLevel onto slog; Validate has already rejected bad values.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := parseLevel(c.LogLevel)
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", s)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
