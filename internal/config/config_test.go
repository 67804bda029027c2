package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"CONFIG_FILE", "ENV", "PORT", "LOG_LEVEL", "CRON_SCHEDULE", "TICK_TIMEOUT",
	"ASSET_ID", "ASSET_NAME", "ASSET_SYMBOL", "QUOTE_CURRENCY",
	"PRICE_PROVIDER", "PRICE_API_URL", "PRICE_API_KEY", "PRICE_USER_AGENT",
	"PRICE_TIMEOUT", "BYBIT_TESTNET", "PRICE_STREAM_MAX_AGE",
	"MESSENGER", "ACCOUNT_SID", "AUTH_TOKEN", "TWILIO_WHATSAPP", "MY_WHATSAPP",
	"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func setTwilioEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ACCOUNT_SID", "AC123")
	t.Setenv("AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_WHATSAPP", "whatsapp:+14155238886")
	t.Setenv("MY_WHATSAPP", "whatsapp:+15550001111")
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	setTwilioEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Port != 4000 {
		t.Errorf("port = %d, want 4000", cfg.Port)
	}
	if cfg.Schedule != "0 * * * *" {
		t.Errorf("schedule = %q", cfg.Schedule)
	}
	if cfg.Asset.ID != "solana" || cfg.Asset.Name != "Solana" {
		t.Errorf("asset = %+v", cfg.Asset)
	}
	if cfg.Price.Provider != ProviderCoinGecko {
		t.Errorf("provider = %q", cfg.Price.Provider)
	}
	if cfg.Messenger.Type != MessengerTwilio {
		t.Errorf("messenger = %q", cfg.Messenger.Type)
	}
	if cfg.Messenger.Twilio.To != "whatsapp:+15550001111" {
		t.Errorf("twilio to = %q", cfg.Messenger.Twilio.To)
	}
	if cfg.ListenAddr() != ":4000" {
		t.Errorf("listen addr = %q", cfg.ListenAddr())
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("CRON_SCHEDULE", "*/5 * * * *")
	t.Setenv("TICK_TIMEOUT", "5s")
	t.Setenv("ASSET_ID", "bitcoin")
	t.Setenv("ASSET_NAME", "Bitcoin")
	t.Setenv("ASSET_SYMBOL", "BTC")
	t.Setenv("PRICE_PROVIDER", "bybit")
	t.Setenv("BYBIT_TESTNET", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MESSENGER", "telegram")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Port != 8081 {
		t.Errorf("port = %d", cfg.Port)
	}
	if cfg.TickTimeout != 5*time.Second {
		t.Errorf("tick timeout = %v", cfg.TickTimeout)
	}
	if cfg.Asset.ID != "bitcoin" || cfg.Asset.Symbol != "BTC" {
		t.Errorf("asset = %+v", cfg.Asset)
	}
	if cfg.Price.Provider != ProviderBybit || !cfg.Price.Testnet {
		t.Errorf("price = %+v", cfg.Price)
	}
	if cfg.Messenger.Telegram.ChatID != -100200300 {
		t.Errorf("chat id = %d", cfg.Messenger.Telegram.ChatID)
	}
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("level = %v", cfg.SlogLevel())
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := `
port: 9000
schedule: "30 * * * *"
asset:
  id: ethereum
  name: Ethereum
  symbol: ETH
price:
  provider: bybit-stream
  timeout: 3s
  stream_max_age: 90s
messenger:
  type: telegram
  telegram:
    bot_token: "file-token"
    chat_id: 42
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Port != 9100 {
		t.Errorf("env should win over file: port = %d", cfg.Port)
	}
	if cfg.Schedule != "30 * * * *" {
		t.Errorf("schedule = %q", cfg.Schedule)
	}
	if cfg.Asset.ID != "ethereum" {
		t.Errorf("asset = %+v", cfg.Asset)
	}
	if cfg.Price.Provider != ProviderBybitStream || cfg.Price.Timeout != 3*time.Second || cfg.Price.StreamMaxAge != 90*time.Second {
		t.Errorf("price = %+v", cfg.Price)
	}
	if cfg.Messenger.Telegram.ChatID != 42 || cfg.Messenger.Telegram.BotToken != "file-token" {
		t.Errorf("telegram = %+v", cfg.Messenger.Telegram)
	}
	// untouched fields keep their defaults
	if cfg.Asset.Currency != "usd" {
		t.Errorf("currency = %q", cfg.Asset.Currency)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing twilio credentials",
			env:     map[string]string{},
			wantErr: "twilio credentials are required",
		},
		{
			name:    "bad port",
			env:     map[string]string{"PORT": "abc"},
			wantErr: "PORT",
		},
		{
			name:    "unknown provider",
			env:     map[string]string{"PRICE_PROVIDER": "kraken"},
			wantErr: "unknown price provider",
		},
		{
			name:    "unknown messenger",
			env:     map[string]string{"MESSENGER": "sms"},
			wantErr: "unknown messenger",
		},
		{
			name:    "telegram without chat",
			env:     map[string]string{"MESSENGER": "telegram", "TELEGRAM_BOT_TOKEN": "t"},
			wantErr: "telegram chat id is required",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"TICK_TIMEOUT": "soon"},
			wantErr: "TICK_TIMEOUT",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"LOG_LEVEL": "loud"},
			wantErr: "unknown log level",
		},
		{
			name:    "missing config file",
			env:     map[string]string{"CONFIG_FILE": "/does/not/exist.yml"},
			wantErr: "read config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if tt.name != "missing twilio credentials" {
				setTwilioEnv(t)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
