package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	DefaultPort         = 8080
	DefaultModel        = "gpt-4o-mini"
	DefaultMaxBodyBytes = 1 << 20
)

// Config — неизменяемая конфигурация процесса. Читается один раз при старте.
type Config struct {
	TelegramToken string `koanf:"telegram_token"`
	OpenAIAPIKey  string `koanf:"openai_api_key"`
	OpenAIModel   string `koanf:"openai_model"`
	OpenAIBaseURL string `koanf:"openai_base_url"`
	WebhookURL    string `koanf:"webhook_url"`
	WebhookSecret string `koanf:"webhook_secret"`
	Port          int    `koanf:"port"`
	AdminChatID   int64  `koanf:"admin_chat_id"`
	MaxBodyBytes  int64  `koanf:"max_body_bytes"`
}

// envKeys — какие переменные окружения читаем и в какие ключи кладём.
var envKeys = map[string]string{
	"TELEGRAM_TOKEN":  "telegram_token",
	"OPENAI_API_KEY":  "openai_api_key",
	"OPENAI_MODEL":    "openai_model",
	"OPENAI_BASE_URL": "openai_base_url",
	"WEBHOOK_URL":     "webhook_url",
	"WEBHOOK_SECRET":  "webhook_secret",
	"PORT":            "port",
	"ADMIN_CHAT_ID":   "admin_chat_id",
	"MAX_BODY_BYTES":  "max_body_bytes",
}

func Default() *Config {
	return &Config{
		OpenAIModel:  DefaultModel,
		Port:         DefaultPort,
		MaxBodyBytes: DefaultMaxBodyBytes,
	}
}

// Load читает конфиг из окружения. Отсутствие секретов — не ошибка,
// ошибка только если значение не парсится (например PORT=abc).
func Load() (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.normalize()

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid PORT %d", cfg.Port)
	}

	return cfg, nil
}

func (c *Config) normalize() {
	c.TelegramToken = strings.TrimSpace(c.TelegramToken)
	c.OpenAIAPIKey = strings.TrimSpace(c.OpenAIAPIKey)
	c.WebhookURL = strings.TrimRight(strings.TrimSpace(c.WebhookURL), "/")

	if strings.TrimSpace(c.OpenAIModel) == "" {
		c.OpenAIModel = DefaultModel
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Addr — адрес для net.Listen.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// WebhookEndpoint — полный URL вебхука или "" если публичный URL не задан.
func (c *Config) WebhookEndpoint() string {
	if c.WebhookURL == "" {
		return ""
	}
	return c.WebhookURL + "/webhook"
}

// Degradations — список отключённых из-за конфига фич, для лога на старте.
func (c *Config) Degradations() []string {
	var out []string
	if c.TelegramToken == "" {
		out = append(out, "TELEGRAM_TOKEN not set: replies and webhook registration disabled")
	} else if c.WebhookURL == "" {
		out = append(out, "WEBHOOK_URL not set: Telegram won't deliver updates")
	}
	if c.OpenAIAPIKey == "" {
		out = append(out, "OPENAI_API_KEY not set: completions answer with the unavailable reply")
	}
	return out
}
