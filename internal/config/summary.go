package config

import (
	"strconv"
	"unicode/utf8"
)

// Summary — то, что отдаёт GET /env. Секреты никогда не попадают сюда в открытом виде.
type Summary struct {
	TelegramToken string `json:"telegram_token"`
	OpenAIAPIKey  string `json:"openai_api_key"`
	WebhookSecret string `json:"webhook_secret"`
	OpenAIModel   string `json:"openai_model"`
	OpenAIBaseURL string `json:"openai_base_url,omitempty"`
	WebhookURL    string `json:"webhook_url"`
	Port          int    `json:"port"`
	AdminChatID   string `json:"admin_chat_id"`
}

func (c *Config) Summary() Summary {
	admin := "missing"
	if c.AdminChatID != 0 {
		admin = "set"
	}
	webhookURL := c.WebhookURL
	if webhookURL == "" {
		webhookURL = "missing"
	}

	return Summary{
		TelegramToken: Mask(c.TelegramToken),
		OpenAIAPIKey:  Mask(c.OpenAIAPIKey),
		WebhookSecret: Mask(c.WebhookSecret),
		OpenAIModel:   c.OpenAIModel,
		OpenAIBaseURL: c.OpenAIBaseURL,
		WebhookURL:    webhookURL,
		Port:          c.Port,
		AdminChatID:   admin,
	}
}

// Mask: "" → "missing", короткие секреты → "set", длинные → "set (…abcd, N chars)".
// Длина и хвост считаются в рунах.
func Mask(secret string) string {
	n := utf8.RuneCountInString(secret)
	switch {
	case n == 0:
		return "missing"
	case n < 12:
		return "set"
	default:
		runes := []rune(secret)
		return "set (…" + string(runes[n-4:]) + ", " + strconv.Itoa(n) + " chars)"
	}
}
