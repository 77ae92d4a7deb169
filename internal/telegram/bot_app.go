package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vovarama1992/gpt_relay/internal/config"
)

const telegramHTTPTimeout = 30 * time.Second

// BotApp — жизненный цикл бота: регистрация вебхука на старте,
// освобождение HTTP-клиента на выходе.
type BotApp struct {
	cfg      *config.Config
	log      *logger.ZapLogger
	client   *http.Client
	endpoint string

	bot    *tgbotapi.BotAPI
	sender Sender

	closeOnce sync.Once
	closed    atomic.Bool
}

func NewBotApp(cfg *config.Config, log *logger.ZapLogger) *BotApp {
	return &BotApp{
		cfg:      cfg,
		log:      log,
		client:   &http.Client{Timeout: telegramHTTPTimeout},
		endpoint: tgbotapi.APIEndpoint,
		sender:   DisabledSender{},
	}
}

// WithEndpoint подменяет Bot API (для тестов).
func (app *BotApp) WithEndpoint(endpoint string, client *http.Client) *BotApp {
	app.endpoint = endpoint
	if client != nil {
		app.client = client
	}
	return app
}

// Start поднимает бота и перерегистрирует вебхук. Ошибка не фатальна:
// вызывающий логирует её и продолжает отдавать health.
func (app *BotApp) Start(ctx context.Context) error {
	if app.cfg.TelegramToken == "" {
		app.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "[bot_app] TELEGRAM_TOKEN not set; webhook registration skipped, replies disabled",
		})
		return nil
	}

	bot, err := tgbotapi.NewBotAPIWithClient(app.cfg.TelegramToken, app.endpoint, app.client)
	if err != nil {
		return fmt.Errorf("init telegram bot: %w", err)
	}

	app.bot = bot
	app.sender = NewSender(bot)
	app.log.Log(logger.LogEntry{
		Level:   "info",
		Message: fmt.Sprintf("[bot_app] ready: @%s", bot.Self.UserName),
	})

	if err := ctx.Err(); err != nil {
		return err
	}

	// 1) снимаем старый вебхук вместе с накопившимися апдейтами
	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}

	// 2) ставим новый, если есть публичный URL
	hook := app.cfg.WebhookEndpoint()
	if hook == "" {
		app.log.Log(logger.LogEntry{
			Level:   "warn",
			Message: "[bot_app] WEBHOOK_URL not set; Telegram won't deliver updates",
		})
		return nil
	}

	if _, err := url.ParseRequestURI(hook); err != nil {
		return fmt.Errorf("invalid webhook url %q: %w", hook, err)
	}

	params := tgbotapi.Params{"url": hook}
	if app.cfg.WebhookSecret != "" {
		params["secret_token"] = app.cfg.WebhookSecret
	}
	if _, err := bot.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	app.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "[bot_app] webhook set to: " + hook,
	})
	return nil
}

// Bot — nil если бот не поднялся.
func (app *BotApp) Bot() *tgbotapi.BotAPI {
	return app.bot
}

// Username — имя из getMe, "" пока бот не поднят.
func (app *BotApp) Username() string {
	if app.bot == nil {
		return ""
	}
	return app.bot.Self.UserName
}

func (app *BotApp) Sender() Sender {
	return app.sender
}

// Close освобождает соединения к Bot API. Можно звать сколько угодно раз.
func (app *BotApp) Close() {
	app.closeOnce.Do(func() {
		app.client.CloseIdleConnections()
		app.closed.Store(true)
		app.log.Log(logger.LogEntry{
			Level:   "info",
			Message: "[bot_app] telegram client released",
		})
	})
}

func (app *BotApp) Closed() bool {
	return app.closed.Load()
}
