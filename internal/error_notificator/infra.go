package error_notificator

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var ErrBotNotReady = errors.New("error_notificator: telegram bot not ready")

type Infra struct {
	bot         *tgbotapi.BotAPI
	adminChatID int64
}

var _ AdminSender = (*Infra)(nil)

func NewInfra(adminChatID int64) *Infra {
	return &Infra{adminChatID: adminChatID}
}

// SetBot — позволяет передать бота ПОСЛЕ того, как он инициализировался.
// Вызывается один раз до начала обслуживания запросов.
func (i *Infra) SetBot(bot *tgbotapi.BotAPI) {
	i.bot = bot
}

func (i *Infra) SendAdmin(_ context.Context, text string) error {
	if i.bot == nil {
		return ErrBotNotReady
	}
	if _, err := i.bot.Send(tgbotapi.NewMessage(i.adminChatID, text)); err != nil {
		return fmt.Errorf("send admin notification: %w", err)
	}
	return nil
}
