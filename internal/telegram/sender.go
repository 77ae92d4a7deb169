package telegram

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// лимит Telegram на текст сообщения
const maxMessageLen = 4096

var ErrDeliveryDisabled = errors.New("telegram delivery disabled")

type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

type botSender struct {
	bot *tgbotapi.BotAPI
}

func NewSender(bot *tgbotapi.BotAPI) Sender {
	return &botSender{bot: bot}
}

func (s *botSender) SendText(_ context.Context, chatID int64, text string) error {
	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen])
	}

	if _, err := s.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return fmt.Errorf("send message to chat %d: %w", chatID, err)
	}
	return nil
}

// DisabledSender — когда токена нет или бот не поднялся.
type DisabledSender struct{}

func (DisabledSender) SendText(context.Context, int64, string) error {
	return ErrDeliveryDisabled
}
