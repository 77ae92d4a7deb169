package error_notificator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
)

// лимит Telegram на текст сообщения
const maxMessageLen = 4096

// Service собирает текст уведомления и отправляет его best effort:
// сбой доставки логируется здесь, вызывающему остаётся только ошибка.
type Service struct {
	sender AdminSender
	log    *logger.ZapLogger
}

var _ Notificator = (*Service)(nil)

func NewService(sender AdminSender, log *logger.ZapLogger) *Service {
	return &Service{sender: sender, log: log}
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	text := FormatMessage(err, details)

	if sendErr := s.sender.SendAdmin(ctx, text); sendErr != nil {
		level := "warn"
		if errors.Is(sendErr, ErrBotNotReady) {
			level = "info"
		}
		s.log.Log(logger.LogEntry{
			Level:   level,
			Message: fmt.Sprintf("[error_notificator] admin notification dropped: %v", err),
			Error:   sendErr,
		})
		return sendErr
	}
	return nil
}

// FormatMessage — текст для админа, обрезанный по рунам до лимита Telegram.
func FormatMessage(err error, details string) string {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}

	text := fmt.Sprintf("❗ Relay error\n\nError: %s", reason)
	if d := strings.TrimSpace(details); d != "" {
		text += "\n\nDetails: " + d
	}

	if r := []rune(text); len(r) > maxMessageLen {
		text = string(r[:maxMessageLen])
	}
	return text
}
