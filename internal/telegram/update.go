package telegram

import (
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type Command int

const (
	CommandNone Command = iota
	CommandStart
)

// IncomingMessage — нормализованный апдейт. Живёт один запрос.
type IncomingMessage struct {
	UpdateID int
	ChatID   int64
	SenderID int64
	Text     string
	Command  Command
}

type ParseStatus int

const (
	ParseOK ParseStatus = iota
	ParseIgnored
	ParseMalformed
)

func (s ParseStatus) String() string {
	switch s {
	case ParseOK:
		return "ok"
	case ParseIgnored:
		return "ignored"
	case ParseMalformed:
		return "malformed"
	}
	return fmt.Sprintf("ParseStatus(%d)", int(s))
}

// ParseResult — либо сообщение, либо ignored, либо malformed с причиной.
type ParseResult struct {
	Status  ParseStatus
	Message IncomingMessage
	Err     error
}

// ParseUpdate разбирает тело вебхука. Ошибки не пробрасывает:
// битый JSON → ParseMalformed, неподдерживаемый апдейт → ParseIgnored.
// botUsername — имя бота из getMe; "/start@<другой бот>" командой не считается.
func ParseUpdate(raw []byte, botUsername string) ParseResult {
	var upd tgbotapi.Update
	if err := json.Unmarshal(raw, &upd); err != nil {
		return ParseResult{Status: ParseMalformed, Err: fmt.Errorf("decode update: %w", err)}
	}

	msg := upd.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return ParseResult{Status: ParseIgnored}
	}

	var senderID int64
	if msg.From != nil {
		senderID = msg.From.ID
	}

	return ParseResult{
		Status: ParseOK,
		Message: IncomingMessage{
			UpdateID: upd.UpdateID,
			ChatID:   msg.Chat.ID,
			SenderID: senderID,
			Text:     msg.Text,
			Command:  detectCommand(msg.Text, botUsername),
		},
	}
}

// "/start", "/start payload", "/start@relay_bot".
// Упоминание сверяется с именем бота без учёта регистра; пустое имя не совпадает ни с чем.
func detectCommand(text, botUsername string) Command {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return CommandNone
	}

	head, mention, hasMention := strings.Cut(fields[0], "@")
	if head != "/start" {
		return CommandNone
	}
	if hasMention && (botUsername == "" || !strings.EqualFold(mention, botUsername)) {
		return CommandNone
	}
	return CommandStart
}
