package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// ChatClient — низкоуровневый клиент к chat completion API.
type ChatClient interface {
	GetCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error)
}

// Completer — то, чем пользуется диспетчер. Никогда не возвращает ошибку:
// все сбои превращаются в фиксированный ответ.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}
