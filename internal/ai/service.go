package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	openai "github.com/sashabaranov/go-openai"

	"github.com/Vovarama1992/gpt_relay/internal/error_notificator"
	"github.com/Vovarama1992/gpt_relay/internal/metrics"
)

const (
	DefaultPrompt    = "Say hi"
	UnavailableReply = "Sorry, my brain is offline right now: the AI service is not configured."
	FallbackReply    = "Oops, I had a brain freeze. Try again in a sec 🧊"
)

type Service struct {
	client   ChatClient
	notifier error_notificator.Notificator
	log      *logger.ZapLogger
}

// NewService — client == nil значит ключ не настроен, сеть не трогаем.
func NewService(client ChatClient, notifier error_notificator.Notificator, log *logger.ZapLogger) *Service {
	return &Service{
		client:   client,
		notifier: notifier,
		log:      log,
	}
}

var _ Completer = (*Service)(nil)

func (s *Service) Complete(ctx context.Context, prompt string) string {
	if s.client == nil {
		metrics.RecordCompletion(metrics.CompletionUnavailable, 0)
		return UnavailableReply
	}

	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}

	start := time.Now()
	reply, err := s.client.GetCompletion(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordCompletion(metrics.CompletionFallback, elapsed)
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: fmt.Sprintf("[ai] completion failed after %.1fs", elapsed.Seconds()),
			Error:   err,
		})
		s.notifyGptError(ctx, prompt, err)
		return FallbackReply
	}

	metrics.RecordCompletion(metrics.CompletionOK, elapsed)
	return reply
}

// уведомление админа — best effort, сбой логирует сам notificator
func (s *Service) notifyGptError(ctx context.Context, prompt string, err error) {
	if s.notifier == nil {
		return
	}
	details := fmt.Sprintf("Prompt: %q\n\n%s", prompt, analyzeOpenAIError(err))
	_ = s.notifier.Notify(ctx, err, details)
}

// диагностика ошибок GPT
func analyzeOpenAIError(err error) string {
	status := 0

	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "Request to OpenAI was cancelled or timed out."
	case errors.Is(err, errEmptyCompletion):
		return "OpenAI returned an empty completion."
	}

	switch {
	case status == 401:
		return "Invalid OpenAI API key."
	case status == 404:
		return "Model not found."
	case status == 429:
		return "OpenAI rate limit or quota exceeded."
	case status == 400:
		return "Bad request to OpenAI."
	case status >= 500:
		return "OpenAI internal error."
	}
	return "Unknown OpenAI error: " + err.Error()
}
