package delivery

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Vovarama1992/gpt_relay/internal/metrics"
	"github.com/Vovarama1992/gpt_relay/internal/telegram"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

type UpdateDispatcher interface {
	Dispatch(ctx context.Context, msg telegram.IncomingMessage) telegram.SendAction
}

type WebhookDeps struct {
	Dispatcher   UpdateDispatcher
	Sender       telegram.Sender
	Log          *logger.ZapLogger
	Secret       string
	MaxBodyBytes int64
	// BotUsername — для "/start@<имя>"; пусто, если бот не поднялся
	BotUsername string
}

// WebhookHandler — POST /webhook. Всегда отвечает 200 "ok": Telegram
// считает любой другой ответ недоставкой и шлёт апдейт повторно.
type WebhookHandler struct {
	dispatcher UpdateDispatcher
	sender     telegram.Sender
	log        *logger.ZapLogger
	secret     string
	maxBody    int64
	username   string
}

func NewWebhookHandler(deps WebhookDeps) *WebhookHandler {
	sender := deps.Sender
	if sender == nil {
		sender = telegram.DisabledSender{}
	}
	log := deps.Log
	if log == nil {
		log = logger.NewZapLogger(zap.NewNop().Sugar())
	}
	return &WebhookHandler{
		dispatcher: deps.Dispatcher,
		sender:     sender,
		log:        log,
		secret:     deps.Secret,
		maxBody:    deps.MaxBodyBytes,
		username:   deps.BotUsername,
	}
}

// POST /webhook
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	reqID := uuid.NewString()
	defer writeOK(w)
	defer func() {
		if rec := recover(); rec != nil {
			metrics.RecordUpdate(metrics.OutcomePanic)
			h.logf("error", reqID, fmt.Errorf("panic: %v", rec), "handler panic, acknowledged")
		}
	}()

	outcome := h.process(r, w, reqID)
	metrics.RecordUpdate(outcome)
}

// RECEIVED → PARSING → DISPATCHING → REPLYING. Любой сбой сразу даёт исход, ack снаружи.
func (h *WebhookHandler) process(r *http.Request, w http.ResponseWriter, reqID string) string {
	body := io.Reader(r.Body)
	if h.maxBody > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		h.logf("warn", reqID, err, "read body failed")
		return metrics.OutcomeReadError
	}

	if h.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(secretHeader)), []byte(h.secret)) != 1 {
		h.logf("warn", reqID, nil, "secret token mismatch, update dropped")
		return metrics.OutcomeForbidden
	}

	// === PARSING ===
	res := telegram.ParseUpdate(raw, h.username)
	switch res.Status {
	case telegram.ParseMalformed:
		h.logf("warn", reqID, res.Err, "malformed update")
		return metrics.OutcomeMalformed
	case telegram.ParseIgnored:
		return metrics.OutcomeIgnored
	}

	msg := res.Message
	// обрыв соединения со стороны Telegram не отменяет обработку
	ctx := context.WithoutCancel(r.Context())
	h.logf("info", reqID, nil, fmt.Sprintf("incoming update=%d chat=%d from=%d", msg.UpdateID, msg.ChatID, msg.SenderID))

	// === DISPATCHING ===
	act := h.dispatcher.Dispatch(ctx, msg)
	if act.Kind == telegram.ActionNone {
		return metrics.OutcomeIgnored
	}

	// === REPLYING ===
	if err := h.sender.SendText(ctx, act.ChatID, act.Text); err != nil {
		if errors.Is(err, telegram.ErrDeliveryDisabled) {
			h.logf("warn", reqID, err, fmt.Sprintf("%s reply for chat %d not sent", act.Kind, act.ChatID))
			return metrics.OutcomeDisabled
		}
		h.logf("error", reqID, err, fmt.Sprintf("%s reply for chat %d failed", act.Kind, act.ChatID))
		return metrics.OutcomeSendError
	}

	return metrics.OutcomeOK
}

func (h *WebhookHandler) logf(level, reqID string, err error, msg string) {
	h.log.Log(logger.LogEntry{
		Level:   level,
		Message: fmt.Sprintf("[webhook %s] %s", reqID, msg),
		Error:   err,
	})
}

func writeOK(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
