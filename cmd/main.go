package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Vovarama1992/gpt_relay/internal/ai"
	"github.com/Vovarama1992/gpt_relay/internal/config"
	"github.com/Vovarama1992/gpt_relay/internal/delivery"
	"github.com/Vovarama1992/gpt_relay/internal/error_notificator"
	"github.com/Vovarama1992/gpt_relay/internal/telegram"
)

const (
	serviceName     = "gpt_relay"
	shutdownTimeout = 10 * time.Second
)

func main() {
	_ = godotenv.Load()

	baseLogger, _ := zap.NewProduction()
	defer baseLogger.Sync()
	zl := logger.NewZapLogger(baseLogger.Sugar())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := func() error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		botApp := telegram.NewBotApp(cfg, zl)
		return run(ctx, cfg, zl, botApp)
	}()
	if err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "fatal",
			Error:   err,
			Service: serviceName,
		})
		stop()
		baseLogger.Sync()
		os.Exit(1)
	}
}

// run владеет botApp: Close вызывается на любом выходе, включая ошибку bind.
// Возвращает nil после отмены ctx и graceful shutdown.
func run(ctx context.Context, cfg *config.Config, zl *logger.ZapLogger, botApp *telegram.BotApp) error {
	defer botApp.Close()

	for _, d := range cfg.Degradations() {
		zl.Log(logger.LogEntry{Level: "warn", Message: d, Service: serviceName})
	}

	// =========================================================================
	// LISTEN (единственная фатальная ошибка)
	// =========================================================================

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("bind %s: %w", cfg.Addr(), err)
	}

	return serve(ctx, ln, cfg, zl, botApp)
}

func serve(ctx context.Context, ln net.Listener, cfg *config.Config, zl *logger.ZapLogger, botApp *telegram.BotApp) error {

	// =========================================================================
	// TELEGRAM
	// =========================================================================

	if err := botApp.Start(ctx); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "webhook registration failed; serving health checks without delivery",
			Error:   err,
			Service: serviceName,
		})
	}

	// =========================================================================
	// ERROR NOTIFICATION
	// =========================================================================

	var notifier error_notificator.Notificator
	if cfg.AdminChatID != 0 {
		errInfra := error_notificator.NewInfra(cfg.AdminChatID)
		errInfra.SetBot(botApp.Bot())
		notifier = error_notificator.NewService(errInfra, zl)
	}

	// =========================================================================
	// CLIENTS
	// =========================================================================

	var chatClient ai.ChatClient
	if cfg.OpenAIAPIKey != "" {
		chatClient = ai.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel)
	}
	aiService := ai.NewService(chatClient, notifier, zl)

	// =========================================================================
	// HTTP
	// =========================================================================

	webhookHandler := delivery.NewWebhookHandler(delivery.WebhookDeps{
		Dispatcher:   telegram.NewDispatcher(aiService),
		Sender:       botApp.Sender(),
		Log:          zl,
		Secret:       cfg.WebhookSecret,
		MaxBodyBytes: cfg.MaxBodyBytes,
		BotUsername:  botApp.Username(),
	})

	srv := &http.Server{
		Handler:           delivery.NewRouter(delivery.NewHandler(cfg), webhookHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "listening at " + ln.Addr().String(),
		Service: serviceName,
	})

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zl.Log(logger.LogEntry{Level: "info", Message: "shutting down", Service: serviceName})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Log(logger.LogEntry{Level: "warn", Message: "graceful shutdown incomplete", Error: err, Service: serviceName})
	}
	return nil
}
