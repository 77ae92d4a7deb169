package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"go.uber.org/zap"

	"github.com/Vovarama1992/gpt_relay/internal/config"
	"github.com/Vovarama1992/gpt_relay/internal/telegram"
	"github.com/Vovarama1992/gpt_relay/internal/telegram/tgtest"
)

func testLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

// startRun запускает run в фоне и ждёт, пока GET / начнёт отвечать.
func startRun(t *testing.T, cfg *config.Config, botApp *telegram.BotApp) (base string, cancel context.CancelFunc, done <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- run(ctx, cfg, testLogger(), botApp)
	}()

	base = fmt.Sprintf("http://127.0.0.1:%d", cfg.Port)
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/")
		if err == nil {
			resp.Body.Close()
			break
		}
		select {
		case err := <-errCh:
			cancel()
			t.Fatalf("run exited early: %v", err)
		default:
		}
		if time.Now().After(deadline) {
			cancel()
			t.Fatalf("server did not come up: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	return base, cancel, errCh
}

func waitStopped(t *testing.T, done <-chan error) {
	t.Helper()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run = %v, want nil after cancel", err)
		}
	case <-time.After(shutdownTimeout + 5*time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunBindFailureReleasesClient(t *testing.T) {
	taken, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()

	cfg := config.Default()
	cfg.Port = taken.Addr().(*net.TCPAddr).Port
	botApp := telegram.NewBotApp(cfg, testLogger())

	err = run(context.Background(), cfg, testLogger(), botApp)
	if err == nil || !strings.Contains(err.Error(), "bind") {
		t.Fatalf("run = %v, want bind error", err)
	}
	if !botApp.Closed() {
		t.Error("telegram client was not released on bind failure")
	}
}

func TestRunWithoutSecretsServesHealth(t *testing.T) {
	cfg := config.Default()
	cfg.Port = freePort(t)
	botApp := telegram.NewBotApp(cfg, testLogger())

	base, cancel, done := startRun(t, cfg, botApp)
	defer cancel()

	resp, err := http.Get(base + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("GET / = %d %q, want 200 ok", resp.StatusCode, body)
	}

	resp, err = http.Post(base+"/webhook", "application/json", strings.NewReader(`{"message":{"text":"hi","chat":{"id":1}}}`))
	if err != nil {
		t.Fatalf("POST /webhook: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /webhook = %d, want 200", resp.StatusCode)
	}

	cancel()
	waitStopped(t, done)

	if !botApp.Closed() {
		t.Error("telegram client was not released on shutdown")
	}
}

func TestRunRegistersWebhookAndGreetsOwnMention(t *testing.T) {
	tg := tgtest.NewServer(t)

	cfg := config.Default()
	cfg.Port = freePort(t)
	cfg.TelegramToken = "test-token"
	cfg.WebhookURL = "https://relay.example.com"
	botApp := telegram.NewBotApp(cfg, testLogger()).WithEndpoint(tg.Endpoint(), tg.Client())

	base, cancel, done := startRun(t, cfg, botApp)
	defer cancel()

	if calls := tg.Calls("setWebhook"); len(calls) != 1 || calls[0].Form.Get("url") != "https://relay.example.com/webhook" {
		t.Fatalf("setWebhook calls = %+v", calls)
	}

	for _, text := range []string{"/start@" + tgtest.BotUsername, "/start@some_other_bot"} {
		body := fmt.Sprintf(`{"message":{"text":%q,"chat":{"id":5}}}`, text)
		resp, err := http.Post(base+"/webhook", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("POST /webhook: %v", err)
		}
		resp.Body.Close()
	}

	calls := tg.Calls("sendMessage")
	if len(calls) != 2 {
		t.Fatalf("sendMessage calls = %d, want 2", len(calls))
	}
	if got := calls[0].Form.Get("text"); got != telegram.GreetingText {
		t.Errorf("own mention reply = %q, want greeting", got)
	}
	if got := calls[1].Form.Get("text"); got == telegram.GreetingText {
		t.Error("mention of another bot must not get the greeting")
	}

	cancel()
	waitStopped(t, done)
}
