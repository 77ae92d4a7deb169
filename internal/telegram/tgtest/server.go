// Package tgtest — фейковый Telegram Bot API для тестов.
package tgtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const BotUsername = "relay_bot"

type Call struct {
	Method string
	Form   url.Values
}

type Server struct {
	*httptest.Server

	mu    sync.Mutex
	calls []Call
	fail  map[string]bool
}

// NewServer поднимает сервер и закрывает его в t.Cleanup.
func NewServer(t *testing.T) *Server {
	t.Helper()
	s := &Server{fail: make(map[string]bool)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Endpoint — формат для tgbotapi.NewBotAPIWithClient.
func (s *Server) Endpoint() string {
	return s.URL + "/bot%s/%s"
}

// Fail — метод начинает отвечать ok=false.
func (s *Server) Fail(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = true
}

func (s *Server) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) Methods() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Method)
	}
	return out
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Form: r.PostForm})
	failing := s.fail[method]
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")

	if failing {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"ok":false,"error_code":400,"description":"Bad Request: simulated failure"}`)
		return
	}

	switch method {
	case "getMe":
		fmt.Fprintf(w, `{"ok":true,"result":{"id":42,"is_bot":true,"first_name":"Relay","username":%q}}`, BotUsername)
	case "sendMessage":
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":1,"type":"private"}}}`)
	default:
		fmt.Fprint(w, `{"ok":true,"result":true}`)
	}
}
