package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newFakeOpenAI(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestOpenAIClientGetCompletion(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	srv, calls := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("authorization = %q", got)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"Hi!"},"finish_reason":"stop"}]}`)
	})

	client := NewOpenAIClient("sk-test", srv.URL+"/v1/", "gpt-4o-mini")
	reply, err := client.GetCompletion(context.Background(), []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: "Say hi"},
	})
	if err != nil {
		t.Fatalf("GetCompletion: %v", err)
	}
	if reply != "Hi!" {
		t.Errorf("reply = %q, want Hi!", reply)
	}
	if *calls != 1 {
		t.Errorf("calls = %d, want 1", *calls)
	}
	if gotReq.Model != "gpt-4o-mini" || len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "Say hi" {
		t.Errorf("unexpected request: %+v", gotReq)
	}
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	srv, _ := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","object":"chat.completion","choices":[]}`)
	})

	client := NewOpenAIClient("sk-test", srv.URL+"/v1", "gpt-4o-mini")
	if _, err := client.GetCompletion(context.Background(), nil); err != errEmptyCompletion {
		t.Fatalf("err = %v, want errEmptyCompletion", err)
	}
}

func TestServiceOverFailingUpstream(t *testing.T) {
	srv, calls := newFakeOpenAI(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`)
	})

	svc := NewService(NewOpenAIClient("sk-bad", srv.URL+"/v1", "gpt-4o-mini"), nil, testLogger())
	if got := svc.Complete(context.Background(), "hello"); got != FallbackReply {
		t.Errorf("got %q, want fallback", got)
	}
	if *calls != 1 {
		t.Errorf("upstream calls = %d, want 1", *calls)
	}
}
