package telegram

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/gpt_relay/internal/ai"
)

const GreetingText = "Hi 👋 I’m your Partner2Crime bot. Send me anything!"

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionGreeting
	ActionCompletion
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionGreeting:
		return "greeting"
	case ActionCompletion:
		return "completion"
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// SendAction — что отправить в чат. ActionNone значит ничего.
type SendAction struct {
	Kind   ActionKind
	ChatID int64
	Text   string
}

type Dispatcher struct {
	completer ai.Completer
}

func NewDispatcher(completer ai.Completer) *Dispatcher {
	return &Dispatcher{completer: completer}
}

// Dispatch — каждое сообщение даёт ровно одно из: приветствие, ответ GPT, ничего.
func (d *Dispatcher) Dispatch(ctx context.Context, msg IncomingMessage) SendAction {
	switch {
	case msg.Command == CommandStart:
		return SendAction{Kind: ActionGreeting, ChatID: msg.ChatID, Text: GreetingText}

	case msg.Text != "":
		reply := d.completer.Complete(ctx, msg.Text)
		return SendAction{Kind: ActionCompletion, ChatID: msg.ChatID, Text: reply}
	}

	return SendAction{Kind: ActionNone, ChatID: msg.ChatID}
}
