package session

import (
	"context"
	"testing"
)

type captureRecorder struct {
	query    string
	response string
	calls    int
}

func (c *captureRecorder) AddConversation(_ context.Context, query, response string, _ map[string]any) (string, error) {
	c.query = query
	c.response = response
	c.calls++
	return "conv_0", nil
}

func TestLedger_AppendAndHistory(t *testing.T) {
	l := NewLedger(nil)
	l.Append("user", "hello")
	l.Append("assistant", "hi there")

	history := l.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(history))
	}
	if history[0].Role != "user" || history[1].Role != "assistant" {
		t.Errorf("unexpected roles: %+v", history)
	}
	if history[0].Timestamp.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestLedger_LastUserMessages(t *testing.T) {
	l := NewLedger(nil)
	l.Append("user", "q1")
	l.Append("assistant", "a1")
	l.Append("user", "q2")
	l.Append("assistant", "a2")
	l.Append("user", "q3")
	l.Append("user", "q4")

	users := l.LastUserMessages(3)
	if len(users) != 3 {
		t.Fatalf("expected 3 user messages, got %d", len(users))
	}
	if users[0].Content != "q2" || users[1].Content != "q3" || users[2].Content != "q4" {
		t.Errorf("expected chronological order of last 3 user turns, got %+v", users)
	}
}

func TestLedger_LastUserMessagesFewerThanN(t *testing.T) {
	l := NewLedger(nil)
	l.Append("user", "only one")

	users := l.LastUserMessages(3)
	if len(users) != 1 || users[0].Content != "only one" {
		t.Errorf("unexpected result: %+v", users)
	}
}

func TestLedger_RecordRunPushesToStore(t *testing.T) {
	rec := &captureRecorder{}
	l := NewLedger(rec)

	if err := l.RecordRun(context.Background(), "the query", "the combined output", nil); err != nil {
		t.Fatal(err)
	}
	if rec.calls != 1 {
		t.Fatalf("expected 1 store write, got %d", rec.calls)
	}
	if rec.query != "the query" || rec.response != "the combined output" {
		t.Errorf("unexpected recorded pair: %q / %q", rec.query, rec.response)
	}
	if l.Len() != 2 {
		t.Errorf("expected user+assistant appended, got %d messages", l.Len())
	}
}

func TestLedger_ClearDoesNotTouchRecorder(t *testing.T) {
	rec := &captureRecorder{}
	l := NewLedger(rec)
	_ = l.RecordRun(context.Background(), "q", "r", nil)

	l.Clear()
	if l.Len() != 0 {
		t.Error("expected empty ledger after clear")
	}
	if rec.calls != 1 {
		t.Error("clear must not touch the semantic store")
	}
}
