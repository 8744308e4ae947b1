// Package session provides the append-only conversation ledger.
package session

import (
	"context"
	"sync"
	"time"
)

// Message is one turn in the conversation transcript.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// ConversationRecorder is the slice of the semantic store the ledger pushes
// completed runs into.
type ConversationRecorder interface {
	AddConversation(ctx context.Context, query, response string, metadata map[string]any) (string, error)
}

// Ledger is an in-memory append-only chat transcript for one session. It
// feeds a trailing window back into agent prompts and writes each completed
// run to the semantic store. Clearing the ledger does not clear the store.
type Ledger struct {
	mu       sync.RWMutex
	messages []Message
	recorder ConversationRecorder
	now      func() time.Time
}

// NewLedger creates a ledger. recorder may be nil, in which case completed
// runs are kept only in memory.
func NewLedger(recorder ConversationRecorder) *Ledger {
	return &Ledger{recorder: recorder, now: time.Now}
}

// Append adds a message to the transcript.
func (l *Ledger) Append(role, content string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, Message{
		Role:      role,
		Content:   content,
		Timestamp: l.now(),
	})
}

// History returns a copy of the full transcript.
func (l *Ledger) History() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// LastUserMessages returns up to n most recent user-role messages, oldest
// first. This is the "conversation context" window given to agents.
func (l *Ledger) LastUserMessages(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var users []Message
	for i := len(l.messages) - 1; i >= 0 && len(users) < n; i-- {
		if l.messages[i].Role == "user" {
			users = append(users, l.messages[i])
		}
	}
	// Reverse into chronological order.
	for i, j := 0, len(users)-1; i < j; i, j = i+1, j-1 {
		users[i], users[j] = users[j], users[i]
	}
	return users
}

// Len returns the number of messages in the transcript.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// Clear empties the transcript. The semantic store is untouched; clearing
// long-term memory is a separate operation on the store itself.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = nil
}

// RecordRun appends the query/response pair to the transcript and pushes it
// to the semantic store. Called only after a successful workflow run.
func (l *Ledger) RecordRun(ctx context.Context, query, response string, metadata map[string]any) error {
	l.Append("user", query)
	l.Append("assistant", response)
	if l.recorder == nil {
		return nil
	}
	_, err := l.recorder.AddConversation(ctx, query, response, metadata)
	return err
}
