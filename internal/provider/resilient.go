package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// maxUserContentChars is the cap applied to user-role messages before a
	// call, counted in characters, not bytes. System and assistant messages
	// are never truncated.
	maxUserContentChars = 4000

	truncationMarker = "\n\n[Content truncated for length - focusing on key information]"
)

// ResilientClient wraps a Handle with message preprocessing, retry with
// exponential backoff, and empty-response detection. The remote endpoint
// fails both silently (200 with an empty body) and noisily (5xx, 429);
// both are treated as transient.
type ResilientClient struct {
	handle     Handle
	maxRetries int
	baseDelay  time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	jitter     func() time.Duration
	retries    int
}

// NewResilientClient wraps the given handle with defaults for a cloud
// endpoint: 3 attempts, 2s base delay.
func NewResilientClient(handle Handle) *ResilientClient {
	return NewResilientClientWith(handle, 3, 2*time.Second)
}

// NewLocalResilientClient wraps the given handle with defaults for a local
// endpoint: 3 attempts, 1s base delay.
func NewLocalResilientClient(handle Handle) *ResilientClient {
	return NewResilientClientWith(handle, 3, time.Second)
}

// NewResilientClientWith wraps a handle with explicit retry settings.
func NewResilientClientWith(handle Handle, maxRetries int, baseDelay time.Duration) *ResilientClient {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ResilientClient{
		handle:     handle,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
		sleep:      sleepContext,
		jitter: func() time.Duration {
			// Full jitter in [100ms, 500ms), added on top of the exponential delay.
			return 100*time.Millisecond + time.Duration(rand.Int63n(int64(400*time.Millisecond)))
		},
	}
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// DefaultModel returns the wrapped handle's default model.
func (c *ResilientClient) DefaultModel() string {
	return c.handle.DefaultModel()
}

// Retries returns the number of retries performed by the last Call.
func (c *ResilientClient) Retries() int {
	return c.retries
}

// Call invokes the wrapped handle, retrying transient failures and empty
// responses with exponential backoff. Fatal errors are returned immediately;
// cancelling the context interrupts a backoff wait.
func (c *ResilientClient) Call(ctx context.Context, messages []Message) (string, error) {
	prepared := PreprocessMessages(messages)
	c.retries = 0

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			c.retries++
			delay := c.backoff(attempt - 1)
			slog.Debug("LLM call retrying", "attempt", attempt+1, "delay", delay, "last_error", lastErr)
			if err := c.sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		text, err := c.handle.Call(ctx, prepared)
		if err != nil {
			if Classify(err) == KindFatal {
				return "", err
			}
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) == "" {
			lastErr = fmt.Errorf("empty response from model")
			continue
		}
		return text, nil
	}

	return "", fmt.Errorf("all %d attempts failed, last error: %w", c.maxRetries, lastErr)
}

func (c *ResilientClient) backoff(n int) time.Duration {
	exp := time.Duration(float64(c.baseDelay) * math.Pow(2, float64(n)))
	return exp + c.jitter()
}

// PreprocessMessages truncates oversized user messages, preferring a break at
// the last period or newline occurring after 80% of the limit. Lengths are
// counted in characters so multibyte content is never cut mid-rune. The
// returned slice is a copy; the input is never mutated.
func PreprocessMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	for i, msg := range out {
		if msg.Role != "user" || utf8.RuneCountInString(msg.Content) <= maxUserContentChars {
			continue
		}
		out[i].Content = truncateContent(msg.Content)
	}
	return out
}

func truncateContent(content string) string {
	runes := []rune(content)
	floor := int(float64(maxUserContentChars) * 0.8)

	cut := maxUserContentChars
	for i := maxUserContentChars - 1; i > floor; i-- {
		if runes[i] == '.' || runes[i] == '\n' {
			cut = i + 1
			break
		}
	}
	return string(runes[:cut]) + truncationMarker
}
