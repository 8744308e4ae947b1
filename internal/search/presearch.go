package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/consultcrew/consultcrew/internal/memory"
	"github.com/consultcrew/consultcrew/internal/session"
)

// PreSearchResult is everything gathered before the first LLM call.
type PreSearchResult struct {
	Query         string
	MemoryResults string
	WebResults    string
	Combined      string
	Elapsed       time.Duration
}

// ConversationSearcher is the slice of the semantic store pre-search needs.
type ConversationSearcher interface {
	SearchConversations(ctx context.Context, query string, limit int) ([]memory.Result, error)
}

// PreSearch combines web search results with semantic memory lookups into a
// single context blob. Both sources are best-effort: a failing source is
// logged and its section omitted, never aborting the workflow.
type PreSearch struct {
	memory    ConversationSearcher
	web       WebSearcher
	maxMemory int
	now       func() time.Time
}

// NewPreSearch creates a pre-search manager. Either source may be nil.
func NewPreSearch(mem ConversationSearcher, web WebSearcher, maxMemory int) *PreSearch {
	if maxMemory <= 0 {
		maxMemory = 3
	}
	return &PreSearch{memory: mem, web: web, maxMemory: maxMemory, now: time.Now}
}

// Gather runs both lookups and assembles the combined context blob.
func (p *PreSearch) Gather(ctx context.Context, query string, history []session.Message) PreSearchResult {
	start := p.now()
	result := PreSearchResult{Query: query}

	if p.memory != nil {
		hits, err := p.memory.SearchConversations(ctx, query, p.maxMemory)
		if err != nil {
			slog.Warn("Pre-search memory lookup failed", "error", err)
		} else {
			result.MemoryResults = formatMemoryHits(hits)
		}
	}

	if p.web != nil {
		blob, err := p.web.Search(ctx, query)
		if err != nil {
			slog.Warn("Pre-search web lookup failed", "error", err)
		} else {
			result.WebResults = blob
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Query: %s\n\n", query)
	if result.MemoryResults != "" {
		fmt.Fprintf(&sb, "Similar past conversations:\n%s\n\n", result.MemoryResults)
	}
	if result.WebResults != "" {
		fmt.Fprintf(&sb, "Current search results:\n%s\n\n", result.WebResults)
	}
	if len(history) > 0 {
		fmt.Fprintf(&sb, "Current conversation context:\n%d previous messages\n\n", len(history))
	}
	result.Combined = sb.String()
	result.Elapsed = p.now().Sub(start)
	return result
}

func formatMemoryHits(hits []memory.Result) string {
	if len(hits) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, h := range hits {
		q, _ := h.Metadata["query"].(string)
		r, _ := h.Metadata["response"].(string)
		fmt.Fprintf(&sb, "%d. Q: %s\n   A: %s\n", i+1, q, summarize(r, 300))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func summarize(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
