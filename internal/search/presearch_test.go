package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/consultcrew/consultcrew/internal/memory"
	"github.com/consultcrew/consultcrew/internal/session"
)

type stubMemory struct {
	results []memory.Result
	err     error
}

func (s *stubMemory) SearchConversations(_ context.Context, _ string, _ int) ([]memory.Result, error) {
	return s.results, s.err
}

type stubWeb struct {
	blob string
	err  error
}

func (s *stubWeb) Search(_ context.Context, _ string) (string, error) {
	return s.blob, s.err
}

func TestGather_SectionOrder(t *testing.T) {
	mem := &stubMemory{results: []memory.Result{
		{Metadata: map[string]any{"query": "old q", "response": "old r"}},
	}}
	web := &stubWeb{blob: "1. **Result**"}
	p := NewPreSearch(mem, web, 3)

	history := []session.Message{{Role: "user", Content: "earlier"}}
	res := p.Gather(context.Background(), "digital twins", history)

	qIdx := strings.Index(res.Combined, "Query: digital twins")
	mIdx := strings.Index(res.Combined, "Similar past conversations:")
	wIdx := strings.Index(res.Combined, "Current search results:")
	hIdx := strings.Index(res.Combined, "Current conversation context:\n1 previous messages")

	if qIdx != 0 {
		t.Errorf("combined context must start with the query section, got %d", qIdx)
	}
	if !(qIdx < mIdx && mIdx < wIdx && wIdx < hIdx) {
		t.Errorf("sections out of order: q=%d m=%d w=%d h=%d", qIdx, mIdx, wIdx, hIdx)
	}
}

func TestGather_MemoryFailureFallsThrough(t *testing.T) {
	mem := &stubMemory{err: errors.New("store offline")}
	web := &stubWeb{blob: "web stuff"}
	p := NewPreSearch(mem, web, 3)

	res := p.Gather(context.Background(), "q", nil)
	if res.MemoryResults != "" {
		t.Error("failed memory lookup must yield an empty section")
	}
	if !strings.Contains(res.Combined, "Current search results:\nweb stuff") {
		t.Error("web section must survive a memory failure")
	}
	if strings.Contains(res.Combined, "Similar past conversations:") {
		t.Error("failed source section must be omitted entirely")
	}
}

func TestGather_WebFailureFallsThrough(t *testing.T) {
	mem := &stubMemory{}
	web := &stubWeb{err: errors.New("rate limited")}
	p := NewPreSearch(mem, web, 3)

	res := p.Gather(context.Background(), "q", nil)
	if res.WebResults != "" {
		t.Error("failed web lookup must yield an empty section")
	}
	if !strings.HasPrefix(res.Combined, "Query: q\n\n") {
		t.Errorf("query section must always be present, got %q", res.Combined)
	}
}

func TestGather_NilSources(t *testing.T) {
	p := NewPreSearch(nil, nil, 3)
	res := p.Gather(context.Background(), "solo", nil)
	if res.Combined != "Query: solo\n\n" {
		t.Errorf("expected bare query blob, got %q", res.Combined)
	}
}

func TestParseResults(t *testing.T) {
	page := `
	<a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Ftwin">Digital <b>Twins</b> Explained</a>
	<a class="result__snippet" href="#">A digital twin is a <b>virtual</b> replica.</a>
	<a rel="nofollow" class="result__a" href="https://other.org/page">Second Result</a>
	`
	results := ParseResults(page, 5)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Digital Twins Explained" {
		t.Errorf("unexpected title %q", results[0].Title)
	}
	if results[0].URL != "https://example.com/twin" {
		t.Errorf("expected unwrapped redirect URL, got %q", results[0].URL)
	}
	if results[0].Excerpt != "A digital twin is a virtual replica." {
		t.Errorf("unexpected excerpt %q", results[0].Excerpt)
	}
}

func TestParseResults_RespectsLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 10; i++ {
		sb.WriteString(`<a class="result__a" href="https://example.com/a">Title</a>`)
	}
	results := ParseResults(sb.String(), 3)
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestFormatResults_HarvardReference(t *testing.T) {
	blob := FormatResults("q", []SearchResult{
		{Title: "A Study", URL: "https://www.example.com/study", Excerpt: "Findings."},
	})
	if !strings.Contains(blob, "1. **A Study**") {
		t.Error("expected numbered markdown entry")
	}
	if !strings.Contains(blob, "Reference: example.com") {
		t.Errorf("expected Harvard-style reference line, got %q", blob)
	}
	if !strings.Contains(blob, "Available at: https://www.example.com/study") {
		t.Error("expected availability clause")
	}
}
