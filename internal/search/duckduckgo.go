// Package search provides web search and pre-invocation context gathering.
package search

import (
	"context"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// WebSearcher is the external search contract. The orchestrator never parses
// the result; it passes the text blob verbatim into prompts.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// DuckDuckGoClient queries the DuckDuckGo HTML endpoint and formats results
// as a markdown list with a Harvard-style reference line per result.
type DuckDuckGoClient struct {
	httpClient *http.Client
	endpoint   string
	maxResults int
	delay      time.Duration
	retries    int
	sleep      func(time.Duration)
	lastCall   time.Time
	now        func() time.Time
}

// NewDuckDuckGoClient creates a client with the given pacing and limits.
// delay is the minimum spacing between requests; retries is the number of
// attempts for transient failures.
func NewDuckDuckGoClient(maxResults int, delay time.Duration, retries int) *DuckDuckGoClient {
	if maxResults <= 0 {
		maxResults = 5
	}
	if retries <= 0 {
		retries = 3
	}
	return &DuckDuckGoClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   "https://html.duckduckgo.com/html/",
		maxResults: maxResults,
		delay:      delay,
		retries:    retries,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

var (
	resultLinkRe    = regexp.MustCompile(`<a[^>]+class="result__a"[^>]+href="([^"]+)"[^>]*>(.*?)</a>`)
	resultSnippetRe = regexp.MustCompile(`<a[^>]+class="result__snippet"[^>]*>(.*?)</a>`)
	tagRe           = regexp.MustCompile(`<[^>]+>`)
)

// Search runs a paced, retried query and returns a markdown blob of results.
func (c *DuckDuckGoClient) Search(ctx context.Context, query string) (string, error) {
	c.pace()

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			c.sleep(c.delay)
		}
		blob, err := c.searchOnce(ctx, query)
		if err == nil {
			return blob, nil
		}
		lastErr = err
		slog.Warn("Web search attempt failed", "attempt", attempt+1, "error", err)
	}
	return "", fmt.Errorf("web search failed after %d attempts: %w", c.retries, lastErr)
}

func (c *DuckDuckGoClient) pace() {
	if c.delay <= 0 {
		return
	}
	elapsed := c.now().Sub(c.lastCall)
	if elapsed < c.delay {
		c.sleep(c.delay - elapsed)
	}
	c.lastCall = c.now()
}

func (c *DuckDuckGoClient) searchOnce(ctx context.Context, query string) (string, error) {
	form := url.Values{"q": {query}}
	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "consultcrew/1.0 (research assistant)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("search error (status %d)", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read search response: %w", err)
	}

	results := ParseResults(string(body), c.maxResults)
	if len(results) == 0 {
		return "No search results found.", nil
	}
	return FormatResults(query, results), nil
}

// SearchResult is one parsed web result.
type SearchResult struct {
	Title   string
	URL     string
	Excerpt string
}

// ParseResults extracts up to max results from the DuckDuckGo HTML page.
func ParseResults(page string, max int) []SearchResult {
	links := resultLinkRe.FindAllStringSubmatch(page, -1)
	snippets := resultSnippetRe.FindAllStringSubmatch(page, -1)

	var results []SearchResult
	for i, link := range links {
		if len(results) >= max {
			break
		}
		title := cleanHTML(link[2])
		href := html.UnescapeString(link[1])
		if title == "" || href == "" {
			continue
		}
		excerpt := ""
		if i < len(snippets) {
			excerpt = cleanHTML(snippets[i][1])
		}
		results = append(results, SearchResult{
			Title:   title,
			URL:     resolveRedirect(href),
			Excerpt: excerpt,
		})
	}
	return results
}

// resolveRedirect unwraps DuckDuckGo's uddg redirect links to the target URL.
func resolveRedirect(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		return "https:" + href
	}
	return href
}

func cleanHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(tagRe.ReplaceAllString(s, "")))
}

// FormatResults renders results as a markdown list. Each entry carries a
// Harvard-style reference line so downstream writers can cite sources.
func FormatResults(query string, results []SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Search results for: %s\n\n", query)
	year := time.Now().Year()
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. **%s**\n", i+1, r.Title)
		fmt.Fprintf(&sb, "   URL: %s\n", r.URL)
		if r.Excerpt != "" {
			fmt.Fprintf(&sb, "   %s\n", r.Excerpt)
		}
		fmt.Fprintf(&sb, "   Reference: %s (%d) *%s*. Available at: %s (Accessed: %s).\n\n",
			siteName(r.URL), year, r.Title, r.URL, time.Now().Format("2 January 2006"))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func siteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "Unknown"
	}
	return strings.TrimPrefix(u.Host, "www.")
}
