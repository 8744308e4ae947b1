package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/consultcrew/consultcrew/internal/teams"
)

// TeamResult is one team's contribution to a finished run. CharCount is the
// output length in characters.
type TeamResult struct {
	Team       teams.Team
	Output     string
	CharCount  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Persister writes run artifacts to a timestamped directory under the base
// output directory. Every write is best-effort: the run's return value never
// depends on the filesystem.
type Persister struct {
	baseDir string
	now     func() time.Time
}

// NewPersister creates a persister rooted at baseDir.
func NewPersister(baseDir string) *Persister {
	return &Persister{baseDir: baseDir, now: time.Now}
}

// Save writes query.md, metadata.json, one markdown file per team and an
// index.md into a fresh run directory and returns its path.
func (p *Persister) Save(label, query string, results []TeamResult, metadata map[string]any) (string, error) {
	ts := p.now()
	dirName := fmt.Sprintf("%s_%s", hyphenate(label), ts.Format("20060102_150405"))
	dir := filepath.Join(p.baseDir, dirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}

	stamp := ts.Format("2006-01-02 15:04:05")

	queryDoc := fmt.Sprintf("# Query\n\n%s\n", query)
	if err := os.WriteFile(filepath.Join(dir, "query.md"), []byte(queryDoc), 0o644); err != nil {
		return dir, err
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	metaBytes, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return dir, err
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata.json"), metaBytes, 0o644); err != nil {
		return dir, err
	}

	var index strings.Builder
	fmt.Fprintf(&index, "# Workflow Results\n\n**Query:** %s\n\n**Generated:** %s\n\n## Team Outputs\n\n", query, stamp)
	for _, res := range results {
		slug := res.Team.Slug()
		doc := fmt.Sprintf("# %s\n\n**Generated:** %s\n\n**Query:** %s\n\n---\n\n%s\n",
			res.Team.DisplayName, stamp, query, res.Output)
		if err := os.WriteFile(filepath.Join(dir, slug+".md"), []byte(doc), 0o644); err != nil {
			return dir, err
		}
		fmt.Fprintf(&index, "- [%s](%s.md)\n", res.Team.DisplayName, slug)
	}
	if err := os.WriteFile(filepath.Join(dir, "index.md"), []byte(index.String()), 0o644); err != nil {
		return dir, err
	}
	return dir, nil
}

func hyphenate(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = strings.ReplaceAll(s, " ", "-")
	return strings.ReplaceAll(s, "_", "-")
}
