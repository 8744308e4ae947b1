package workflow

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/consultcrew/consultcrew/internal/teams"
)

func TestPersister_Layout(t *testing.T) {
	base := t.TempDir()
	p := NewPersister(base)
	p.now = func() time.Time { return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC) }

	reg := teams.MustRegistry()
	research, _ := reg.Team(teams.ResearchAnalysis)
	tender, _ := reg.Team(teams.TenderResponse)
	results := []TeamResult{
		{Team: research, Output: "research body"},
		{Team: tender, Output: "tender body"},
	}

	dir, err := p.Save("full workflow", "the query", results, map[string]any{"run_id": "r1"})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(dir) != "full-workflow_20260314_092653" {
		t.Errorf("run directory %q", filepath.Base(dir))
	}

	queryDoc, err := os.ReadFile(filepath.Join(dir, "query.md"))
	if err != nil {
		t.Fatal(err)
	}
	if string(queryDoc) != "# Query\n\nthe query\n" {
		t.Errorf("query.md content %q", queryDoc)
	}

	metaBytes, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	var meta map[string]any
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		t.Fatal(err)
	}
	if meta["run_id"] != "r1" {
		t.Errorf("metadata %v", meta)
	}

	teamDoc, err := os.ReadFile(filepath.Join(dir, "research_and_analysis.md"))
	if err != nil {
		t.Fatal(err)
	}
	body := string(teamDoc)
	if !strings.HasPrefix(body, "# Research & Analysis\n\n**Generated:** ") {
		t.Errorf("team file header:\n%s", body)
	}
	if !strings.Contains(body, "**Query:** the query") {
		t.Error("team file missing query line")
	}
	if !strings.Contains(body, "---\n\nresearch body") {
		t.Error("team file missing separator and result")
	}

	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatal(err)
	}
	idx := string(index)
	firstLink := strings.Index(idx, "[Research & Analysis](research_and_analysis.md)")
	secondLink := strings.Index(idx, "[Tender Response](tender_response.md)")
	if firstLink == -1 || secondLink == -1 {
		t.Fatalf("index missing links:\n%s", idx)
	}
	if firstLink > secondLink {
		t.Error("index links must follow plan order")
	}
	// Every linked file exists.
	if _, err := os.Stat(filepath.Join(dir, "tender_response.md")); err != nil {
		t.Error(err)
	}
}

func TestPersister_EmptyMetadata(t *testing.T) {
	p := NewPersister(t.TempDir())
	dir, err := p.Save("custom workflow", "q", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "metadata.json"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) != "{}" {
		t.Errorf("metadata.json %q, want empty object", data)
	}
}
