// Package teams declares the specialist team catalog: agent rosters, task
// templates, and execution ordering for the consulting pipeline.
package teams

import (
	"fmt"
	"strings"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

// ID identifies one of the seven specialist teams.
type ID string

const (
	ResearchAnalysis       ID = "research_analysis"
	DataStrategy           ID = "data_strategy"
	ComplianceRisk         ID = "compliance_risk"
	InformationManagement  ID = "information_management"
	TenderResponse         ID = "tender_response"
	ProjectDelivery        ID = "project_delivery"
	TechnicalDocumentation ID = "technical_documentation"
)

// AllIDs returns every team ID in execution order.
func AllIDs() []ID {
	return []ID{
		ResearchAnalysis,
		DataStrategy,
		ComplianceRisk,
		InformationManagement,
		TenderResponse,
		ProjectDelivery,
		TechnicalDocumentation,
	}
}

// ParseID converts a string into a team ID.
func ParseID(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllIDs() {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown team id %q", s)
}

// Agent is a declarative role description. Immutable after construction; the
// runtime binds it to an LLM handle per run.
type Agent struct {
	Name             string
	Role             string
	Goal             string
	Backstory        string
	MaxIterations    int
	MaxRPM           int
	MaxExecutionTime time.Duration
	Memory           bool
	AllowDelegation  bool
	Verbose          bool
}

// newAgent applies the uniform execution caps. Memory stays false: the
// pipeline relies on explicit context passing, not per-agent recall.
func newAgent(name, role, goal, backstory string) Agent {
	return Agent{
		Name:             name,
		Role:             role,
		Goal:             goal,
		Backstory:        backstory,
		MaxIterations:    3,
		MaxRPM:           5,
		MaxExecutionTime: 300 * time.Second,
		Memory:           false,
		AllowDelegation:  false,
		Verbose:          true,
	}
}

// Task is a single unit of LLM work: one agent, one prompt, one expected
// output description.
type Task struct {
	Description    string
	ExpectedOutput string
	AgentName      string
	Timeout        time.Duration
}

// Team is an ordered collection of agents sharing a business purpose. Agent
// order determines task execution order.
type Team struct {
	ID          ID
	DisplayName string
	Description string
	OrderRank   int
	Agents      []Agent
	// BuildTasks produces the ordered task list for one run.
	BuildTasks func(query, upstream string, history []session.Message) []Task
}

// Slug returns the filesystem-safe name used for output files.
func (t Team) Slug() string {
	s := strings.ToLower(t.DisplayName)
	s = strings.ReplaceAll(s, "&", "and")
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "__", "_")
}

// historyContext renders the trailing conversation window for prompts.
func historyContext(history []session.Message) string {
	if len(history) == 0 {
		return ""
	}
	start := len(history) - 3
	if start < 0 {
		start = 0
	}
	var sb strings.Builder
	sb.WriteString("\n\nRecent conversation context:\n")
	for _, m := range history[start:] {
		fmt.Fprintf(&sb, "- %s: %s\n", m.Role, trimTo(m.Content, 200))
	}
	return sb.String()
}

func trimTo(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// upstreamSection renders the previous team's output for a task prompt.
func upstreamSection(upstream string) string {
	if strings.TrimSpace(upstream) == "" {
		return ""
	}
	return "\n\nContext from the previous stage:\n" + upstream
}
