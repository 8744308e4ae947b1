package teams

import (
	"strings"
	"testing"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

func TestNewRegistry_Valid(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	all := r.All()
	if len(all) != 7 {
		t.Fatalf("expected 7 teams, got %d", len(all))
	}
	for i, team := range all {
		if team.OrderRank != i+1 {
			t.Errorf("team %q: rank %d at position %d", team.ID, team.OrderRank, i)
		}
	}
}

func TestRegistry_Rosters(t *testing.T) {
	r := MustRegistry()
	cases := []struct {
		id     ID
		rank   int
		agents int
	}{
		{ResearchAnalysis, 1, 3},
		{DataStrategy, 2, 3},
		{ComplianceRisk, 3, 3},
		{InformationManagement, 4, 3},
		{TenderResponse, 5, 3},
		{ProjectDelivery, 6, 5},
		{TechnicalDocumentation, 7, 5},
	}
	for _, tc := range cases {
		team, err := r.Team(tc.id)
		if err != nil {
			t.Fatalf("%s: %v", tc.id, err)
		}
		if team.OrderRank != tc.rank {
			t.Errorf("%s: rank %d, want %d", tc.id, team.OrderRank, tc.rank)
		}
		if len(team.Agents) != tc.agents {
			t.Errorf("%s: %d agents, want %d", tc.id, len(team.Agents), tc.agents)
		}
	}
}

func TestRegistry_UnknownTeam(t *testing.T) {
	r := MustRegistry()
	if _, err := r.Team("marketing"); err == nil {
		t.Error("expected error for unknown team id")
	}
}

func TestAgentCaps_Uniform(t *testing.T) {
	r := MustRegistry()
	for _, team := range r.All() {
		for _, a := range team.Agents {
			if a.MaxIterations != 3 || a.MaxRPM != 5 || a.MaxExecutionTime != 300*time.Second {
				t.Errorf("%s/%s: unexpected caps %+v", team.ID, a.Name, a)
			}
			if a.Memory {
				t.Errorf("%s/%s: agent memory must stay disabled", team.ID, a.Name)
			}
			if a.AllowDelegation {
				t.Errorf("%s/%s: delegation must stay disabled", team.ID, a.Name)
			}
		}
	}
}

func TestBuildTasks_OneTaskPerAgent(t *testing.T) {
	r := MustRegistry()
	for _, team := range r.All() {
		tasks := team.BuildTasks("the query", "upstream text", nil)
		if len(tasks) != len(team.Agents) {
			t.Errorf("%s: %d tasks for %d agents", team.ID, len(tasks), len(team.Agents))
		}
		for i, task := range tasks {
			if task.AgentName != team.Agents[i].Name {
				t.Errorf("%s task %d: assigned to %q, agent order says %q", team.ID, i, task.AgentName, team.Agents[i].Name)
			}
			if task.Timeout < 180*time.Second || task.Timeout > 300*time.Second {
				t.Errorf("%s task %d: timeout %v outside [180s,300s]", team.ID, i, task.Timeout)
			}
			if task.ExpectedOutput == "" {
				t.Errorf("%s task %d: missing expected output", team.ID, i)
			}
		}
	}
}

func TestBuildTasks_InterpolatesQueryAndUpstream(t *testing.T) {
	r := MustRegistry()
	team, _ := r.Team(DataStrategy)
	tasks := team.BuildTasks("QUERY_MARKER", "UPSTREAM_MARKER", nil)

	if !strings.Contains(tasks[0].Description, "QUERY_MARKER") {
		t.Error("first task must interpolate the query")
	}
	if !strings.Contains(tasks[0].Description, "UPSTREAM_MARKER") {
		t.Error("first task must interpolate the upstream context")
	}
}

func TestBuildTasks_HistoryWindow(t *testing.T) {
	r := MustRegistry()
	team, _ := r.Team(ResearchAnalysis)

	history := []session.Message{
		{Role: "user", Content: "msg1"},
		{Role: "user", Content: "msg2"},
		{Role: "user", Content: "msg3"},
		{Role: "user", Content: "msg4"},
	}
	tasks := team.BuildTasks("q", "", history)

	if strings.Contains(tasks[0].Description, "msg1") {
		t.Error("history window must hold only the last 3 messages")
	}
	for _, want := range []string{"msg2", "msg3", "msg4"} {
		if !strings.Contains(tasks[0].Description, want) {
			t.Errorf("history window missing %q", want)
		}
	}
}

func TestSlug(t *testing.T) {
	cases := map[ID]string{
		ResearchAnalysis:       "research_and_analysis",
		ComplianceRisk:         "compliance_and_risk",
		DataStrategy:           "data_strategy",
		TechnicalDocumentation: "technical_documentation",
	}
	r := MustRegistry()
	for id, want := range cases {
		team, _ := r.Team(id)
		if got := team.Slug(); got != want {
			t.Errorf("%s: slug %q, want %q", id, got, want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, err := ParseID("Research_Analysis"); err != nil || id != ResearchAnalysis {
		t.Errorf("ParseID failed: %v %v", id, err)
	}
	if _, err := ParseID("nonsense"); err == nil {
		t.Error("expected error for unknown id")
	}
}
