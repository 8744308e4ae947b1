package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/consultcrew/consultcrew/internal/provider"
	"github.com/consultcrew/consultcrew/internal/teams"
)

type scriptedHandle struct {
	calls   [][]provider.Message
	outputs []string
	err     error
}

func (h *scriptedHandle) Call(_ context.Context, messages []provider.Message) (string, error) {
	h.calls = append(h.calls, messages)
	if h.err != nil {
		return "", h.err
	}
	i := len(h.calls) - 1
	if i < len(h.outputs) {
		return h.outputs[i], nil
	}
	return fmt.Sprintf("output %d", i), nil
}

func (h *scriptedHandle) DefaultModel() string { return "test-model" }

func newTestRuntime() *SequentialRuntime {
	rt := NewSequentialRuntime()
	rt.sleep = func(time.Duration) {}
	return rt
}

func testCrew(llm provider.Handle) Crew {
	alpha := teams.Agent{Name: "alpha", Role: "First Specialist", Goal: "do the first thing", Backstory: "Seasoned first-thing doer."}
	beta := teams.Agent{Name: "beta", Role: "Second Specialist", Goal: "do the second thing", Backstory: "Seasoned second-thing doer."}
	return Crew{
		Agents: []teams.Agent{alpha, beta},
		Tasks: []teams.Task{
			{AgentName: "alpha", Description: "first task", ExpectedOutput: "first result"},
			{AgentName: "beta", Description: "second task", ExpectedOutput: "second result"},
		},
		LLM:    llm,
		MaxRPM: 0,
	}
}

func TestKickoff_ReturnsLastTaskOutput(t *testing.T) {
	h := &scriptedHandle{outputs: []string{"alpha says hi", "beta says bye"}}
	out, err := newTestRuntime().Kickoff(context.Background(), testCrew(h))
	if err != nil {
		t.Fatal(err)
	}
	if out != "beta says bye" {
		t.Errorf("got %q, want the last task's output", out)
	}
	if len(h.calls) != 2 {
		t.Fatalf("expected 2 LLM calls, got %d", len(h.calls))
	}
}

func TestKickoff_SystemPromptFromAgent(t *testing.T) {
	h := &scriptedHandle{}
	if _, err := newTestRuntime().Kickoff(context.Background(), testCrew(h)); err != nil {
		t.Fatal(err)
	}
	sys := h.calls[0][0]
	if sys.Role != "system" {
		t.Fatalf("first message role %q, want system", sys.Role)
	}
	for _, want := range []string{"First Specialist", "do the first thing", "Seasoned first-thing doer."} {
		if !strings.Contains(sys.Content, want) {
			t.Errorf("system prompt missing %q", want)
		}
	}
}

func TestKickoff_LaterTasksSeePriorOutputs(t *testing.T) {
	h := &scriptedHandle{outputs: []string{"ALPHA_OUTPUT", "done"}}
	if _, err := newTestRuntime().Kickoff(context.Background(), testCrew(h)); err != nil {
		t.Fatal(err)
	}
	user := h.calls[1][1].Content
	if !strings.Contains(user, "ALPHA_OUTPUT") {
		t.Error("second task prompt must include the first task's output")
	}
	if !strings.Contains(user, "second task") || !strings.Contains(user, "second result") {
		t.Error("task prompt must include description and expected output")
	}
	first := h.calls[0][1].Content
	if strings.Contains(first, "earlier specialists") {
		t.Error("first task prompt must not carry a prior-outputs section")
	}
}

func TestKickoff_TaskErrorNamesAgent(t *testing.T) {
	h := &scriptedHandle{err: errors.New("model exploded")}
	_, err := newTestRuntime().Kickoff(context.Background(), testCrew(h))
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "alpha") || !strings.Contains(err.Error(), "model exploded") {
		t.Errorf("error %q should name the agent and wrap the cause", err)
	}
}

func TestKickoff_NoHandle(t *testing.T) {
	crew := testCrew(nil)
	if _, err := newTestRuntime().Kickoff(context.Background(), crew); err == nil {
		t.Error("expected error for nil LLM handle")
	}
}

func TestKickoff_UnknownAgent(t *testing.T) {
	crew := testCrew(&scriptedHandle{})
	crew.Tasks[1].AgentName = "gamma"
	if _, err := newTestRuntime().Kickoff(context.Background(), crew); err == nil {
		t.Error("expected error for task bound to unknown agent")
	}
}

func TestPace_SleepsBetweenCalls(t *testing.T) {
	rt := NewSequentialRuntime()
	var slept []time.Duration
	clock := time.Unix(1000, 0)
	rt.sleep = func(d time.Duration) { slept = append(slept, d) }
	rt.now = func() time.Time { return clock }

	rt.pace(5) // first call, no sleep
	clock = clock.Add(2 * time.Second)
	rt.pace(5) // 12s interval at 5 rpm, 2s elapsed

	if len(slept) != 1 {
		t.Fatalf("expected exactly one sleep, got %d", len(slept))
	}
	if slept[0] != 10*time.Second {
		t.Errorf("slept %v, want 10s", slept[0])
	}
}

func TestTeamTimeout(t *testing.T) {
	cases := []struct {
		position int
		want     time.Duration
	}{
		{1, 180 * time.Second},
		{2, 240 * time.Second},
		{4, 360 * time.Second},
		{7, 540 * time.Second},
		{9, 540 * time.Second},
		{0, 180 * time.Second},
	}
	for _, tc := range cases {
		if got := TeamTimeout(tc.position); got != tc.want {
			t.Errorf("position %d: %v, want %v", tc.position, got, tc.want)
		}
	}
}

type mapFilter map[string]bool

func (f mapFilter) AgentEnabled(_ teams.ID, name string) bool { return f[name] }

func TestTeamRunner_FiltersDisabledAgents(t *testing.T) {
	team, err := teams.MustRegistry().Team(teams.ResearchAnalysis)
	if err != nil {
		t.Fatal(err)
	}
	filter := mapFilter{}
	for i, a := range team.Agents {
		filter[a.Name] = i != 1 // disable the second agent
	}

	h := &scriptedHandle{}
	tr := NewTeamRunner(newTestRuntime(), filter)
	if _, err := tr.Run(context.Background(), team, "q", "", nil, h, 1); err != nil {
		t.Fatal(err)
	}
	if want := len(team.Agents) - 1; len(h.calls) != want {
		t.Errorf("made %d LLM calls, want %d after filtering", len(h.calls), want)
	}
}

func TestTeamRunner_AllDisabled(t *testing.T) {
	team, _ := teams.MustRegistry().Team(teams.DataStrategy)
	tr := NewTeamRunner(newTestRuntime(), mapFilter{})
	_, err := tr.Run(context.Background(), team, "q", "", nil, &scriptedHandle{}, 1)
	if !errors.Is(err, ErrNoEnabledAgents) {
		t.Errorf("got %v, want ErrNoEnabledAgents", err)
	}
}

func TestTeamRunner_NilFilterRunsEveryone(t *testing.T) {
	team, _ := teams.MustRegistry().Team(teams.ComplianceRisk)
	h := &scriptedHandle{}
	tr := NewTeamRunner(newTestRuntime(), nil)
	if _, err := tr.Run(context.Background(), team, "q", "upstream", nil, h, 3); err != nil {
		t.Fatal(err)
	}
	if len(h.calls) != len(team.Agents) {
		t.Errorf("made %d LLM calls, want %d", len(h.calls), len(team.Agents))
	}
}
