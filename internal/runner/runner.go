// Package runner executes a single team: it binds agents to an LLM handle,
// drives their tasks strictly in order and returns the team's textual result.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/consultcrew/consultcrew/internal/provider"
	"github.com/consultcrew/consultcrew/internal/session"
	"github.com/consultcrew/consultcrew/internal/teams"
)

// Crew is one team's worth of work bound to a concrete LLM handle.
type Crew struct {
	Agents           []teams.Agent
	Tasks            []teams.Task
	LLM              provider.Handle
	MaxRPM           int
	MaxExecutionTime time.Duration
	Verbose          bool
}

// Runtime drives a crew to completion and returns its terminal output.
type Runtime interface {
	Kickoff(ctx context.Context, crew Crew) (string, error)
}

// SequentialRuntime runs tasks one after another. Each task gets its own
// timeout; the crew's MaxExecutionTime bounds the whole run. The team's
// result is the output of the last task.
type SequentialRuntime struct {
	sleep func(time.Duration)
	now   func() time.Time

	lastCall time.Time
}

// NewSequentialRuntime returns the default runtime.
func NewSequentialRuntime() *SequentialRuntime {
	return &SequentialRuntime{sleep: time.Sleep, now: time.Now}
}

// Kickoff executes every task in order and returns the last task's output.
func (r *SequentialRuntime) Kickoff(ctx context.Context, crew Crew) (string, error) {
	if crew.LLM == nil {
		return "", errors.New("crew has no LLM handle")
	}
	if len(crew.Tasks) == 0 {
		return "", errors.New("crew has no tasks")
	}

	agents := make(map[string]teams.Agent, len(crew.Agents))
	for _, a := range crew.Agents {
		agents[a.Name] = a
	}

	if crew.MaxExecutionTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, crew.MaxExecutionTime)
		defer cancel()
	}

	var outputs []taskOutput
	for i, task := range crew.Tasks {
		agent, ok := agents[task.AgentName]
		if !ok {
			return "", fmt.Errorf("task %d references unknown agent %q", i, task.AgentName)
		}

		r.pace(crew.MaxRPM)

		if crew.Verbose {
			slog.Info("task starting", "agent", agent.Name, "task", i+1, "of", len(crew.Tasks))
		}

		text, err := r.runTask(ctx, crew.LLM, agent, task, outputs)
		if err != nil {
			return "", fmt.Errorf("task %d (%s): %w", i+1, agent.Name, err)
		}
		outputs = append(outputs, taskOutput{agent: agent.Role, text: text})

		if crew.Verbose {
			slog.Info("task finished", "agent", agent.Name, "output_chars", utf8.RuneCountInString(text))
		}
	}

	return outputs[len(outputs)-1].text, nil
}

type taskOutput struct {
	agent string
	text  string
}

func (r *SequentialRuntime) runTask(ctx context.Context, llm provider.Handle, agent teams.Agent, task teams.Task, prior []taskOutput) (string, error) {
	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	messages := []provider.Message{
		{Role: "system", Content: systemPrompt(agent)},
		{Role: "user", Content: userPrompt(task, prior)},
	}
	return llm.Call(ctx, messages)
}

// pace enforces the advisory requests-per-minute cap by sleeping between
// consecutive task starts.
func (r *SequentialRuntime) pace(maxRPM int) {
	if maxRPM <= 0 {
		return
	}
	minInterval := time.Minute / time.Duration(maxRPM)
	if !r.lastCall.IsZero() {
		if wait := minInterval - r.now().Sub(r.lastCall); wait > 0 {
			r.sleep(wait)
		}
	}
	r.lastCall = r.now()
}

func systemPrompt(agent teams.Agent) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are %s.\n\n", agent.Role)
	fmt.Fprintf(&sb, "Your goal: %s\n\n", agent.Goal)
	sb.WriteString(agent.Backstory)
	return sb.String()
}

func userPrompt(task teams.Task, prior []taskOutput) string {
	var sb strings.Builder
	sb.WriteString(task.Description)
	if len(prior) > 0 {
		sb.WriteString("\n\nOutputs from earlier specialists on your team:\n")
		for _, out := range prior {
			fmt.Fprintf(&sb, "\n### %s\n%s\n", out.agent, out.text)
		}
	}
	fmt.Fprintf(&sb, "\n\nExpected output: %s", task.ExpectedOutput)
	return sb.String()
}

// ErrNoEnabledAgents signals a team whose entire roster is disabled in
// configuration. The orchestrator skips such teams rather than failing.
var ErrNoEnabledAgents = errors.New("no enabled agents")

// AgentFilter reports per-agent enablement. A nil filter enables everyone.
type AgentFilter interface {
	AgentEnabled(team teams.ID, agentName string) bool
}

// TeamRunner prepares one team for execution: it applies configuration
// filtering, derives the team-level timeout from plan position and hands
// the crew to the runtime.
type TeamRunner struct {
	runtime Runtime
	filter  AgentFilter
}

// NewTeamRunner builds a TeamRunner. filter may be nil.
func NewTeamRunner(runtime Runtime, filter AgentFilter) *TeamRunner {
	return &TeamRunner{runtime: runtime, filter: filter}
}

const (
	teamTimeoutBase = 180 * time.Second
	teamTimeoutStep = 60 * time.Second
	teamTimeoutCap  = 540 * time.Second
)

// TeamTimeout returns the execution cap for the team at the given 1-based
// plan position.
func TeamTimeout(position int) time.Duration {
	if position < 1 {
		position = 1
	}
	d := teamTimeoutBase + time.Duration(position-1)*teamTimeoutStep
	if d > teamTimeoutCap {
		d = teamTimeoutCap
	}
	return d
}

// Run executes one team and returns its output. position is the team's
// 1-based index in the plan. Errors from the runtime propagate unchanged
// apart from wrapping.
func (tr *TeamRunner) Run(ctx context.Context, team teams.Team, query, upstream string, history []session.Message, llm provider.Handle, position int) (string, error) {
	agents := tr.enabledAgents(team)
	if len(agents) == 0 {
		return "", fmt.Errorf("team %s: %w", team.ID, ErrNoEnabledAgents)
	}

	enabled := make(map[string]bool, len(agents))
	for _, a := range agents {
		enabled[a.Name] = true
	}

	var tasks []teams.Task
	for _, task := range team.BuildTasks(query, upstream, history) {
		if enabled[task.AgentName] {
			tasks = append(tasks, task)
		}
	}
	if len(tasks) == 0 {
		return "", fmt.Errorf("team %s: %w", team.ID, ErrNoEnabledAgents)
	}

	maxRPM := 5
	if len(agents) > 0 {
		maxRPM = agents[0].MaxRPM
	}

	crew := Crew{
		Agents:           agents,
		Tasks:            tasks,
		LLM:              llm,
		MaxRPM:           maxRPM,
		MaxExecutionTime: TeamTimeout(position),
		Verbose:          true,
	}

	slog.Info("team starting", "team", team.ID, "agents", len(agents), "tasks", len(tasks), "timeout", crew.MaxExecutionTime)
	return tr.runtime.Kickoff(ctx, crew)
}

func (tr *TeamRunner) enabledAgents(team teams.Team) []teams.Agent {
	if tr.filter == nil {
		return team.Agents
	}
	var out []teams.Agent
	for _, a := range team.Agents {
		if tr.filter.AgentEnabled(team.ID, a.Name) {
			out = append(out, a)
		}
	}
	return out
}
