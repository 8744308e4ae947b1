// Package workflow runs the full consulting pipeline: plan selection,
// pre-search seeding, sequential team execution with context propagation,
// and persistence of the combined result.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/consultcrew/consultcrew/internal/events"
	"github.com/consultcrew/consultcrew/internal/provider"
	"github.com/consultcrew/consultcrew/internal/runner"
	"github.com/consultcrew/consultcrew/internal/search"
	"github.com/consultcrew/consultcrew/internal/session"
	"github.com/consultcrew/consultcrew/internal/teams"
)

// TeamExecutor runs one team and returns its output.
type TeamExecutor interface {
	Run(ctx context.Context, team teams.Team, query, upstream string, history []session.Message, llm provider.Handle, position int) (string, error)
}

// ContextGatherer produces the seed context for the first team.
type ContextGatherer interface {
	Gather(ctx context.Context, query string, history []session.Message) search.PreSearchResult
}

// Planner derives the default execution order from configuration.
type Planner interface {
	WorkflowOrder() []teams.Team
}

// RunRecorder writes a completed run to the conversation transcript and the
// semantic store.
type RunRecorder interface {
	RecordRun(ctx context.Context, query, response string, metadata map[string]any) error
}

const noTeamsEnabledMsg = "Error in workflow execution: No teams are currently enabled. Enable at least one team and try again."

// Options wires an Orchestrator. Registry, Planner and Runner are required;
// everything else is optional.
type Options struct {
	Registry  *teams.Registry
	Planner   Planner
	Runner    TeamExecutor
	PreSearch ContextGatherer
	Ledger    RunRecorder
	Persister *Persister
	Publisher events.Publisher
	// Delay is the pause inserted between consecutive teams.
	Delay time.Duration
}

// Orchestrator drives one workflow run at a time. Teams execute strictly in
// sequence; each team's upstream context is exactly the previous team's
// output, never an accumulation.
type Orchestrator struct {
	registry  *teams.Registry
	planner   Planner
	runner    TeamExecutor
	presearch ContextGatherer
	ledger    RunRecorder
	persister *Persister
	publisher events.Publisher
	delay     time.Duration

	sleep func(time.Duration)
	now   func() time.Time
}

// NewOrchestrator builds an orchestrator from Options.
func NewOrchestrator(opts Options) *Orchestrator {
	return &Orchestrator{
		registry:  opts.Registry,
		planner:   opts.Planner,
		runner:    opts.Runner,
		presearch: opts.PreSearch,
		ledger:    opts.Ledger,
		persister: opts.Persister,
		publisher: opts.Publisher,
		delay:     opts.Delay,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// Execute runs the workflow and returns the combined markdown document. Team
// failures are reported as a terminal string starting with "Error in ";
// the caller decides whether to re-submit.
func (o *Orchestrator) Execute(ctx context.Context, query string, llm provider.Handle, history []session.Message, plan []teams.ID) string {
	if llm == nil {
		return "Error in workflow execution: no LLM handle configured"
	}

	selected, label, errMsg := o.selectPlan(plan)
	if errMsg != "" {
		return errMsg
	}

	runID := events.NewRunID()
	o.publish(ctx, events.Event{Type: events.TypeRunStarted, RunID: runID, Query: query})

	upstream := ""
	if o.presearch != nil {
		seed := o.presearch.Gather(ctx, query, history)
		upstream = seed.Combined
		slog.Info("pre-search complete", "elapsed", seed.Elapsed, "context_chars", len(upstream))
	}

	var results []TeamResult
	for i, team := range selected {
		slog.Info("workflow team starting", "team", team.ID, "position", i+1, "of", len(selected))
		o.publish(ctx, events.Event{Type: events.TypeTeamStarted, RunID: runID, Team: string(team.ID)})
		started := o.now()

		output, err := o.runner.Run(ctx, team, query, upstream, history, llm, i+1)
		if errors.Is(err, runner.ErrNoEnabledAgents) {
			slog.Warn("team skipped, no enabled agents", "team", team.ID)
			continue
		}
		if err != nil {
			o.publish(ctx, events.Event{Type: events.TypeRunFailed, RunID: runID, Team: string(team.ID), Error: err.Error()})
			return fmt.Sprintf("Error in %s workflow execution: %v", team.DisplayName, err)
		}

		o.publish(ctx, events.Event{Type: events.TypeTeamFinished, RunID: runID, Team: string(team.ID)})
		results = append(results, TeamResult{
			Team:       team,
			Output:     output,
			CharCount:  utf8.RuneCountInString(output),
			StartedAt:  started,
			FinishedAt: o.now(),
		})
		upstream = output

		if i < len(selected)-1 && o.delay > 0 {
			o.sleep(o.delay)
		}
	}

	if len(results) == 0 {
		return noTeamsEnabledMsg
	}

	combined := combine(results)
	o.persist(label, query, results, runID)

	if o.ledger != nil {
		meta := map[string]any{"run_id": runID, "teams": len(results), "workflow": label}
		if err := o.ledger.RecordRun(ctx, query, combined, meta); err != nil {
			slog.Warn("recording run to memory failed", "error", err)
		}
	}

	o.publish(ctx, events.Event{Type: events.TypeRunFinished, RunID: runID})
	return combined
}

// selectPlan resolves the team list: a custom plan is used verbatim,
// otherwise the enabled teams in rank order.
func (o *Orchestrator) selectPlan(plan []teams.ID) ([]teams.Team, string, string) {
	if len(plan) > 0 {
		out := make([]teams.Team, 0, len(plan))
		for _, id := range plan {
			team, err := o.registry.Team(id)
			if err != nil {
				return nil, "", fmt.Sprintf("Error in workflow execution: %v", err)
			}
			out = append(out, team)
		}
		return out, "custom workflow", ""
	}

	out := o.planner.WorkflowOrder()
	if len(out) == 0 {
		return nil, "", noTeamsEnabledMsg
	}
	return out, "full workflow", ""
}

func combine(results []TeamResult) string {
	sections := make([]string, 0, len(results))
	for _, res := range results {
		sections = append(sections, fmt.Sprintf("## %s\n\n%s", res.Team.DisplayName, res.Output))
	}
	return strings.Join(sections, "\n\n---\n\n")
}

func (o *Orchestrator) persist(label, query string, results []TeamResult, runID string) {
	if o.persister == nil {
		return
	}
	meta := map[string]any{
		"run_id":        runID,
		"workflow_type": label,
		"teams":         teamSummaries(results),
		"generated_at":  o.now().Format(time.RFC3339),
	}
	dir, err := o.persister.Save(label, query, results, meta)
	if err != nil {
		slog.Warn("persisting run artifacts failed", "dir", dir, "error", err)
		return
	}
	slog.Info("run artifacts saved", "dir", dir)
}

func teamSummaries(results []TeamResult) []map[string]any {
	out := make([]map[string]any, 0, len(results))
	for _, res := range results {
		out = append(out, map[string]any{
			"id":         string(res.Team.ID),
			"char_count": res.CharCount,
		})
	}
	return out
}

func (o *Orchestrator) publish(ctx context.Context, ev events.Event) {
	if o.publisher == nil {
		return
	}
	o.publisher.Publish(ctx, ev)
}
