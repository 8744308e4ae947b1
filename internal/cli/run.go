package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/consultcrew/consultcrew/internal/config"
	"github.com/consultcrew/consultcrew/internal/events"
	"github.com/consultcrew/consultcrew/internal/memory"
	"github.com/consultcrew/consultcrew/internal/provider"
	"github.com/consultcrew/consultcrew/internal/runner"
	"github.com/consultcrew/consultcrew/internal/search"
	"github.com/consultcrew/consultcrew/internal/session"
	"github.com/consultcrew/consultcrew/internal/teams"
	"github.com/consultcrew/consultcrew/internal/workflow"
)

var (
	runQuery    string
	runTeams    string
	runLocal    bool
	runNoSearch bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the consulting workflow for a query",
	Run:   runWorkflow,
}

func init() {
	runCmd.Flags().StringVarP(&runQuery, "query", "q", "", "Query to run the workflow for")
	runCmd.Flags().StringVarP(&runTeams, "teams", "t", "", "Comma-separated team ids to run instead of the configured order")
	runCmd.Flags().BoolVar(&runLocal, "local", false, "Use the local Ollama daemon even when a cloud key is set")
	runCmd.Flags().BoolVar(&runNoSearch, "no-search", false, "Skip web and memory pre-search")
}

func runWorkflow(cmd *cobra.Command, args []string) {
	if runQuery == "" {
		printError("--query is required")
		os.Exit(1)
	}

	printHeader("ConsultCrew Workflow")

	settings, err := config.LoadSettings()
	if err != nil {
		printError("loading settings: %v", err)
		os.Exit(1)
	}

	registry, err := teams.NewRegistry()
	if err != nil {
		printError("building team registry: %v", err)
		os.Exit(1)
	}

	svc, err := config.NewService(settings.AgentConfigPath, registry)
	if err != nil {
		printError("loading agent configuration: %v", err)
		os.Exit(1)
	}

	llm := buildLLM(settings)

	store, closeStore, err := openStore(settings)
	if err != nil {
		fmt.Printf("Memory warning: %v (continuing without semantic memory)\n", err)
	} else {
		defer closeStore()
	}

	var presearch workflow.ContextGatherer
	if !runNoSearch {
		web := search.NewDuckDuckGoClient(settings.MaxSearchResults, settings.SearchDelay(), settings.SearchRetryAttempts)
		var mem search.ConversationSearcher
		if store != nil {
			mem = store
		}
		presearch = search.NewPreSearch(mem, web, 3)
	}

	var ledger *session.Ledger
	if store != nil {
		ledger = session.NewLedger(store)
	} else {
		ledger = session.NewLedger(nil)
	}

	publisher := events.NewKafkaPublisher(settings.KafkaBrokers, settings.KafkaTopic)
	defer publisher.Close()

	orchestrator := workflow.NewOrchestrator(workflow.Options{
		Registry:  registry,
		Planner:   svc,
		Runner:    runner.NewTeamRunner(runner.NewSequentialRuntime(), svc),
		PreSearch: presearch,
		Ledger:    ledger,
		Persister: workflow.NewPersister(settings.OutputDir),
		Publisher: publisher,
		Delay:     settings.InterTeamDelay(),
	})

	plan, err := parsePlan(runTeams)
	if err != nil {
		printError("%v", err)
		os.Exit(1)
	}

	result := orchestrator.Execute(context.Background(), runQuery, llm, ledger.LastUserMessages(3), plan)
	fmt.Println(result)
	if strings.HasPrefix(result, "Error in ") {
		os.Exit(1)
	}
}

func buildLLM(settings *config.Settings) provider.Handle {
	if runLocal || !settings.CloudConfigured() {
		base := provider.NewOllamaClient(settings.LocalBaseURL, settings.LocalModel, settings.Temperature, settings.MaxTokens)
		return provider.NewLocalResilientClient(base)
	}
	base := provider.NewOllamaCloudClient(settings.OllamaAPIKey, settings.CloudBaseURL, settings.CloudModel, settings.Temperature, settings.MaxTokens)
	return provider.NewResilientClient(base)
}

func openStore(settings *config.Settings) (*memory.Store, func(), error) {
	if err := os.MkdirAll(settings.MemoryDir, 0o755); err != nil {
		return nil, nil, err
	}
	vecs, err := memory.OpenSQLiteVecStore(settings.MemoryDir)
	if err != nil {
		return nil, nil, err
	}
	embedder := provider.NewOllamaClient(settings.LocalBaseURL, settings.LocalModel, settings.Temperature, settings.MaxTokens)
	return memory.NewStore(vecs, embedder), func() { vecs.Close() }, nil
}

func parsePlan(spec string) ([]teams.ID, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}
	var plan []teams.ID
	for _, part := range strings.Split(spec, ",") {
		id, err := teams.ParseID(part)
		if err != nil {
			return nil, err
		}
		plan = append(plan, id)
	}
	return plan, nil
}
