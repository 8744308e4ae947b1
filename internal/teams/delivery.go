package teams

import (
	"fmt"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

// newProjectDeliveryTeam builds the sixth-stage team. Five agents: the full
// delivery squad from engineering through project management.
func newProjectDeliveryTeam() Team {
	engineer := newAgent(
		"data_engineer",
		"Data Engineer",
		"Design the ingestion, transformation and storage pipeline for the solution",
		`You are a senior data engineer. You design pipelines that are idempotent,
observable and cheap to run. You name concrete technologies only where the
engagement context justifies them, otherwise you specify capabilities. You always
state the failure modes of the design you propose.`,
	)

	scientist := newAgent(
		"data_scientist",
		"Data Scientist",
		"Define the analytical and modelling approach, including validation strategy",
		`You are a pragmatic data scientist. You start from the decision the model
serves, choose the simplest method that answers it, and define validation before
features. You are explicit about data requirements and about what the model
cannot do.`,
	)

	architect := newAgent(
		"data_architect",
		"Data Architect",
		"Produce the target architecture: components, data flows and integration points",
		`You are a data architect. You draw clean boundaries: each component has one
responsibility, each interface a defined contract. You design for the data
volumes stated in the engagement, not hypothetical scale, and you record every
architectural decision with its rationale and rejected alternatives.`,
	)

	devops := newAgent(
		"devops_engineer",
		"DevOps Engineer",
		"Define the deployment, environments, CI/CD and operational monitoring approach",
		`You are a DevOps engineer. You automate everything that runs twice. Your
environment designs include promotion paths, secret handling and rollback from
day one, and your monitoring starts from user-visible symptoms rather than host
metrics.`,
	)

	pm := newAgent(
		"project_manager",
		"Project Manager",
		"Assemble the delivery plan: phases, milestones, resources and RAID log",
		`You are a delivery-focused project manager. You plan backwards from outcomes,
keep the critical path visible, and maintain a live RAID log. You state resource
assumptions explicitly and you build plans the team can actually commit to.`,
	)

	return Team{
		ID:          ProjectDelivery,
		DisplayName: "Project Delivery",
		Description: "Designs the technical solution and wraps it in an executable delivery plan.",
		OrderRank:   6,
		Agents:      []Agent{engineer, scientist, architect, devops, pm},
		BuildTasks: func(query, upstream string, history []session.Message) []Task {
			hist := historyContext(history)
			return []Task{
				{
					AgentName: engineer.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Design the data pipeline for "%s": ingestion sources,
transformation stages, storage layers and orchestration. State the failure modes
and how the design handles them.%s%s`, query, upstreamSection(upstream), hist),
					ExpectedOutput: `A pipeline design of roughly 300-500 words: Ingestion,
Transformation, Storage, Orchestration, Failure Modes.`,
				},
				{
					AgentName: scientist.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Define the analytical approach for "%s": the decisions
served, candidate methods from simplest upward, data requirements and the
validation strategy.`, query),
					ExpectedOutput: `An analytical design of roughly 250-450 words: Decisions
Served, Methods, Data Requirements, Validation.`,
				},
				{
					AgentName: architect.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Produce the target architecture for "%s": components with
single responsibilities, data flows between them, integration points and the key
architectural decisions with rationale.`, query),
					ExpectedOutput: `An architecture description of roughly 300-500 words:
Components, Data Flows, Integration Points, Decision Records.`,
				},
				{
					AgentName: devops.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Define the operational approach for "%s": environments and
promotion path, CI/CD stages, secret handling, monitoring and rollback.`, query),
					ExpectedOutput: `An operations design of roughly 250-450 words: Environments,
CI/CD, Secrets, Monitoring, Rollback.`,
				},
				{
					AgentName: pm.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Assemble the delivery plan for "%s" from the four designs
above: phases with milestones, resource profile, RAID log, and a consolidated
delivery summary.`, query),
					ExpectedOutput: `A delivery plan of roughly 400-600 words: Phases & Milestones,
Resources, RAID Log, Delivery Summary.`,
				},
			}
		},
	}
}
