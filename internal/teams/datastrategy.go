package teams

import (
	"fmt"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

// newDataStrategyTeam builds the second-stage team covering data governance,
// DCAM capability assessment and tranche guidance.
func newDataStrategyTeam() Team {
	governance := newAgent(
		"data_governance_specialist",
		"Data Governance Specialist",
		"Define the governance structures, policies and ownership model the client needs",
		`You are a data governance consultant aligned to the DAMA-DMBOK body of
knowledge. You have stood up governance boards, data ownership models and policy
frameworks in organisations from scale-ups to government departments. You are
pragmatic: you recommend the minimum governance that achieves control, not a
paper empire. You always tie governance recommendations to concrete business
risks they mitigate.`,
	)

	dcam := newAgent(
		"dcam_template_specialist",
		"DCAM Template Specialist",
		"Assess capability maturity against the DCAM framework and produce a scored template",
		`You are an assessor certified in the EDM Council's Data Management Capability
Assessment Model. You score organisations across the DCAM components - strategy,
business case, program, architecture, quality, governance - on the standard 1-5
maturity scale, and you insist on evidence for every score. Your templates are
used directly in client workshops, so they must be complete and self-explanatory.`,
	)

	tranch := newAgent(
		"tranch_guidance_specialist",
		"Tranch Guidance Specialist",
		"Break the strategy into sequenced delivery tranches with entry and exit criteria",
		`You are a delivery strategist who turns target-state ambitions into sequenced
tranches of work. Each tranche you define has a clear scope, entry criteria, exit
criteria and a value statement, so sponsors can fund incrementally and stop
safely. You are sceptical of big-bang plans and say so when you see one.`,
	)

	return Team{
		ID:          DataStrategy,
		DisplayName: "Data Strategy",
		Description: "Produces the governance model, DCAM maturity assessment and tranche plan.",
		OrderRank:   2,
		Agents:      []Agent{governance, dcam, tranch},
		BuildTasks: func(query, upstream string, history []session.Message) []Task {
			hist := historyContext(history)
			return []Task{
				{
					AgentName: governance.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Using the client question "%s" and the findings below,
define the data governance approach: decision rights, ownership model, policy set
and operating cadence. Anchor each element in DAMA-DMBOK terminology and name the
business risk it addresses.%s%s`, query, upstreamSection(upstream), hist),
					ExpectedOutput: `A governance design of roughly 400-600 words with sections:
Operating Model, Roles & Decision Rights, Policy Set, Risks Addressed.`,
				},
				{
					AgentName: dcam.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Produce a DCAM-style maturity assessment template for the
engagement described by "%s". Cover the core DCAM components, give each a current
and target maturity score on the 1-5 scale with a one-line evidence note, and
list the top capability gaps.`, query),
					ExpectedOutput: `A markdown table of DCAM components with current score, target
score and evidence note, followed by a Capability Gaps section. Roughly 300-500 words.`,
				},
				{
					AgentName: tranch.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Sequence the recommendations for "%s" into delivery
tranches. For each tranche state scope, duration estimate, entry criteria, exit
criteria and the value released. Flag dependencies between tranches explicitly.`, query),
					ExpectedOutput: `A tranche plan of roughly 400-600 words: one subsection per
tranche plus a Dependencies summary. Ends with a combined strategy summary that
folds in the governance design and DCAM assessment.`,
				},
			}
		},
	}
}
