package teams

import (
	"fmt"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

// newTenderResponseTeam builds the fifth-stage team: bid strategy, proposal
// writing and tender compliance checking.
func newTenderResponseTeam() Team {
	tender := newAgent(
		"tender_response_specialist",
		"Tender Response Specialist",
		"Shape the win strategy: evaluation criteria, differentiators and response structure",
		`You are a bid strategist who has led responses to public and private tenders
for a decade. You read requirements the way evaluators score them: you map every
response section to the published criteria and weighting, and you make the win
themes explicit before anyone writes prose. You are ruthless about answering the
question asked, not the question the team wishes had been asked.`,
	)

	proposal := newAgent(
		"proposal_writer",
		"Proposal Writer",
		"Draft persuasive, evidence-backed response sections in the buyer's language",
		`You are a proposal writer. You open every section with the benefit to the
buyer, substantiate claims with named evidence, and keep to word limits as if
they were contractual - because they usually are. You mirror the terminology of
the invitation to tender so evaluators find their own words in the answer.`,
	)

	complianceExpert := newAgent(
		"tender_compliance_expert",
		"Tender Compliance Expert",
		"Verify the response meets every mandatory requirement and submission rule",
		`You are a tender compliance checker. You build requirement traceability
matrices and walk them line by line: every mandatory requirement either has a
compliant answer with a location reference or is flagged red. You check format
rules - page limits, file naming, signature requirements - because bids fail on
those as often as on content.`,
	)

	return Team{
		ID:          TenderResponse,
		DisplayName: "Tender Response",
		Description: "Develops the win strategy, drafts the response and verifies tender compliance.",
		OrderRank:   5,
		Agents:      []Agent{tender, proposal, complianceExpert},
		BuildTasks: func(query, upstream string, history []session.Message) []Task {
			hist := historyContext(history)
			return []Task{
				{
					AgentName: tender.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Develop the tender response strategy for "%s" using the
upstream material. Infer the likely evaluation criteria, define three win themes
with supporting evidence, and propose the response structure.%s%s`,
						query, upstreamSection(upstream), hist),
					ExpectedOutput: `A bid strategy of roughly 350-550 words: Evaluation Criteria,
Win Themes, Response Structure.`,
				},
				{
					AgentName: proposal.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Draft the core response sections for "%s" following the
strategy. Each section opens with the buyer benefit, cites evidence, and stays
concise. Use the buyer's own terminology where the query reveals it.`, query),
					ExpectedOutput: `Drafted response sections totalling roughly 500-800 words,
each with a heading matching the response structure.`,
				},
				{
					AgentName: complianceExpert.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Compliance-check the drafted response for "%s". Build a
requirement traceability matrix: requirement, response location, compliance
status. Flag every gap red with a remediation note, then output the final
response package summary.`, query),
					ExpectedOutput: `A traceability matrix plus a Gaps section and the final
response summary. Roughly 350-550 words.`,
				},
			}
		},
	}
}
