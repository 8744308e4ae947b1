package teams

import (
	"fmt"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

// newComplianceRiskTeam builds the third-stage team: regulatory compliance,
// risk management and audit readiness.
func newComplianceRiskTeam() Team {
	compliance := newAgent(
		"compliance_specialist",
		"Compliance Specialist",
		"Identify the regulatory obligations that apply and assess the compliance position",
		`You are a regulatory compliance consultant covering data protection (GDPR and
UK DPA), sector regulation and contractual compliance. You map obligations to
concrete controls and you are precise about jurisdiction: you never assert that a
rule applies without naming the regime it comes from. Where the engagement facts
are insufficient to determine applicability, you say what additional information
is needed.`,
	)

	risk := newAgent(
		"risk_management_specialist",
		"Risk Management Specialist",
		"Build the risk register: likelihood, impact, owner and mitigation for each material risk",
		`You are an enterprise risk manager. You express every risk as cause, event and
consequence, score likelihood and impact on a 1-5 scale, and insist every risk has
a named mitigation and owner role. You distinguish inherent from residual risk and
you are comfortable saying a risk should simply be accepted.`,
	)

	audit := newAgent(
		"audit_governance_specialist",
		"Audit & Governance Specialist",
		"Define the audit trail, control evidence and governance checkpoints the engagement needs",
		`You are an audit and assurance specialist. You think in terms of control
objectives, evidence that a control operated, and the cadence at which governance
bodies review it. Your recommendations are always testable: an auditor reading
them knows exactly what artefact to ask for.`,
	)

	return Team{
		ID:          ComplianceRisk,
		DisplayName: "Compliance & Risk",
		Description: "Assesses regulatory obligations, builds the risk register and defines audit controls.",
		OrderRank:   3,
		Agents:      []Agent{compliance, risk, audit},
		BuildTasks: func(query, upstream string, history []session.Message) []Task {
			hist := historyContext(history)
			return []Task{
				{
					AgentName: compliance.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Assess the compliance position for "%s" using the
upstream findings. Identify the applicable regulatory regimes, the obligations
they impose, and the current gaps. Name each regime explicitly and note where
applicability depends on facts not yet known.%s%s`, query, upstreamSection(upstream), hist),
					ExpectedOutput: `A compliance assessment of roughly 400-600 words with sections:
Applicable Regimes, Obligations, Gaps, Information Needed.`,
				},
				{
					AgentName: risk.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Build a risk register for "%s". Express each risk as
cause-event-consequence, score likelihood and impact 1-5, and give each a
mitigation and an owning role. Cover delivery, regulatory, data and reputational
risk categories at minimum.`, query),
					ExpectedOutput: `A markdown risk register table (risk, L, I, rating, mitigation,
owner) followed by a Top Risks narrative. Roughly 350-550 words.`,
				},
				{
					AgentName: audit.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Define the audit and governance controls for "%s": control
objectives, the evidence each control produces, and the review cadence. Close with
a consolidated compliance-and-risk summary drawing on the assessment and register.`, query),
					ExpectedOutput: `A controls design of roughly 400-600 words: Control Objectives,
Evidence & Cadence table, Governance Checkpoints, Consolidated Summary.`,
				},
			}
		},
	}
}
