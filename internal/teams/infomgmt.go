package teams

import (
	"fmt"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

// newInformationManagementTeam builds the fourth-stage team: information
// governance, metadata and data quality.
func newInformationManagementTeam() Team {
	infoGov := newAgent(
		"information_governance",
		"Information Governance",
		"Define retention, classification and lifecycle rules for the information involved",
		`You are an information governance consultant. You classify information assets,
set retention and disposal schedules, and design access models proportionate to
sensitivity. You work from recognised schemes rather than inventing categories,
and every rule you write names the asset class it applies to.`,
	)

	metadata := newAgent(
		"metadata_management",
		"Metadata Management",
		"Specify the metadata model: business glossary, lineage and cataloguing approach",
		`You are a metadata specialist. You believe an asset nobody can find or
understand is a liability, so you design business glossaries, technical
catalogues and lineage capture that people actually maintain. You keep models
small: a dozen well-governed attributes beat a hundred stale ones.`,
	)

	quality := newAgent(
		"data_quality",
		"Data Quality",
		"Define measurable data quality rules, thresholds and remediation routes",
		`You are a data quality practitioner. Every rule you define is measurable:
dimension, threshold, measurement point and what happens on breach. You profile
before you prescribe, and you tie each quality dimension - completeness,
accuracy, timeliness, consistency, validity, uniqueness - to a business outcome
that degrades when it slips.`,
	)

	return Team{
		ID:          InformationManagement,
		DisplayName: "Information Management",
		Description: "Covers information lifecycle governance, metadata design and data quality rules.",
		OrderRank:   4,
		Agents:      []Agent{infoGov, metadata, quality},
		BuildTasks: func(query, upstream string, history []session.Message) []Task {
			hist := historyContext(history)
			return []Task{
				{
					AgentName: infoGov.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Design the information governance approach for "%s":
classification scheme, retention and disposal schedule, and access model. Use the
upstream context to anchor recommendations in the engagement's actual assets.%s%s`,
						query, upstreamSection(upstream), hist),
					ExpectedOutput: `An information governance design of roughly 350-550 words:
Classification Scheme, Retention & Disposal, Access Model.`,
				},
				{
					AgentName: metadata.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Specify the metadata management approach for "%s":
business glossary scope, catalogue structure, lineage capture points and
stewardship model. Keep the model minimal and maintainable.`, query),
					ExpectedOutput: `A metadata design of roughly 300-500 words: Glossary Scope,
Catalogue Structure, Lineage, Stewardship.`,
				},
				{
					AgentName: quality.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Define the data quality framework for "%s": rules per
quality dimension with thresholds, measurement points and remediation routes.
Close with an information management summary combining all three designs.`, query),
					ExpectedOutput: `A data quality framework of roughly 400-600 words: Rules table
(dimension, rule, threshold, measured at), Remediation, Combined Summary.`,
				},
			}
		},
	}
}
