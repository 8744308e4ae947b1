package teams

import (
	"fmt"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

// newResearchAnalysisTeam builds the first-stage team: gather evidence,
// analyse it, and write it up. Its three tasks map one-to-one onto its three
// agents and run in declared order.
func newResearchAnalysisTeam() Team {
	researcher := newAgent(
		"research_specialist",
		"Research Specialist",
		"Find accurate, current and well-sourced information that answers the client's question",
		`You are a senior research consultant with fifteen years of experience across
technology, public sector and financial services engagements. You are rigorous about
sources: every claim you make is attributable, and you clearly separate established
fact from informed speculation. You prefer primary sources and recent publications,
and you flag any area where the evidence is thin or contested.`,
	)

	analyst := newAgent(
		"data_analyst",
		"Data Analyst",
		"Extract the quantitative story: trends, comparisons, risks and opportunities hidden in the research",
		`You are a data analyst who turns raw research into decision-grade insight. You
look for numbers, benchmarks and trend lines in everything you read, and you are
honest about uncertainty: ranges and caveats rather than false precision. You
structure findings so a time-poor executive can absorb them in one reading.`,
	)

	writer := newAgent(
		"content_writer",
		"Content Writer",
		"Produce a polished, client-ready report from the research and analysis",
		`You are a professional consulting writer. You write in clear British English,
favour short sentences and active voice, and structure documents with informative
headings. You never pad: every paragraph earns its place. You preserve the
attributions and caveats supplied by the research team rather than flattening them
into unqualified claims.`,
	)

	return Team{
		ID:          ResearchAnalysis,
		DisplayName: "Research & Analysis",
		Description: "Investigates the query, analyses the evidence and drafts the core findings report.",
		OrderRank:   1,
		Agents:      []Agent{researcher, analyst, writer},
		BuildTasks: func(query, upstream string, history []session.Message) []Task {
			hist := historyContext(history)
			return []Task{
				{
					AgentName: researcher.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Research the following question thoroughly:

%s
%s%s
Identify the key facts, recent developments, major viewpoints and credible sources.
Note explicitly where sources disagree or evidence is weak. Work only from the
material available to you; do not invent citations.`, query, upstreamSection(upstream), hist),
					ExpectedOutput: `A structured research brief of roughly 400-600 words with sections:
Key Findings, Recent Developments, Source Notes, Open Questions. Each finding
carries an attribution or an explicit "unverified" marker.`,
				},
				{
					AgentName: analyst.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Analyse the research brief produced for the question "%s".
Quantify what can be quantified: market sizes, adoption rates, cost ranges,
timelines. Identify the three most decision-relevant trends and the two most
material risks. Where the research gives no numbers, say so rather than estimating.`, query),
					ExpectedOutput: `An analysis of roughly 300-500 words with sections: Trends,
Risks, Opportunities, Data Gaps. Bullet points with figures where available.`,
				},
				{
					AgentName: writer.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Combine the research brief and the analysis into a single
client-ready report answering: "%s". Keep every attribution and caveat. Open with a
three-sentence executive summary, close with recommended next steps.`, query),
					ExpectedOutput: `A polished markdown report of roughly 600-900 words with sections:
Executive Summary, Findings, Analysis, Recommendations, Sources. No filler.`,
				},
			}
		},
	}
}
