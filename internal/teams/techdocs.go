package teams

import (
	"fmt"
	"time"

	"github.com/consultcrew/consultcrew/internal/session"
)

// newTechnicalDocumentationTeam builds the final-stage team. Five agents
// producing the technical artefacts: data models, code samples and the
// consolidated technical document.
func newTechnicalDocumentationTeam() Team {
	modeler := newAgent(
		"data_modeling_specialist",
		"Data Modeling Specialist",
		"Produce conceptual and logical data models for the solution",
		`You are a data modeller. You produce conceptual models a sponsor can read and
logical models an engineer can build from. Every entity has a definition, every
relationship a cardinality, every attribute a type. You note denormalisation
decisions and the query patterns that justify them.`,
	)

	pythonDev := newAgent(
		"python_code_specialist",
		"Python Code Specialist",
		"Write illustrative, runnable Python examples for the solution's key operations",
		`You are a Python specialist. Your examples are small, complete and idiomatic:
type hints, docstrings, no dead imports. You show error handling where the real
system would need it and you comment only what the code cannot say itself.`,
	)

	sqlDev := newAgent(
		"sql_code_specialist",
		"SQL Code Specialist",
		"Write the DDL and the key analytical queries for the data model",
		`You are a SQL specialist. You write portable ANSI SQL unless the engagement
names a dialect, with explicit constraints and indexes justified by stated query
patterns. Every non-obvious predicate gets a one-line comment.`,
	)

	sparkDev := newAgent(
		"pyspark_code_specialist",
		"PySpark Code Specialist",
		"Write PySpark examples for the large-scale transformation steps",
		`You are a PySpark specialist. You write DataFrame-API code, avoid UDFs unless
nothing else works, and always note the partitioning and shuffle behaviour of the
transformations you show. Your examples include schema definitions so they run
against empty clusters.`,
	)

	techWriter := newAgent(
		"technical_writer",
		"Technical Writer",
		"Assemble all artefacts into one coherent technical document",
		`You are a technical writer. You assemble artefacts from specialists into a
single document with consistent terminology, a glossary, and navigation that lets
a reader find any artefact in two clicks. You resolve naming conflicts between
contributors rather than shipping both names.`,
	)

	return Team{
		ID:          TechnicalDocumentation,
		DisplayName: "Technical Documentation",
		Description: "Produces data models, code examples and the consolidated technical document.",
		OrderRank:   7,
		Agents:      []Agent{modeler, pythonDev, sqlDev, sparkDev, techWriter},
		BuildTasks: func(query, upstream string, history []session.Message) []Task {
			hist := historyContext(history)
			return []Task{
				{
					AgentName: modeler.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Produce the data models for "%s": a conceptual model in
prose plus a logical model listing entities, attributes with types, and
relationships with cardinality. Note any denormalisation and its justification.%s%s`,
						query, upstreamSection(upstream), hist),
					ExpectedOutput: `Data models of roughly 300-500 words: Conceptual Model,
Logical Model (entity list), Modeling Decisions.`,
				},
				{
					AgentName: pythonDev.Name,
					Timeout:   240 * time.Second,
					Description: fmt.Sprintf(`Write Python examples for the two or three key operations
of the solution to "%s". Small, complete, type-hinted, with error handling where
the real system needs it.`, query),
					ExpectedOutput: `Two or three fenced Python code blocks with one-paragraph
introductions. Roughly 200-400 words of prose around the code.`,
				},
				{
					AgentName: sqlDev.Name,
					Timeout:   240 * time.Second,
					Description: fmt.Sprintf(`Write the DDL for the logical model of "%s" plus the two
most important analytical queries. ANSI SQL, explicit constraints, indexes
justified by the stated query patterns.`, query),
					ExpectedOutput: `Fenced SQL blocks: DDL then queries, each with a one-paragraph
introduction. Roughly 200-400 words of prose.`,
				},
				{
					AgentName: sparkDev.Name,
					Timeout:   240 * time.Second,
					Description: fmt.Sprintf(`Write PySpark examples for the large-scale transformation
steps of "%s". DataFrame API, explicit schemas, notes on partitioning and shuffle
behaviour.`, query),
					ExpectedOutput: `One or two fenced PySpark code blocks with schema definitions
and partitioning notes. Roughly 200-350 words of prose.`,
				},
				{
					AgentName: techWriter.Name,
					Timeout:   300 * time.Second,
					Description: fmt.Sprintf(`Assemble the data models and code examples into the final
technical document for "%s": consistent terminology, a short glossary, and a
document map up front. Resolve any naming conflicts between the artefacts.`, query),
					ExpectedOutput: `The consolidated technical document of roughly 600-900 words
(excluding code blocks): Document Map, the artefact sections, Glossary.`,
				},
			}
		},
	}
}
