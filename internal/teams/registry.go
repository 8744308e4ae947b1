package teams

import (
	"fmt"
	"sort"
)

// Registry is the catalog of team builders. Teams are constructed fresh for
// every lookup so runs never share mutable state.
type Registry struct {
	builders map[ID]func() Team
}

// NewRegistry builds the default catalog of all seven teams and validates
// that IDs and order ranks are unique.
func NewRegistry() (*Registry, error) {
	r := &Registry{builders: map[ID]func() Team{
		ResearchAnalysis:       newResearchAnalysisTeam,
		DataStrategy:           newDataStrategyTeam,
		ComplianceRisk:         newComplianceRiskTeam,
		InformationManagement:  newInformationManagementTeam,
		TenderResponse:         newTenderResponseTeam,
		ProjectDelivery:        newProjectDeliveryTeam,
		TechnicalDocumentation: newTechnicalDocumentationTeam,
	}}

	ranks := map[int]ID{}
	for id, build := range r.builders {
		team := build()
		if team.ID != id {
			return nil, fmt.Errorf("team builder for %q produced id %q", id, team.ID)
		}
		if other, dup := ranks[team.OrderRank]; dup {
			return nil, fmt.Errorf("duplicate order rank %d: %q and %q", team.OrderRank, other, id)
		}
		ranks[team.OrderRank] = id
		if len(team.Agents) == 0 {
			return nil, fmt.Errorf("team %q has no agents", id)
		}
	}
	return r, nil
}

// MustRegistry is NewRegistry for callers that treat a bad catalog as a
// programmer error.
func MustRegistry() *Registry {
	r, err := NewRegistry()
	if err != nil {
		panic(err)
	}
	return r
}

// Team constructs a fresh instance of the identified team.
func (r *Registry) Team(id ID) (Team, error) {
	build, ok := r.builders[id]
	if !ok {
		return Team{}, fmt.Errorf("unknown team id %q", id)
	}
	return build(), nil
}

// All constructs every team, sorted by order rank.
func (r *Registry) All() []Team {
	out := make([]Team, 0, len(r.builders))
	for _, build := range r.builders {
		out = append(out, build())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderRank < out[j].OrderRank })
	return out
}
