package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/consultcrew/consultcrew/internal/teams"
)

// TeamSetting is the persisted enablement state for one team. Agents absent
// from the map are enabled.
type TeamSetting struct {
	Enabled bool            `json:"enabled"`
	Agents  map[string]bool `json:"agents"`
}

type enablementDoc struct {
	Teams map[string]TeamSetting `json:"teams"`
}

// Service maintains the team/agent enablement document and derives the
// workflow execution order from it. A missing file means everything is
// enabled; a corrupt file is an error.
type Service struct {
	path     string
	registry *teams.Registry

	mu  sync.Mutex
	doc enablementDoc
}

// NewService loads the enablement document at path.
func NewService(path string, registry *teams.Registry) (*Service, error) {
	s := &Service{path: path, registry: registry}
	s.doc = defaultDoc(registry)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading agent config: %w", err)
	}
	var doc enablementDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing agent config %s: %w", path, err)
	}
	if doc.Teams != nil {
		s.doc = doc
	}
	return s, nil
}

func defaultDoc(registry *teams.Registry) enablementDoc {
	doc := enablementDoc{Teams: map[string]TeamSetting{}}
	for _, team := range registry.All() {
		agents := make(map[string]bool, len(team.Agents))
		for _, a := range team.Agents {
			agents[a.Name] = true
		}
		doc.Teams[string(team.ID)] = TeamSetting{Enabled: true, Agents: agents}
	}
	return doc
}

// EnableTeam marks a team enabled and persists the document.
func (s *Service) EnableTeam(id teams.ID) error { return s.setTeam(id, true) }

// DisableTeam marks a team disabled and persists the document.
func (s *Service) DisableTeam(id teams.ID) error { return s.setTeam(id, false) }

func (s *Service) setTeam(id teams.ID, enabled bool) error {
	if _, err := s.registry.Team(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	setting := s.team(id)
	setting.Enabled = enabled
	s.doc.Teams[string(id)] = setting
	return s.save()
}

// EnableAgent marks one agent enabled and persists the document.
func (s *Service) EnableAgent(id teams.ID, agentName string) error {
	return s.setAgent(id, agentName, true)
}

// DisableAgent marks one agent disabled and persists the document.
func (s *Service) DisableAgent(id teams.ID, agentName string) error {
	return s.setAgent(id, agentName, false)
}

func (s *Service) setAgent(id teams.ID, agentName string, enabled bool) error {
	team, err := s.registry.Team(id)
	if err != nil {
		return err
	}
	known := false
	for _, a := range team.Agents {
		if a.Name == agentName {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("team %s has no agent %q", id, agentName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	setting := s.team(id)
	if setting.Agents == nil {
		setting.Agents = map[string]bool{}
	}
	setting.Agents[agentName] = enabled
	s.doc.Teams[string(id)] = setting
	return s.save()
}

// team returns the stored setting for id, defaulting to fully enabled.
// Callers hold s.mu.
func (s *Service) team(id teams.ID) TeamSetting {
	if setting, ok := s.doc.Teams[string(id)]; ok {
		return setting
	}
	return TeamSetting{Enabled: true}
}

// TeamEnabled reports whether the team is enabled.
func (s *Service) TeamEnabled(id teams.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.team(id).Enabled
}

// AgentEnabled reports whether one agent is enabled. Unknown agents default
// to enabled; the registry is the authority on which agents exist.
func (s *Service) AgentEnabled(id teams.ID, agentName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	setting := s.team(id)
	if setting.Agents == nil {
		return true
	}
	enabled, ok := setting.Agents[agentName]
	if !ok {
		return true
	}
	return enabled
}

// WorkflowOrder returns the enabled teams sorted by rank.
func (s *Service) WorkflowOrder() []teams.Team {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []teams.Team
	for _, team := range s.registry.All() {
		if s.team(team.ID).Enabled {
			out = append(out, team)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderRank < out[j].OrderRank })
	return out
}

// ResetToDefaults re-enables every team and agent and persists the document.
func (s *Service) ResetToDefaults() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = defaultDoc(s.registry)
	return s.save()
}

// Snapshot returns a copy of the current enablement state keyed by team ID.
func (s *Service) Snapshot() map[string]TeamSetting {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]TeamSetting, len(s.doc.Teams))
	for id, setting := range s.doc.Teams {
		agents := make(map[string]bool, len(setting.Agents))
		for name, enabled := range setting.Agents {
			agents[name] = enabled
		}
		out[id] = TeamSetting{Enabled: setting.Enabled, Agents: agents}
	}
	return out
}

// save persists the document. Callers hold s.mu.
func (s *Service) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0o644)
}
