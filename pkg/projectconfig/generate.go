package projectconfig

import (
	"github.com/agentsinc/cli/pkg/skills"
)

// Generate builds a configuration for a skill selection. Agents come from the
// defaults mapping of each selected skill's category, and each agent's stack
// assigns the first selected skill of a subcategory. Unknown skills are kept
// in the skills list but contribute no agents.
func Generate(name string, selected []string, matrix *skills.MergedSkillsMatrix, defaults *Defaults) *ProjectConfig {
	config := &ProjectConfig{
		Name:   name,
		Agents: []string{},
	}

	seenAgents := map[string]bool{}
	for _, id := range selected {
		skill, ok := matrix.Lookup(id)
		if !ok {
			config.Skills = append(config.Skills, SkillEntry{ID: id})
			continue
		}
		config.Skills = append(config.Skills, SkillEntry{ID: skill.ID})

		subcategory := skill.Subcategory()
		for _, agent := range defaults.AgentsFor(skill.Category) {
			if !seenAgents[agent] {
				seenAgents[agent] = true
				config.Agents = append(config.Agents, agent)
			}
			if subcategory == "" {
				continue
			}
			if config.Stack == nil {
				config.Stack = map[string]map[string]string{}
			}
			if config.Stack[agent] == nil {
				config.Stack[agent] = map[string]string{}
			}
			if _, taken := config.Stack[agent][subcategory]; !taken {
				config.Stack[agent][subcategory] = skill.ID
			}
		}
	}

	return config
}
