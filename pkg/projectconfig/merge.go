package projectconfig

// MergeResult is the outcome of reconciling a generated configuration with
// the one already on disk.
type MergeResult struct {
	Config *ProjectConfig
	// Merged is true when an existing configuration was found and merged into.
	Merged bool
	// ExistingPath is the path of the configuration that was merged into.
	ExistingPath string
}

// MergeWithExisting merges a freshly generated configuration into the one
// stored in projectDir, if any. Neither input is modified.
func MergeWithExisting(generated *ProjectConfig, projectDir string) (*MergeResult, error) {
	loaded, err := Load(projectDir)
	if err != nil {
		return nil, err
	}
	if loaded == nil {
		return &MergeResult{Config: generated.Clone()}, nil
	}

	return &MergeResult{
		Config:       Merge(loaded.Config, generated),
		Merged:       true,
		ExistingPath: loaded.Path,
	}, nil
}

// Merge combines an existing configuration with a generated one. Identity
// fields and whole lists keep the existing value when it is set, agents are
// unioned with existing entries first, and the nested agent maps are merged
// key by key with existing assignments winning.
func Merge(existing, generated *ProjectConfig) *ProjectConfig {
	if existing == nil {
		return generated.Clone()
	}
	if generated == nil {
		return existing.Clone()
	}

	merged := &ProjectConfig{
		Name:        preferString(existing.Name, generated.Name),
		Description: preferString(existing.Description, generated.Description),
		Source:      preferString(existing.Source, generated.Source),
		Author:      preferString(existing.Author, generated.Author),
		Marketplace: preferString(existing.Marketplace, generated.Marketplace),
		Framework:   preferString(existing.Framework, generated.Framework),
		Philosophy:  preferString(existing.Philosophy, generated.Philosophy),

		Agents: unionAgents(existing.Agents, generated.Agents),

		Skills:     cloneSlice(preferSlice(existing.Skills, generated.Skills)),
		Principles: cloneSlice(preferSlice(existing.Principles, generated.Principles)),
		Tags:       cloneSlice(preferSlice(existing.Tags, generated.Tags)),

		Stack:       mergeNested(existing.Stack, generated.Stack, func(v string) string { return v }),
		AgentSkills: mergeNested(existing.AgentSkills, generated.AgentSkills, cloneSlice[SkillEntry]),
	}

	customAgents := existing.CustomAgents
	if len(customAgents) == 0 {
		customAgents = generated.CustomAgents
	}
	if customAgents != nil {
		merged.CustomAgents = make(map[string]any, len(customAgents))
		for k, v := range customAgents {
			merged.CustomAgents[k] = v
		}
	}

	return merged
}

func preferString(existing, generated string) string {
	if existing != "" {
		return existing
	}
	return generated
}

func preferSlice[T any](existing, generated []T) []T {
	if len(existing) > 0 {
		return existing
	}
	return generated
}

// unionAgents returns existing ∪ generated, existing first, without duplicates.
func unionAgents(existing, generated []string) []string {
	if len(existing) == 0 {
		return cloneSlice(generated)
	}

	seen := make(map[string]bool, len(existing)+len(generated))
	out := make([]string, 0, len(existing)+len(generated))
	for _, list := range [][]string{existing, generated} {
		for _, agent := range list {
			if seen[agent] {
				continue
			}
			seen[agent] = true
			out = append(out, agent)
		}
	}
	return out
}

// mergeNested deep-merges agent -> key -> value maps; existing values win.
func mergeNested[V any](existing, generated map[string]map[string]V, cloneValue func(V) V) map[string]map[string]V {
	if existing == nil {
		return cloneNested(generated, cloneValue)
	}

	out := cloneNested(existing, cloneValue)
	for agent, assignments := range generated {
		target, ok := out[agent]
		if !ok {
			target = make(map[string]V, len(assignments))
			out[agent] = target
		}
		for key, value := range assignments {
			if _, exists := target[key]; exists {
				continue
			}
			target[key] = cloneValue(value)
		}
	}
	return out
}
