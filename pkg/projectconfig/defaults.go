package projectconfig

import (
	"os"
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Defaults maps skill categories to the agents that use them. Keys are glob
// patterns over the category path, e.g. "web/*" or "api/**".
type Defaults struct {
	SkillToAgents map[string][]string `yaml:"skill_to_agents"`

	compiled []categoryPattern
}

type categoryPattern struct {
	matcher glob.Glob
	agents  []string
}

// ParseDefaults decodes and compiles a defaults document.
func ParseDefaults(data []byte) (*Defaults, error) {
	d := &Defaults{}
	if err := yaml.Unmarshal(data, d); err != nil {
		return nil, errors.Wrapf(ErrMalformedConfig, "defaults: %v", err)
	}
	compiled, err := d.compile()
	if err != nil {
		return nil, err
	}
	d.compiled = compiled
	return d, nil
}

func (d *Defaults) compile() ([]categoryPattern, error) {
	patterns := make([]string, 0, len(d.SkillToAgents))
	for pattern := range d.SkillToAgents {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	compiled := make([]categoryPattern, 0, len(patterns))
	for _, pattern := range patterns {
		matcher, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "invalid category pattern %q", pattern)
		}
		compiled = append(compiled, categoryPattern{
			matcher: matcher,
			agents:  d.SkillToAgents[pattern],
		})
	}
	return compiled, nil
}

// AgentsFor returns the agents mapped to a category, in pattern order, without duplicates.
func (d *Defaults) AgentsFor(category string) []string {
	if d == nil {
		return nil
	}
	compiled := d.compiled
	if compiled == nil {
		var err error
		if compiled, err = d.compile(); err != nil {
			return nil
		}
	}

	var agents []string
	seen := map[string]bool{}
	for _, p := range compiled {
		if !p.matcher.Match(category) {
			continue
		}
		for _, agent := range p.agents {
			if !seen[agent] {
				seen[agent] = true
				agents = append(agents, agent)
			}
		}
	}
	return agents
}

// DefaultsCache holds the parsed defaults file at a path until invalidated.
type DefaultsCache struct {
	path string

	mu       sync.Mutex
	defaults *Defaults
}

// NewDefaultsCache creates a cache for the defaults file at path.
func NewDefaultsCache(path string) *DefaultsCache {
	return &DefaultsCache{path: path}
}

// Get returns the cached defaults, reading the file on first use. A missing
// file yields empty defaults.
func (c *DefaultsCache) Get() (*Defaults, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.defaults != nil {
		return c.defaults, nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			c.defaults = &Defaults{}
			return c.defaults, nil
		}
		return nil, errors.Wrapf(err, "failed to read defaults %s", c.path)
	}

	defaults, err := ParseDefaults(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse defaults %s", c.path)
	}
	c.defaults = defaults
	return defaults, nil
}

// Invalidate drops the cached defaults so the next Get re-reads the file.
func (c *DefaultsCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults = nil
}
