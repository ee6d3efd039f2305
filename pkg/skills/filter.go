package skills

import (
	"github.com/gobwas/glob"
	"github.com/pkg/errors"
)

// FilterIDs keeps the IDs matching a glob pattern such as "web-*". An empty
// pattern keeps everything.
func FilterIDs(ids []string, pattern string) ([]string, error) {
	if pattern == "" {
		return ids, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid skill filter %q", pattern)
	}

	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		if g.Match(id) {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}
