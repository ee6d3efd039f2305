package plugins

import (
	"fmt"
	"os"
	"strings"

	"github.com/agentsinc/cli/pkg/skills"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// defaultVersion is the base used when a manifest has no version.
const defaultVersion = "1.0.0"

// BumpType selects the version component to increment.
type BumpType string

// Bump types
const (
	BumpPatch BumpType = "patch"
	BumpMinor BumpType = "minor"
	BumpMajor BumpType = "major"
)

// ParseBumpType validates a bump type name.
func ParseBumpType(s string) (BumpType, error) {
	switch b := BumpType(strings.ToLower(strings.TrimSpace(s))); b {
	case BumpPatch, BumpMinor, BumpMajor:
		return b, nil
	default:
		return "", errors.Errorf("invalid bump type %q: must be one of patch, minor, major", s)
	}
}

// Version is a three component plugin version.
type Version struct {
	Major int
	Minor int
	Patch int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Bump increments one component and zeroes the components to its right.
func (v Version) Bump(bump BumpType) Version {
	switch bump {
	case BumpMajor:
		return Version{Major: v.Major + 1}
	case BumpMinor:
		return Version{Major: v.Major, Minor: v.Minor + 1}
	default:
		return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch + 1}
	}
}

// ParseVersion parses a version permissively. Each dot separated segment
// contributes its leading digits. A missing, non-numeric or zero major becomes
// 1 and missing or non-numeric minor and patch become 0. Anything after the
// patch digits, such as a pre-release suffix, is dropped.
func ParseVersion(s string) Version {
	parts := strings.Split(strings.TrimSpace(s), ".")
	segment := func(i int) int {
		if i >= len(parts) {
			return 0
		}
		return leadingInt(parts[i])
	}

	v := Version{
		Major: segment(0),
		Minor: segment(1),
		Patch: segment(2),
	}
	if v.Major == 0 {
		v.Major = 1
	}
	return v
}

// maxDigits bounds a version segment so it cannot overflow int.
const maxDigits = 9

// leadingInt returns the integer formed by the leading digits of s, or 0 when
// there are none or there are more than maxDigits of them.
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	sign := 1
	if s != "" && (s[0] == '-' || s[0] == '+') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}

	n, digits := 0, 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		if digits++; digits > maxDigits {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return sign * n
}

// BumpVersion increments the version in the plugin manifest at pluginDir and
// returns the new version. Only the version field is rewritten; the rest of
// the document is left as it was. Nothing is written when the manifest is
// invalid.
func BumpVersion(pluginDir string, bump BumpType) (string, error) {
	path := ManifestPath(pluginDir)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errors.Wrapf(skills.ErrNotFound, "plugin manifest %s", path)
		}
		return "", errors.Wrapf(err, "failed to stat %s", path)
	}

	var next string
	err := lockedfile.Transform(path, func(data []byte) ([]byte, error) {
		if _, err := ParseManifest(data); err != nil {
			return nil, err
		}

		current := defaultVersion
		if v := gjson.GetBytes(data, "version"); v.Exists() && v.String() != "" {
			current = v.String()
		}
		next = ParseVersion(current).Bump(bump).String()

		return sjson.SetBytes(data, "version", next)
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to bump version in %s", path)
	}
	return next, nil
}
