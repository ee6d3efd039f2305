package skills

import "github.com/pkg/errors"

var (
	// ErrPathTraversal is returned when a skill path would escape its trusted root.
	ErrPathTraversal = errors.New("path traversal")
	// ErrNotFound is returned when a skill or one of its required files is missing.
	ErrNotFound = errors.New("not found")
	// ErrMalformedMetadata is returned when a metadata sidecar cannot be parsed.
	ErrMalformedMetadata = errors.New("malformed metadata")
)

// wrapSentinel attaches a sentinel to a message so callers can match it with errors.Is
// while still seeing the concrete reason.
func wrapSentinel(sentinel error, format string, args ...any) error {
	return errors.Wrapf(sentinel, format, args...)
}
