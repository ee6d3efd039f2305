package skills

import (
	"path/filepath"
	"strings"
)

// ValidateSkillPath checks that resolvedPath stays inside expectedParent.
// originalRelativePath is the externally sourced value that produced
// resolvedPath; it must not carry a null byte or a ".." segment. A resolved
// path equal to the parent itself is allowed.
func ValidateSkillPath(resolvedPath, expectedParent, originalRelativePath string) error {
	if strings.ContainsRune(originalRelativePath, 0) {
		return wrapSentinel(ErrPathTraversal, "skill path %q contains a null byte", originalRelativePath)
	}

	for _, segment := range strings.FieldsFunc(originalRelativePath, isSeparator) {
		if segment == ".." {
			return wrapSentinel(ErrPathTraversal, "skill path %q contains a parent directory reference", originalRelativePath)
		}
	}

	resolved, err := filepath.Abs(resolvedPath)
	if err != nil {
		return wrapSentinel(ErrPathTraversal, "failed to resolve skill path %q: %v", resolvedPath, err)
	}
	parent, err := filepath.Abs(expectedParent)
	if err != nil {
		return wrapSentinel(ErrPathTraversal, "failed to resolve parent %q: %v", expectedParent, err)
	}

	if resolved == parent {
		return nil
	}
	if !strings.HasPrefix(resolved, strings.TrimSuffix(parent, string(filepath.Separator))+string(filepath.Separator)) {
		return wrapSentinel(ErrPathTraversal, "skill path %q escapes %s", originalRelativePath, expectedParent)
	}
	return nil
}

// SafeJoin joins an untrusted relative path onto a trusted root and validates the result.
func SafeJoin(root, relativePath string) (string, error) {
	if filepath.IsAbs(relativePath) || strings.HasPrefix(relativePath, "/") || strings.HasPrefix(relativePath, `\`) {
		return "", wrapSentinel(ErrPathTraversal, "skill path %q is absolute", relativePath)
	}

	joined := filepath.Join(root, filepath.FromSlash(relativePath))
	if err := ValidateSkillPath(joined, root, relativePath); err != nil {
		return "", err
	}
	return joined, nil
}

func isSeparator(r rune) bool {
	return r == '/' || r == '\\'
}
