package skills

import (
	"os"
	"path/filepath"

	"github.com/aymanbagabas/go-udiff"
	"github.com/pkg/errors"
)

// Diff returns a unified diff of the upstream primary document against the
// local one for a forked skill directory. An empty string means no change.
func (m *Manager) Diff(matrix *MergedSkillsMatrix, dirName string) (string, error) {
	skillDir, err := SafeJoin(m.localSkillsDir, dirName)
	if err != nil {
		return "", err
	}

	record, err := ReadForkedFromMetadata(skillDir)
	if err != nil {
		return "", err
	}
	if record == nil {
		return "", wrapSentinel(ErrNotFound, "skill %s has no forked_from record", dirName)
	}

	skill, ok := matrix.Lookup(record.SkillID)
	if !ok || skill.Path == "" {
		return "", wrapSentinel(ErrNotFound, "skill %s is not in the matrix", record.SkillID)
	}

	sourceDir, err := SafeJoin(m.SourceRoot(), skill.Path)
	if err != nil {
		return "", err
	}

	upstream, err := readDocument(sourceDir)
	if err != nil {
		return "", err
	}
	local, err := readDocument(skillDir)
	if err != nil {
		return "", err
	}

	return udiff.Unified("upstream/"+PrimaryDocument, "local/"+PrimaryDocument, upstream, local), nil
}

func readDocument(skillDir string) (string, error) {
	content, err := os.ReadFile(filepath.Join(skillDir, PrimaryDocument))
	if err != nil {
		if os.IsNotExist(err) {
			return "", wrapSentinel(ErrNotFound, "%s missing in %s", PrimaryDocument, skillDir)
		}
		return "", errors.Wrapf(err, "failed to read %s in %s", PrimaryDocument, skillDir)
	}
	return string(content), nil
}
