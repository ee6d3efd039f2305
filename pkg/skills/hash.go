package skills

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// contentHashLength is the number of hex characters kept from the digest.
const contentHashLength = 7

// ComputeContentHash fingerprints a skill directory. The primary document is
// required; the reference document and the files below examples/ and scripts/
// are included when present. Files are hashed in sorted relative-path order,
// so the result does not depend on directory iteration order.
func ComputeContentHash(skillDir string) (string, error) {
	files, err := fingerprintFiles(skillDir)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, rel := range files {
		content, err := os.ReadFile(filepath.Join(skillDir, filepath.FromSlash(rel)))
		if err != nil {
			return "", errors.Wrapf(err, "failed to read %s", rel)
		}
		h.Write([]byte(rel))
		h.Write([]byte{0})
		h.Write(content)
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))[:contentHashLength], nil
}

// fingerprintFiles lists the slash-separated relative paths that make up a skill fingerprint.
func fingerprintFiles(skillDir string) ([]string, error) {
	if _, err := os.Stat(filepath.Join(skillDir, PrimaryDocument)); err != nil {
		if os.IsNotExist(err) {
			return nil, wrapSentinel(ErrNotFound, "%s missing in %s", PrimaryDocument, skillDir)
		}
		return nil, errors.Wrapf(err, "failed to stat %s in %s", PrimaryDocument, skillDir)
	}

	files := []string{PrimaryDocument}

	if info, err := os.Stat(filepath.Join(skillDir, ReferenceDocument)); err == nil && !info.IsDir() {
		files = append(files, ReferenceDocument)
	}

	for _, sub := range fingerprintDirs {
		root := filepath.Join(skillDir, sub)
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			continue
		}

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(skillDir, path)
			if err != nil {
				return err
			}
			files = append(files, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to walk %s", root)
		}
	}

	sort.Strings(files)
	return files, nil
}
