package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
	"gopkg.in/yaml.v3"
)

const (
	forkedFromKey  = "forked_from"
	forkedDateForm = "2006-01-02"
)

// now is replaced in tests.
var now = time.Now

// ForkedFromRecord records which upstream skill a local directory was copied
// from and the content hash at that time.
type ForkedFromRecord struct {
	SkillID     string `yaml:"skill_id"`
	ContentHash string `yaml:"content_hash"`
	Date        string `yaml:"date"`
}

type metadataFile struct {
	ForkedFrom *ForkedFromRecord `yaml:"forked_from,omitempty"`
}

// ReadForkedFromMetadata returns the forked-from record of a skill directory,
// or nil when the sidecar file or the record is absent.
func ReadForkedFromMetadata(skillDir string) (*ForkedFromRecord, error) {
	metadataPath := filepath.Join(skillDir, MetadataFileName)
	content, err := os.ReadFile(metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", metadataPath)
	}

	var meta metadataFile
	if err := yaml.Unmarshal(content, &meta); err != nil {
		return nil, wrapSentinel(ErrMalformedMetadata, "failed to parse %s: %v", metadataPath, err)
	}

	if meta.ForkedFrom == nil || meta.ForkedFrom.SkillID == "" {
		return nil, nil
	}
	return meta.ForkedFrom, nil
}

// InjectForkedFromMetadata sets the forked-from record of a skill directory,
// keeping any leading comment lines and every other field of the sidecar file.
func InjectForkedFromMetadata(skillDir, skillID, contentHash string) error {
	metadataPath := filepath.Join(skillDir, MetadataFileName)

	content, err := os.ReadFile(metadataPath)
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to read %s", metadataPath)
	}

	header, body := splitLeadingComments(string(content))

	root, err := parseMetadataMapping(body)
	if err != nil {
		return wrapSentinel(ErrMalformedMetadata, "failed to parse %s: %v", metadataPath, err)
	}

	record := ForkedFromRecord{
		SkillID:     skillID,
		ContentHash: contentHash,
		Date:        now().Format(forkedDateForm),
	}
	var value yaml.Node
	if err := value.Encode(record); err != nil {
		return errors.Wrap(err, "failed to encode forked_from record")
	}
	setMappingValue(root, forkedFromKey, &value)

	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return errors.Wrapf(err, "failed to encode %s", metadataPath)
	}
	if err := enc.Close(); err != nil {
		return errors.Wrapf(err, "failed to encode %s", metadataPath)
	}

	if err := lockedfile.Write(metadataPath, &buf, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", metadataPath)
	}
	return nil
}

// splitLeadingComments separates the comment lines at the top of a YAML file
// (such as a yaml-language-server schema reference) from the document body.
func splitLeadingComments(content string) (string, string) {
	var header strings.Builder
	rest := content
	for rest != "" {
		line, remainder, found := strings.Cut(rest, "\n")
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			break
		}
		header.WriteString(line)
		header.WriteString("\n")
		if !found {
			rest = ""
			break
		}
		rest = remainder
	}
	return header.String(), rest
}

// parseMetadataMapping parses a YAML body into a mapping node. An empty body
// yields an empty mapping.
func parseMetadataMapping(body string) (*yaml.Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return nil, err
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top-level value is not a mapping")
	}
	return root, nil
}

func setMappingValue(mapping *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = value
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}
