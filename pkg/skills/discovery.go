package skills

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
)

// DiscoverLocal lists the skill directories below dir that carry a valid
// SKILL.md, ordered by directory name. Directories whose SKILL.md cannot be
// parsed are skipped.
func DiscoverLocal(dir string) ([]*Skill, error) {
	names, err := listSkillDirs(dir)
	if err != nil {
		return nil, err
	}

	discovered := make([]*Skill, 0, len(names))
	for _, name := range names {
		skillDir := filepath.Join(dir, name)
		skill, err := LoadSkill(filepath.Join(skillDir, PrimaryDocument))
		if err != nil {
			continue
		}
		skill.Directory = skillDir
		discovered = append(discovered, skill)
	}

	return discovered, nil
}

// LoadSkill loads a single skill from its SKILL.md file
func LoadSkill(path string) (*Skill, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill file")
	}

	md := goldmark.New(
		goldmark.WithExtensions(meta.Meta),
	)

	var buf bytes.Buffer
	pctx := parser.NewContext()

	if err := md.Convert(content, &buf, parser.WithContext(pctx)); err != nil {
		return nil, errors.Wrap(err, "failed to parse markdown")
	}

	metaData := meta.Get(pctx)
	if metaData == nil {
		return nil, errors.New("missing frontmatter")
	}

	name, _ := metaData["name"].(string)
	description, _ := metaData["description"].(string)

	if name == "" {
		return nil, errors.New("skill name is required in frontmatter")
	}

	return &Skill{
		Name:        name,
		Description: description,
		Directory:   filepath.Dir(path),
		Content:     extractBodyContent(string(content)),
	}, nil
}

// extractBodyContent removes YAML frontmatter and returns the body
func extractBodyContent(content string) string {
	if !strings.HasPrefix(content, "---") {
		return content
	}

	lines := strings.Split(content, "\n")
	frontmatterEnd := -1

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			frontmatterEnd = i
			break
		}
	}

	if frontmatterEnd == -1 {
		return content
	}

	return strings.TrimLeft(strings.Join(lines[frontmatterEnd+1:], "\n"), "\n")
}
