// Package matrix builds a skills matrix from a registry tree and a project's
// local skills directory.
package matrix

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agentsinc/cli/pkg/logger"
	"github.com/agentsinc/cli/pkg/skills"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	registrySourceDir = "src"
	skillsGlob        = "skills/**/" + skills.PrimaryDocument
	skillsPrefix      = "skills/"
	localCategory     = "local"
)

// catalogMetadata holds the registry-only fields of a skill's metadata.yaml.
type catalogMetadata struct {
	Category string   `yaml:"category"`
	CLIName  string   `yaml:"cli_name"`
	Author   string   `yaml:"author"`
	Aliases  []string `yaml:"aliases"`
}

// Options locates the trees a matrix is built from. Either directory may be empty.
type Options struct {
	RegistryDir    string
	ProjectDir     string
	LocalSkillsDir string
}

// Load builds a matrix from <RegistryDir>/src/skills/**/SKILL.md and the
// skills in LocalSkillsDir. Registry skills that also exist locally are marked
// local; skills that exist only locally are added with the "local" category.
func Load(ctx context.Context, opts Options) (*skills.MergedSkillsMatrix, error) {
	m := &skills.MergedSkillsMatrix{
		Skills:      map[string]*skills.ResolvedSkill{},
		Categories:  map[string]*skills.Category{},
		Aliases:     map[string]string{},
		GeneratedAt: time.Now().UTC(),
	}

	if opts.RegistryDir != "" {
		if err := loadRegistry(ctx, m, filepath.Join(opts.RegistryDir, registrySourceDir)); err != nil {
			return nil, err
		}
	}

	if opts.ProjectDir != "" {
		localDir := opts.LocalSkillsDir
		if localDir == "" {
			localDir = skills.LocalSkillsDir(opts.ProjectDir)
		}
		if err := loadLocal(ctx, m, opts.ProjectDir, localDir); err != nil {
			return nil, err
		}
	}

	for _, category := range m.Categories {
		sort.Strings(category.Skills)
	}
	return m, nil
}

func loadRegistry(ctx context.Context, m *skills.MergedSkillsMatrix, sourceRoot string) error {
	if _, err := os.Stat(sourceRoot); err != nil {
		return errors.Wrapf(err, "registry source %s is not readable", sourceRoot)
	}

	matches, err := doublestar.Glob(os.DirFS(sourceRoot), skillsGlob)
	if err != nil {
		return errors.Wrap(err, "failed to scan registry skills")
	}
	sort.Strings(matches)

	for _, match := range matches {
		skillDir := path.Dir(match)
		log := logger.G(ctx).WithField("path", skillDir)

		parsed, err := skills.LoadSkill(filepath.Join(sourceRoot, filepath.FromSlash(match)))
		if err != nil {
			log.WithError(err).Warn("skipping registry skill with invalid SKILL.md")
			continue
		}
		if _, exists := m.Skills[parsed.Name]; exists {
			log.WithField(logger.FieldSkillID, parsed.Name).Warn("duplicate skill id in registry, keeping first")
			continue
		}

		meta, err := readCatalogMetadata(filepath.Join(sourceRoot, filepath.FromSlash(skillDir)))
		if err != nil {
			return err
		}

		category := meta.Category
		if category == "" {
			category = categoryFromPath(skillDir)
		}

		skill := &skills.ResolvedSkill{
			ID:          parsed.Name,
			Description: parsed.Description,
			Category:    category,
			Path:        skillDir + "/",
			DisplayName: meta.CLIName,
			Author:      meta.Author,
		}
		add(m, skill)

		for _, alias := range meta.Aliases {
			if alias == "" || alias == skill.ID {
				continue
			}
			if existing, ok := m.Aliases[alias]; ok && existing != skill.ID {
				log.WithField("alias", alias).Warn("alias already points to another skill")
				continue
			}
			m.Aliases[alias] = skill.ID
		}
	}

	return nil
}

func loadLocal(ctx context.Context, m *skills.MergedSkillsMatrix, projectDir, localSkillsDir string) error {
	discovered, err := skills.DiscoverLocal(localSkillsDir)
	if err != nil {
		return err
	}

	for _, local := range discovered {
		rel, err := filepath.Rel(projectDir, local.Directory)
		if err != nil {
			return errors.Wrapf(err, "failed to relate %s to project", local.Directory)
		}
		localPath := filepath.ToSlash(rel) + "/"

		if existing, ok := m.Skills[local.Name]; ok {
			existing.Local = true
			existing.LocalPath = localPath
			continue
		}

		logger.WithSkill(ctx, local.Name).Debug("adding local-only skill")
		add(m, &skills.ResolvedSkill{
			ID:          local.Name,
			Description: local.Description,
			Category:    localCategory,
			Local:       true,
			LocalPath:   localPath,
		})
	}

	return nil
}

func add(m *skills.MergedSkillsMatrix, skill *skills.ResolvedSkill) {
	m.Skills[skill.ID] = skill

	category, ok := m.Categories[skill.Category]
	if !ok {
		category = &skills.Category{ID: skill.Category}
		m.Categories[skill.Category] = category
	}
	category.Skills = append(category.Skills, skill.ID)
}

func readCatalogMetadata(skillDir string) (*catalogMetadata, error) {
	meta := &catalogMetadata{}
	metadataPath := filepath.Join(skillDir, skills.MetadataFileName)

	content, err := os.ReadFile(metadataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return meta, nil
		}
		return nil, errors.Wrapf(err, "failed to read %s", metadataPath)
	}

	if err := yaml.Unmarshal(content, meta); err != nil {
		return nil, errors.Wrapf(skills.ErrMalformedMetadata, "failed to parse %s: %v", metadataPath, err)
	}
	return meta, nil
}

// categoryFromPath derives "web/framework" from "skills/web/framework/web-framework-react".
func categoryFromPath(skillDir string) string {
	category := path.Dir(strings.TrimPrefix(skillDir, skillsPrefix))
	if category == "." {
		return ""
	}
	return category
}
