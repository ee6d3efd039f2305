package plugins

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agentsinc/cli/pkg/logger"
	"github.com/agentsinc/cli/pkg/skills"
	"github.com/pkg/errors"
)

// DefaultPluginsDir is where built plugins are written by default.
const DefaultPluginsDir = "dist/plugins"

// Plugin is a built plugin found on disk.
type Plugin struct {
	Dir      string
	Manifest *PluginManifest
	// Skills lists the skill directories under the plugin's skills/ folder.
	Skills []string
}

// Discovery finds built plugins under a base directory.
type Discovery struct {
	baseDir string
}

// DiscoveryOption configures a Discovery instance
type DiscoveryOption func(*Discovery) error

// WithBaseDir sets the directory holding plugin directories
func WithBaseDir(dir string) DiscoveryOption {
	return func(d *Discovery) error {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return errors.Wrapf(err, "failed to resolve plugins dir %s", dir)
		}
		d.baseDir = abs
		return nil
	}
}

// NewDiscovery creates a new plugin discovery instance
func NewDiscovery(opts ...DiscoveryOption) (*Discovery, error) {
	d := &Discovery{baseDir: DefaultPluginsDir}

	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// BaseDir returns the directory searched for plugins
func (d *Discovery) BaseDir() string {
	return d.baseDir
}

// DiscoverAll returns every plugin directory with a readable manifest, sorted
// by directory name. Directories with an invalid manifest are logged and skipped.
func (d *Discovery) DiscoverAll(ctx context.Context) ([]*Plugin, error) {
	entries, err := os.ReadDir(d.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read plugins dir %s", d.baseDir)
	}

	var plugins []*Plugin
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		pluginDir := filepath.Join(d.baseDir, entry.Name())

		manifest, err := ReadManifest(pluginDir)
		if err != nil {
			if !errors.Is(err, skills.ErrNotFound) {
				logger.G(ctx).WithError(err).WithField("plugin_dir", pluginDir).Warn("skipping plugin with invalid manifest")
			}
			continue
		}

		pluginSkills, err := skillDirs(SkillsDir(pluginDir))
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, &Plugin{
			Dir:      pluginDir,
			Manifest: manifest,
			Skills:   pluginSkills,
		})
	}

	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].Dir < plugins[j].Dir
	})
	return plugins, nil
}

// skillDirs lists skill directories below root relative to it, identified by
// their primary document.
func skillDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		if entry.IsDir() || entry.Name() != skills.PrimaryDocument {
			return nil
		}
		rel, err := filepath.Rel(root, filepath.Dir(path))
		if err != nil {
			return err
		}
		dirs = append(dirs, filepath.ToSlash(rel))
		return filepath.SkipDir
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list skills in %s", root)
	}
	sort.Strings(dirs)
	return dirs, nil
}
