package projectconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
	"gopkg.in/yaml.v3"
)

// legacyOnlyFields exist only in the legacy StackConfig shape and are dropped
// when it is normalized.
var legacyOnlyFields = []string{"id", "version", "created", "updated"}

// Loaded is a project configuration read from disk.
type Loaded struct {
	Config *ProjectConfig
	Path   string
	// Legacy is true when the file used the legacy StackConfig shape.
	Legacy bool
}

// Path returns <projectDir>/.claude-src/config.yaml.
func Path(projectDir string) string {
	return filepath.Join(projectDir, ConfigDir, ConfigFileName)
}

// candidatePaths lists the locations probed for an existing configuration, in order.
func candidatePaths(projectDir string) []string {
	return []string{
		Path(projectDir),
		filepath.Join(projectDir, legacyConfigDir, ConfigFileName),
	}
}

// Load reads the project configuration, returning nil when none exists.
func Load(projectDir string) (*Loaded, error) {
	for _, path := range candidatePaths(projectDir) {
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, "failed to stat %s", path)
		}

		data, err := lockedfile.Read(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}

		config, legacy, err := Parse(data)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load %s", path)
		}
		return &Loaded{Config: config, Path: path, Legacy: legacy}, nil
	}
	return nil, nil
}

// Parse decodes a configuration document, normalizing the legacy shape. The
// second return value reports whether the legacy shape was detected.
func Parse(data []byte) (*ProjectConfig, bool, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, false, errors.Wrapf(ErrMalformedConfig, "%v", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	legacy := isLegacy(raw)
	if legacy {
		normalizeLegacy(raw)
	}

	config := &ProjectConfig{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     config,
		DecodeHook: skillEntryHook,
	})
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to create config decoder")
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, false, errors.Wrapf(ErrMalformedConfig, "%v", err)
	}

	return config, legacy, nil
}

// Save writes the configuration to <projectDir>/.claude-src/config.yaml and
// returns the path written.
func Save(projectDir string, config *ProjectConfig) (string, error) {
	path := Path(projectDir)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create %s", filepath.Dir(path))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(config); err != nil {
		return "", errors.Wrap(err, "failed to encode project config")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "failed to encode project config")
	}

	if err := lockedfile.Write(path, &buf, 0o644); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

// isLegacy detects the StackConfig shape by its legacy-only fields.
func isLegacy(raw map[string]any) bool {
	for _, field := range legacyOnlyFields {
		if _, ok := raw[field]; ok {
			return true
		}
	}
	return false
}

func normalizeLegacy(raw map[string]any) {
	if name, _ := raw["name"].(string); name == "" {
		if id, ok := raw["id"].(string); ok {
			raw["name"] = id
		}
	}
	for _, field := range legacyOnlyFields {
		delete(raw, field)
	}
}

var skillEntryType = reflect.TypeOf(SkillEntry{})

// skillEntryHook lets a skill be written as a bare ID string.
func skillEntryHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to == skillEntryType && from.Kind() == reflect.String {
		return map[string]any{"id": data}, nil
	}
	return data, nil
}
