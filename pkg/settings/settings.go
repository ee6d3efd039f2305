// Package settings loads the CLI settings from flags, environment variables
// and the optional config file through viper.
package settings

import (
	"path/filepath"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix prefixes every environment variable read by the CLI.
	EnvPrefix = "AGENTSINC"
	// DefaultSkillsDirName is the project-relative directory holding local skills.
	DefaultSkillsDirName = ".claude/skills"
	// DefaultPluginsDir is where build-plugin writes plugins.
	DefaultPluginsDir = "dist/plugins"
)

// Settings is the resolved CLI configuration.
type Settings struct {
	// Source is the root of the skills registry checkout.
	Source        string `mapstructure:"source"`
	ProjectDir    string `mapstructure:"project_dir"`
	SkillsDirName string `mapstructure:"skills_dir_name"`
	PluginsDir    string `mapstructure:"plugins_dir"`
	// DefaultsFile maps skill categories to agents. Empty means
	// <source>/src/config/defaults.yaml.
	DefaultsFile string `mapstructure:"defaults_file"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`

	Profile  string                    `mapstructure:"profile"`
	Profiles map[string]map[string]any `mapstructure:"profiles"`
}

// SetDefaults registers defaults for every settings key. Keys need a default
// so that environment variables are seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("source", "")
	v.SetDefault("project_dir", ".")
	v.SetDefault("skills_dir_name", DefaultSkillsDirName)
	v.SetDefault("plugins_dir", DefaultPluginsDir)
	v.SetDefault("defaults_file", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("profile", "")
}

// Init configures v to read AGENTSINC_* variables and config.yaml from
// $HOME/.agentsinc or the working directory. A missing config file is not an
// error.
func Init(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	SetDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.agentsinc")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "failed to read config file")
	}
	return nil
}

// Load unmarshals the settings from v and applies the active profile on top.
func Load(v *viper.Viper) (*Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal settings")
	}

	if s.Profile != "" && s.Profile != "default" {
		profile, ok := s.Profiles[s.Profile]
		if !ok {
			return nil, errors.Errorf("profile %q is not defined", s.Profile)
		}
		if err := applyProfile(&s, profile); err != nil {
			return nil, err
		}
	}

	if s.ProjectDir == "" {
		s.ProjectDir = "."
	}
	if s.SkillsDirName == "" {
		s.SkillsDirName = DefaultSkillsDirName
	}
	return &s, nil
}

func applyProfile(s *Settings, profile map[string]any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		WeaklyTypedInput: true,
		ZeroFields:       false,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create profile decoder")
	}
	if err := decoder.Decode(profile); err != nil {
		return errors.Wrapf(err, "failed to apply profile %q", s.Profile)
	}
	return nil
}

// LocalSkillsDir returns the directory local skills are read from and ejected to.
func (s *Settings) LocalSkillsDir() string {
	if filepath.IsAbs(s.SkillsDirName) {
		return s.SkillsDirName
	}
	return filepath.Join(s.ProjectDir, s.SkillsDirName)
}

// DefaultsPath returns the category to agents defaults file.
func (s *Settings) DefaultsPath() string {
	if s.DefaultsFile != "" {
		return s.DefaultsFile
	}
	return filepath.Join(s.Source, "src", "config", "defaults.yaml")
}

// RequireSource reports an error when no registry source is configured.
func (s *Settings) RequireSource() error {
	if s.Source == "" {
		return errors.New("no skills source configured: pass --source or set AGENTSINC_SOURCE")
	}
	return nil
}
