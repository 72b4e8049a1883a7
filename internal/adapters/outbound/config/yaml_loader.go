package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/openkraft/codegate/internal/domain"
)

// FileName is the project config file looked up in the scanned root.
const FileName = ".codegate.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .codegate.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .codegate.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Validate before applying defaults so typos in the raw input surface.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}
	for _, p := range cfg.ExcludePaths {
		if !doublestar.ValidatePattern(p) {
			return domain.ProjectConfig{}, fmt.Errorf("invalid %s: bad exclude_paths pattern %q", FileName, p)
		}
	}

	return cfg.WithDefaults(), nil
}
