package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/opsgate/opsgate/internal/domain"
)

const fileName = ".opsgate.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .opsgate.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .opsgate.yaml from dir. Returns DefaultConfig if the file does
// not exist; an invalid file is an error, never a silent fallback.
func (l *YAMLLoader) Load(dir string) (domain.GateConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.GateConfig{}, err
	}

	var cfg domain.GateConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.GateConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	// Validate the raw input before filling defaults, so typos surface.
	if err := cfg.Validate(); err != nil {
		return domain.GateConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}

	return cfg.ApplyDefaults(), nil
}
