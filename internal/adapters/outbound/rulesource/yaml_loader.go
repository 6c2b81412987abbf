// Package rulesource loads declarative rule definitions from YAML files.
// Schema validation per check_type happens in the registry; this adapter is
// only responsible for getting well-formed documents off disk.
package rulesource

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/opsgate/opsgate/internal/domain"
)

// ruleFile is the on-disk shape of one rule source.
type ruleFile struct {
	Rules []domain.Rule `yaml:"rules"`
}

// YAMLLoader implements domain.RuleSource for YAML rule files.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads rules from path. A directory loads every .yaml/.yml file in it,
// sorted by name so load order is stable. Any malformed document fails the
// whole load with a *domain.RuleParseError.
func (l *YAMLLoader) Load(path string) ([]domain.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule source %s: %w", path, err)
	}

	if !info.IsDir() {
		return l.loadFile(path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule directory %s: %w", path, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var rules []domain.Rule
	for _, name := range names {
		loaded, err := l.loadFile(filepath.Join(path, name))
		if err != nil {
			return nil, err
		}
		rules = append(rules, loaded...)
	}
	return rules, nil
}

func (l *YAMLLoader) loadFile(path string) ([]domain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, err)
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &domain.RuleParseError{
			Field:  filepath.Base(path),
			Reason: err.Error(),
		}
	}
	return doc.Rules, nil
}
