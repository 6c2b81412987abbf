// Package resources loads the collaborator-supplied inputs under evaluation:
// synthesized resource property bags and the project file set. The engine
// only reads these; it never generates or mutates infrastructure.
package resources

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/opsgate/opsgate/internal/domain"
)

// resourceFile is the on-disk shape of a synthesized resource bundle.
type resourceFile struct {
	Resources map[string]map[string]any `yaml:"resources"`
}

// Loader implements domain.ResourceLoader for YAML/JSON resource bundles.
type Loader struct{}

// New creates a Loader.
func New() *Loader { return &Loader{} }

// Load reads resource property bags keyed by resource name. YAML is a
// superset of the JSON the IaC layer emits, so one decoder covers both.
func (l *Loader) Load(path string) (map[string]domain.ResourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading resources %s: %w", path, err)
	}

	var doc resourceFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing resources %s: %w", path, err)
	}

	out := make(map[string]domain.ResourceConfig, len(doc.Resources))
	for name, bag := range doc.Resources {
		out[name] = domain.ResourceConfig(bag)
	}
	return out, nil
}

// DirFileSet implements domain.FileSet over a directory root. Names are
// slash-separated paths relative to the root.
type DirFileSet struct {
	root string
}

// NewDirFileSet creates a DirFileSet rooted at dir.
func NewDirFileSet(dir string) *DirFileSet {
	return &DirFileSet{root: dir}
}

func (d *DirFileSet) Exists(name string) bool {
	info, err := os.Stat(filepath.Join(d.root, filepath.FromSlash(name)))
	return err == nil && !info.IsDir()
}

func (d *DirFileSet) Read(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(d.root, filepath.FromSlash(name)))
}
