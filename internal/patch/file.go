package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// File is a patch declaration document, named *.patches.json,
// *.patches.yaml, *.patches.yml or *.patches.toml.
type File struct {
	// Source applies to every patch that does not name its own.
	Source  string  `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Patches []Patch `json:"patches" yaml:"patches" toml:"patches"`
}

var fileSuffixes = []string{".patches.json", ".patches.yaml", ".patches.yml", ".patches.toml"}

// IsDeclarationFile reports whether name looks like a declaration file.
func IsDeclarationFile(name string) bool {
	lower := strings.ToLower(path.Base(name))
	for _, s := range fileSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// ParseFile decodes a declaration file, choosing the format by extension.
func ParseFile(name string, data []byte) (*File, error) {
	var f File
	var err error
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("patch: %s: unknown declaration format", name)
	}
	if err != nil {
		return nil, fmt.Errorf("patch: %s: %w", name, err)
	}
	return &f, nil
}

// RegisterAll registers every patch of f. Patches that fail are reported
// together; the others stay registered.
func (f *File) RegisterAll(r *Registry) (int, error) {
	var errs []error
	n := 0
	for i := range f.Patches {
		p := f.Patches[i]
		if p.Source == "" {
			p.Source = f.Source
		}
		if err := r.Register(&p); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}
