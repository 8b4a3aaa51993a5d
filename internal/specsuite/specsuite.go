// Package specsuite loads Mustache conformance fixtures in the
// upstream mustache/spec YAML layout, for use by this repository's own
// end-to-end tests against internal/refhost.
package specsuite

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/juju/errors"
	yaml "gopkg.in/yaml.v2"
)

// Case is one fixture: a template, its data, any partials it calls, and
// the expected render.
type Case struct {
	Name     string                 `yaml:"name"`
	Desc     string                 `yaml:"desc"`
	Template string                 `yaml:"template"`
	Partials map[string]string      `yaml:"partials"`
	Data     map[string]interface{} `yaml:"data"`
	Expected string                 `yaml:"expected"`
}

// File is one fixture file's top-level shape: a named group of cases
// under a single overview, matching the upstream spec layout.
type File struct {
	Overview string `yaml:"overview"`
	Tests    []Case `yaml:"tests"`
}

// Load decodes a single fixture file's bytes.
func Load(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Annotate(err, "decoding spec fixture")
	}
	return &f, nil
}

// LoadDir reads every *.yml fixture under dir, sorted by filename for
// deterministic test ordering.
func LoadDir(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Annotatef(err, "reading fixture directory %s", dir)
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	files := make([]*File, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Annotatef(err, "reading fixture %s", name)
		}
		f, err := Load(data)
		if err != nil {
			return nil, errors.Annotatef(err, "parsing fixture %s", name)
		}
		files = append(files, f)
	}
	return files, nil
}
