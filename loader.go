package stache

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/juju/errors"
)

// templateExt is the only extension DiscoverTemplates recognizes.
const templateExt = ".mustache"

// SourceFile is one discovered template: its logical name (the path
// relative to the root, minus templateExt, with "/" retained as a
// separator) and its raw bytes.
type SourceFile struct {
	Name   string
	Source string
}

// DiscoverTemplates recursively enumerates dir for *.mustache files and
// returns them sorted lexicographically by logical name, so compilation
// order is deterministic regardless of the filesystem's own iteration
// order.
func DiscoverTemplates(dir string) ([]SourceFile, error) {
	var files []SourceFile

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Annotatef(err, "walking %s", path)
		}
		if d.IsDir() || filepath.Ext(path) != templateExt {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.Annotatef(err, "computing relative path for %s", path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Annotatef(err, "reading %s", path)
		}
		name := strings.TrimSuffix(filepath.ToSlash(rel), templateExt)
		files = append(files, SourceFile{Name: name, Source: string(data)})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
