package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fischerjooo/c2puml-sub000/pkg/model"
)

// WriteProject renders every file model of the project into dir, one .puml
// per source file. Returns the written paths in deterministic order.
func WriteProject(pm *model.ProjectModel, dir string, opts *Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	taken := make(map[string]bool)
	var written []string

	for _, name := range pm.SortedFilenames() {
		fm := pm.Files[name]

		out := trimExt(filepath.Base(name)) + ".puml"
		if taken[out] {
			// Two sources with the same base name; fall back to the full
			// path flattened into the file name.
			out = sanitizeID(trimExt(name)) + ".puml"
		}
		taken[out] = true

		path := filepath.Join(dir, out)
		if err := os.WriteFile(path, []byte(GenerateFile(fm, opts)), 0644); err != nil {
			return written, fmt.Errorf("writing %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}
