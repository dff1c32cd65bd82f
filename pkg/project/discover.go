// Package project orchestrates parsing a whole source tree into a
// ProjectModel: file discovery, concurrent parsing and cache integration.
package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/fischerjooo/c2puml-sub000/pkg/config"
)

// Discover returns the source files selected by the configuration, in
// deterministic order. Files are matched by extension first, then by the
// include/exclude globs against the file's base name.
func Discover(cfg *config.Config) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	for _, folder := range cfg.Project.SourceFolders {
		abs, err := filepath.Abs(folder)
		if err != nil {
			return nil, fmt.Errorf("resolving source folder %s: %w", folder, err)
		}

		if cfg.Project.Recursive {
			err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if selected(cfg, path) && !seen[path] {
					seen[path] = true
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking source folder %s: %w", folder, err)
			}
			continue
		}

		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, fmt.Errorf("reading source folder %s: %w", folder, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(abs, entry.Name())
			if selected(cfg, path) && !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
		}
	}

	sort.Strings(files)
	return files, nil
}

// selected applies the extension and glob filters to one path.
func selected(cfg *config.Config, path string) bool {
	ext := filepath.Ext(path)
	matched := false
	for _, want := range cfg.Parser.Extensions {
		if ext == want {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}

	base := filepath.Base(path)
	for _, glob := range cfg.Project.ExcludeGlobs {
		if ok, _ := filepath.Match(glob, base); ok {
			return false
		}
	}
	if len(cfg.Project.IncludeGlobs) == 0 {
		return true
	}
	for _, glob := range cfg.Project.IncludeGlobs {
		if ok, _ := filepath.Match(glob, base); ok {
			return true
		}
	}
	return false
}
