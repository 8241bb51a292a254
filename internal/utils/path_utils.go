package utils

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/funvibe/speclink/internal/config"
)

// ExtractForestName derives a display name from a forest file path.
// It takes the base filename and removes any recognized forest extension.
func ExtractForestName(path string) string {
	return config.TrimForestExt(filepath.Base(path))
}

// ExpandForestPaths turns each argument into forest files: files are kept as
// given, directories contribute their forest files (non-recursive, sorted).
func ExpandForestPaths(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, err
		}
		var files []string
		for _, e := range entries {
			if !e.IsDir() && config.HasForestExt(e.Name()) {
				files = append(files, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(files)
		out = append(out, files...)
	}
	return out, nil
}
