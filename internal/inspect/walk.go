package inspect

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Collect expands roots into a sorted list of files. Directories are walked
// recursively and only files whose extension matches exts (case-insensitive)
// are kept; files named directly are always kept.
func Collect(roots []string, exts []string, followSymlinks bool) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, e := range exts {
		want[strings.ToLower(e)] = true
	}

	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", root)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		if err := walk(root, want, followSymlinks, add, map[string]bool{}); err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}

// walk visits dir, following symlinked directories when asked. Paths are
// reported under dir even when dir itself is a link. visited holds resolved
// directory paths to stop symlink cycles.
func walk(dir string, want map[string]bool, follow bool, add func(string), visited map[string]bool) error {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", dir)
	}
	if visited[resolved] {
		return nil
	}
	visited[resolved] = true

	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walking %s", path)
		}
		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		shown := filepath.Join(dir, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			info, err := os.Stat(path)
			if err != nil {
				return nil // dangling link
			}
			if info.IsDir() {
				if follow {
					return walk(shown, want, follow, add, visited)
				}
				return nil
			}
		} else if d.IsDir() {
			return nil
		}
		if want[strings.ToLower(filepath.Ext(path))] {
			add(shown)
		}
		return nil
	})
}
