// Package finder lists the files matching a set of resolved glob patterns.
package finder

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// Find returns the files in fsys matching any of the positive patterns and
// none of the negated ones. Patterns are slash-separated and relative to the
// root of fsys; a pattern starting with "!" is negated. The result is sorted
// and contains no duplicates or directories.
//
// Order matters only in that negations apply to everything, regardless of
// where they appear.
func Find(fsys afero.Fs, patterns []string) ([]string, error) {
	var includes, excludes []string
	for _, p := range patterns {
		negated := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(p, "!")
		clean, err := validate(p)
		if err != nil {
			return nil, err
		}
		if negated {
			excludes = append(excludes, clean)
		} else {
			includes = append(includes, clean)
		}
	}
	if len(includes) == 0 {
		return []string{}, nil
	}

	iofs := afero.NewIOFS(fsys)
	found := map[string]struct{}{}
	for _, pattern := range includes {
		err := doublestar.GlobWalk(iofs, pattern, func(p string, d fs.DirEntry) error {
			if d.IsDir() || excluded(p, excludes) {
				return nil
			}
			found[p] = struct{}{}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	}

	files := make([]string, 0, len(found))
	for f := range found {
		files = append(files, f)
	}
	sort.Strings(files)
	return files, nil
}

func excluded(p string, excludes []string) bool {
	for _, pattern := range excludes {
		if ok, err := doublestar.Match(pattern, p); err == nil && ok {
			return true
		}
	}
	return false
}

func validate(pattern string) (string, error) {
	clean := path.Clean(pattern)
	if path.IsAbs(clean) {
		return "", fmt.Errorf("absolute paths are not allowed: %s", pattern)
	}
	if slices.Contains(strings.Split(clean, "/"), "..") {
		return "", fmt.Errorf("parent directory references are not allowed: %s", pattern)
	}
	if !doublestar.ValidatePattern(clean) {
		return "", fmt.Errorf("invalid glob pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	return clean, nil
}
