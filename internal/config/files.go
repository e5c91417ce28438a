package config

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// ResolvePolicyFiles walks rootPath and returns the .rego files matched by
// Policy.Files and not matched by Policy.Exclude. Patterns are slash
// separated and relative to rootPath; ** spans any number of directories,
// including none.
func (c *Config) ResolvePolicyFiles(rootPath string) ([]string, error) {
	if len(c.Policy.Files) == 0 {
		return nil, nil
	}
	include, err := compilePatterns(c.Policy.Files)
	if err != nil {
		return nil, err
	}
	exclude, err := compilePatterns(c.Policy.Exclude)
	if err != nil {
		return nil, err
	}

	var files []string
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// unreadable directories are skipped, not fatal
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".rego") {
			return nil
		}
		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if matchAny(include, rel) && !matchAny(exclude, rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func compilePatterns(patterns []string) ([]glob.Glob, error) {
	var globs []glob.Glob
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(p), "./")
		variants := []string{p}
		// "a/**/b" must also match "a/b"
		if strings.Contains(p, "**/") {
			variants = append(variants, strings.ReplaceAll(p, "**/", ""))
		}
		for _, v := range variants {
			g, err := glob.Compile(v, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid policy pattern %q: %w", p, err)
			}
			globs = append(globs, g)
		}
	}
	return globs, nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
