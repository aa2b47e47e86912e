// Package corpuswalk enumerates the files in a documentation corpus that
// the indexer should read, applying the extension allow-list and the
// hard-coded path exclusions.
package corpuswalk

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// excludeSubstrings are unconditionally skipped regardless of configuration.
var excludeSubstrings = []string{
	"node_modules", ".git/", "target/", "vendor/", "venv/", "__pycache__",
}

// Options configures a corpus walk.
type Options struct {
	// Extensions is the allow-list of file extensions (without the leading
	// dot, lower-case), e.g. {"md", "txt", "rst"}.
	Extensions []string
	// Roots, if non-empty, restricts the walk to files under at least one
	// listed root (relative to the corpus root).
	Roots []string
	// ExcludePatterns are additional caller-supplied substrings to exclude,
	// checked the same way as the built-in exclusions.
	ExcludePatterns []string
}

// Walk invokes fn for every file under root that passes the extension
// filter, the hidden-file filter, and the exclusion rules. fn receives the
// path relative to root using forward slashes.
func Walk(root string, opts Options, fn func(relPath, absPath string) error) error {
	ext := make(map[string]bool, len(opts.Extensions))
	for _, e := range opts.Extensions {
		ext[strings.ToLower(strings.TrimPrefix(e, "."))] = true
	}
	gitignore := loadGitignorePatterns(root)

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if isHiddenDir(d.Name()) && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)

		if isHidden(d.Name()) {
			return nil
		}
		if !ext[strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))] {
			return nil
		}
		if isExcluded(rel, opts.ExcludePatterns) {
			return nil
		}
		if matchesGitignore(rel, gitignore) {
			return nil
		}
		if len(opts.Roots) > 0 && !underAnyRoot(rel, opts.Roots) {
			return nil
		}

		return fn(rel, path)
	})
}

// loadGitignorePatterns reads a root-level .gitignore, if present, as a
// flat list of glob patterns. This is a root-only, non-negated subset of
// gitignore semantics (no nested .gitignore files, no "!" re-inclusion, no
// directory-only "/" trailing markers). A root-level glob filter covers
// the common case of build artifacts and scratch files listed at the top
// of a docs repository.
func loadGitignorePatterns(root string) []string {
	f, err := os.Open(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, strings.TrimSuffix(strings.TrimPrefix(line, "/"), "/"))
	}
	return patterns
}

func matchesGitignore(relPath string, patterns []string) bool {
	base := filepath.Base(relPath)
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
		if ok, _ := filepath.Match(p, relPath); ok {
			return true
		}
		if strings.Contains(relPath, p+"/") {
			return true
		}
	}
	return false
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}

func isHiddenDir(name string) bool {
	return name != "." && name != ".." && isHidden(name)
}

func isExcluded(relPath string, extra []string) bool {
	for _, sub := range excludeSubstrings {
		if strings.Contains(relPath, sub) {
			return true
		}
	}
	for _, sub := range extra {
		if strings.Contains(relPath, sub) {
			return true
		}
	}
	return false
}

func underAnyRoot(relPath string, roots []string) bool {
	for _, r := range roots {
		r = filepath.ToSlash(filepath.Clean(r))
		if relPath == r || strings.HasPrefix(relPath, r+"/") {
			return true
		}
	}
	return false
}
