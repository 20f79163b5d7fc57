// Package discovery finds HDL source files under a project root using
// include and ignore glob patterns.
package discovery

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob matches files in the project root for "**/" patterns.
	rootGlob glob.Glob
}

// FileDiscovery handles file discovery with glob patterns and ignore rules.
type FileDiscovery struct {
	rootDir        string
	includes       []compiledPattern
	ignorePatterns []compiledPattern
}

// New creates a file discovery rooted at rootDir.
func New(rootDir string, includes, ignores []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{rootDir: rootDir}

	var err error
	if fd.includes, err = compileAll(includes); err != nil {
		return nil, err
	}
	if fd.ignorePatterns, err = compileAll(ignores); err != nil {
		return nil, err
	}
	return fd, nil
}

func compileAll(patterns []string) ([]compiledPattern, error) {
	out := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		cp := compiledPattern{pattern: pattern, glob: g}
		if simplified, ok := strings.CutPrefix(pattern, "**/"); ok {
			cp.rootGlob, err = glob.Compile(simplified, '/')
			if err != nil {
				return nil, err
			}
		}
		out = append(out, cp)
	}
	return out, nil
}

// Root returns the directory discovery walks.
func (fd *FileDiscovery) Root() string {
	return fd.rootDir
}

// Discover walks the tree and returns matching files as absolute paths in
// lexical order.
func (fd *FileDiscovery) Discover(ctx context.Context) ([]string, error) {
	root, err := filepath.Abs(fd.rootDir)
	if err != nil {
		return nil, err
	}

	files := []string{}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && fd.ShouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.Matches(relPath) {
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

// Matches reports whether a slash-separated path relative to the root is
// included and not ignored.
func (fd *FileDiscovery) Matches(relPath string) bool {
	return !fd.ShouldIgnore(relPath) && matchesAnyPattern(relPath, fd.includes)
}

// ShouldIgnore checks if a path matches any ignore pattern.
func (fd *FileDiscovery) ShouldIgnore(relPath string) bool {
	// Always ignore the tool's own state directory
	if strings.HasPrefix(relPath, ".hdlast/") || relPath == ".hdlast" {
		return true
	}

	if matchesAnyPattern(relPath, fd.ignorePatterns) {
		return true
	}

	// A directory "work" should match the pattern "work/**"
	return matchesAnyPattern(relPath+"/**", fd.ignorePatterns)
}

// matchesAnyPattern checks if a path matches any of the given patterns.
// A "**/" pattern also matches files in the root ("**/*.vhd" matches
// "top.vhd").
func matchesAnyPattern(path string, patterns []compiledPattern) bool {
	rootLevel := !strings.Contains(path, "/")
	for _, cp := range patterns {
		if cp.glob.Match(path) {
			return true
		}
		if rootLevel && cp.rootGlob != nil && cp.rootGlob.Match(path) {
			return true
		}
	}
	return false
}
