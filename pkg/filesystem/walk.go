package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// DefaultIgnoreDirs are tool and cache directories skipped at any depth.
var DefaultIgnoreDirs = []string{
	"__pycache__", ".git", ".hg", ".svn",
	".tox", ".nox", ".mypy_cache", ".pytest_cache",
	"node_modules",
}

// DefaultRootIgnoreDirs are skipped only directly below the walk root, where
// virtualenvs and build output live. A nested app/build package is kept.
var DefaultRootIgnoreDirs = []string{".venv", "venv", "build", "dist"}

// venvMarker identifies a virtualenv directory regardless of its name.
const venvMarker = "pyvenv.cfg"

// alwaysIgnored directories are skipped even with a custom IgnoreDirs list.
var alwaysIgnored = map[string]bool{"__pycache__": true}

// WalkOptions configures directory traversal behavior
type WalkOptions struct {
	IgnoreDirs       []string // Directories to skip by name (default: DefaultIgnoreDirs)
	RootIgnoreDirs   []string // Top-level directories to skip (default: DefaultRootIgnoreDirs)
	IgnorePatterns   []string // File name globs to skip (e.g., "*_pb2.py")
	IncludeHidden    bool     // Include dot files/dirs (default: false)
	RespectGitignore bool     // Skip paths matched by <root>/.gitignore
}

// Visitor is called for every entry that survives the ignore rules.
// rel is the slash-separated path relative to the walk root.
type Visitor func(path, rel string, d fs.DirEntry) error

// Walk traverses a directory tree with configurable ignore rules.
// Return filepath.SkipDir from visitor to skip a directory. Directories
// holding a pyvenv.cfg are skipped. Unreadable entries below the root are
// skipped; an unreadable root is an error.
func Walk(rootPath string, opts WalkOptions, visitor Visitor) error {
	info, err := os.Stat(rootPath)
	if err != nil {
		return fmt.Errorf("reading root %s: %w", rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", rootPath)
	}

	ignoreDirs := opts.IgnoreDirs
	if len(ignoreDirs) == 0 {
		ignoreDirs = DefaultIgnoreDirs
	}
	skipDir := make(map[string]bool, len(ignoreDirs)+len(alwaysIgnored))
	for _, name := range ignoreDirs {
		skipDir[name] = true
	}
	for name := range alwaysIgnored {
		skipDir[name] = true
	}

	rootIgnoreDirs := opts.RootIgnoreDirs
	if len(rootIgnoreDirs) == 0 {
		rootIgnoreDirs = DefaultRootIgnoreDirs
	}
	skipRootDir := make(map[string]bool, len(rootIgnoreDirs))
	for _, name := range rootIgnoreDirs {
		skipRootDir[name] = true
	}

	var ignore *gitignore.GitIgnore
	if opts.RespectGitignore {
		ignore, err = loadGitignore(rootPath)
		if err != nil {
			return err
		}
	}

	return filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == rootPath {
				return err
			}
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path == rootPath {
			return visitor(path, ".", d)
		}

		rel, err := filepath.Rel(rootPath, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		name := d.Name()

		if !opts.IncludeHidden && strings.HasPrefix(name, ".") {
			return skip(d)
		}

		if d.IsDir() {
			if skipDir[name] || (rel == name && skipRootDir[name]) || isVirtualenv(path) {
				return filepath.SkipDir
			}
		}

		if !d.IsDir() {
			for _, pattern := range opts.IgnorePatterns {
				if matched, _ := filepath.Match(pattern, name); matched {
					return nil
				}
			}
		}

		if ignore != nil {
			if ignore.MatchesPath(rel) || (d.IsDir() && ignore.MatchesPath(rel+"/")) {
				return skip(d)
			}
		}

		return visitor(path, rel, d)
	})
}

// WalkWithDefaults walks a directory tree with default ignore rules.
func WalkWithDefaults(rootPath string, visitor Visitor) error {
	return Walk(rootPath, WalkOptions{}, visitor)
}

// CollectFiles returns the sorted, slash-separated keys of every regular file
// under rootPath whose extension is in exts (case-insensitive).
func CollectFiles(rootPath string, opts WalkOptions, exts []string) ([]string, error) {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}
	if len(allowed) == 0 {
		return nil, nil
	}

	var keys []string
	err := Walk(rootPath, opts, func(path, rel string, d fs.DirEntry) error {
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if allowed[strings.ToLower(filepath.Ext(rel))] {
			keys = append(keys, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(keys)
	return keys, nil
}

func skip(d fs.DirEntry) error {
	if d.IsDir() {
		return filepath.SkipDir
	}
	return nil
}

func isVirtualenv(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, venvMarker))
	return err == nil
}

func loadGitignore(rootPath string) (*gitignore.GitIgnore, error) {
	path := filepath.Join(rootPath, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading .gitignore: %w", err)
	}

	ignore, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsing .gitignore: %w", err)
	}
	return ignore, nil
}
