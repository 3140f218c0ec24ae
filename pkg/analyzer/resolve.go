package analyzer

import (
	"path"
	"sort"
	"strings"
)

// ResolveOptions controls how module names map onto discovered files
type ResolveOptions struct {
	Extensions []string // default: .py
	Packages   bool     // also match pkg/__init__<ext>
}

// DefaultResolveOptions returns the options used when none are configured
func DefaultResolveOptions() ResolveOptions {
	return ResolveOptions{Extensions: []string{".py"}, Packages: true}
}

// Resolver maps dotted module names to discovered file keys.
// It caches lookups and is not safe for concurrent use.
type Resolver struct {
	opts   ResolveOptions
	byBase map[string][]string // file base name -> keys, sorted
	cache  map[string][]string
}

// NewResolver indexes keys for lookup
func NewResolver(keys []string, opts ResolveOptions) *Resolver {
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".py"}
	}

	r := &Resolver{
		opts:   opts,
		byBase: make(map[string][]string),
		cache:  make(map[string][]string),
	}
	for _, key := range keys {
		base := path.Base(key)
		r.byBase[base] = append(r.byBase[base], key)
	}
	for _, list := range r.byBase {
		sort.Strings(list)
	}
	return r
}

// Module returns every key that module resolves to, sorted. A key matches
// when it equals the module's path or ends with it at a directory boundary:
// `util.io` matches `util/io.py` and `src/util/io.py` but not `myutil/io.py`.
// This is stricter than a plain string suffix test, which would also accept
// `myutil/io.py`. With Packages set, `util/io/__init__.py` matches as well.
func (r *Resolver) Module(module string) []string {
	if cached, ok := r.cache[module]; ok {
		return cached
	}

	var matches []string
	if rel := modulePath(module); rel != "" {
		seen := make(map[string]bool)
		for _, cand := range r.candidates(rel) {
			for _, key := range r.byBase[path.Base(cand)] {
				if !seen[key] && (key == cand || strings.HasSuffix(key, "/"+cand)) {
					seen[key] = true
					matches = append(matches, key)
				}
			}
		}
		sort.Strings(matches)
	}

	r.cache[module] = matches
	return matches
}

func (r *Resolver) candidates(rel string) []string {
	cands := make([]string, 0, 2*len(r.opts.Extensions))
	for _, ext := range r.opts.Extensions {
		cands = append(cands, rel+ext)
	}
	if r.opts.Packages {
		for _, ext := range r.opts.Extensions {
			cands = append(cands, rel+"/__init__"+ext)
		}
	}
	return cands
}

// modulePath turns `a.b.c` into `a/b/c`; malformed names yield "".
func modulePath(module string) string {
	parts := strings.Split(strings.TrimSpace(module), ".")
	for _, part := range parts {
		if part == "" {
			return ""
		}
	}
	return strings.Join(parts, "/")
}

// Resolve maps every file's imports onto discovered files. Unresolvable
// imports are dropped; one import may resolve to several files.
func Resolve(proj *Project, opts ResolveOptions) *Resolution {
	keys := proj.Keys()
	resolver := NewResolver(keys, opts)

	res := &Resolution{
		Discovered: keys,
		Files:      make([]*ResolvedFile, 0, len(proj.Files)),
	}

	for _, file := range proj.Files {
		rf := &ResolvedFile{Key: file.Key}

		for _, module := range file.Modules {
			rf.Modules = append(rf.Modules, resolver.Module(module)...)
		}
		for _, fn := range file.Functions {
			for _, target := range resolver.Module(fn.Module) {
				rf.Functions = append(rf.Functions, ResolvedFunction{File: target, Symbol: fn.Symbol})
			}
		}

		res.Files = append(res.Files, rf)
	}

	return res
}
