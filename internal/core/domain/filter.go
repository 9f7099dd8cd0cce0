package domain

import (
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/zerr"
)

// alwaysIgnored names tool-managed directories that churn constantly and
// would drown real activity in noise.
var alwaysIgnored = map[string]struct{}{
	".git":         {},
	".jj":          {},
	".hg":          {},
	"node_modules": {},
}

// Filter decides which entries below the watch root take part in
// tracking. It combines the hidden-entry rule, the depth bound and the
// ignore globs from the settings.
type Filter struct {
	includeHidden bool
	maxDepth      int
	globs         []glob.Glob
}

// NewFilter compiles the ignore patterns of settings into a Filter.
func NewFilter(settings Settings) (*Filter, error) {
	f := &Filter{
		includeHidden: settings.IncludeHidden,
		maxDepth:      settings.MaxDepth,
	}

	for _, pattern := range settings.Ignore {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, zerr.With(ErrInvalidIgnorePattern, "pattern", pattern)
		}
		f.globs = append(f.globs, g)
	}

	return f, nil
}

// Excluded reports whether the entry at rel is outside the tracked set.
// rel is slash-separated and relative to the watch root; "." denotes the
// root itself, which is never excluded. Every path component is checked,
// so an entry inside an ignored or hidden directory is excluded no matter
// how its path arrives.
func (f *Filter) Excluded(rel string) bool {
	if rel == "" || rel == "." {
		return false
	}

	parts := strings.Split(rel, "/")
	if f.maxDepth > 0 && len(parts) > f.maxDepth {
		return true
	}

	// An ignored or hidden directory excludes its whole subtree, so every
	// component and every prefix is checked, not just the full path.
	prefix := ""
	for i, part := range parts {
		if _, ok := alwaysIgnored[part]; ok {
			return true
		}
		if !f.includeHidden && strings.HasPrefix(part, ".") {
			return true
		}

		if i == 0 {
			prefix = part
		} else {
			prefix += "/" + part
		}
		for _, g := range f.globs {
			if g.Match(prefix) || g.Match(part) {
				return true
			}
		}
	}

	return false
}
