// Package fs provides the filesystem adapters: the full-tree scanner and
// the content fingerprinter.
package fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"github.com/foglomon/FSAR/internal/core/domain"
	"github.com/foglomon/FSAR/internal/core/ports"
)

var _ ports.Scanner = (*Scanner)(nil)

// Scanner walks the watch root and produces the entry listing that seeds
// the path index and the polling diffs.
type Scanner struct {
	hasher *Hasher
}

// NewScanner creates a Scanner. hasher may be nil to skip content
// fingerprints.
func NewScanner(hasher *Hasher) *Scanner {
	return &Scanner{hasher: hasher}
}

// Scan lists every tracked entry below root, applying filter. The root
// itself is not listed. Entries that vanish or turn unreadable mid-walk
// are skipped; only a root that cannot be walked at all fails the scan.
func (s *Scanner) Scan(ctx context.Context, root string, filter *domain.Filter) ([]domain.ScanEntry, error) {
	info, err := os.Stat(root)
	if err != nil {
		e := zerr.With(domain.ErrScanFailed, "root", root)
		return nil, zerr.With(e, "cause", err.Error())
	}
	if !info.IsDir() {
		return nil, zerr.With(domain.ErrRootNotDirectory, "root", root)
	}

	var entries []domain.ScanEntry

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if err != nil {
			if path == root {
				return err
			}
			// A subtree listing failed mid-walk. Drop it and move on;
			// the next rescan or event picks it up.
			return nil
		}

		if path == root {
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if filter.Excluded(filepath.ToSlash(rel)) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		meta, ok := s.entryMeta(path, d)
		if !ok {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		entries = append(entries, domain.ScanEntry{Path: path, Meta: meta})
		return nil
	})

	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e := zerr.With(domain.ErrScanFailed, "root", root)
		return nil, zerr.With(e, "cause", walkErr.Error())
	}

	return entries, nil
}

// StatEntry stats a single path and returns its metadata the way Scan
// would have listed it. The boolean is false when the path is gone or
// unreadable.
func (s *Scanner) StatEntry(path string) (domain.FileMeta, bool) {
	info, err := os.Lstat(path)
	if err != nil {
		return domain.FileMeta{}, false
	}
	return s.metaFromInfo(path, info), true
}

// entryMeta builds the metadata for one walked entry. It reports false
// when the entry disappeared between listing and stat.
func (s *Scanner) entryMeta(path string, d fs.DirEntry) (domain.FileMeta, bool) {
	info, err := d.Info()
	if err != nil {
		return domain.FileMeta{}, false
	}
	return s.metaFromInfo(path, info), true
}

func (s *Scanner) metaFromInfo(path string, info fs.FileInfo) domain.FileMeta {
	meta := domain.FileMeta{
		Kind:    domain.KindFile,
		ModTime: info.ModTime(),
	}

	if info.IsDir() {
		meta.Kind = domain.KindDir
		return meta
	}

	meta.Size = info.Size()
	if s.hasher != nil && info.Mode().IsRegular() {
		// Fingerprint failures degrade to size+mtime comparison.
		meta.Sum, _ = s.hasher.Fingerprint(path, meta.Size)
	}
	return meta
}
