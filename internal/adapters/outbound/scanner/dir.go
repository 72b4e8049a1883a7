package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/openkraft/codegate/internal/domain"
)

// DirSource implements domain.SourceProvider by walking a directory tree.
type DirSource struct {
	root string
	opts Options
}

func NewDirSource(root string, opts Options) *DirSource {
	return &DirSource{root: root, opts: opts}
}

func (s *DirSource) Describe() string { return s.root }

// Walk calls fn for every text file under the root in lexical order.
// Unreadable files are logged and skipped.
func (s *DirSource) Walk(ctx context.Context, fn func(domain.SourceFile) error) error {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", s.root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return fmt.Errorf("opening %s: %w", s.root, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s.root)
	}

	return filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			s.opts.logger().Warn("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if s.opts.skipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			s.opts.logger().Warn("skipping file", "file", rel, "error", err)
			return nil
		}
		if s.opts.skipFile(rel, fi.Size()) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			s.opts.logger().Warn("skipping file", "file", rel, "error", err)
			return nil
		}
		if !isText(data) {
			return nil
		}
		return fn(domain.SourceFile{Path: rel, Content: string(data)})
	})
}
