package scanner

import (
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/openkraft/codegate/internal/domain"
)

// ZipSource implements domain.SourceProvider over the entries of a zip
// archive. Entries are read in memory; nothing is extracted to disk.
type ZipSource struct {
	archive string
	opts    Options
}

func NewZipSource(archive string, opts Options) *ZipSource {
	return &ZipSource{archive: archive, opts: opts}
}

func (s *ZipSource) Describe() string { return s.archive }

// Walk calls fn for every text entry in name order.
func (s *ZipSource) Walk(ctx context.Context, fn func(domain.SourceFile) error) error {
	r, err := zip.OpenReader(s.archive)
	if err != nil {
		return fmt.Errorf("opening archive %s: %w", s.archive, err)
	}
	defer r.Close()

	files := slices.Clone(r.File)
	slices.SortFunc(files, func(a, b *zip.File) int { return strings.Compare(a.Name, b.Name) })

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			continue
		}
		rel, ok := cleanEntryName(f.Name)
		if !ok {
			s.opts.logger().Warn("skipping unsafe archive entry", "entry", f.Name)
			continue
		}
		if s.opts.inSkippedDir(rel) || s.opts.skipFile(rel, int64(f.UncompressedSize64)) {
			continue
		}

		data, err := readEntry(f, s.opts.MaxFileBytes)
		if err != nil {
			s.opts.logger().Warn("skipping archive entry", "entry", rel, "error", err)
			continue
		}
		if !isText(data) {
			continue
		}
		if err := fn(domain.SourceFile{Path: rel, Content: string(data)}); err != nil {
			return err
		}
	}
	return nil
}

// cleanEntryName normalizes an entry name and rejects absolute paths and
// names that escape the archive root.
func cleanEntryName(name string) (string, bool) {
	name = strings.ReplaceAll(name, "\\", "/")
	if strings.HasPrefix(name, "/") {
		return "", false
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	return clean, true
}

// readEntry reads at most limit+1 bytes so a lying size header cannot
// force an unbounded read.
func readEntry(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var reader io.Reader = rc
	if limit > 0 {
		reader = io.LimitReader(rc, limit+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("entry exceeds %d bytes", limit)
	}
	return data, nil
}
