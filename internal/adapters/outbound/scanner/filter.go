package scanner

import (
	"bytes"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/openkraft/codegate/internal/domain"
)

var skipDirs = map[string]bool{
	"node_modules": true,
	"venv":         true,
	".venv":        true,
	".git":         true,
	"dist":         true,
	"build":        true,
	"__pycache__":  true,
	"vendor":       true,
	".codegate":    true,
}

var skipExts = map[string]bool{
	".pyc": true, ".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".svg": true, ".ico": true, ".lock": true, ".map": true, ".woff": true,
	".woff2": true, ".ttf": true, ".pdf": true, ".zip": true, ".gz": true,
	".exe": true, ".so": true, ".dll": true, ".class": true, ".jar": true,
}

var skipFiles = map[string]bool{
	"package-lock.json": true,
	"pnpm-lock.yaml":    true,
	"go.sum":            true,
}

// sniffLen is how much of a file is inspected for NUL bytes.
const sniffLen = 8000

// Options controls which files a source yields.
type Options struct {
	ExcludePaths []string
	MaxFileBytes int64
	Logger       *slog.Logger
}

// OptionsFrom derives source options from project config.
func OptionsFrom(cfg domain.ProjectConfig, logger *slog.Logger) Options {
	return Options{
		ExcludePaths: cfg.ExcludePaths,
		MaxFileBytes: cfg.WithDefaults().MaxFileBytes,
		Logger:       logger,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.Default()
	}
	return o.Logger
}

// excluded reports whether a slash-separated relative path matches an
// exclude pattern. Bare names without glob syntax match any path element.
func (o Options) excluded(rel string) bool {
	base := path.Base(rel)
	for _, p := range o.ExcludePaths {
		p = strings.TrimSuffix(p, "/")
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if ok, err := doublestar.Match(p, base); err == nil && ok {
			return true
		}
		if strings.HasSuffix(p, "/**") {
			if ok, err := doublestar.Match(strings.TrimSuffix(p, "/**"), rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func (o Options) skipDir(rel string) bool {
	return skipDirs[path.Base(rel)] || o.excluded(rel)
}

// skipFile applies the name, extension and size filters.
func (o Options) skipFile(rel string, size int64) bool {
	base := path.Base(rel)
	if skipFiles[base] || skipExts[strings.ToLower(path.Ext(base))] {
		return true
	}
	if o.MaxFileBytes > 0 && size > o.MaxFileBytes {
		o.logger().Debug("skipping oversized file", "file", rel, "size", size)
		return true
	}
	return o.excluded(rel)
}

// inSkippedDir reports whether any parent directory of rel is skipped.
func (o Options) inSkippedDir(rel string) bool {
	dir := path.Dir(rel)
	for dir != "." && dir != "/" {
		if o.skipDir(dir) {
			return true
		}
		dir = path.Dir(dir)
	}
	return false
}

// isText rejects content with NUL bytes or invalid UTF-8.
func isText(data []byte) bool {
	head := data
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	return bytes.IndexByte(head, 0) < 0 && utf8.Valid(data)
}

// IgnoresDir reports whether a directory, given relative to the source
// root, is pruned from walks.
func (o Options) IgnoresDir(rel string) bool {
	rel = path.Clean(rel)
	if rel == "." {
		return false
	}
	return o.skipDir(rel) || o.inSkippedDir(rel)
}
