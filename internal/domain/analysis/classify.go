package analysis

import (
	"path/filepath"
	"strings"
)

// Dialect is the source language family of a file, decided by extension.
type Dialect int

const (
	DialectOther Dialect = iota
	DialectPython
	DialectJavaScript
	DialectTypeScript
	DialectJSX
	DialectTSX
	DialectMarkdown
	DialectCStyle
	DialectHashStyle
)

// CommentStyle selects how ContentAnalyzer extracts comments.
type CommentStyle int

const (
	CommentNone CommentStyle = iota
	CommentHash
	CommentCStyle
)

// FileClass is the classifier's verdict for one path. Script and Component
// are not exclusive: a .js file is both.
type FileClass struct {
	Dialect   Dialect
	Script    bool
	Component bool
	Comments  CommentStyle
}

var dialectByExt = map[string]Dialect{
	".py":    DialectPython,
	".js":    DialectJavaScript,
	".mjs":   DialectJavaScript,
	".cjs":   DialectJavaScript,
	".ts":    DialectTypeScript,
	".jsx":   DialectJSX,
	".tsx":   DialectTSX,
	".md":    DialectMarkdown,
	".go":    DialectCStyle,
	".java":  DialectCStyle,
	".c":     DialectCStyle,
	".h":     DialectCStyle,
	".cpp":   DialectCStyle,
	".cs":    DialectCStyle,
	".rs":    DialectCStyle,
	".kt":    DialectCStyle,
	".swift": DialectCStyle,
	".php":   DialectCStyle,
	".rb":    DialectHashStyle,
	".sh":    DialectHashStyle,
}

// Classify buckets a file by extension.
func Classify(path string) FileClass {
	d := dialectByExt[strings.ToLower(filepath.Ext(path))]
	fc := FileClass{Dialect: d}
	switch d {
	case DialectPython:
		fc.Script = true
		fc.Comments = CommentHash
	case DialectJavaScript, DialectTypeScript:
		fc.Script = true
		fc.Component = true
		fc.Comments = CommentCStyle
	case DialectJSX, DialectTSX:
		fc.Component = true
		fc.Comments = CommentCStyle
	case DialectCStyle:
		fc.Comments = CommentCStyle
	case DialectHashStyle:
		fc.Comments = CommentHash
	}
	return fc
}

// IsTyped reports whether the dialect carries static type annotations.
func (d Dialect) IsTyped() bool {
	return d == DialectTypeScript || d == DialectTSX
}

// IsComponentExt reports whether the dialect is a JSX flavour.
func (d Dialect) IsComponentExt() bool {
	return d == DialectJSX || d == DialectTSX
}

var manifestNames = map[string]bool{
	"package.json":     true,
	"requirements.txt": true,
	"pipfile":          true,
	"pyproject.toml":   true,
	"go.mod":           true,
	"gemfile":          true,
	"composer.json":    true,
	"cargo.toml":       true,
}

// IsDependencyManifest reports whether path names a dependency manifest.
func IsDependencyManifest(path string) bool {
	return manifestNames[strings.ToLower(filepath.Base(path))]
}

// IsDocumentationPath reports whether path is a README-like or Markdown file.
func IsDocumentationPath(path string) bool {
	lower := strings.ToLower(filepath.ToSlash(path))
	return strings.Contains(lower, "readme") || strings.HasSuffix(lower, ".md")
}
