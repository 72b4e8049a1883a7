package domain

// FileResult is the outcome of analyzing a single file: its findings and
// the metric contributions it made.
type FileResult struct {
	Findings []Finding  `json:"findings"`
	Metrics  MetricsSet `json:"metrics"`
}

// CachedFile is a FileResult tagged with the content hash it was computed from.
type CachedFile struct {
	Hash   string     `json:"hash"`
	Result FileResult `json:"result"`
}

// FileCache holds per-file results from a previous scan of a project.
type FileCache struct {
	RulesVersion string                `json:"rules_version"`
	ConfigHash   string                `json:"config_hash"`
	Files        map[string]CachedFile `json:"files"`
}

// NewFileCache returns an empty cache for the given rules version and config.
func NewFileCache(rulesVersion, configHash string) *FileCache {
	return &FileCache{
		RulesVersion: rulesVersion,
		ConfigHash:   configHash,
		Files:        make(map[string]CachedFile),
	}
}

// IsInvalidated reports whether the cache was built under different rules or config.
func (c *FileCache) IsInvalidated(rulesVersion, configHash string) bool {
	return c.RulesVersion != rulesVersion || c.ConfigHash != configHash
}

// Lookup returns the cached result for path if its hash still matches.
func (c *FileCache) Lookup(path, hash string) (FileResult, bool) {
	if c == nil || c.Files == nil {
		return FileResult{}, false
	}
	cf, ok := c.Files[path]
	if !ok || cf.Hash != hash {
		return FileResult{}, false
	}
	return cf.Result, true
}
