package domain

import (
	"fmt"
	"time"
)

// Analyzer names accepted by skip_analyzers.
const (
	AnalyzerUI       = "ui"
	AnalyzerServer   = "server"
	AnalyzerSecurity = "security"
	AnalyzerContent  = "content"
)

// ValidAnalyzers enumerates all analyzer names.
var ValidAnalyzers = []string{AnalyzerUI, AnalyzerServer, AnalyzerSecurity, AnalyzerContent}

// FailOn selects which deployment status fails a CI run.
type FailOn string

const (
	FailOnBlocked FailOn = "blocked"
	FailOnCaution FailOn = "caution"
	FailOnNever   FailOn = "never"
)

const (
	DefaultMaxFileBytes = 1 << 20
	DefaultTimeout      = 5 * time.Minute
)

// ProjectConfig holds project-level configuration loaded from .codegate.yaml.
type ProjectConfig struct {
	ExcludePaths  []string      `yaml:"exclude_paths"  json:"exclude_paths,omitempty"`
	MaxFileBytes  int64         `yaml:"max_file_bytes" json:"max_file_bytes,omitempty"`
	Workers       int           `yaml:"workers"        json:"workers,omitempty"`
	Timeout       time.Duration `yaml:"timeout"        json:"timeout,omitempty"`
	MinScore      int           `yaml:"min_score"      json:"min_score,omitempty"`
	FailOn        FailOn        `yaml:"fail_on"        json:"fail_on,omitempty"`
	SkipAnalyzers []string      `yaml:"skip_analyzers" json:"skip_analyzers,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		MaxFileBytes: DefaultMaxFileBytes,
		Timeout:      DefaultTimeout,
		FailOn:       FailOnBlocked,
	}
}

// WithDefaults fills zero-valued fields from DefaultConfig.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	d := DefaultConfig()
	if c.MaxFileBytes == 0 {
		c.MaxFileBytes = d.MaxFileBytes
	}
	if c.Timeout == 0 {
		c.Timeout = d.Timeout
	}
	if c.FailOn == "" {
		c.FailOn = d.FailOn
	}
	return c
}

// IsSkippedAnalyzer reports whether the named analyzer is disabled.
func (c ProjectConfig) IsSkippedAnalyzer(name string) bool {
	for _, s := range c.SkipAnalyzers {
		if s == name {
			return true
		}
	}
	return false
}

// Fails reports whether a status should fail a CI run under this config.
func (c ProjectConfig) Fails(status DeploymentStatus) bool {
	switch c.FailOn {
	case FailOnNever:
		return false
	case FailOnCaution:
		return status == StatusBlocked || status == StatusCaution
	default:
		return status == StatusBlocked
	}
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c ProjectConfig) Validate() error {
	if c.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes must be >= 0, got %d", c.MaxFileBytes)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %s", c.Timeout)
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min_score must be between 0 and 100, got %d", c.MinScore)
	}
	switch c.FailOn {
	case "", FailOnBlocked, FailOnCaution, FailOnNever:
	default:
		return fmt.Errorf("unknown fail_on %q (valid: blocked, caution, never)", c.FailOn)
	}
	for _, a := range c.SkipAnalyzers {
		if !isValidAnalyzer(a) {
			return fmt.Errorf("unknown analyzer %q in skip_analyzers (valid: ui, server, security, content)", a)
		}
	}
	return nil
}

func isValidAnalyzer(name string) bool {
	for _, a := range ValidAnalyzers {
		if a == name {
			return true
		}
	}
	return false
}

// Environment carries process-level settings read from the environment.
type Environment struct {
	DatabaseURL string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
	LogLevel    string
}
