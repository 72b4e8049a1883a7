package domain

import "math"

// UIMetrics accumulates component-level observations across a scan.
type UIMetrics struct {
	HasTypeScript               bool `json:"has_typescript"`
	HasErrorHandling            bool `json:"has_error_handling"`
	HasAccessibility            bool `json:"has_accessibility"`
	HasPerformanceOptimizations bool `json:"has_performance_optimizations"`
	HasSecurityIssues           bool `json:"has_security_issues"`
	TotalLines                  int  `json:"total_lines"`
	TotalFiles                  int  `json:"total_files"`
}

func (m *UIMetrics) Merge(o UIMetrics) {
	m.HasTypeScript = m.HasTypeScript || o.HasTypeScript
	m.HasErrorHandling = m.HasErrorHandling || o.HasErrorHandling
	m.HasAccessibility = m.HasAccessibility || o.HasAccessibility
	m.HasPerformanceOptimizations = m.HasPerformanceOptimizations || o.HasPerformanceOptimizations
	m.HasSecurityIssues = m.HasSecurityIssues || o.HasSecurityIssues
	m.TotalLines += o.TotalLines
	m.TotalFiles += o.TotalFiles
}

// AverageLines returns lines per file, treating zero files as one.
func (m UIMetrics) AverageLines() float64 {
	return float64(m.TotalLines) / float64(max(m.TotalFiles, 1))
}

// ServerMetrics accumulates server-side observations across a scan.
type ServerMetrics struct {
	HasAuthentication   bool `json:"has_authentication"`
	HasAuthorization    bool `json:"has_authorization"`
	HasInputValidation  bool `json:"has_input_validation"`
	HasErrorHandling    bool `json:"has_error_handling"`
	HasSQLInjectionRisk bool `json:"has_sql_injection_risk"`
	HasSecretsExposure  bool `json:"has_secrets_exposure"`
	TotalEndpoints      int  `json:"total_endpoints"`
	TotalFiles          int  `json:"total_files"`
}

func (m *ServerMetrics) Merge(o ServerMetrics) {
	m.HasAuthentication = m.HasAuthentication || o.HasAuthentication
	m.HasAuthorization = m.HasAuthorization || o.HasAuthorization
	m.HasInputValidation = m.HasInputValidation || o.HasInputValidation
	m.HasErrorHandling = m.HasErrorHandling || o.HasErrorHandling
	m.HasSQLInjectionRisk = m.HasSQLInjectionRisk || o.HasSQLInjectionRisk
	m.HasSecretsExposure = m.HasSecretsExposure || o.HasSecretsExposure
	m.TotalEndpoints += o.TotalEndpoints
	m.TotalFiles += o.TotalFiles
}

// SecurityMetrics counts vulnerabilities reported by the security analyzer.
type SecurityMetrics struct {
	TotalVulnerabilities int `json:"total_vulnerabilities"`
	CriticalVulns        int `json:"critical_vulns"`
	HighVulns            int `json:"high_vulns"`
	MediumVulns          int `json:"medium_vulns"`
}

func (m *SecurityMetrics) Merge(o SecurityMetrics) {
	m.TotalVulnerabilities += o.TotalVulnerabilities
	m.CriticalVulns += o.CriticalVulns
	m.HighVulns += o.HighVulns
	m.MediumVulns += o.MediumVulns
}

// Record counts one vulnerability.
func (m *SecurityMetrics) Record(s Severity) {
	m.TotalVulnerabilities++
	switch s {
	case SeverityCritical:
		m.CriticalVulns++
	case SeverityHigh:
		m.HighVulns++
	case SeverityMedium:
		m.MediumVulns++
	}
}

// NeutralDocumentationQuality is reported when no comments were seen.
const NeutralDocumentationQuality = 50

// ContentMetrics accumulates documentation observations across a scan.
// DocumentationQuality is derived and only meaningful on a Snapshot.
type ContentMetrics struct {
	HasDocumentation     bool `json:"has_documentation"`
	DocumentationQuality int  `json:"documentation_quality"`
	CommentCount         int  `json:"comment_count"`
	SpellingErrors       int  `json:"spelling_errors"`
	GrammarIssues        int  `json:"grammar_issues"`
}

func (m *ContentMetrics) Merge(o ContentMetrics) {
	m.HasDocumentation = m.HasDocumentation || o.HasDocumentation
	m.CommentCount += o.CommentCount
	m.SpellingErrors += o.SpellingErrors
	m.GrammarIssues += o.GrammarIssues
}

// Snapshot returns a copy with DocumentationQuality computed from the counters.
func (m ContentMetrics) Snapshot() ContentMetrics {
	if m.CommentCount == 0 {
		m.DocumentationQuality = NeutralDocumentationQuality
		return m
	}
	rate := float64(m.SpellingErrors+m.GrammarIssues) / float64(m.CommentCount)
	m.DocumentationQuality = max(0, 100-int(math.Round(rate*100)))
	return m
}

// MetricsSet bundles the four analyzers' metrics for one scan.
type MetricsSet struct {
	UI       UIMetrics       `json:"frontend"`
	Server   ServerMetrics   `json:"backend"`
	Security SecurityMetrics `json:"security"`
	Content  ContentMetrics  `json:"content"`
}

// Merge combines two sets field-wise: booleans OR, counters SUM.
func (s *MetricsSet) Merge(o MetricsSet) {
	s.UI.Merge(o.UI)
	s.Server.Merge(o.Server)
	s.Security.Merge(o.Security)
	s.Content.Merge(o.Content)
}

// Snapshot returns the set with derived fields computed.
func (s MetricsSet) Snapshot() MetricsSet {
	s.Content = s.Content.Snapshot()
	return s
}

// TotalFiles is the number of files seen by the UI and server analyzers.
func (s MetricsSet) TotalFiles() int {
	return s.UI.TotalFiles + s.Server.TotalFiles
}
