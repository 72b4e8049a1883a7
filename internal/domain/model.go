package domain

import (
	"errors"
	"time"
)

// ErrNoSources is returned when a source provider yields no analyzable files.
var ErrNoSources = errors.New("no analyzable source files found")

// Severity is the closed set of finding severities.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank orders severities for sorting (higher = more severe).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// Finding is one detected defect instance.
type Finding struct {
	Severity      Severity `json:"severity"`
	Category      Category `json:"category"`
	FilePath      string   `json:"file_path"`
	LineNumber    int      `json:"line_number"`
	Description   string   `json:"description"`
	Impact        string   `json:"impact"`
	FixSuggestion string   `json:"fix_suggestion"`
}

// Grade is a letter on the fixed ten-step ladder.
type Grade string

const (
	GradeAPlus  Grade = "A+"
	GradeA      Grade = "A"
	GradeAMinus Grade = "A-"
	GradeBPlus  Grade = "B+"
	GradeB      Grade = "B"
	GradeBMinus Grade = "B-"
	GradeCPlus  Grade = "C+"
	GradeC      Grade = "C"
	GradeCMinus Grade = "C-"
	GradeD      Grade = "D"
)

type RoleLevel string

const (
	RoleSenior     RoleLevel = "Senior"
	RoleMidLevel   RoleLevel = "Mid-Level"
	RoleJunior     RoleLevel = "Junior"
	RoleEntryLevel RoleLevel = "Entry-Level"
)

// DeploymentStatus is the gate decision derived from a score.
type DeploymentStatus string

const (
	StatusApproved DeploymentStatus = "APPROVED"
	StatusCaution  DeploymentStatus = "CAUTION"
	StatusBlocked  DeploymentStatus = "BLOCKED"
)

// ScoreResult is the derived quality assessment of one scan.
type ScoreResult struct {
	Score            int              `json:"score"`
	Grade            Grade            `json:"grade"`
	RoleLevel        RoleLevel        `json:"role_level"`
	DeploymentStatus DeploymentStatus `json:"deployment_status"`
	Strengths        []string         `json:"strengths"`
	Weaknesses       []string         `json:"weaknesses"`
}

// SeverityCounts tallies findings per severity.
type SeverityCounts struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Total returns the number of counted findings.
func (c SeverityCounts) Total() int { return c.Critical + c.High + c.Medium + c.Low }

// CountSeverities tallies findings by severity.
func CountSeverities(findings []Finding) SeverityCounts {
	var c SeverityCounts
	for _, f := range findings {
		switch f.Severity {
		case SeverityCritical:
			c.Critical++
		case SeverityHigh:
			c.High++
		case SeverityMedium:
			c.Medium++
		case SeverityLow:
			c.Low++
		}
	}
	return c
}

// ScanReport is the full outcome of one scan job.
type ScanReport struct {
	ID         string         `json:"id"`
	Source     string         `json:"source"`
	CommitHash string         `json:"commit_hash,omitempty"`
	Branch     string         `json:"branch,omitempty"`
	Result     ScoreResult    `json:"result"`
	TotalFiles int            `json:"total_files"`
	Counts     SeverityCounts `json:"issues"`
	Findings   []Finding      `json:"bugs"`
	Metrics    MetricsSet     `json:"metrics"`
	AnalyzedAt time.Time      `json:"analyzed_at"`
	Duration   time.Duration  `json:"duration_ns"`
}

// TestFailureRate is the share of analyzed files that carry a critical
// finding, as a percentage.
func (r *ScanReport) TestFailureRate() float64 {
	return float64(r.Counts.Critical) / float64(max(r.TotalFiles, 1)) * 100
}

// ScoreEntry is one line of a project's score history.
type ScoreEntry struct {
	Timestamp        string           `json:"timestamp"`
	CommitHash       string           `json:"commit_hash,omitempty"`
	Score            int              `json:"score"`
	Grade            Grade            `json:"grade"`
	DeploymentStatus DeploymentStatus `json:"deployment_status"`
	Critical         int              `json:"critical"`
	High             int              `json:"high"`
}

// EntryFor builds the history entry for a finished report.
func EntryFor(r *ScanReport) ScoreEntry {
	return ScoreEntry{
		Timestamp:        r.AnalyzedAt.UTC().Format(time.RFC3339),
		CommitHash:       r.CommitHash,
		Score:            r.Result.Score,
		Grade:            r.Result.Grade,
		DeploymentStatus: r.Result.DeploymentStatus,
		Critical:         r.Counts.Critical,
		High:             r.Counts.High,
	}
}

// SourceFile is one (path, content) pair handed to the analyzers.
type SourceFile struct {
	Path    string
	Content string
}
