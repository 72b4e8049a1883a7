// Package scoring converts findings and analyzer metrics into a score,
// grade, role level and deployment decision.
//
// Everything here is a pure function of its inputs. Bonuses and penalties
// are ordered tables; evaluation order determines both the arithmetic and
// the order of strength and weakness messages.
package scoring

import (
	"strings"

	"github.com/openkraft/codegate/internal/domain"
)

// BaseScore is the starting point before bonuses and penalties.
const BaseScore = 50

const (
	defaultStrength = "Code submitted for review"
	defaultWeakness = "Room for improvement in code quality and best practices"
	// weaknessFloor is the score below which an empty weakness list gets
	// the default entry.
	weaknessFloor = 85
)

type bonus struct {
	points   int
	strength string
	applies  func(m domain.MetricsSet) bool
}

var bonuses = []bonus{
	{15, "Excellent use of TypeScript for type safety", func(m domain.MetricsSet) bool {
		return m.UI.HasTypeScript
	}},
	{10, "Proper error handling implemented", func(m domain.MetricsSet) bool {
		return m.UI.HasErrorHandling || m.Server.HasErrorHandling
	}},
	{10, "Good accessibility practices", func(m domain.MetricsSet) bool {
		return m.UI.HasAccessibility
	}},
	{10, "Performance optimizations applied", func(m domain.MetricsSet) bool {
		return m.UI.HasPerformanceOptimizations
	}},
	{15, "Strong security practices", func(m domain.MetricsSet) bool {
		return !m.UI.HasSecurityIssues && m.Security.TotalVulnerabilities == 0
	}},
	{10, "Proper authentication implemented", func(m domain.MetricsSet) bool {
		return m.Server.HasAuthentication
	}},
	{5, "Input validation implemented", func(m domain.MetricsSet) bool {
		return m.Server.HasInputValidation
	}},
	{5, "Well-documented code", func(m domain.MetricsSet) bool {
		return m.Content.HasDocumentation
	}},
	{10, "Clean architecture with well-organized components", func(m domain.MetricsSet) bool {
		return m.UI.TotalFiles+m.Server.TotalFiles > 3 && m.UI.AverageLines() < 200
	}},
}

// MaxBonus is the sum of every bonus weight.
func MaxBonus() int {
	total := 0
	for _, b := range bonuses {
		total += b.points
	}
	return total
}

// penaltyRule applies to findings of one severity. Within a severity the
// first matching rule wins.
type penaltyRule struct {
	severity domain.Severity
	when     string
	matches  func(f domain.Finding) bool
	points   int
	weakness func(f domain.Finding) string
}

func always(domain.Finding) bool { return true }

func message(msg string) func(domain.Finding) string {
	return func(domain.Finding) string { return msg }
}

func labelled(prefix string) func(domain.Finding) string {
	return func(f domain.Finding) string { return prefix + f.Category.String() }
}

func category(cats ...domain.Category) func(domain.Finding) bool {
	return func(f domain.Finding) bool {
		for _, c := range cats {
			if f.Category == c {
				return true
			}
		}
		return false
	}
}

var penaltyRules = []penaltyRule{
	{domain.SeverityCritical, "Infinite Loop, or description mentions a crash", func(f domain.Finding) bool {
		return f.Category == domain.CategoryInfiniteLoop || strings.Contains(strings.ToLower(f.Description), "crash")
	}, 40, labelled("Critical bug found: ")},
	{domain.SeverityCritical, "XSS or non-SQL injection", func(f domain.Finding) bool { return f.Category.IsInjection() },
		30, labelled("Security vulnerability: ")},
	{domain.SeverityCritical, "SQL Injection", category(domain.CategorySQLInjection), 30, message("SQL injection vulnerability")},
	{domain.SeverityCritical, "Exposed Secrets", category(domain.CategoryExposedSecrets), 25, message("Hardcoded secrets in source code")},
	{domain.SeverityCritical, "any other critical", always, 30, labelled("Critical issue: ")},

	{domain.SeverityHigh, "Error Handling", category(domain.CategoryErrorHandling), 25, message("Missing error handling in async operations")},
	{domain.SeverityHigh, "Authentication or Authorization", func(f domain.Finding) bool { return f.Category.IsAuth() },
		20, message("Authentication/authorization issues")},
	{domain.SeverityHigh, "Weak Cryptography", category(domain.CategoryWeakCryptography), 20, message("Weak cryptographic algorithms used")},
	{domain.SeverityHigh, "any other high", always, 15, labelled("High severity issue: ")},

	{domain.SeverityMedium, "Code Complexity", category(domain.CategoryCodeComplexity), 15, message("High code complexity")},
	{domain.SeverityMedium, "Performance", category(domain.CategoryPerformance), 15, message("Performance issues detected")},
	{domain.SeverityMedium, "Accessibility", category(domain.CategoryAccessibility), 10, message("Accessibility violations")},
	{domain.SeverityMedium, "any other medium", always, 10, labelled("Medium severity issue: ")},
}

// penaltyFor returns the rule that applies to f, or nil for LOW findings.
func penaltyFor(f domain.Finding) *penaltyRule {
	for i := range penaltyRules {
		r := &penaltyRules[i]
		if r.severity == f.Severity && r.matches(f) {
			return r
		}
	}
	return nil
}

// Calculate scores one scan. Metrics are read as given; a zero-valued
// metric is treated as not observed.
func Calculate(findings []domain.Finding, metrics domain.MetricsSet) domain.ScoreResult {
	score := BaseScore
	var strengths, weaknesses []string

	for _, b := range bonuses {
		if b.applies(metrics) {
			score += b.points
			strengths = append(strengths, b.strength)
		}
	}
	for _, f := range findings {
		if r := penaltyFor(f); r != nil {
			score -= r.points
			weaknesses = append(weaknesses, r.weakness(f))
		}
	}
	score = clamp(score)

	counts := domain.CountSeverities(findings)
	if len(strengths) == 0 {
		strengths = []string{defaultStrength}
	}
	if len(weaknesses) == 0 && score < weaknessFloor {
		weaknesses = []string{defaultWeakness}
	}
	if weaknesses == nil {
		weaknesses = []string{}
	}

	return domain.ScoreResult{
		Score:            score,
		Grade:            GradeFor(score),
		RoleLevel:        RoleLevelFor(score, counts.Critical, counts.High),
		DeploymentStatus: DeploymentStatusFor(score, counts.Critical, counts.High),
		Strengths:        strengths,
		Weaknesses:       weaknesses,
	}
}

var gradeThresholds = []struct {
	min   int
	grade domain.Grade
}{
	{95, domain.GradeAPlus},
	{90, domain.GradeA},
	{85, domain.GradeAMinus},
	{80, domain.GradeBPlus},
	{75, domain.GradeB},
	{70, domain.GradeBMinus},
	{65, domain.GradeCPlus},
	{60, domain.GradeC},
	{55, domain.GradeCMinus},
}

// GradeFor maps a score to the letter ladder.
func GradeFor(score int) domain.Grade {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.grade
		}
	}
	return domain.GradeD
}

// RoleLevelFor estimates the seniority the code reflects.
func RoleLevelFor(score, critical, high int) domain.RoleLevel {
	switch {
	case score >= 90 && critical == 0:
		return domain.RoleSenior
	case score >= 75 && critical == 0 && high <= 2:
		return domain.RoleMidLevel
	case score >= 60:
		return domain.RoleJunior
	default:
		return domain.RoleEntryLevel
	}
}

// DeploymentStatusFor is the deployment gate. Any critical finding blocks,
// whatever the score.
func DeploymentStatusFor(score, critical, high int) domain.DeploymentStatus {
	switch {
	case critical > 0:
		return domain.StatusBlocked
	case high > 3 || score < 60:
		return domain.StatusCaution
	default:
		return domain.StatusApproved
	}
}

// Penalty reports the points and weakness message a single finding costs.
// LOW findings cost nothing and return ok=false.
func Penalty(f domain.Finding) (points int, weakness string, ok bool) {
	r := penaltyFor(f)
	if r == nil {
		return 0, "", false
	}
	return r.points, r.weakness(f), true
}

// Rule describes one row of the penalty table.
type Rule struct {
	Severity domain.Severity `json:"severity"`
	When     string          `json:"when"`
	Points   int             `json:"points"`
}

// Rules returns the penalty table in evaluation order.
func Rules() []Rule {
	out := make([]Rule, 0, len(penaltyRules))
	for _, r := range penaltyRules {
		out = append(out, Rule{Severity: r.severity, When: r.when, Points: r.points})
	}
	return out
}

// Bonus describes one bonus.
type Bonus struct {
	Points   int    `json:"points"`
	Strength string `json:"strength"`
}

// Bonuses returns the bonus table in evaluation order.
func Bonuses() []Bonus {
	out := make([]Bonus, 0, len(bonuses))
	for _, b := range bonuses {
		out = append(out, Bonus{Points: b.points, Strength: b.strength})
	}
	return out
}

func clamp(score int) int {
	return min(100, max(0, score))
}
