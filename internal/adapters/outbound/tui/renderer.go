package tui

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/codegate/internal/domain"
	"github.com/openkraft/codegate/internal/domain/scoring"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	lime    = lipgloss.Color("#A3E635")
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	orange  = lipgloss.Color("#FB923C")
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	criticalStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	highStyle     = lipgloss.NewStyle().Foreground(orange).Bold(true)
	mediumStyle   = lipgloss.NewStyle().Foreground(warning)
	lowStyle      = lipgloss.NewStyle().Foreground(info)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderReport formats the technical report: score, gate decision,
// severity counts and every finding.
func RenderReport(r *domain.ScanReport) string {
	var b strings.Builder
	res := r.Result

	title := headerStyle.Render("codegate")
	subtitle := dimStyle.Render(shortenPath(r.Source))
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(scoreColor(res.Score)).
		Render(fmt.Sprintf("%d / 100", res.Score))
	gradeStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(gradeColor(res.Grade)).
		Render(string(res.Grade))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + gradeStyled + "\n" + statusBadge(res.DeploymentStatus)))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s %s  %s\n", titleStyle.Render(padRight("Score", 12)), coloredBar(res.Score, 30), dimStyle.Render(fmt.Sprintf("%d files analyzed", r.TotalFiles)))
	if r.CommitHash != "" {
		fmt.Fprintf(&b, "  %s %s %s\n", titleStyle.Render(padRight("Commit", 12)), dimStyle.Render(shortHash(r.CommitHash)), faintStyle.Render(r.Branch))
	}
	b.WriteString("\n  " + separatorLine + "\n\n")

	if len(r.Findings) == 0 {
		b.WriteString("  " + passStyle.Render("No issues found.") + "\n\n")
		return b.String()
	}

	b.WriteString("  " + titleStyle.Render("Issues") + "  " + countsLine(r.Counts) + "\n\n")
	for _, f := range bySeverity(r.Findings) {
		renderFinding(&b, f)
	}
	b.WriteString("\n")
	return b.String()
}

// bySeverity returns a copy of findings with the most severe first. Findings
// of equal severity keep their file and line order.
func bySeverity(findings []domain.Finding) []domain.Finding {
	out := slices.Clone(findings)
	slices.SortStableFunc(out, func(a, b domain.Finding) int {
		return b.Severity.Rank() - a.Severity.Rank()
	})
	return out
}

func countsLine(c domain.SeverityCounts) string {
	var parts []string
	if c.Critical > 0 {
		parts = append(parts, criticalStyle.Render(fmt.Sprintf("%d critical", c.Critical)))
	}
	if c.High > 0 {
		parts = append(parts, highStyle.Render(fmt.Sprintf("%d high", c.High)))
	}
	if c.Medium > 0 {
		parts = append(parts, mediumStyle.Render(fmt.Sprintf("%d medium", c.Medium)))
	}
	if c.Low > 0 {
		parts = append(parts, lowStyle.Render(fmt.Sprintf("%d low", c.Low)))
	}
	return strings.Join(parts, "  ")
}

func renderFinding(b *strings.Builder, f domain.Finding) {
	fmt.Fprintf(b, "    %s %s %s\n",
		severityTag(f.Severity),
		fileStyle.Render(fmt.Sprintf("%s:%d", shortenPath(f.FilePath), f.LineNumber)),
		faintStyle.Render(f.Category.String()),
	)
	fmt.Fprintf(b, "             %s\n", f.Description)
	if f.FixSuggestion != "" {
		fmt.Fprintf(b, "             %s\n", dimStyle.Render("fix: "+f.FixSuggestion))
	}
}

func severityTag(s domain.Severity) string {
	switch s {
	case domain.SeverityCritical:
		return criticalStyle.Render("critical")
	case domain.SeverityHigh:
		return highStyle.Render("high    ")
	case domain.SeverityMedium:
		return mediumStyle.Render("medium  ")
	default:
		return lowStyle.Render("low     ")
	}
}

func statusBadge(s domain.DeploymentStatus) string {
	switch s {
	case domain.StatusApproved:
		return passStyle.Bold(true).Render(string(s))
	case domain.StatusCaution:
		return mediumStyle.Bold(true).Render(string(s))
	default:
		return criticalStyle.Render(string(s))
	}
}

// RenderAssessment formats the management view: grade, role level,
// strengths, weaknesses and the test-failure rate.
func RenderAssessment(r *domain.ScanReport) string {
	var b strings.Builder
	res := r.Result

	grade := lipgloss.NewStyle().Bold(true).Foreground(gradeColor(res.Grade)).Render(string(res.Grade))
	b.WriteString(boxStyle.Render(headerStyle.Render("codegate assessment") + "\n\n" + grade + "  " + dimStyle.Render(fmt.Sprintf("%d / 100", res.Score))))
	b.WriteString("\n\n")

	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", titleStyle.Render(padRight(label, 20)), value)
	}
	row("Role level", string(res.RoleLevel))
	row("Deployment", statusBadge(res.DeploymentStatus))
	row("Test failure rate", fmt.Sprintf("%.1f%%", r.TestFailureRate()))
	row("Files analyzed", fmt.Sprintf("%d", r.TotalFiles))
	b.WriteString("\n  " + separatorLine + "\n\n")

	b.WriteString("  " + titleStyle.Render("Strengths") + "\n")
	for _, s := range res.Strengths {
		b.WriteString("    " + passStyle.Render("+") + " " + s + "\n")
	}
	b.WriteString("\n  " + titleStyle.Render("Weaknesses") + "\n")
	if len(res.Weaknesses) == 0 {
		b.WriteString("    " + dimStyle.Render("none") + "\n")
	}
	for _, w := range res.Weaknesses {
		b.WriteString("    " + failStyle.Render("-") + " " + w + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

// RenderSummary is the one-line result used by watch mode.
func RenderSummary(r *domain.ScanReport) string {
	return fmt.Sprintf("%s %s %s  %s",
		lipgloss.NewStyle().Bold(true).Foreground(scoreColor(r.Result.Score)).Render(fmt.Sprintf("%3d", r.Result.Score)),
		lipgloss.NewStyle().Foreground(gradeColor(r.Result.Grade)).Render(padRight(string(r.Result.Grade), 2)),
		statusBadge(r.Result.DeploymentStatus),
		countsLine(r.Counts),
	)
}

// BadgeURL returns a shields.io badge for the score.
func BadgeURL(r *domain.ScanReport) string {
	return fmt.Sprintf("https://img.shields.io/badge/codegate-%d%%2F100-%s", r.Result.Score, badgeColor(r.Result.DeploymentStatus, r.Result.Score))
}

func badgeColor(s domain.DeploymentStatus, score int) string {
	switch {
	case s == domain.StatusBlocked:
		return "red"
	case score >= 85:
		return "brightgreen"
	case score >= 70:
		return "green"
	case score >= 60:
		return "yellow"
	default:
		return "orange"
	}
}

// RenderRules lists categories and the penalty table.
func RenderRules(categories []domain.Category, rules []scoring.Rule) string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Penalty rules") + "  " + dimStyle.Render("first match per severity wins") + "\n\n")
	for _, r := range rules {
		fmt.Fprintf(&b, "    %s %s %s\n", severityTag(r.Severity), dimStyle.Render(fmt.Sprintf("-%2d", r.Points)), r.When)
	}
	b.WriteString("\n  " + titleStyle.Render("Categories") + "\n\n")
	for _, c := range categories {
		b.WriteString("    " + c.String() + "\n")
	}
	b.WriteString("\n")
	return b.String()
}

func coloredBar(score, width int) string {
	filled := max(0, min(score*width/100, width))
	empty := width - filled

	filledStr := lipgloss.NewStyle().Foreground(scoreColor(score)).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score int) lipgloss.Color {
	switch {
	case score >= 80:
		return success
	case score >= 60:
		return lime
	case score >= 40:
		return warning
	default:
		return danger
	}
}

func gradeColor(g domain.Grade) lipgloss.Color {
	switch g {
	case domain.GradeAPlus, domain.GradeA, domain.GradeAMinus:
		return success
	case domain.GradeBPlus, domain.GradeB, domain.GradeBMinus:
		return lime
	case domain.GradeCPlus, domain.GradeC, domain.GradeCMinus:
		return warning
	case domain.GradeD:
		return danger
	}
	return fg
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 4 {
		return "…/" + strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats score history for terminal output.
func RenderHistory(entries []domain.ScoreEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No score history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Score History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := shortHash(e.CommitHash)
		if hash == "" {
			hash = "·······"
		}
		day := e.Timestamp
		if len(day) > 10 {
			day = day[:10]
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(scoreColor(e.Score)).
			Render(fmt.Sprintf("%d/100", e.Score))

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(day),
			faintStyle.Render(hash),
			scoreStyled,
			padRight(string(e.Grade), 2),
			statusBadge(e.DeploymentStatus),
		)

		if i > 0 {
			diff := e.Score - entries[i-1].Score
			if diff > 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↑%d", diff))
			} else if diff < 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↓%d", -diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
