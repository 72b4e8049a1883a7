package analysis

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/fatih/camelcase"

	"github.com/openkraft/codegate/internal/domain"
)

// misspelling is a dictionary entry. The list order is the report order.
type misspelling struct {
	wrong, right string
}

var misspellings = []misspelling{
	{"recieve", "receive"},
	{"occured", "occurred"},
	{"seperate", "separate"},
	{"definately", "definitely"},
	{"wich", "which"},
	{"thier", "their"},
	{"teh", "the"},
	{"recieved", "received"},
	{"occurance", "occurrence"},
	{"sucessful", "successful"},
	{"sucessfully", "successfully"},
	{"begining", "beginning"},
	{"comming", "coming"},
	{"compatability", "compatibility"},
	{"enviroment", "environment"},
	{"langauge", "language"},
	{"mesage", "message"},
	{"necesary", "necessary"},
	{"occassion", "occasion"},
	{"recomend", "recommend"},
	{"refered", "referred"},
	{"seperated", "separated"},
	{"succesful", "successful"},
	{"temperary", "temporary"},
	{"usualy", "usually"},
}

var grammarRules = []struct {
	re          *regexp.Regexp
	correction  string
	explanation string
}{
	{regexp.MustCompile(`(?i)\bit's\b`), "its", `Possessive "its" doesn't have an apostrophe`},
	{regexp.MustCompile(`(?i)\byour\s+welcome\b`), "you're welcome", `"your" is possessive, use "you're" (you are)`},
	{regexp.MustCompile(`(?i)\bshould\s+of\b`), "should have", `"should of" is incorrect, use "should have"`},
	{regexp.MustCompile(`(?i)\bcould\s+of\b`), "could have", `"could of" is incorrect, use "could have"`},
	{regexp.MustCompile(`(?i)\bwould\s+of\b`), "would have", `"would of" is incorrect, use "would have"`},
}

var (
	hashCommentRe   = regexp.MustCompile(`(?m)#[ \t]*(.+)$`)
	tripleDoubleRe  = regexp.MustCompile(`(?s)"""(.+?)"""`)
	tripleSingleRe  = regexp.MustCompile(`(?s)'''(.+?)'''`)
	lineCommentRe   = regexp.MustCompile(`(?m)(?:^|[^:])//[ \t]*(.+)$`)
	blockCommentRe  = regexp.MustCompile(`(?s)/\*(.+?)\*/`)
	wordRe          = regexp.MustCompile(`[A-Za-z]+`)
	docStringTokens = []string{`"""`, `'''`}
)

// comment is one extracted comment body and the offset it starts at.
type comment struct {
	text   string
	offset int
}

// ContentAnalyzer checks comments and docstrings for spelling and grammar.
type ContentAnalyzer struct {
	Logger *slog.Logger
}

// AnalyzeFile extracts the comments of one file, checks their wording and
// accumulates into m.
func (a *ContentAnalyzer) AnalyzeFile(m *domain.ContentMetrics, path, content string) []domain.Finding {
	src := newSource(path, content)
	if hasDocumentation(path, content) {
		m.HasDocumentation = true
	}

	comments := extractComments(Classify(path).Comments, content)
	m.CommentCount += len(comments)

	var checks []check
	for _, c := range comments {
		line := src.line(c.offset)
		checks = append(checks,
			check{"spelling", func() []domain.Finding { return checkSpelling(src, c.text, line) }},
			check{"grammar", func() []domain.Finding { return checkGrammar(src, c.text, line) }},
		)
	}
	findings := runChecks(a.Logger, path, checks)
	for _, f := range findings {
		switch f.Category {
		case domain.CategorySpelling:
			m.SpellingErrors++
		case domain.CategoryGrammar:
			m.GrammarIssues++
		}
	}
	return findings
}

func hasDocumentation(path, content string) bool {
	if IsDocumentationPath(path) {
		return true
	}
	for _, tok := range docStringTokens {
		if strings.Contains(content, tok) {
			return true
		}
	}
	return strings.Contains(content, "/**") && strings.Contains(content, "*/")
}

// extractComments returns comment bodies ordered by position.
func extractComments(style CommentStyle, content string) []comment {
	var res []*regexp.Regexp
	switch style {
	case CommentHash:
		res = []*regexp.Regexp{hashCommentRe, tripleDoubleRe, tripleSingleRe}
	case CommentCStyle:
		res = []*regexp.Regexp{lineCommentRe, blockCommentRe}
	default:
		return nil
	}

	var out []comment
	for _, re := range res {
		for _, loc := range re.FindAllStringSubmatchIndex(content, -1) {
			text := strings.TrimSpace(content[loc[2]:loc[3]])
			if text == "" {
				continue
			}
			out = append(out, comment{text: text, offset: loc[2]})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].offset < out[j].offset })
	return out
}

// words returns the lowercase words of text, splitting camelCase identifiers.
func words(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range wordRe.FindAllString(text, -1) {
		set[strings.ToLower(tok)] = true
		for _, part := range camelcase.Split(tok) {
			set[strings.ToLower(part)] = true
		}
	}
	return set
}

func checkSpelling(src *source, text string, line int) []domain.Finding {
	set := words(text)
	var out []domain.Finding
	for _, w := range misspellings {
		if !set[w.wrong] {
			continue
		}
		out = append(out, src.finding(domain.SeverityLow, domain.CategorySpelling, line, issue{
			description: fmt.Sprintf("Misspelled word: %q should be %q", w.wrong, w.right),
			impact:      "Reduced code professionalism and clarity",
			fix:         "Correct spelling to: " + w.right,
		}))
	}
	return out
}

func checkGrammar(src *source, text string, line int) []domain.Finding {
	var out []domain.Finding
	for _, r := range grammarRules {
		if !r.re.MatchString(text) {
			continue
		}
		out = append(out, src.finding(domain.SeverityLow, domain.CategoryGrammar, line, issue{
			description: "Grammar issue: " + r.explanation,
			impact:      "Reduced code professionalism and clarity",
			fix:         "Use: " + r.correction,
		}))
	}
	return out
}
