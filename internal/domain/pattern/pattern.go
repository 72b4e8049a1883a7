// Package pattern provides the text primitives shared by all analyzers:
// regexp matching with offsets, offset to line mapping, and bounded context
// windows used to look for nearby mitigations before reporting a match.
package pattern

import (
	"regexp"
	"sort"
	"strings"
)

// Match is one regexp match. Groups holds submatch index pairs as returned
// by regexp.FindAllStringSubmatchIndex.
type Match struct {
	Start  int
	End    int
	Groups []int
}

// Group returns submatch i, or "" if it did not participate.
func (m Match) Group(content string, i int) string {
	if 2*i+1 >= len(m.Groups) || m.Groups[2*i] < 0 {
		return ""
	}
	return content[m.Groups[2*i]:m.Groups[2*i+1]]
}

// FindAll returns all non-overlapping matches of re in content.
func FindAll(re *regexp.Regexp, content string) []Match {
	idx := re.FindAllStringSubmatchIndex(content, -1)
	out := make([]Match, 0, len(idx))
	for _, loc := range idx {
		out = append(out, Match{Start: loc[0], End: loc[1], Groups: loc})
	}
	return out
}

// LineAt converts a byte offset into a 1-based line number by counting the
// newlines that precede it.
func LineAt(content string, offset int) int {
	offset = clamp(offset, 0, len(content))
	return strings.Count(content[:offset], "\n") + 1
}

// LineIndex answers LineAt queries in O(log n) for repeated lookups.
type LineIndex struct {
	newlines []int
}

// NewLineIndex records the newline offsets of content.
func NewLineIndex(content string) *LineIndex {
	li := &LineIndex{}
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			li.newlines = append(li.newlines, i)
		}
	}
	return li
}

// Line returns the 1-based line containing offset.
func (li *LineIndex) Line(offset int) int {
	return sort.SearchInts(li.newlines, offset) + 1
}

// Window returns content[max(0,start-radius) : end+radius], clamped.
func Window(content string, start, end, radius int) string {
	lo := clamp(start-radius, 0, len(content))
	hi := clamp(end+radius, lo, len(content))
	return content[lo:hi]
}

// Before returns up to n bytes preceding offset.
func Before(content string, offset, n int) string {
	offset = clamp(offset, 0, len(content))
	return content[clamp(offset-n, 0, offset):offset]
}

// After returns up to n bytes starting at offset.
func After(content string, offset, n int) string {
	offset = clamp(offset, 0, len(content))
	return content[offset:clamp(offset+n, offset, len(content))]
}

// LineOf returns the full line that contains offset, without the newline.
func LineOf(content string, offset int) string {
	offset = clamp(offset, 0, len(content))
	lo := strings.LastIndexByte(content[:offset], '\n') + 1
	hi := strings.IndexByte(content[offset:], '\n')
	if hi < 0 {
		return content[lo:]
	}
	return content[lo : offset+hi]
}

// MatchingBrace returns the index of the '}' closing the '{' at open, or -1
// when open is not a '{' or the block is unterminated. Braces inside string
// literals are not special-cased.
func MatchingBrace(content string, open int) int {
	if open < 0 || open >= len(content) || content[open] != '{' {
		return -1
	}
	depth := 0
	for i := open; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// ContainsAny reports whether s contains any of the tokens.
func ContainsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// ContainsAnyFold is ContainsAny ignoring ASCII case.
func ContainsAnyFold(s string, tokens ...string) bool {
	lower := strings.ToLower(s)
	for _, t := range tokens {
		if strings.Contains(lower, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// LineCount returns the number of lines content splits into on '\n'.
func LineCount(content string) int {
	return strings.Count(content, "\n") + 1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
