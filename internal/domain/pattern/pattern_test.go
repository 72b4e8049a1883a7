package pattern_test

import (
	"regexp"
	"testing"

	"github.com/openkraft/codegate/internal/domain/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindAll_ReturnsOffsetsAndGroups(t *testing.T) {
	re := regexp.MustCompile(`set(\w+)\(`)
	content := "setA(1)\nsetB(2)"

	matches := pattern.FindAll(re, content)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Start)
	assert.Equal(t, "A", matches[0].Group(content, 1))
	assert.Equal(t, 8, matches[1].Start)
	assert.Equal(t, "B", matches[1].Group(content, 1))
	assert.Equal(t, "", matches[1].Group(content, 5))
}

func TestFindAll_NoMatch(t *testing.T) {
	assert.Empty(t, pattern.FindAll(regexp.MustCompile(`zzz`), "abc"))
}

func TestLineAt(t *testing.T) {
	content := "a\nb\nc"
	assert.Equal(t, 1, pattern.LineAt(content, 0))
	assert.Equal(t, 2, pattern.LineAt(content, 2))
	assert.Equal(t, 3, pattern.LineAt(content, 4))
	assert.Equal(t, 3, pattern.LineAt(content, 999))
	assert.Equal(t, 1, pattern.LineAt(content, -5))
}

func TestLineIndex_AgreesWithLineAt(t *testing.T) {
	content := "first\n\nthird line\nfourth\n"
	li := pattern.NewLineIndex(content)
	for off := 0; off <= len(content); off++ {
		assert.Equal(t, pattern.LineAt(content, off), li.Line(off), "offset %d", off)
	}
}

func TestWindow_Clamps(t *testing.T) {
	content := "0123456789"
	assert.Equal(t, "234567", pattern.Window(content, 4, 6, 2))
	assert.Equal(t, "0123456789", pattern.Window(content, 1, 9, 300))
	assert.Equal(t, "01", pattern.Before(content, 2, 10))
	assert.Equal(t, "89", pattern.After(content, 8, 10))
	assert.Equal(t, "", pattern.After(content, 20, 10))
}

func TestLineOf(t *testing.T) {
	content := "one\ntwo three\nfour"
	assert.Equal(t, "two three", pattern.LineOf(content, 6))
	assert.Equal(t, "four", pattern.LineOf(content, len(content)))
	assert.Equal(t, "one", pattern.LineOf(content, 0))
}

func TestMatchingBrace(t *testing.T) {
	content := "f() { if (x) { y() } }"
	open := 4
	assert.Equal(t, len(content)-1, pattern.MatchingBrace(content, open))
	assert.Equal(t, -1, pattern.MatchingBrace(content, 0))
	assert.Equal(t, -1, pattern.MatchingBrace("{ unterminated", 0))
}

func TestContainsAny(t *testing.T) {
	assert.True(t, pattern.ContainsAny("bcrypt.hash(pw)", "argon", "bcrypt"))
	assert.False(t, pattern.ContainsAny("plain", "hash"))
	assert.True(t, pattern.ContainsAnyFold("Authenticate()", "authenticate"))
}

func TestLineCount(t *testing.T) {
	assert.Equal(t, 1, pattern.LineCount(""))
	assert.Equal(t, 3, pattern.LineCount("a\nb\n"))
}
