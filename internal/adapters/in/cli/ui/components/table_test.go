package components

import (
	"regexp"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableRender_HeadersAndRows(t *testing.T) {
	rendered := stripANSI(NewTable(
		[]Column{{Title: "KEY"}, {Title: "PROTOCOL"}},
		[][]string{{"RepoA", "sword"}, {"RepoB", "ftp"}},
	).Plain().Render())

	assert.Contains(t, rendered, "KEY")
	assert.Contains(t, rendered, "PROTOCOL")
	assert.Contains(t, rendered, "RepoA")
	assert.Contains(t, rendered, "ftp")
	assert.Less(t, strings.Index(rendered, "RepoA"), strings.Index(rendered, "RepoB"))
}

func TestTableRender_TruncatesToColumnWidth(t *testing.T) {
	rendered := stripANSI(NewTable(
		[]Column{{Title: "ENDPOINT", Width: 8}},
		[][]string{{"https://sword.example.org/collection"}},
	).Plain().Render())

	assert.Contains(t, rendered, "https...")
	assert.NotContains(t, rendered, "sword.example.org")
}

func TestTableRender_NoColumns(t *testing.T) {
	assert.Empty(t, NewTable(nil, [][]string{{"x"}}).Render())
}

func TestTruncateCell(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		maxWidth int
		expected string
	}{
		{name: "short text unchanged", value: "abc", maxWidth: 5, expected: "abc"},
		{name: "zero width passthrough", value: "abcdef", maxWidth: 0, expected: "abcdef"},
		{name: "width three all dots", value: "abcdef", maxWidth: 3, expected: "..."},
		{name: "ascii truncates", value: "abcdef", maxWidth: 5, expected: "ab..."},
		{name: "wide runes by display width", value: "你好世界", maxWidth: 5, expected: "你..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateCell(tt.value, tt.maxWidth)
			assert.Equal(t, tt.expected, got)
			if tt.maxWidth > 0 {
				assert.LessOrEqual(t, runewidth.StringWidth(got), tt.maxWidth)
			}
		})
	}
}

func TestTruncateCell_AnsiPassthrough(t *testing.T) {
	styled := "\x1b[32maccepted\x1b[0m"
	got := truncateCell(styled, 3)
	require.Equal(t, styled, got)
}

func stripANSI(input string) string {
	ansiPattern := regexp.MustCompile(`\x1b\[[0-9;]*[A-Za-z]`)
	return ansiPattern.ReplaceAllString(input, "")
}
