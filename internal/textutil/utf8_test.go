package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChars_RoundTrip(t *testing.T) {
	// Given: valid UTF-8 strings of mixed widths
	inputs := []string{
		"",
		"hello",
		"苹果手机",
		"abc苹果123",
		"café \U0001F600 mixed",
	}

	for _, s := range inputs {
		// Then: concatenating the units reproduces the input
		chars := SplitChars(s)
		assert.Equal(t, s, strings.Join(chars, ""), "input %q", s)
	}
}

func TestSplitChars_Widths(t *testing.T) {
	chars := SplitChars("a苹b")
	require.Len(t, chars, 3)
	assert.Equal(t, "a", chars[0])
	assert.Equal(t, "苹", chars[1])
	assert.Equal(t, "b", chars[2])
}

func TestSplitChars_SkipsInvalidLeadingByte(t *testing.T) {
	// Given: a stray continuation byte between valid characters
	s := "a" + string([]byte{0x80}) + "b"

	// Then: the stray byte is skipped
	assert.Equal(t, []string{"a", "b"}, SplitChars(s))
}

func TestSplitChars_DropsTruncatedTail(t *testing.T) {
	// Given: a 3-byte sequence cut after its first byte
	s := "ab" + string([]byte{0xE8})

	assert.Equal(t, []string{"a", "b"}, SplitChars(s))
}

func TestSanitize_PassesValidUTF8(t *testing.T) {
	s := "苹果 phone é"
	assert.Equal(t, s, Sanitize(s))
}

func TestSanitize_DropsBrokenBytes(t *testing.T) {
	// Given: a truncated multi-byte sequence followed by valid text
	s := string([]byte{0xE8, 0x8B}) + "ok" + string([]byte{0xFF})

	assert.Equal(t, "ok", Sanitize(s))
}

func TestSanitize_DropsBadContinuation(t *testing.T) {
	// 0xC3 expects one continuation byte; 'x' is not one.
	s := string([]byte{0xC3}) + "x"
	assert.Equal(t, "x", Sanitize(s))
}

func TestSnippet_ShortTextUntrimmed(t *testing.T) {
	out := Snippet("short content", nil, 150)
	assert.Equal(t, "short content", out)
}

func TestSnippet_TailEllipsis(t *testing.T) {
	text := strings.Repeat("x", 200)
	out := Snippet(text, nil, 150)
	assert.Equal(t, strings.Repeat("x", 150)+"...", out)
}

func TestSnippet_WindowAroundQueryWord(t *testing.T) {
	// Given: the query word sits 40 bytes in
	text := strings.Repeat("a", 40) + "needle" + strings.Repeat("b", 200)

	// When: snipping around it
	out := Snippet(text, []string{"needle"}, 150)

	// Then: the window starts 30 bytes before the match, trimmed both ends
	assert.True(t, strings.HasPrefix(out, "..."))
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.Contains(t, out, "needle")
	assert.Equal(t, "..."+text[10:160]+"...", out)
}

func TestSnippet_EarlyMatchKeepsHead(t *testing.T) {
	// A match before byte 30 does not shift the window.
	text := "needle " + strings.Repeat("x", 300)
	out := Snippet(text, []string{"needle"}, 150)
	assert.True(t, strings.HasPrefix(out, "needle"))
}

func TestSnippet_CountsCodePointsNotBytes(t *testing.T) {
	// Given: 200 three-byte characters
	text := strings.Repeat("苹", 200)

	// When: limited to 150 characters
	out := Snippet(text, nil, 150)

	// Then: 150 code points survive, not 150 bytes
	assert.Equal(t, strings.Repeat("苹", 150)+"...", out)
}

func TestSnippet_EmptyInput(t *testing.T) {
	assert.Equal(t, "", Snippet("", []string{"q"}, 150))
}
