// Package textutil provides byte-level UTF-8 helpers shared by the
// document, dictionary, and serving layers.
//
// Throughout this package "character" means one UTF-8 code point (1-4
// bytes), not a grapheme cluster. Edit distance and snippet lengths are
// defined over code points.
package textutil

import "strings"

// charLen returns the encoded length implied by a UTF-8 leading byte,
// or 0 if b is not a valid leading byte.
func charLen(b byte) int {
	switch {
	case b&0x80 == 0x00:
		return 1
	case b&0xE0 == 0xC0:
		return 2
	case b&0xF0 == 0xE0:
		return 3
	case b&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}

// SplitChars splits s into its UTF-8 code-point units. Bytes that are
// not valid leading bytes are skipped; a truncated multi-byte tail is
// dropped. For valid UTF-8 input, concatenating the returned units
// reproduces s byte for byte.
func SplitChars(s string) []string {
	chars := make([]string, 0, len(s)/3+1)
	for i := 0; i < len(s); {
		n := charLen(s[i])
		if n == 0 {
			i++
			continue
		}
		if i+n > len(s) {
			break
		}
		chars = append(chars, s[i:i+n])
		i += n
	}
	return chars
}

// Sanitize drops every byte of s that does not belong to a structurally
// valid UTF-8 sequence (correct leading byte followed by the right
// number of continuation bytes). Crawled HTML routinely carries broken
// encodings; running outbound strings through Sanitize keeps the JSON
// encoder from ever seeing them.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		n := charLen(s[i])
		if n == 0 {
			i++
			continue
		}
		if i+n > len(s) {
			i++
			continue
		}
		valid := true
		for j := 1; j < n; j++ {
			if s[i+j]&0xC0 != 0x80 {
				valid = false
				break
			}
		}
		if !valid {
			i++
			continue
		}
		b.WriteString(s[i : i+n])
		i += n
	}
	return b.String()
}

// Snippet extracts a query-aware window from text: up to maxChars code
// points, starting 30 bytes before the first query word found at byte
// position >= 30. The window start is a byte offset while the forward
// walk counts code points; this asymmetry is deliberate and matches the
// stored-corpus snippet format.
func Snippet(text string, queryWords []string, maxChars int) string {
	if text == "" {
		return ""
	}

	start := 0
	for _, w := range queryWords {
		if w == "" {
			continue
		}
		if pos := strings.Index(text, w); pos >= 30 {
			start = pos - 30
			break
		}
	}

	end := start
	count := 0
	for end < len(text) && count < maxChars {
		n := charLen(text[end])
		if n == 0 {
			n = 1
		}
		if end+n > len(text) {
			break
		}
		end += n
		count++
	}

	out := text[start:end]
	if start > 0 {
		out = "..." + out
	}
	if end < len(text) {
		out += "..."
	}
	return out
}
