// Package content holds the pure text transforms applied to generated
// questions: display formatting, comparison normalization and
// fingerprinting.
package content

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
)

// Times is the multiplication sign used in place of "*".
const Times = "×"

var delimiterStripper = strings.NewReplacer(
	`\(`, "",
	`\)`, "",
	`\[`, "",
	`\]`, "",
	`$$`, "",
)

// FormatForDisplay strips LaTeX-style math delimiters, replaces the ASCII
// asterisk with the multiplication sign, collapses runs of whitespace and
// trims the result.
func FormatForDisplay(text string) string {
	text = delimiterStripper.Replace(text)
	text = strings.ReplaceAll(text, "*", Times)
	return collapse(text)
}

// FormatAll applies FormatForDisplay to every element, returning a new slice.
func FormatAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = FormatForDisplay(t)
	}
	return out
}

// NormalizeForComparison lowercases text and keeps only ASCII letters,
// digits, whitespace and the multiplication sign, then collapses
// whitespace. The result is for equality checks only, never for display.
func NormalizeForComparison(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '×':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return collapse(b.String())
}

// Overlapping reports whether two normalized options are the same answer
// for duplicate screening: exactly equal, or both longer than five
// characters with one containing the other.
func Overlapping(a, b string) bool {
	if a == b {
		return true
	}
	if len([]rune(a)) <= 5 || len([]rune(b)) <= 5 {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Fingerprint folds the lowercased question text and options into a 32-bit
// rolling hash (h = h*31 + c over UTF-16 code units, wrapping) rendered in
// base 36. Negative hashes keep their sign. Option order matters.
func Fingerprint(text string, options []string) string {
	s := strings.ToLower(text) + strings.ToLower(strings.Join(options, ""))
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(c)
	}
	return strconv.FormatInt(int64(h), 36)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
