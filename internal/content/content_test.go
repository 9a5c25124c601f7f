package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`What is \(3 * 4\)?`, "What is 3 × 4?"},
		{`\[ 12 \]`, "12"},
		{"$$5*6$$", "5×6"},
		{"  lots   of\n\tspace  ", "lots of space"},
		{"", ""},
		{"Already 2 × 3", "Already 2 × 3"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatForDisplay(tt.in), "input %q", tt.in)
	}
}

func TestFormatAllDoesNotAlias(t *testing.T) {
	in := []string{"2*2", " 4 "}
	out := FormatAll(in)
	assert.Equal(t, []string{"2×2", "4"}, out)
	assert.Equal(t, "2*2", in[0])
}

func TestNormalizeForComparison(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"What is 3 × 4?", "what is 3 × 4"},
		{"  The CAT's   hat! ", "the cats hat"},
		{"café", "caf"},
		{"a\tb\nc", "a b c"},
		{"???", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeForComparison(tt.in), "input %q", tt.in)
	}
}

func TestOverlapping(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"12", "12", true},
		{"12", "123", false},
		{"twelve apples", "twelve", true},
		{"apples", "green apples", true},
		{"apple", "green apple", false},
		{"seven dogs", "eight cats", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Overlapping(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	opts := []string{"10", "12", "14", "16"}
	a := Fingerprint("What is 3 × 4?", opts)
	b := Fingerprint("What is 3 × 4?", opts)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func TestFingerprintOptionOrderMatters(t *testing.T) {
	a := Fingerprint("What is 3 × 4?", []string{"10", "12", "14", "16"})
	b := Fingerprint("What is 3 × 4?", []string{"12", "10", "14", "16"})
	assert.NotEqual(t, a, b)
}

func TestFingerprintCaseInsensitive(t *testing.T) {
	assert.Equal(t,
		Fingerprint("Pick The Noun", []string{"Dog", "Run"}),
		Fingerprint("pick the noun", []string{"dog", "run"}))
}

func TestFingerprintKnownValues(t *testing.T) {
	// "a" = 97 -> "2p"; "ab" = 97*31+98 = 3105 -> "2e9".
	assert.Equal(t, "2p", Fingerprint("a", nil))
	assert.Equal(t, "2e9", Fingerprint("a", []string{"b"}))
	assert.Equal(t, "0", Fingerprint("", nil))
}

func TestFingerprintWrapsNegative(t *testing.T) {
	fp := Fingerprint("a reasonably long question text that overflows", []string{"one", "two"})
	assert.NotEmpty(t, fp)
	assert.Equal(t, fp, Fingerprint("A REASONABLY LONG QUESTION TEXT THAT OVERFLOWS", []string{"ONE", "TWO"}))
}
