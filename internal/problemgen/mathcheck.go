package problemgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ArithmeticValidator recomputes the answer of questions that are a bare
// arithmetic expression ("What is 6 × 7?", "3/4 + 1/8 = ?") and rejects
// the question when the marked correct answer disagrees. Rounding,
// comparison and word problems mention expressions whose value is not the
// answer, so they pass through unchecked.
type ArithmeticValidator struct{}

func (v *ArithmeticValidator) Name() string { return "arithmetic" }

func (v *ArithmeticValidator) Validate(q *Question) *ValidationError {
	computed, ok := computeAnswer(q.Text)
	if !ok {
		return nil
	}
	claimed, ok := parseNumber(q.CorrectAnswer)
	if !ok {
		return nil
	}
	if !computed.equal(claimed) {
		return &ValidationError{
			Validator: v.Name(),
			Reason:    ReasonWrongAnswer,
			Message:   fmt.Sprintf("computed %s but the marked answer is %q", computed, q.CorrectAnswer),
		}
	}
	return nil
}

var (
	// The whole question is one expression, optionally led by "what is" and
	// closed by "=" or "?". Anything else around it is a word problem.
	bareQuestionRe = regexp.MustCompile(`(?i)^\s*(?:what\s+is|what's|calculate|compute)?\s*:?\s*(.+?)\s*(?:=\s*)?\??\s*$`)

	// a/b op c/d
	fractionExprRe = regexp.MustCompile(`^(-?\d+)\s*/\s*(\d+)\s*([+\-×÷*])\s*(-?\d+)\s*/\s*(\d+)$`)

	// a op b for integers and decimals. Division needs spaces so "3/4" stays a fraction.
	numberExprRe = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*([+\-×*÷]|\s/\s)\s*(-?\d+(?:\.\d+)?)$`)
)

// rational is an exact number num/den with den > 0.
type rational struct {
	num, den int64
}

func (r rational) reduce() rational {
	if r.den < 0 {
		r.num, r.den = -r.num, -r.den
	}
	if g := gcd(abs(r.num), r.den); g > 1 {
		r.num /= g
		r.den /= g
	}
	return r
}

func (r rational) equal(o rational) bool {
	a, b := r.reduce(), o.reduce()
	return a.num == b.num && a.den == b.den
}

func (r rational) String() string {
	r = r.reduce()
	if r.den == 1 {
		return strconv.FormatInt(r.num, 10)
	}
	return fmt.Sprintf("%d/%d", r.num, r.den)
}

// computeAnswer evaluates text when it is nothing but a single arithmetic
// expression.
func computeAnswer(text string) (rational, bool) {
	bare := bareQuestionRe.FindStringSubmatch(text)
	if bare == nil {
		return rational{}, false
	}
	expr := bare[1]

	if m := fractionExprRe.FindStringSubmatch(expr); m != nil {
		a, okA := parseNumber(m[1] + "/" + m[2])
		b, okB := parseNumber(m[4] + "/" + m[5])
		if !okA || !okB {
			return rational{}, false
		}
		return apply(a, m[3], b)
	}

	if m := numberExprRe.FindStringSubmatch(expr); m != nil {
		a, okA := parseNumber(m[1])
		b, okB := parseNumber(m[3])
		if !okA || !okB {
			return rational{}, false
		}
		return apply(a, strings.TrimSpace(m[2]), b)
	}
	return rational{}, false
}

func apply(a rational, op string, b rational) (rational, bool) {
	switch op {
	case "+":
		return rational{a.num*b.den + b.num*a.den, a.den * b.den}.reduce(), true
	case "-":
		return rational{a.num*b.den - b.num*a.den, a.den * b.den}.reduce(), true
	case "*", "×":
		return rational{a.num * b.num, a.den * b.den}.reduce(), true
	case "/", "÷":
		if b.num == 0 {
			return rational{}, false
		}
		return rational{a.num * b.den, a.den * b.num}.reduce(), true
	}
	return rational{}, false
}

// parseNumber accepts integers, decimals and simple fractions.
func parseNumber(s string) (rational, bool) {
	s = strings.TrimSpace(s)
	if num, den, err := parseFraction(s); err == nil {
		if den == 0 {
			return rational{}, false
		}
		return rational{num, den}.reduce(), true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return rational{n, 1}, true
	}
	whole, frac, found := strings.Cut(s, ".")
	if !found || frac == "" || len(frac) > 9 {
		return rational{}, false
	}
	den := int64(1)
	for range frac {
		den *= 10
	}
	f, err := strconv.ParseInt(frac, 10, 64)
	if err != nil || strings.HasPrefix(frac, "-") || strings.HasPrefix(frac, "+") {
		return rational{}, false
	}
	neg := strings.HasPrefix(whole, "-")
	w := int64(0)
	if trimmed := strings.TrimPrefix(whole, "-"); trimmed != "" {
		if w, err = strconv.ParseInt(trimmed, 10, 64); err != nil {
			return rational{}, false
		}
	}
	num := w*den + f
	if neg {
		num = -num
	}
	return rational{num, den}.reduce(), true
}

// parseFraction parses "a/b" into numerator and denominator.
func parseFraction(s string) (int64, int64, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid fraction format: %q", s)
	}
	num, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid numerator: %w", err)
	}
	den, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid denominator: %w", err)
	}
	return num, den, nil
}

// gcd returns the greatest common divisor of non-negative a and b.
func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
