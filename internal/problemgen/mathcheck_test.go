package problemgen

import "testing"

func TestArithmetic(t *testing.T) {
	v := &ArithmeticValidator{}
	tests := []struct {
		name   string
		text   string
		answer string
		ok     bool
	}{
		{"multiplication correct", "What is 6 × 7?", "42", true},
		{"multiplication wrong", "What is 6 × 7?", "48", false},
		{"addition", "What is 345 + 278?", "623", true},
		{"addition wrong", "What is 345 + 278?", "612", false},
		{"subtraction", "567 - 289 = ?", "278", true},
		{"negative result", "What is 7 - 10?", "-3", true},
		{"spaced division", "What is 144 / 12?", "12", true},
		{"division sign", "What is 144 ÷ 12?", "11", false},
		{"fractions", "What is 3/4 + 1/8?", "7/8", true},
		{"fraction unreduced answer", "What is 1/4 + 1/4?", "2/4", true},
		{"fraction wrong", "What is 1/2 × 1/3?", "1/5", false},
		{"decimals", "What is 2.5 + 1.25?", "3.75", true},
		{"decimal vs fraction", "What is 1/2 + 1/4?", "0.75", true},
		{"two operators skipped", "What is 3 × 4 + 2?", "12", true},
		{"word problem skipped", "Sam has 3 bags with 4 apples each. How many apples?", "99", true},
		{"non numeric answer skipped", "What is 6 × 7?", "forty-two", true},
		{"division by zero skipped", "What is 5 ÷ 0?", "0", true},
		{"rounding", "Round 47 + 26 to the nearest ten.", "70", true},
		{"comparison", "Which is greater: 3 + 4 or 8?", "8", true},
		{"half of product", "What is half of 6 × 4?", "12", true},
		{"difference from target", "Is 15 - 6 more or less than 10? By how much?", "1", true},
		{"expression with trailing prompt", "Solve 6 + 3 for the missing number.", "4", true},
		{"calculate prefix wrong", "Calculate: 9 × 8", "81", false},
		{"equals without question mark wrong", "12 - 5 =", "8", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := numberQuestion()
			q.Text = tt.text
			q.CorrectAnswer = tt.answer
			err := v.Validate(q)
			if tt.ok && err != nil {
				t.Fatalf("expected pass, got %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected failure")
				}
				if err.Reason != ReasonWrongAnswer {
					t.Errorf("reason = %q, want %q", err.Reason, ReasonWrongAnswer)
				}
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"42", "42", true},
		{"-3", "-3", true},
		{"3/6", "1/2", true},
		{"0.75", "3/4", true},
		{"-0.5", "-1/2", true},
		{"1/0", "", false},
		{"abc", "", false},
		{"3.", "", false},
		{"1.-5", "", false},
	}
	for _, tt := range tests {
		got, ok := parseNumber(tt.in)
		if ok != tt.ok {
			t.Errorf("parseNumber(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && got.String() != tt.want {
			t.Errorf("parseNumber(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
