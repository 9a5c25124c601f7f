package problemgen

import "testing"

func numberQuestion() *Question {
	return &Question{
		Text:          "What is 6 × 7?",
		Options:       []string{"36", "42", "48", "1"},
		CorrectAnswer: "42",
		Hint:          "Count by sixes.",
		Explanation:   "6 × 7 = 42",
	}
}

func TestCheckAnswer_ByText(t *testing.T) {
	q := &Question{
		Options:       []string{"Dog", "Run", "Blue", "Quickly"},
		CorrectAnswer: "Dog",
	}
	tests := []struct {
		input string
		want  bool
	}{
		{"Dog", true},
		{" dog ", true},
		{"DOG", true},
		{"Run", false},
		{"", false},
		{"Cat", false},
	}
	for _, tc := range tests {
		if got := CheckAnswer(tc.input, q); got != tc.want {
			t.Errorf("CheckAnswer(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheckAnswer_ByIndex(t *testing.T) {
	q := &Question{
		Options:       []string{"Dog", "Run", "Blue", "Quickly"},
		CorrectAnswer: "Blue",
	}
	if !CheckAnswer("3", q) {
		t.Error("index 3 should select Blue")
	}
	if CheckAnswer("1", q) {
		t.Error("index 1 selects Dog, which is wrong")
	}
	if CheckAnswer("5", q) {
		t.Error("index out of range should be wrong")
	}
}

func TestCheckAnswer_NumericOptionsPreferText(t *testing.T) {
	q := &Question{
		Options:       []string{"4", "3", "2", "1"},
		CorrectAnswer: "1",
	}
	// "1" is itself an option, so it is read as text, not as position 1.
	if !CheckAnswer("1", q) {
		t.Error("expected text match for numeric option")
	}
	if CheckAnswer("4", q) {
		t.Error("expected text match to reject option 4")
	}
}

func TestCheckAnswer_FormatsInput(t *testing.T) {
	q := &Question{
		Options:       []string{"3 × 4", "3 + 4", "3 - 4", "3 ÷ 4"},
		CorrectAnswer: "3 × 4",
	}
	if !CheckAnswer("3 * 4", q) {
		t.Error("asterisk input should match the formatted option")
	}
}

func TestCheckAnswer_NilQuestion(t *testing.T) {
	if CheckAnswer("1", nil) {
		t.Error("nil question is never correct")
	}
}

func TestOptionIndex(t *testing.T) {
	if got := numberQuestion().OptionIndex(); got != 1 {
		t.Errorf("OptionIndex() = %d, want 1", got)
	}
	q := numberQuestion()
	q.CorrectAnswer = "7"
	if got := q.OptionIndex(); got != -1 {
		t.Errorf("OptionIndex() = %d, want -1", got)
	}
}

func TestSelectOption(t *testing.T) {
	q := numberQuestion()
	tests := []struct {
		input  string
		want   string
		wantOK bool
	}{
		{"42", "42", true}, // option text wins over position
		{"1", "1", true},   // "1" is itself an option
		{"2", "42", true},  // position
		{"4", "1", true},   // position of the last option
		{"5", "", false},   // out of range, not an option
		{"abc", "", false}, // nothing matches
		{"  ", "", false},  // blank
	}
	for _, tt := range tests {
		got, ok := SelectOption(tt.input, q)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("SelectOption(%q) = %q, %v; want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}
