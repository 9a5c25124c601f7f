package problemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/quizwhiz/internal/curriculum"
)

const systemPrompt = `You are an expert education AI specialized in creating unique, grade-appropriate questions for students in grades 1-5.

Rules:
- Write exactly one multiple-choice question with exactly 4 options and exactly one correct option.
- correctAnswer must repeat the text of the correct option exactly.
- Do not use LaTeX delimiters. Use × instead of * for multiplication.
- Keep mathematical expressions simple and readable.
- The hint must help without giving the answer away.
- The explanation must walk through the solution step by step, suitable for a child.
- Never repeat a question from the "already asked" list.
- Return only the JSON object.`

// buildUserMessage renders the per-question prompt.
func buildUserMessage(input AcquireInput, prior []string, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %s difficulty %s question for grade %d students.\n",
		input.Level.Label(), input.Subject, input.Grade)
	fmt.Fprintf(&b, "Topic: %s\n", input.Topic)
	fmt.Fprintf(&b, "Subtopics: %s\n", strings.Join(input.Subtopics, ", "))

	b.WriteString("\nRequirements:\n")
	fmt.Fprintf(&b, "- Question should be appropriate for grade %d\n", input.Grade)
	b.WriteString("- Create a completely unique question different from standard textbook examples\n")
	b.WriteString("- Provide clear, step-by-step explanations\n")
	switch input.Subject {
	case curriculum.Mathematics:
		b.WriteString("- Use grade-appropriate numbers and concepts\n")
		b.WriteString("- Vary the numbers and problem structure\n")
		b.WriteString("- Include practical, real-world contexts when possible\n")
	case curriculum.English:
		b.WriteString("- Use grade-appropriate vocabulary and complexity\n")
		b.WriteString("- Vary the context and question patterns\n")
		b.WriteString("- Ensure cultural neutrality\n")
	}

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildDedup(prior, cfg.MaxPriorQuestions))

	fmt.Fprintf(&b, "\n\nReturn JSON with keys id, questionText, options, correctAnswer, hint, explanation, level (%q), topic (%q), grade (%d).",
		input.Level.String(), input.Topic, input.Grade)

	return b.String()
}

// buildDedup numbers prior questions for the prompt, keeping at most max.
// Returns "None" when there are none.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}
	if max > 0 && len(prior) > max {
		prior = prior[:max]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
