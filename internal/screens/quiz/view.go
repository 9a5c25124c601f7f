package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/progression"
	"github.com/abhisek/quizwhiz/internal/ui/layout"
	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch s.mode {
	case modeIntroLoading:
		return renderWaiting(width, "Getting ready for a new topic...")
	case modeLoading:
		return renderWaiting(width, "Thinking of a question...")
	case modeIntro:
		return s.renderIntro(width)
	case modeQuitConfirm:
		return renderQuitConfirm(width)
	case modeReport:
		return s.renderReport(width)
	case modeError:
		return renderError(width, s.errMsg)
	case modeFeedback:
		return s.renderQuestion(width) + "\n" + s.renderFeedback(width)
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) renderQuestion(width int) string {
	q := s.session.CurrentQuestion()
	if q == nil {
		return renderWaiting(width, "Thinking of a question...")
	}

	var b strings.Builder

	st := s.session.State()
	badge := theme.Badge(int(q.Level), q.Level.Label())
	progress := lipgloss.NewStyle().
		Foreground(theme.TextDim).
		Render(fmt.Sprintf("%d/%d correct at this level", st.CorrectInLevel, st.QuestionsInLevel))
	info := "  " + badge + "   " + progress

	b.WriteString(info)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	textWidth := min(width-8, 70)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Width(textWidth).Foreground(theme.Text).Bold(true).Render(q.Text)))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))

	if s.hint != "" && s.mode == modeQuestion {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Width(textWidth).Render("Hint: "+s.hint)))
	}
	if s.notice != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, s.notice))
	}
	return b.String()
}

func (s *QuizScreen) renderFeedback(width int) string {
	res := s.result
	if res == nil {
		return ""
	}

	var b strings.Builder
	if res.Correct {
		b.WriteString(layout.Centered(theme.Correct, width, "Correct!"))
	} else {
		b.WriteString(layout.Centered(theme.Incorrect, width, "Not quite"))
		b.WriteString("\n")
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width,
			"Correct answer: "+res.CorrectAnswer))
	}
	b.WriteString("\n\n")

	if res.Explanation != "" {
		exp := lipgloss.NewStyle().Width(min(width-8, 70)).Foreground(theme.Text).Render(res.Explanation)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, exp))
		b.WriteString("\n\n")
	}

	accent := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	switch res.Trigger {
	case progression.TriggerLevelUp:
		b.WriteString(layout.Centered(accent, width, "Level up! Next: "+res.NextLevel.Label()))
		b.WriteString("\n\n")
	case progression.TriggerTopicAdvance:
		name := s.catalog.DisplayName(s.session.Grade(), s.session.Subject(), res.NextTopic)
		b.WriteString(layout.Centered(accent, width, "Topic complete! Next up: "+name))
		b.WriteString("\n\n")
	}

	if s.notice != "" {
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, s.notice))
		b.WriteString("\n")
	}
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width,
		"Press any key to continue..."))
	return b.String()
}

func (s *QuizScreen) renderIntro(width int) string {
	d := s.intro
	textWidth := min(width-8, 70)

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Title, width, d.Title))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		theme.Body.Width(textWidth).Render(d.Description)))
	b.WriteString("\n\n")

	if len(d.KeyPoints) > 0 {
		var pts strings.Builder
		for _, p := range d.KeyPoints {
			pts.WriteString("• " + p + "\n")
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Body.Width(textWidth).Render(strings.TrimRight(pts.String(), "\n"))))
		b.WriteString("\n\n")
	}
	if len(d.Examples) > 0 {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Hint.Width(textWidth).Render("For example: "+strings.Join(d.Examples, "; "))))
		b.WriteString("\n\n")
	}
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width,
		"Press any key to start"))
	return b.String()
}

func (s *QuizScreen) renderReport(width int) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Centered(theme.Title, width, "What's wrong with this question?"))
	b.WriteString("\n\n")
	if s.tagChosen == "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.tagMenu.View()))
		return b.String()
	}
	b.WriteString(layout.Centered(theme.Selected, width, s.tagChosen.Label()))
	b.WriteString("\n\n")
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.note.View()))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(theme.Hint, width, "Enter to send"))
	return b.String()
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Text).Bold(true), width, "Finish the quiz now?"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "You'll see your report."))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Success), width, "[Y] Yes, finish"))
	b.WriteString("\n")
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Primary), width, "[N] No, keep going"))
	return b.String()
}

func renderWaiting(width int, text string) string {
	return layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "\n\n\n"+text)
}

func renderError(width int, errMsg string) string {
	return layout.Centered(lipgloss.NewStyle().Foreground(theme.Error), width,
		fmt.Sprintf("\n\n\n%s\n\nPress R to try again.", errMsg))
}
