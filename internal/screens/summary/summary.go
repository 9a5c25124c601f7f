package summary

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/quiz"
	"github.com/abhisek/quizwhiz/internal/report"
	"github.com/abhisek/quizwhiz/internal/router"
	"github.com/abhisek/quizwhiz/internal/screen"
	"github.com/abhisek/quizwhiz/internal/ui/components"
	"github.com/abhisek/quizwhiz/internal/ui/layout"
	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

// SummaryScreen displays a finalized quiz report.
type SummaryScreen struct {
	report  report.SessionReport
	catalog *curriculum.Catalog
	expired bool
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen. endErr is the session's end cause and
// decides the headline.
func New(r report.SessionReport, catalog *curriculum.Catalog, endErr error) *SummaryScreen {
	if catalog == nil {
		catalog = curriculum.Default()
	}
	return &SummaryScreen{
		report:  r,
		catalog: catalog,
		expired: errors.Is(endErr, quiz.ErrSessionExpired),
	}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Report"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "New quiz"},
		{Key: "Q", Description: "Quit"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "enter", "esc":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		case "q", "Q":
			return s, tea.Quit
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	r := s.report
	var b strings.Builder

	headline := "Quiz complete!"
	if s.expired {
		headline = "Time's up!"
	}
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), width, headline))
	b.WriteString("\n\n")

	stats := fmt.Sprintf("Questions: %d      Correct: %d      Accuracy: %.0f%%      Best streak: %d",
		r.TotalQuestions, r.CorrectAnswers, r.Accuracy*100, r.BestStreak)
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Text), width, stats))
	b.WriteString("\n")
	extra := fmt.Sprintf("Time: %s      Avg per question: %.0fs      Hints: %d",
		layout.FormatClock(r.TimeTaken), r.AverageTimePerQuestion, r.HintsUsed)
	b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, extra))
	b.WriteString("\n\n")

	divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", min(width-8, 60)))

	if len(r.TopicStats) > 0 {
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.TextDim), width, "Topics"))
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n\n")

		barWidth := min(width-8, 60)
		for _, topic := range s.sortedTopics() {
			ts := r.TopicStats[topic]
			label := fmt.Sprintf("%-22s %2d/%-2d", truncate(s.name(topic), 22), ts.Correct, ts.Total)
			bar := components.NewProgressBar(label, ts.Accuracy(), true, barWidth)
			bar.Warn = report.RevisionThreshold
			b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(r.TopicsCompleted) > 0 {
		b.WriteString(layout.Centered(theme.Correct, width, "Completed: "+s.names(r.TopicsCompleted)))
		b.WriteString("\n")
	}
	if len(r.RevisionNeeded) > 0 {
		b.WriteString(layout.Centered(lipgloss.NewStyle().Foreground(theme.Accent), width,
			"Worth another look: "+s.names(r.RevisionNeeded)))
		b.WriteString("\n")
	}
	return b.String()
}

// sortedTopics orders topics by first appearance in the report.
func (s *SummaryScreen) sortedTopics() []string {
	first := make(map[string]int)
	for i, q := range s.report.QuestionsData {
		if _, ok := first[q.Topic]; !ok {
			first[q.Topic] = i
		}
	}
	topics := make([]string, 0, len(s.report.TopicStats))
	for t := range s.report.TopicStats {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		if first[topics[i]] != first[topics[j]] {
			return first[topics[i]] < first[topics[j]]
		}
		return topics[i] < topics[j]
	})
	return topics
}

func (s *SummaryScreen) name(topic string) string {
	return s.catalog.DisplayName(s.report.Grade, curriculum.Subject(s.report.Subject), topic)
}

func (s *SummaryScreen) names(topics []string) string {
	out := make([]string, len(topics))
	for i, t := range topics {
		out[i] = s.name(t)
	}
	return strings.Join(out, ", ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
