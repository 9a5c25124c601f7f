package cmd

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/llm"
	"github.com/abhisek/quizwhiz/internal/logger"
	"github.com/abhisek/quizwhiz/internal/problemgen"
	"github.com/abhisek/quizwhiz/internal/qcache"
	"github.com/abhisek/quizwhiz/internal/ui/theme"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Try generated questions for one topic and level",
	Long: `Generate questions for a single topic and level and answer them at the
prompt. Nothing is stored and difficulty never changes, which makes this
the quickest way to judge prompt quality for a topic.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("subject", "mathematics", "Subject: mathematics or english")
	previewCmd.Flags().Int("grade", 3, "Grade level (1-5)")
	previewCmd.Flags().String("topic", "", "Topic key, e.g. multiplication (required)")
	previewCmd.Flags().String("level", "very_easy", "Difficulty: very_easy, easy, medium, challenging or hard")
	previewCmd.Flags().Int("count", 5, "Number of questions to generate")
	_ = previewCmd.MarkFlagRequired("topic")
}

func runPreview(cmd *cobra.Command, args []string) error {
	subjectVal, _ := cmd.Flags().GetString("subject")
	grade, _ := cmd.Flags().GetInt("grade")
	topic, _ := cmd.Flags().GetString("topic")
	levelVal, _ := cmd.Flags().GetString("level")
	count, _ := cmd.Flags().GetInt("count")

	catalog := curriculum.Default()
	subject := curriculum.Subject(subjectVal)
	if err := catalog.Validate(subject, grade, topic); err != nil {
		return err
	}
	level, err := curriculum.ParseLevel(levelVal)
	if err != nil {
		return err
	}
	subtopics, err := catalog.Subtopics(subject, topic)
	if err != nil {
		return err
	}

	// No event recorder: nothing is written anywhere.
	ctx := context.Background()
	provider, err := llm.NewProvider(ctx, llm.Resolve(), nil, logger.Nop())
	if err != nil {
		return fmt.Errorf("LLM provider: %w", err)
	}

	cache := qcache.New(qcache.DefaultConfig(), logger.Nop())
	pipeline := problemgen.NewPipeline(provider, cache, problemgen.DefaultConfig(), nil)
	in := bufio.NewScanner(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, theme.Title.Render(catalog.DisplayName(grade, subject, topic)))
	fmt.Fprintln(out, theme.Hint.Render(fmt.Sprintf("grade %d %s, %s, %d questions", grade, subject, level.Label(), count)))
	fmt.Fprintln(out)

	input := problemgen.AcquireInput{Subject: subject, Grade: grade, Topic: topic, Level: level, Subtopics: subtopics}
	var asked, correct int
	for i := 1; i <= count; i++ {
		q, err := pipeline.Acquire(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "%s question %d: %v\n\n", theme.Incorrect.Render("skip"), i, err)
			continue
		}

		fmt.Fprintf(out, "%s %s\n", theme.Subtitle.Render(fmt.Sprintf("[%d/%d]", i, count)), q.Text)
		for j, o := range q.Options {
			fmt.Fprintf(out, "   %d. %s\n", j+1, o)
		}
		fmt.Fprint(out, "> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			break
		}
		answer := strings.TrimSpace(in.Text())
		if answer == "" {
			fmt.Fprintln(out, theme.Hint.Render("skipped"))
			fmt.Fprintln(out)
			continue
		}

		asked++
		if problemgen.CheckAnswer(answer, q) {
			correct++
			fmt.Fprintln(out, theme.Correct.Render("correct"))
		} else {
			fmt.Fprintf(out, "%s answer: %s\n", theme.Incorrect.Render("wrong"), q.CorrectAnswer)
		}
		if q.Explanation != "" {
			fmt.Fprintln(out, theme.Hint.Render(q.Explanation))
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d/%d answered correctly\n", correct, asked)
	return nil
}
