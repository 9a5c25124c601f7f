package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwhiz/internal/app"
	"github.com/abhisek/quizwhiz/internal/curriculum"
	"github.com/abhisek/quizwhiz/internal/logger"
	"github.com/abhisek/quizwhiz/internal/store"
	"github.com/abhisek/quizwhiz/internal/telemetry"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start a quiz in the terminal",
	Long: `Start a timed quiz in the terminal.

With --grade and --subject the quiz starts right away; otherwise a setup
screen asks for them.`,
	RunE: runPlay,
}

func init() {
	addQuizFlags(playCmd)
}

func addQuizFlags(cmd *cobra.Command) {
	cmd.Flags().Int("grade", 0, "Grade level (1-5)")
	cmd.Flags().String("subject", "", "Subject: mathematics or english")
	cmd.Flags().Int("minutes", 0, "Quiz length in minutes (default 15, or QUIZWHIZ_QUIZ_MINUTES)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	grade, _ := cmd.Flags().GetInt("grade")
	subject, _ := cmd.Flags().GetString("subject")
	if (grade == 0) != (subject == "") {
		return fmt.Errorf("--grade and --subject must be given together")
	}

	path, err := dbPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer st.Close()

	log, err := logger.NewFile(tuiLogPath(path))
	if err != nil {
		log = logger.Nop()
	}
	defer log.Sync()

	mode := telemetry.ModeFromEnv()
	if mode == telemetry.ModeStdout {
		// Spans on stdout would draw over the UI.
		mode = telemetry.ModeOff
	}
	shutdown, err := telemetry.Init(ctx, mode, readBuildInfo().Version, log)
	if err != nil {
		log.Warn("telemetry disabled", "error", err)
	} else {
		defer shutdown(context.WithoutCancel(ctx))
	}

	eng, err := newEngine(ctx, st, quizConfig(cmd), log)
	if err != nil {
		return err
	}
	defer eng.Close(context.WithoutCancel(ctx))

	opts := app.Options{
		Manager: eng.manager,
		Catalog: eng.catalog,
		Minutes: int(eng.manager.Config().Duration.Minutes()),
	}
	if subject != "" {
		s := curriculum.Subject(subject)
		if _, err := eng.catalog.Topics(grade, s); err != nil {
			return err
		}
		opts.Subject = s
		opts.Grade = grade
	}
	return app.Run(opts)
}
