// Package cmd wires the quizwhiz command line. Running the binary with no
// subcommand plays a quiz in the terminal.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/quizwhiz/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizwhiz",
	Short: "Adaptive quizzes for kids",
	Long: `QuizWhiz is a terminal quiz game for grades 1-5. Questions are written
by a language model on the fly, and the topic and difficulty follow how
the learner is doing.`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "SQLite database file (default $QUIZWHIZ_DB, then the XDG data dir)")
	addQuizFlags(rootCmd)

	rootCmd.AddCommand(playCmd, serveCmd, previewCmd, llmCmd, reportsCmd, versionCmd)
}

// dbPath is --db when given, otherwise store.DefaultDBPath.
func dbPath(cmd *cobra.Command) (string, error) {
	p, _ := cmd.Flags().GetString("db")
	if p == "" {
		return store.DefaultDBPath()
	}
	return p, store.EnsureDir(p)
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	p, err := dbPath(cmd)
	if err != nil {
		return nil, err
	}
	s, err := store.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}
