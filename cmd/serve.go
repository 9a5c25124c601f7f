package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/quizwhiz/internal/logger"
	"github.com/abhisek/quizwhiz/internal/server"
	"github.com/abhisek/quizwhiz/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz over HTTP",
	Long: `Serve the quiz engine as a JSON API.

The listen address, cookie secret and allowed CORS origins come from
QUIZWHIZ_ADDR, QUIZWHIZ_SESSION_SECRET and QUIZWHIZ_CORS_ORIGINS.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QUIZWHIZ_ADDR)")
	serveCmd.Flags().Int("minutes", 0, "Quiz length in minutes (default 15, or QUIZWHIZ_QUIZ_MINUTES)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := logger.New(logMode())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log.Sync()

	shutdown, err := telemetry.Init(ctx, telemetry.ModeFromEnv(), readBuildInfo().Version, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer shutdown(context.WithoutCancel(ctx))

	st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	eng, err := newEngine(ctx, st, quizConfig(cmd), log)
	if err != nil {
		return err
	}
	defer eng.Close(context.WithoutCancel(ctx))

	cfg := server.ConfigFromEnv()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Addr = addr
	}
	srv, err := server.New(cfg, server.Deps{
		Manager:  eng.manager,
		Acquirer: eng.pipeline,
		Intros:   eng.intros,
		Catalog:  eng.catalog,
		Log:      log,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		return eng.manager.Run(gctx)
	})
	return g.Wait()
}
