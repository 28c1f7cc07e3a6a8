package cli

import (
	"context"

	"atscore/internal/config"
	"atscore/internal/errors"

	"github.com/spf13/cobra"
)

// env is what main hands every subcommand through the command context.
type env struct {
	cfg    *config.Config
	logger *errors.Logger
}

type envKey struct{}

var rootCmd = &cobra.Command{
	Use:   "atscore",
	Short: "Score résumés against job descriptions the way an ATS would",
	Long: `atscore measures how well a résumé matches a job description. It combines
semantic similarity, TF-IDF keyword overlap, skill coverage and résumé quality
into ATS and recruiter readiness scores, with a skill gap report and
improvement guidance. Results can be printed, written to a file, rendered as a
PDF report or served over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(
		analyzeCmd, scoreCmd, skillsCmd, qualityCmd, sectionsCmd,
		readinessCmd, reportCmd, serveCmd, versionCmd,
	)
}

// Execute runs the command line with cfg and logger in scope.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	rootCmd.SetContext(context.WithValue(ctx, envKey{}, env{cfg: cfg, logger: logger}))
	return rootCmd.Execute()
}

func envFrom(ctx context.Context) env {
	e, ok := ctx.Value(envKey{}).(env)
	if !ok {
		panic("cli: command run outside Execute")
	}
	return e
}

func getConfigFromContext(ctx context.Context) *config.Config { return envFrom(ctx).cfg }

func getLoggerFromContext(ctx context.Context) *errors.Logger { return envFrom(ctx).logger }
