package cli

import (
	"context"
	"fmt"

	"atscore/internal/common"
	"atscore/internal/types"

	"github.com/spf13/cobra"
)

var scoreCmd = &cobra.Command{
	Use:     "score [resume] [job-description]",
	Short:   "Compute the semantic, keyword and final ATS scores",
	Args:    cobra.ExactArgs(2),
	PreRunE: formatPreRun(&scoreConfig),
	RunE:    runScore,
}

var scoreConfig common.CommandConfig

func init() {
	addOutputFlags(scoreCmd, &scoreConfig)
}

func runScore(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	score := func(ctx context.Context, docs []string) (types.Scores, error) {
		scores := rt.engine.ComputeScores(ctx, docs[0], docs[1])
		for _, d := range scores.Degradations {
			rt.logger.Warn("Score degraded", "component", d.Component, "reason", d.Reason)
		}
		return scores, nil
	}

	if err := common.RunScoringCommand(cmd.Context(), rt.logger, rt.reader, scoreConfig, args, score, nil); err != nil {
		return fmt.Errorf("failed to score résumé: %w", err)
	}
	return nil
}
