package cli

import (
	"context"
	"fmt"

	"atscore/internal/common"
	"atscore/internal/types"

	"github.com/spf13/cobra"
)

var qualityCmd = &cobra.Command{
	Use:     "quality [resume]",
	Short:   "Score résumé quality on its own",
	Args:    cobra.ExactArgs(1),
	PreRunE: formatPreRun(&qualityConfig),
	RunE:    runQuality,
}

var qualityConfig common.CommandConfig

func init() {
	addOutputFlags(qualityCmd, &qualityConfig)
}

func runQuality(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	quality := func(_ context.Context, docs []string) (types.QualityReport, error) {
		return rt.engine.Quality(docs[0]), nil
	}

	if err := common.RunScoringCommand(cmd.Context(), rt.logger, rt.reader, qualityConfig, args, quality, nil); err != nil {
		return fmt.Errorf("failed to assess résumé quality: %w", err)
	}
	return nil
}
