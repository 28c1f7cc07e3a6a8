package cli

import (
	"context"
	"fmt"

	"atscore/internal/common"
	"atscore/internal/errors"
	"atscore/internal/types"

	"github.com/spf13/cobra"
)

var readinessCmd = &cobra.Command{
	Use:   "readiness [resume job-description]",
	Short: "Compute recruiter readiness from documents or from known scores",
	Long: `Compute the recruiter readiness score, its classification and market percentile.

With two documents, every dimension is scored first. With no arguments the
dimension scores are taken from --semantic, --keyword, --skill and --quality,
which lets you recombine earlier results under different weights:

  atscore readiness --semantic 80 --keyword 60 --skill 100 --quality 40 \
    --weight-semantic 0.4 --weight-keyword 0.3 --weight-skill 0.2 --weight-quality 0.1`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected a résumé and a job description, or no arguments, got %d", len(args))
		}
		return nil
	},
	PreRunE: formatPreRun(&readinessConfig),
	RunE:    runReadiness,
}

var (
	readinessConfig  common.CommandConfig
	readinessWeights weightFlags
	readinessDims    struct {
		semantic, keyword, skill, quality float64
	}
)

func init() {
	addOutputFlags(readinessCmd, &readinessConfig)
	addWeightFlags(readinessCmd, &readinessWeights)

	readinessCmd.Flags().Float64Var(&readinessDims.semantic, "semantic", 0, "Semantic score (0-100), used without documents")
	readinessCmd.Flags().Float64Var(&readinessDims.keyword, "keyword", 0, "Keyword score (0-100), used without documents")
	readinessCmd.Flags().Float64Var(&readinessDims.skill, "skill", 0, "Skill score (0-100), used without documents")
	readinessCmd.Flags().Float64Var(&readinessDims.quality, "quality", 0, "Quality score (0-100), used without documents")
}

func runReadiness(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	weights, err := readinessWeights.resolve(cmd, rt.engine.ReadinessWeights())
	if err != nil {
		return err
	}

	if len(args) == 0 {
		dims, err := dimensionsFromFlags()
		if err != nil {
			return err
		}
		return common.NewOutputHandler(rt.logger).HandleOutput(rt.engine.Readiness(dims, weights), readinessConfig)
	}

	readiness := func(ctx context.Context, docs []string) (types.ReadinessResult, error) {
		report := rt.engine.Analyze(ctx, docs[0], docs[1], weights)
		return rt.engine.Readiness(report.Dimensions(), weights), nil
	}

	if err := common.RunScoringCommand(cmd.Context(), rt.logger, rt.reader, readinessConfig, args, readiness, nil); err != nil {
		return fmt.Errorf("failed to compute readiness: %w", err)
	}
	return nil
}

func dimensionsFromFlags() (types.Dimensions, error) {
	values := []struct {
		name  string
		value float64
	}{
		{"semantic", readinessDims.semantic},
		{"keyword", readinessDims.keyword},
		{"skill", readinessDims.skill},
		{"quality", readinessDims.quality},
	}
	for _, v := range values {
		if v.value < 0 || v.value > 100 {
			return types.Dimensions{}, errors.NewValidationError(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("--%s must be between 0 and 100, got %g", v.name, v.value), nil)
		}
	}
	return types.Dimensions{
		Semantic: types.ScoreValue(readinessDims.semantic),
		Keyword:  types.ScoreValue(readinessDims.keyword),
		Skill:    types.ScoreValue(readinessDims.skill),
		Quality:  types.ScoreValue(readinessDims.quality),
	}, nil
}
