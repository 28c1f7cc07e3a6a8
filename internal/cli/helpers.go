package cli

import (
	"fmt"

	"atscore/internal/common"
	"atscore/internal/config"
	"atscore/internal/document"
	"atscore/internal/errors"
	"atscore/internal/scoring"
	"atscore/internal/types"

	"github.com/spf13/cobra"
)

// cmdRuntime is what a scoring command needs: an engine and a document reader
type cmdRuntime struct {
	cfg    *config.Config
	logger *errors.Logger
	engine *scoring.Engine
	reader *document.Reader
}

func newRuntime(cmd *cobra.Command) (*cmdRuntime, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	engine, err := scoring.BuildEngine(cfg, logger, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build scoring engine: %w", err)
	}

	return &cmdRuntime{
		cfg:    cfg,
		logger: logger,
		engine: engine,
		reader: document.NewReader(cfg.Document, cfg.App.MaxFileSize, logger),
	}, nil
}

// addOutputFlags registers --output and --format on cmd
func addOutputFlags(cmd *cobra.Command, cc *common.CommandConfig) {
	cmd.Flags().StringVarP(&cc.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&cc.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.UsableFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// formatPreRun applies the default format and checks it is supported
func formatPreRun(cc *common.CommandConfig) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if cc.OutputFormat == "" {
			cc.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats)
	}
}

// weightFlags holds per-dimension readiness weight overrides
type weightFlags struct {
	semantic, keyword, skill, quality float64
}

func addWeightFlags(cmd *cobra.Command, wf *weightFlags) {
	cmd.Flags().Float64Var(&wf.semantic, "weight-semantic", 0, "Readiness weight for the semantic score (default from config)")
	cmd.Flags().Float64Var(&wf.keyword, "weight-keyword", 0, "Readiness weight for the keyword score (default from config)")
	cmd.Flags().Float64Var(&wf.skill, "weight-skill", 0, "Readiness weight for the skill score (default from config)")
	cmd.Flags().Float64Var(&wf.quality, "weight-quality", 0, "Readiness weight for the quality score (default from config)")
}

// resolve overlays the flags that were set on fallback and renormalizes the
// result to sum to 1.
func (wf *weightFlags) resolve(cmd *cobra.Command, fallback types.WeightVector) (types.WeightVector, error) {
	w := fallback
	flags := cmd.Flags()
	if flags.Changed("weight-semantic") {
		w.Semantic = wf.semantic
	}
	if flags.Changed("weight-keyword") {
		w.Keyword = wf.keyword
	}
	if flags.Changed("weight-skill") {
		w.Skill = wf.skill
	}
	if flags.Changed("weight-quality") {
		w.Quality = wf.quality
	}
	if err := w.Validate(); err != nil {
		return types.WeightVector{}, errors.NewValidationError(errors.ErrCodeInvalidWeights,
			"invalid readiness weights", err)
	}
	return w.Normalize(), nil
}
