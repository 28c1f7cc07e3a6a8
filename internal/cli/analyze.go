package cli

import (
	"context"
	"fmt"

	"atscore/internal/common"
	"atscore/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume] [job-description]",
	Short: "Run the full ATS analysis of a résumé against a job description",
	Long: `Analyze a résumé against a job description and report every signal:

- Semantic, keyword and final ATS scores
- Skill coverage with matched and missing skills
- Résumé quality (length, quantified achievements, sections)
- Recruiter readiness, classification and market percentile
- Improvement guidance

Documents may be local .txt, .md, .pdf or .docx files, or s3://bucket/key.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: formatPreRun(&analyzeConfig),
	RunE:    runAnalyze,
}

var (
	analyzeConfig  common.CommandConfig
	analyzeWeights weightFlags
)

func init() {
	addOutputFlags(analyzeCmd, &analyzeConfig)
	addWeightFlags(analyzeCmd, &analyzeWeights)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	weights, err := analyzeWeights.resolve(cmd, rt.engine.ReadinessWeights())
	if err != nil {
		return err
	}

	logDetails := func(docs []string, cfg common.CommandConfig) {
		rt.logger.Info("Starting résumé analysis",
			"resume_chars", len(docs[0]),
			"job_chars", len(docs[1]),
			"output_format", cfg.OutputFormat)
	}

	analyze := func(ctx context.Context, docs []string) (types.AnalysisReport, error) {
		return rt.engine.Analyze(ctx, docs[0], docs[1], weights), nil
	}

	if err := common.RunScoringCommand(cmd.Context(), rt.logger, rt.reader, analyzeConfig, args, analyze, logDetails); err != nil {
		return fmt.Errorf("failed to analyze résumé: %w", err)
	}
	rt.logger.Info("Résumé analysis completed successfully")
	return nil
}
