package cli

import (
	"fmt"

	"atscore/internal/common"
	"atscore/internal/errors"
	"atscore/internal/report"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [resume] [job-description]",
	Short: "Render the full analysis as a PDF report",
	Long: `Analyze a résumé against a job description and render the result as a PDF
with score bars, a readiness radar chart, the skill gap and guidance.

The PDF is written to --output, or to stdout when no file is given.`,
	Args: cobra.ExactArgs(2),
	RunE: runReport,
}

var (
	reportOutput  string
	reportWeights weightFlags
)

func init() {
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "PDF output file path (default: stdout)")
	addWeightFlags(reportCmd, &reportWeights)
}

func runReport(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	weights, err := reportWeights.resolve(cmd, rt.engine.ReadinessWeights())
	if err != nil {
		return err
	}

	fileProcessor := common.NewFileProcessor(rt.logger, rt.reader)
	if err := fileProcessor.ValidateOutputFile(reportOutput); err != nil {
		return err
	}
	docs, err := fileProcessor.ReadDocuments(cmd.Context(), args...)
	if err != nil {
		return err
	}

	analysis := rt.engine.Analyze(cmd.Context(), docs[0], docs[1], weights)
	pdf, err := report.NewGenerator().Bytes(analysis)
	if err != nil {
		return errors.NewScoringError(errors.ErrCodeReportFailed, "failed to render PDF report", err)
	}

	if err := common.NewOutputHandler(rt.logger).HandleBinary(pdf, reportOutput); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	rt.logger.Info("Report generated", "analysis_id", analysis.ID, "bytes", len(pdf))
	return nil
}
