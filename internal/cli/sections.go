package cli

import (
	"context"
	"fmt"

	"atscore/internal/common"
	"atscore/internal/types"

	"github.com/spf13/cobra"
)

var sectionsCmd = &cobra.Command{
	Use:     "sections [resume]",
	Short:   "Split a résumé into its skills, experience, education and projects sections",
	Args:    cobra.ExactArgs(1),
	PreRunE: formatPreRun(&sectionsConfig),
	RunE:    runSections,
}

var sectionsConfig common.CommandConfig

func init() {
	addOutputFlags(sectionsCmd, &sectionsConfig)
}

func runSections(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	extract := func(_ context.Context, docs []string) (types.SectionMap, error) {
		return rt.engine.Sections(docs[0]), nil
	}

	if err := common.RunScoringCommand(cmd.Context(), rt.logger, rt.reader, sectionsConfig, args, extract, nil); err != nil {
		return fmt.Errorf("failed to extract sections: %w", err)
	}
	return nil
}
