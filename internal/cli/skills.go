package cli

import (
	"context"
	"fmt"

	"atscore/internal/common"
	"atscore/internal/types"

	"github.com/spf13/cobra"
)

var skillsCmd = &cobra.Command{
	Use:   "skills [resume] [job-description]",
	Short: "Report which job skills the résumé covers and which are missing",
	Long: `Extract skills from both documents using the configured vocabulary and
report the skill coverage score, matched and missing skills, and guidance.`,
	Args:    cobra.ExactArgs(2),
	PreRunE: formatPreRun(&skillsConfig),
	RunE:    runSkills,
}

var skillsConfig common.CommandConfig

func init() {
	addOutputFlags(skillsCmd, &skillsConfig)
}

func runSkills(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}

	gap := func(_ context.Context, docs []string) (types.SkillGapReport, error) {
		return rt.engine.SkillGap(docs[0], docs[1]), nil
	}

	if err := common.RunScoringCommand(cmd.Context(), rt.logger, rt.reader, skillsConfig, args, gap, nil); err != nil {
		return fmt.Errorf("failed to compute skill gap: %w", err)
	}
	return nil
}
