package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X atscore/internal/cli.Version=...".
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the atscore build",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		short, err := cmd.Flags().GetBool("short")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if short {
			_, err = fmt.Fprintln(out, Version)
			return err
		}
		_, err = fmt.Fprintf(out, "atscore %s (commit %s, built %s, %s %s/%s)\n",
			Version, GitCommit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
		return err
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version number")
}
