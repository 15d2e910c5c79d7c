package cli

import (
	"fmt"

	"github.com/compozy/defaultdesk/pkg/version"
	"github.com/spf13/cobra"
)

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Resolve()
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "defaultdesk %s (commit %s, built %s, %s)\n",
				info.Version, info.CommitHash, info.BuildDate, info.GoVersion)
			return err
		},
	}
}
