package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apihttp "ozzus/logroute/internal/api/http"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print logroute version",
	Run: func(cmd *cobra.Command, args []string) {
		// keep output simple for scripting
		fmt.Fprintln(cmd.OutOrStdout(), apihttp.Version)
	},
}
