package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ozzus/logroute/internal/enumerate"
)

var (
	enumerateV1     bool
	enumerateFilter string
)

func init() {
	enumerateCmd.Flags().BoolVar(&enumerateV1, "v1", false, "use the predicate version instead of filter-map")
	enumerateCmd.Flags().StringVar(&enumerateFilter, "filter", "all", "all or nonblank")
	rootCmd.AddCommand(enumerateCmd)
}

var enumerateCmd = &cobra.Command{
	Use:   "enumerate [value...]",
	Short: "Filter values and print them numbered from 0",
	RunE: func(cmd *cobra.Command, args []string) error {
		keep := enumerate.Present
		switch enumerateFilter {
		case "all":
		case "nonblank":
			keep = enumerate.NonBlank
		default:
			return fmt.Errorf("unknown filter %q", enumerateFilter)
		}

		var out []enumerate.Indexed[string]
		if enumerateV1 {
			out = enumerate.FilterEnumerate(args, keep)
		} else {
			out = enumerate.FilterMapEnumerate(args, enumerate.Keep[string](keep))
		}

		w := cmd.OutOrStdout()
		for _, p := range out {
			fmt.Fprintln(w, p)
		}
		return nil
	},
}
