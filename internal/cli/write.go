package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ozzus/logroute/internal/domain"
	"ozzus/logroute/internal/logwrite"
	"ozzus/logroute/internal/sink"
)

var (
	writeTarget string
	writeLevel  string
)

func init() {
	writeCmd.Flags().StringVarP(&writeTarget, "target", "t", "console", "console, file or network")
	writeCmd.Flags().StringVarP(&writeLevel, "level", "l", "info", "debug, info, warn or error")
	rootCmd.AddCommand(writeCmd)
}

var writeCmd = &cobra.Command{
	Use:   "write [message...]",
	Short: "Write one record to console or " + logwrite.DefaultFileName,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		target, err := domain.ParseTarget(writeTarget)
		if err != nil {
			return err
		}
		level, err := domain.ParseLevel(writeLevel)
		if err != nil {
			return err
		}

		defer func() {
			if r := recover(); r != nil {
				if e, ok := r.(error); ok && errors.Is(e, sink.ErrNotImplemented) {
					err = fmt.Errorf("%s target: %w", target, e)
					return
				}
				panic(r)
			}
		}()

		return logwrite.Write(target, level, strings.Join(args, " "))
	},
}
