package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"calliope/core"
)

var calcCmd = &cobra.Command{
	Use:   "calc <hz> [duty]",
	Short: "Print the timer settings for a tone",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hz, duty, err := toneArgs(args)
		if err != nil {
			return err
		}
		c, err := core.ComputeTimerConfig(hz, duty, cfg.TimerClockHz, cfg.TimerBits)
		if err != nil {
			return fmt.Errorf("%d Hz at %d%%: %w", hz, duty, err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatConfig(c))
		return nil
	},
}
