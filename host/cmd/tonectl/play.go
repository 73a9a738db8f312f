package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"calliope/protocol"
)

var (
	playCmd = &cobra.Command{
		Use:   "play <hz> [duty]",
		Short: "Start a tone",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hz, duty, err := toneArgs(args)
			if err != nil {
				return err
			}
			if duty > 0xFF {
				duty = 0xFF
			}
			return withLink(cmd, func(l linkClient) (protocol.ToneState, error) {
				return l.StartTone(hz, uint8(duty))
			})
		},
	}

	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Silence the speaker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLink(cmd, linkClient.StopTone)
		},
	}

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the tone engine state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLink(cmd, linkClient.Query)
		},
	}
)

// linkClient is the part of link.Link the commands use.
type linkClient interface {
	StartTone(hz uint32, dutyPercent uint8) (protocol.ToneState, error)
	StopTone() (protocol.ToneState, error)
	Query() (protocol.ToneState, error)
}

func withLink(cmd *cobra.Command, do func(linkClient) (protocol.ToneState, error)) error {
	l, _, err := connect()
	if err != nil {
		return err
	}
	defer l.Close()

	st, err := do(l)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), formatState(st))
	return nil
}
