package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"calliope/board"
	"calliope/host/audio"
)

var (
	simOpts = struct {
		duration float64
		out      string
		play     bool
	}{}

	simCmd = &cobra.Command{
		Use:   "sim <hz> [duty]",
		Short: "Render a tone on the simulated device",
		Long:  "Start a tone on a simulated device over the link protocol, render the speaker signal and write it to a WAV file or play it.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			hz, duty, err := toneArgs(args)
			if err != nil {
				return err
			}
			if duty > 0xFF {
				duty = 0xFF
			}

			rootOpts.sim = true
			l, dev, err := connect()
			if err != nil {
				return err
			}
			defer l.Close()

			st, err := l.StartTone(hz, uint8(duty))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatState(st))

			r := audio.NewRenderer(dev, uint8(board.MotorIN1), uint8(board.MotorIN2), cfg.TimerClockHz, cfg.SampleRate)
			samples := r.Samples(simOpts.duration)
			fmt.Fprintf(cmd.OutOrStdout(), "rendered %d samples, peak %.2f\n", len(samples), audio.Peak(samples))

			if simOpts.out != "" {
				f, err := os.Create(simOpts.out)
				if err != nil {
					return err
				}
				if err := audio.WriteWAV(f, samples, cfg.SampleRate); err != nil {
					f.Close()
					return fmt.Errorf("write %s: %w", simOpts.out, err)
				}
				if err := f.Close(); err != nil {
					return err
				}
			}
			if simOpts.play {
				return audio.Play(samples, cfg.SampleRate)
			}
			return nil
		},
	}
)

func init() {
	simCmd.Flags().Float64Var(&simOpts.duration, "duration", 0.25, "seconds to render")
	simCmd.Flags().StringVarP(&simOpts.out, "output", "o", "", "write a WAV file")
	simCmd.Flags().BoolVar(&simOpts.play, "play", false, "play the rendered audio")
}
