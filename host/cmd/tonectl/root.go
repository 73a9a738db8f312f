package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"calliope/core"
	"calliope/host/config"
	"calliope/host/link"
	"calliope/protocol"
	"calliope/sim"
)

var (
	rootOpts = struct {
		config string
		device string
		sim    bool
	}{}

	cfg config.Config

	rootCmd = &cobra.Command{
		Use:           "tonectl",
		Short:         "Play tones on a Calliope mini",
		Long:          "tonectl drives the speaker of a Calliope mini over its serial link, computes timer settings, and renders the simulated output.",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(rootOpts.config); err != nil {
				return err
			}
			if rootOpts.device != "" {
				cfg.Device = rootOpts.device
			}
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootOpts.config, "config", "c", config.DefaultPath, "settings file")
	rootCmd.PersistentFlags().StringVarP(&rootOpts.device, "device", "d", "", "serial device, overrides the settings file")
	rootCmd.PersistentFlags().BoolVar(&rootOpts.sim, "sim", false, "talk to a simulated device instead of the serial port")

	rootCmd.AddCommand(calcCmd, playCmd, stopCmd, statusCmd, simCmd)
}

// toneArgs parses "<hz> [duty]".
func toneArgs(args []string) (hz, duty uint32, err error) {
	v, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("frequency %q: %w", args[0], err)
	}
	hz = uint32(v)

	duty = cfg.DefaultDuty
	if len(args) > 1 {
		v, err := strconv.ParseUint(args[1], 10, 8)
		if err != nil {
			return 0, 0, fmt.Errorf("duty %q: %w", args[1], err)
		}
		duty = uint32(v)
	}
	return hz, duty, nil
}

// connect opens the link to the configured device or a fresh simulator.
func connect() (*link.Link, *sim.Device, error) {
	if rootOpts.sim {
		dev := sim.NewDevice(cfg.Tone())
		l := link.New(dev)
		if err := l.Identify(); err != nil {
			l.Close()
			return nil, nil, err
		}
		return l, dev, nil
	}

	l, err := link.Connect(cfg.Serial())
	if err != nil {
		return nil, nil, err
	}
	return l, nil, nil
}

func formatState(st protocol.ToneState) string {
	s := fmt.Sprintf("state=%s powered=%t", core.TimerRunState(st.State), st.Powered)
	if st.Period == 0 {
		return s
	}
	tc := core.TimerConfig{
		PrescalerExponent: st.Prescaler,
		PeriodTicks:       uint16(st.Period),
		CompareRising:     uint16(st.Rising),
		CompareFalling:    uint16(st.Falling),
	}
	return s + " " + formatConfig(tc)
}

func formatConfig(c core.TimerConfig) string {
	return fmt.Sprintf("prescaler=2^%d period=%d rising=%d falling=%d output=%dHz",
		c.PrescalerExponent, c.PeriodTicks, c.CompareRising, c.CompareFalling,
		c.OutputHz(cfg.TimerClockHz))
}
