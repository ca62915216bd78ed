package main

import (
	"github.com/spf13/cobra"

	"github.com/TFMV/kolgraph/physics"
	"github.com/TFMV/kolgraph/tui"
)

var tuiFlags struct {
	data    string
	fixture string
	seed    int64
	jitter  bool
}

// tuiCmd explores a layout in the terminal
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Explore a live layout in the terminal",
	Long: `Runs the simulation in the terminal. Hover a node for its details,
drag it with the left mouse button to pin it.

Keys: p pause, j toggle jitter, ? help, q quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		network, err := loadNetwork(tuiFlags.data, tuiFlags.fixture)
		if err != nil {
			return err
		}

		seed := cfg.ResolveSeed(tuiFlags.seed)
		opts := cfg.StateOptions(seed)
		jitter := cfg.NewJitter(seed)
		if tuiFlags.jitter {
			opts = append(opts, physics.WithPerturber(jitter))
		}
		state := physics.Initialize(network, cfg.Viewport.Width, cfg.Viewport.Height, opts...)

		return tui.Run(cmd.Context(), state, tui.Options{
			Title:  network.Name,
			FPS:    cfg.Loop.FPS,
			Jitter: jitter,
		})
	},
}

func init() {
	f := tuiCmd.Flags()
	f.StringVarP(&tuiFlags.data, "data", "d", "", "Network file (json, yaml, csv)")
	f.StringVar(&tuiFlags.fixture, "fixture", "", "Built-in network")
	f.Int64Var(&tuiFlags.seed, "seed", 0, "Random seed for initial positions")
	f.BoolVar(&tuiFlags.jitter, "jitter", false, "Start with jitter enabled")
}
