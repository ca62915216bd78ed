package main

import (
	"github.com/spf13/cobra"

	"github.com/TFMV/kolgraph/metrics"
	"github.com/TFMV/kolgraph/server"
)

var serveAddr string

// serveCmd hosts live sessions
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve live layout sessions over HTTP",
	Long: `Starts the HTTP server. Each POST /api/sessions creates a simulation
that runs at the configured frame rate until it is deleted or the server
stops. Open /view/{id} in a browser to watch and drag nodes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		srv := server.New(cfg, logger, metrics.DefaultRegistry())
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "Listen address (default from config)")
}
