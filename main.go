package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TFMV/kolgraph/config"
	"github.com/TFMV/kolgraph/fixtures"
	"github.com/TFMV/kolgraph/ingest"
	"github.com/TFMV/kolgraph/logging"
	"github.com/TFMV/kolgraph/models"
)

const defaultFixture = "influence"

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kolgraph",
	Short: "Force-directed layout for HCP influence networks",
	Long: `kolgraph lays out networks of healthcare professionals with a
force-directed simulation and highlights key opinion leaders.

Networks come from the built-in fixtures or from JSON, YAML and CSV files.
Layouts can be rendered once, served live over HTTP or explored in the
terminal.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		}
		logger, err = logging.New(level, cfg.Logging.Development)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(renderCmd, serveCmd, tuiCmd, fixturesCmd, configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reportError(os.Stderr, logger, err)
		os.Exit(1)
	}
}

// reportError logs a failed command. Errors raised before the logger exists,
// such as a bad flag or config file, go to w.
func reportError(w io.Writer, log *zap.Logger, err error) {
	if log == nil {
		fmt.Fprintln(w, "Error:", err)
		return
	}
	log.Error("Command failed", zap.Error(err))
	_ = log.Sync()
}

var errSourceConflict = errors.New("--data and --fixture are mutually exclusive")

// loadNetwork reads a network from a file or a fixture. With neither set the
// default fixture is used.
func loadNetwork(dataPath, fixture string) (*models.Network, error) {
	switch {
	case dataPath != "" && fixture != "":
		return nil, errSourceConflict
	case dataPath != "":
		network, err := ingest.ProcessFile(dataPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Loaded network",
			zap.String("path", dataPath),
			zap.Int("nodes", len(network.Nodes)),
			zap.Int("edges", len(network.Edges)))
		return network, nil
	case fixture == "":
		fixture = defaultFixture
	}
	return fixtures.Load(fixture)
}

// viewport falls back to the configured size for zero dimensions
func viewport(width, height float64) (float64, float64, error) {
	if width < 0 || height < 0 {
		return 0, 0, fmt.Errorf("viewport must be positive, got %gx%g", width, height)
	}
	if width == 0 {
		width = cfg.Viewport.Width
	}
	if height == 0 {
		height = cfg.Viewport.Height
	}
	return width, height, nil
}
