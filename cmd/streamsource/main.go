// ABOUTME: Main entry point for the stream media source host
// ABOUTME: Cobra root command with shared logging flags
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/harper/stream-media-source/internal/application/config"
	"github.com/harper/stream-media-source/internal/application/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "streamsource",
		Short: "Serve media from caller-owned byte streams",
		Long: `streamsource plays the media host for stream-backed data sources.

Media items are opened once from files or HTTP downloads and lent to pull
data sources (plain GETs) and push resource loaders (HEAD and Range GETs).`,
		SilenceUsage: true,
	}

	addLogFlags(root.PersistentFlags())
	root.AddCommand(newServeCmd(), newProbeCmd())
	return root
}

func addLogFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "log file path, rotated (default stderr)")
	flags.Bool("log-json", false, "log as JSON")
}

// setupLogging applies flag overrides on top of cfg.
func setupLogging(cmd *cobra.Command, cfg config.LoggingConfig) (zerolog.Logger, error) {
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-file") {
		cfg.File, _ = flags.GetString("log-file")
	}
	if flags.Changed("log-json") {
		cfg.JSON, _ = flags.GetBool("log-json")
	}
	return logging.New(cfg)
}
