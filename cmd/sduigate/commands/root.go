// Package commands implements the sduigate command tree.
package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "sduigate",
	Short: "Gateway for round-display SDUI voice terminals",
	Long: `sduigate - real-time gateway for round-display voice terminals.

Terminals connect over a persistent WebSocket and speak the SDUI
protocol: the server renders every screen as a JSON layout tree,
receives audio captures and telemetry, and drives a speech-to-text,
chat completion, and text-to-speech pipeline per device.

Examples:
  sduigate run --config gateway.yaml
  sduigate run --listen :8080 --console`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
