// Package cli implements the sberwhisper CLI commands.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "sberwhisper",
	Short: "Control the Sber Whisper dictation daemon",
	Long: `Sber Whisper is a push-to-talk dictation utility. Hold the hotkey to
record, release to transcribe; the transcript lands on the clipboard.
This CLI talks to the sberwhisperd daemon over its local API.`,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Add subcommands (alphabetical)
	rootCmd.AddCommand(daemonCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(healthcheckCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}
