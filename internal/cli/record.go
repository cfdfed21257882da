package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Control the recording session",
	Long: `Control the dictation session from the command line, equivalent to
pressing and releasing the hotkey. Starts the daemon if needed.`,
}

var recordStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start recording",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := connectEnsured()
		if err != nil {
			return err
		}
		if err := client.Recording("start"); err != nil {
			return err
		}
		fmt.Println("Recording. Run 'sberwhisper record stop' to transcribe.")
		return nil
	},
}

var recordStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop recording and transcribe",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := Connect()
		if err != nil {
			return err
		}
		if err := client.Recording("stop"); err != nil {
			return err
		}
		fmt.Println("Transcribing. The transcript lands on the clipboard.")
		return nil
	},
}

var recordCancelCmd = &cobra.Command{
	Use:   "cancel",
	Short: "Cancel the current recording or transcription",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := Connect()
		if err != nil {
			return err
		}
		if err := client.Recording("cancel"); err != nil {
			return err
		}
		fmt.Println("Cancelled.")
		return nil
	},
}

func init() {
	recordCmd.AddCommand(recordStartCmd)
	recordCmd.AddCommand(recordStopCmd)
	recordCmd.AddCommand(recordCancelCmd)
}

// connectEnsured starts the daemon if necessary before connecting.
func connectEnsured() (*Client, error) {
	if err := EnsureDaemon(); err != nil {
		return nil, err
	}
	return Connect()
}
