package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Ping the recognition sidecar",
	Long: `Ask the daemon to send a healthcheck to the sidecar, starting the
sidecar if it is down. The reply arrives on the event stream; follow it
with 'sberwhisper watch'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := Connect()
		if err != nil {
			return err
		}
		if err := client.Healthcheck(); err != nil {
			return err
		}
		fmt.Println("Healthcheck dispatched.")
		return nil
	},
}
