package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon, sidecar, and session status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := Connect()
	if err != nil {
		return err
	}
	st, err := client.Status()
	if err != nil {
		return err
	}

	uptime := time.Since(st.StartedAt).Truncate(time.Second)

	fmt.Printf("%s %s\n", styleBrand.Render("Sber Whisper"), styleVersion.Render(st.Version))
	fmt.Printf("  %s  %s\n", styleLabel.Render("Daemon "), styleValue.Render(fmt.Sprintf("pid %d, up %s", st.PID, uptime)))

	if st.Worker.Running {
		detail := fmt.Sprintf("running (pid %d", st.Worker.PID)
		if st.Worker.StartedAt != nil {
			detail += ", up " + time.Since(*st.Worker.StartedAt).Truncate(time.Second).String()
		}
		detail += ")"
		fmt.Printf("  %s  %s\n", styleLabel.Render("Sidecar"), styleSuccess.Render(detail))
	} else {
		fmt.Printf("  %s  %s %s\n",
			styleLabel.Render("Sidecar"),
			styleWarning.Render("stopped"),
			styleHint.Render("(starts on next action)"))
	}

	fmt.Printf("  %s  %s\n", styleLabel.Render("Session"), phaseBadge(st.Session.Phase))
	fmt.Printf("  %s  %s %s\n", styleLabel.Render("Hotkey "), styleValue.Render(st.Hotkey), styleHint.Render("(hold to talk)"))
	fmt.Printf("  %s  %s\n", styleLabel.Render("Lang   "), styleValue.Render(st.LanguageMode))

	if st.Session.LastTranscript != "" {
		fmt.Printf("\n  %s %s\n", styleLabel.Render("Last transcript:"), styleValue.Render(st.Session.LastTranscript))
	}
	if st.Session.LastLatencyMS > 0 {
		detail := fmt.Sprintf("%.0f ms", st.Session.LastLatencyMS)
		if st.Session.Model != "" {
			detail += fmt.Sprintf(" (%s on %s)", st.Session.Model, st.Session.Device)
		}
		fmt.Printf("  %s %s\n", styleLabel.Render("Last latency:   "), styleValue.Render(detail))
	}
	return nil
}
