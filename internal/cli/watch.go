package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sber-whisper/desktop/internal/daemon/asr"
	"github.com/sber-whisper/desktop/internal/daemon/bus"
	"github.com/sber-whisper/desktop/internal/models"
	"github.com/sber-whisper/desktop/internal/tui"
)

var (
	watchJSON  bool
	watchPlain bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch daemon events live",
	Long: `Watch daemon events live: recordings, transcripts, sidecar errors and
settings changes.

On a terminal this opens an interactive screen. When stdout is a pipe
(or with --plain/--json) events are printed one per line instead.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchJSON, "json", false, "print events as JSON lines")
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "print events as plain lines even on a terminal")
}

func runWatch(cmd *cobra.Command, args []string) error {
	client, err := Connect()
	if err != nil {
		return err
	}

	interactive := term.IsTerminal(int(os.Stdout.Fd())) && !watchJSON && !watchPlain
	if interactive {
		return tui.Run(client)
	}
	return streamLines(client)
}

// streamLines is the non-TTY mode: one line per event until interrupted.
func streamLines(client *Client) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := client.StreamEvents(ctx, 0, func(ev models.StreamEvent) {
		if watchJSON {
			if line, err := json.Marshal(ev); err == nil {
				fmt.Println(string(line))
			}
			return
		}
		if line := formatEventLine(ev); line != "" {
			fmt.Println(line)
		}
	})
	if err == context.Canceled {
		return nil
	}
	return err
}

func formatEventLine(ev models.StreamEvent) string {
	stamp := time.Now().Format("15:04:05")

	switch ev.Type {
	case bus.EventASR:
		var worker asr.Event
		if err := json.Unmarshal(ev.Data, &worker); err != nil {
			return fmt.Sprintf("%s  asr      <unreadable event>", stamp)
		}
		return fmt.Sprintf("%s  asr      %s", stamp, summarizeWorkerEvent(worker))

	case bus.EventRecordingState:
		var state struct {
			Phase string `json:"phase"`
		}
		_ = json.Unmarshal(ev.Data, &state)
		return fmt.Sprintf("%s  session  %s", stamp, state.Phase)

	case bus.EventSettingsChanged:
		return fmt.Sprintf("%s  settings changed", stamp)

	case bus.EventPopupShow:
		return ""

	default:
		return fmt.Sprintf("%s  %s %s", stamp, ev.Type, strings.TrimSpace(string(ev.Data)))
	}
}

func summarizeWorkerEvent(ev asr.Event) string {
	switch ev.Name() {
	case asr.EvPartialTranscript:
		text, _ := ev.Text()
		return "partial: " + text
	case asr.EvFinalTranscript:
		text, _ := ev.Text()
		return "transcript: " + text
	case asr.EvError:
		return "error: " + ev.Message()
	case asr.EvMetrics:
		if v, ok := ev.Num("latency_ms"); ok {
			return fmt.Sprintf("metrics: latency %.0fms", v)
		}
		return "metrics"
	default:
		return ev.Name()
	}
}
