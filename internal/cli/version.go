package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sber-whisper/desktop/internal/buildinfo"
)

var versionVerbose bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Aliases: []string{"v"},
	Short:   "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s %s\n", styleBrand.Render("Sber Whisper"), buildinfo.Version)
		if !versionVerbose {
			return
		}
		fmt.Printf("  %s %s\n", styleLabel.Render("commit "), buildinfo.CommitHash)
		fmt.Printf("  %s %s\n", styleLabel.Render("built  "), buildinfo.BuildDate)
		fmt.Printf("  %s %s/%s (%s)\n", styleLabel.Render("target "), runtime.GOOS, runtime.GOARCH, runtime.Version())

		if client, err := Connect(); err == nil {
			if st, err := client.Status(); err == nil && st.Version != buildinfo.Version {
				fmt.Printf("  %s running daemon is %s\n", styleWarning.Render("note   "), st.Version)
			}
		}
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "V", false, "include commit, build date and daemon version")
}
