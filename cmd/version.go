package cmd

import (
	"fmt"
	"io"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/qudurat/qudurat/internal/selfupdate"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the running version",
	Long: `Print the running version, the commit it was built from and, with
--check, whether a newer release is published.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		printVersion(out, version, buildCommit())

		if check, _ := cmd.Flags().GetBool("check"); !check {
			return nil
		}
		if version == "(devel)" {
			fmt.Fprintln(out, "Development build; release check skipped.")
			return nil
		}
		res, err := selfupdate.NewChecker(selfupdate.WithTimeout(15*time.Second)).
			Check(cmd.Context(), &selfupdate.CheckInput{Version: version})
		if err != nil {
			return fmt.Errorf("check for updates: %w", err)
		}
		if res.UpdateAvailable {
			fmt.Fprintf(out, "Release %s is available: %s\nRun `qudurat update`, then restart the bot.\n", res.LatestVersion, res.ReleaseURL)
		} else {
			fmt.Fprintln(out, "This is the latest release.")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Also look up the latest release")
}

func printVersion(w io.Writer, version, commit string) {
	if commit == "" {
		fmt.Fprintf(w, "qudurat %s\n", version)
		return
	}
	fmt.Fprintf(w, "qudurat %s (%s)\n", version, commit)
}

// buildCommit returns the short VCS revision stamped by the Go toolchain,
// with a "+dirty" mark for modified trees.
func buildCommit() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var rev string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if rev != "" && dirty {
		rev += "+dirty"
	}
	return rev
}
