package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags "-X github.com/abhisek/quizwhiz/cmd.version=...".
var version = ""

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build details",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := readBuildInfo()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Fprintln(cmd.OutOrStdout(), info.Version)
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "quizwhiz %s\n", info.Version)
		if info.Commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s%s\n", info.Commit, info.dirtyMark())
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  go:     %s %s/%s\n", info.GoVersion, runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version string")
}

type buildInfo struct {
	Version   string
	Commit    string
	Dirty     bool
	GoVersion string
}

func (b buildInfo) dirtyMark() string {
	if b.Dirty {
		return " (modified)"
	}
	return ""
}

// readBuildInfo prefers the ldflags version, then the module version
// recorded by `go install`, then "(devel)".
func readBuildInfo() buildInfo {
	b := buildInfo{Version: version, GoVersion: runtime.Version()}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		if b.Version == "" {
			b.Version = "(devel)"
		}
		return b
	}
	if b.Version == "" {
		b.Version = bi.Main.Version
	}
	if b.Version == "" {
		b.Version = "(devel)"
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			b.Commit = s.Value
			if len(b.Commit) > 12 {
				b.Commit = b.Commit[:12]
			}
		case "vcs.modified":
			b.Dirty = s.Value == "true"
		}
	}
	return b
}
