package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the Go toolchain it was built with",
	Run: func(cmd *cobra.Command, args []string) {
		v, goVersion := version, "unknown"
		if info, ok := debug.ReadBuildInfo(); ok {
			goVersion = info.GoVersion
			if v == "(devel)" && info.Main.Version != "" {
				v = info.Main.Version
			}
		}
		fmt.Printf("adaptiq %s (%s)\n", v, goVersion)
	},
}
