package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set via -ldflags at build time.
var version = "(devel)"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(app, version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
