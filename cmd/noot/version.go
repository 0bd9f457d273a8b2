package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nootverse/noot"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of noot",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("noot version %s\n", strings.TrimSpace(noot.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
