package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/harumemo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of harumemo",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("harumemo version %s\n", strings.TrimSpace(harumemo.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
