package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of the store and its adapter",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc := openService(context.Background())
		defer svc.Close()

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(map[string]any{
			"component": svc.ComponentType(),
			"state":     svc.State(),
		}); err != nil {
			fatal("Failed to encode status", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
