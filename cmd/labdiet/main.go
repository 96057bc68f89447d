package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "labdiet",
		Short:        "Diet recommendations from blood-panel lab values",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(recommendCmd())
	rootCmd.AddCommand(hashAdminKeyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
