// Package main implements compat-analyze, an operator tool that runs compatibility
// analyses directly against the scoring service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "compat-analyze",
	Short:         "Run candidate/offer compatibility analyses",
	Long:          "compat-analyze calls the AI scoring service for one candidate and one or more offers and prints the consolidated compatibility analyses.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
