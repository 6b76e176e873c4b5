package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nrusim",
	Short: "nrusim simulates NR-U and WiFi sharing unlicensed spectrum.",
	Long: `nrusim simulates a 5G NR-U cell that shares unlicensed spectrum ` +
		`with WiFi. Every transmission clears a listen-before-talk check, ` +
		`and a periodic decision engine reassigns users between the ` +
		`sub-bands with either a heuristic or a learned policy.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
