// Package cli implements the consultcrew command line interface.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/consultcrew/consultcrew/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"   ___                      _ _    ___\n" +
		"  / __\\___  _ __  ___ _   _| | |_ / __\\ __ _____      __\n" +
		" / /  / _ \\| '_ \\/ __| | | | | __/ /  | '__/ _ \\ \\ /\\ / /\n" +
		"/ /__| (_) | | | \\__ \\ |_| | | |/ /___| | |  __/\\ V  V /\n" +
		"\\____/\\___/|_| |_|___/\\__,_|_|\\__\\____/|_|  \\___| \\_/\\_/\n"
)

var rootCmd = &cobra.Command{
	Use:   "consultcrew",
	Short: "ConsultCrew - multi-team consulting deliverable pipeline",
	Long:  color.CyanString(logo) + "\nSequential multi-team agent workflows producing consulting deliverables.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("ConsultCrew Version")
		fmt.Printf("Version: %s\n", version)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(teamsCmd)
	rootCmd.AddCommand(memoryCmd)
}
