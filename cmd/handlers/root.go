package handlers

import (
	"fmt"
	"os"

	"almanac/internal/config"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "almanac",
		Short: "Almanac curates a daily list of verified historical events.",
		Long: `Almanac combines an encyclopedic "on this day" feed with an optional
LLM-generated candidate list, corroborates each item's calendar day
against independent evidence, then scores and selects a bounded,
balanced set for the date.

Run 'almanac curate' for a one-shot JSON result, or 'almanac serve' to
expose the pipeline over HTTP.`,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.almanac.yaml)")

	rootCmd.AddCommand(NewCurateCmd())
	rootCmd.AddCommand(NewServeCmd())

	return rootCmd
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
