package handlers

import (
	"encoding/json"
	"fmt"
	"os"

	"almanac/internal/config"

	"github.com/spf13/cobra"
)

// NewCurateCmd creates the curate command for a one-shot pipeline run.
func NewCurateCmd() *cobra.Command {
	var (
		date  string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Curate historical events for a date and print JSON",
		Long: `Run the curation pipeline once and print the result as JSON.

Examples:
  # Curate today's date with defaults
  almanac curate

  # Curate a specific date with a custom result count
  almanac curate --date 1947-08-15 --limit 25`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCurate(cmd, date, limit)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date to curate, YYYY-MM-DD (default: today UTC)")
	cmd.Flags().IntVar(&limit, "limit", 0, "number of items to return (default from config: 25)")

	return cmd
}

func runCurate(cmd *cobra.Command, date string, limit int) error {
	cfg := config.Get()
	runner := newRunner(cfg)

	result := runner.Curate(cmd.Context(), date, limit)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("curation failed: %s", result.Error)
	}
	return nil
}
