package main

import (
	"github.com/spf13/cobra"

	"github.com/pulsecraft/pulsecraft/internal/config"
	"github.com/pulsecraft/pulsecraft/internal/policy"
)

var (
	filterHistory []string
	filterContext []string
	filterMax     int
	filterBlocked []string
)

var filterCmd = &cobra.Command{
	Use:   "filter <comment>...",
	Short: "Run candidate comments through the policy engine",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilter,
}

func init() {
	filterCmd.Flags().StringSliceVar(&filterHistory, "history", nil, "previously posted comments")
	filterCmd.Flags().StringSliceVar(&filterContext, "context", nil, "image-derived context keywords")
	filterCmd.Flags().IntVar(&filterMax, "max", 0, "max accepted suggestions (default 8)")
	filterCmd.Flags().StringSliceVar(&filterBlocked, "blocked", nil, "additional blocked terms")
	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) error {
	maxSuggestions := filterMax
	if maxSuggestions == 0 {
		if cfg, err := config.Load(); err == nil {
			maxSuggestions = cfg.MaxSuggestions
		}
	}

	engine := policy.New(policy.Config{
		AdditionalBlockedTerms: filterBlocked,
	})

	verdict := engine.Evaluate(policy.Input{
		Candidates:      args,
		History:         filterHistory,
		ContextKeywords: filterContext,
		MaxSuggestions:  maxSuggestions,
	})

	return printJSON(verdict)
}
