package cmd

import (
	"fmt"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"

	errwrap "github.com/lughati/lughati/internal/errors"
	"github.com/lughati/lughati/internal/observability"
	"github.com/lughati/lughati/internal/output"
	"github.com/lughati/lughati/internal/store"
)

var (
	usageFormat string
	usageSince  time.Duration
	usageEvents int
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize recorded usage from the ledger",
	Long: `Summarize admission decisions recorded in the usage ledger.

Requires the usage store to be enabled (store.enabled). The ledger is
observability-only: it never influences admission decisions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		if !cfg.Store.Enabled {
			return errwrap.NewConfigInvalidError("usage store is disabled (set store.enabled or LUGHATI_STORE_ENABLED)")
		}

		format, err := output.ParseFormat(usageFormat)
		if err != nil {
			return err
		}

		s, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Failed to open usage store", err)
		}
		defer func() { _ = s.Close() }()

		if err := s.Migrate(cmd.Context()); err != nil {
			ExitWithCode(observability.CLILogger, foundry.ExitFailure, "Failed to migrate usage store", err)
		}

		since := time.Now().UTC().Add(-usageSince)
		summary, err := s.Summarize(cmd.Context(), since)
		if err != nil {
			return errwrap.WrapDatabaseError(cmd.Context(), err, "failed to summarize usage")
		}

		rendered, err := output.FormatUsageSummary(format, summary)
		if err != nil {
			return err
		}
		fmt.Println(rendered)

		if usageEvents > 0 {
			events, err := s.RecentEvents(cmd.Context(), usageEvents)
			if err != nil {
				return errwrap.WrapDatabaseError(cmd.Context(), err, "failed to list usage events")
			}
			rendered, err := output.FormatUsageEvents(format, events)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().StringVarP(&usageFormat, "format", "f", "table", "output format: table, json, markdown")
	usageCmd.Flags().DurationVar(&usageSince, "since", 24*time.Hour, "summarize events newer than this age")
	usageCmd.Flags().IntVar(&usageEvents, "events", 0, "also list the N most recent events")
}
