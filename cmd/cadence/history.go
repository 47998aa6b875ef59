package main

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cadence/internal/config"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently posted content",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 30, "Maximum entries to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	items, err := db.RecentContent(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"items": items,
			"total": len(items),
		})
	}

	if len(items) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No posts yet.")
		return nil
	}

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "PUBLISHED\tSOURCE\tQUALITY\tTOPIC")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			item.PublishedAt.Format("2006-01-02 15:04"),
			item.Source,
			item.QualityScore,
			truncate(item.Topic, 60),
		)
	}
	w.Flush()

	return nil
}
