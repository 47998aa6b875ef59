package main

import (
	"context"
	"fmt"
	"time"

	"github.com/hyperengineering/cadence/internal/config"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Show topic usage and cooldown status",
	Args:  cobra.NoArgs,
	RunE:  runTopics,
}

func runTopics(cmd *cobra.Command, args []string) error {
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

	usage, err := db.ListTopicUsage(context.Background(), cfg.Validation.CooldownMaxTopics)
	if err != nil {
		return fmt.Errorf("load topic usage: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"topics": usage,
			"total":  len(usage),
		})
	}

	if len(usage) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No topics used yet.")
		return nil
	}

	window := time.Duration(cfg.Validation.CooldownWindow)
	now := time.Now()

	w := newTabWriter(cmd.OutOrStdout())
	fmt.Fprintln(w, "LAST USED\tSTATUS\tTOPIC")
	for _, u := range usage {
		status := "available"
		if now.Sub(u.LastUsedAt) < window {
			until := u.LastUsedAt.Add(window)
			status = fmt.Sprintf("cooldown until %s", until.Format("2006-01-02"))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			u.LastUsedAt.Format("2006-01-02 15:04"),
			status,
			truncate(u.Topic, 60),
		)
	}
	w.Flush()

	return nil
}
