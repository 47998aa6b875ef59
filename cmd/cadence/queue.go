package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyperengineering/cadence/internal/config"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Manage the pending repository queue",
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending repositories",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queueAddCmd = &cobra.Command{
	Use:   "add <owner/repo>",
	Short: "Queue a repository for the next post",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueAdd,
}

func init() {
	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queueAddCmd)
}

func openQueueStore() (*store.SQLiteStore, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	initLogger(cfg)

	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}
	return db, cfg, nil
}

func runQueueList(cmd *cobra.Command, args []string) error {
	db, _, err := openQueueStore()
	if err != nil {
		return err
	}
	defer db.Close()

	pending, err := db.PendingRepos(context.Background())
	if err != nil {
		return fmt.Errorf("load queue: %w", err)
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"pending": pending,
			"total":   len(pending),
		})
	}

	if len(pending) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty.")
		return nil
	}
	for _, repo := range pending {
		fmt.Fprintln(cmd.OutOrStdout(), repo)
	}
	return nil
}

func runQueueAdd(cmd *cobra.Command, args []string) error {
	repo := strings.TrimSpace(args[0])
	if !strings.Contains(repo, "/") {
		return fmt.Errorf("repo must be \"owner/name\", got %q", repo)
	}

	db, _, err := openQueueStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnqueueRepo(context.Background(), repo, time.Now().UTC()); err != nil {
		return fmt.Errorf("enqueue %s: %w", repo, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Queued %s\n", repo)
	return nil
}
