package main

import (
	"context"
	"fmt"

	"github.com/hyperengineering/cadence/internal/config"
	"github.com/spf13/cobra"
)

var runForce bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute one posting run",
	Long:  "Selects a topic, generates and validates a draft, and records the accepted post. Respects the schedule gate unless --force is given.",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().BoolVar(&runForce, "force", false, "Bypass the schedule gate")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	initLogger(cfg)

	a, db, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	item, err := a.RunOnce(context.Background(), runForce)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), item)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Accepted %s\n", item.ID)
	fmt.Fprintf(out, "  source:  %s\n", item.Source)
	fmt.Fprintf(out, "  topic:   %s\n", item.Topic)
	fmt.Fprintf(out, "  quality: %d\n", item.QualityScore)
	fmt.Fprintln(out)
	fmt.Fprintln(out, item.Text)
	return nil
}
