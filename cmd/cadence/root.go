package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/hyperengineering/cadence/internal/app"
	"github.com/hyperengineering/cadence/internal/calendar"
	"github.com/hyperengineering/cadence/internal/config"
	"github.com/hyperengineering/cadence/internal/cooldown"
	"github.com/hyperengineering/cadence/internal/engine"
	"github.com/hyperengineering/cadence/internal/generator"
	"github.com/hyperengineering/cadence/internal/github"
	"github.com/hyperengineering/cadence/internal/schedule"
	"github.com/hyperengineering/cadence/internal/store"
	"github.com/hyperengineering/cadence/internal/strategy"
	"github.com/hyperengineering/cadence/internal/trending"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "cadence",
	Short: "Cadence - content selection and posting engine",
	Long:  "Selects topics, generates drafts, validates them against history, and posts on a schedule.",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(queueCmd)
}

// initLogger configures the global slog logger from config.
func initLogger(cfg *config.Config) {
	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Log.Level)}
	if cfg.Log.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildApp assembles the full engine from config. The caller owns the
// returned store and must Close it.
func buildApp(cfg *config.Config) (*app.App, *store.SQLiteStore, error) {
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, nil, err
	}

	tracker, err := cooldown.New(db,
		time.Duration(cfg.Validation.CooldownWindow),
		cfg.Validation.CooldownMaxTopics)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	var trendingSrc strategy.TrendingSource
	if cfg.Content.TrendingFeed != "off" {
		trendingSrc = trending.New(cfg.Content.TrendingFeed, 10*time.Second)
	}
	selector := strategy.New(tracker, trendingSrc, cfg.Content.FallbackTopic)

	cal, err := calendar.Load(cfg.Content.CalendarPath)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	fallbackGen := generator.NewTemplate(cfg.Content.Hashtags, nil)
	var gen generator.Generator = fallbackGen
	if cfg.Generation.APIKey != "" {
		gh := github.NewClient(cfg.GitHub.Token, time.Duration(cfg.GitHub.Timeout))
		primary := generator.NewOpenAI(
			cfg.Generation.APIKey,
			cfg.Generation.Model,
			cfg.Generation.BaseURL,
			gh,
		)
		gen = generator.WithFallback(primary, fallbackGen)
	} else {
		slog.Warn("no API key configured, using template generator only")
	}

	ctrl := engine.New(selector, gen, db, tracker, engine.Config{
		MinQuality:          cfg.Validation.MinQuality,
		SimilarityThreshold: cfg.Validation.SimilarityThreshold,
		MaxAttempts:         cfg.Validation.MaxAttempts,
		HistoryWindow:       cfg.Validation.HistoryWindow,
		ExhaustedPolicy:     engine.ExhaustedPolicy(cfg.Validation.ExhaustedPolicy),
	}, nil, nil)

	gate := schedule.New(db,
		time.Duration(cfg.Schedule.Interval),
		time.Duration(cfg.Schedule.Jitter))

	a := app.New(db, gate, ctrl, cal, cfg.Content.Topics, nil, nil)
	return a, db, nil
}

// printJSON marshals v to JSON and writes to the given writer.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTabWriter returns a configured tabwriter for aligned columns.
func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// truncate shortens s for table display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
