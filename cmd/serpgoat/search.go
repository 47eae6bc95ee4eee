package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/serpgoat/internal/config"
	"github.com/IshaanNene/serpgoat/internal/observability"
	"github.com/IshaanNene/serpgoat/pkg/serpgoat"
)

var (
	searchMaxPages  int
	searchFormat    string
	searchOutput    string
	searchDriver    string
	searchNoExtract bool
)

// searchCmd creates the "search" subcommand.
func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <keyword> [date MM/DD/YYYY]",
		Short: "Search a keyword and export enriched results",
		Long: `Search a keyword, optionally restricted to one day, and export every
result with its platform, extracted content and sentiment.

Examples:
  serpgoat search "acme corp reviews"
  serpgoat search "acme corp news" 01/15/2024 --format csv`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchMaxPages, "max-pages", 0, "maximum results pages (0 = config value)")
	cmd.Flags().StringVarP(&searchFormat, "format", "f", "", "output format: json, jsonl, csv, mongodb")
	cmd.Flags().StringVarP(&searchOutput, "output", "o", "", "output directory")
	cmd.Flags().StringVar(&searchDriver, "driver", "", "page driver: browser or http")
	cmd.Flags().BoolVar(&searchNoExtract, "no-extract", false, "skip per-platform content extraction")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applySearchFlags(cfg)

	logger := observability.NewLogger(cfg.Logging, verbose)
	metrics := observability.NewMetrics(logger)

	client, err := serpgoat.New(
		serpgoat.WithConfig(cfg),
		serpgoat.WithLogger(logger),
		serpgoat.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Metrics.Enabled {
		if err := metrics.StartServer(ctx, cfg.Metrics.Port, cfg.Metrics.Path); err != nil {
			logger.Warn("failed to start metrics server", "error", err)
		}
	}

	date := ""
	if len(args) > 1 {
		date = args[1]
	}

	report, err := client.Run(ctx, args[0], date)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	counts := make(map[string]int)
	for _, r := range report.Results {
		counts[string(r.Sentiment)]++
	}
	fmt.Fprintf(out, "Search complete in %s\n", report.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(out, "   Keyword:   %s\n", report.Query.Keyword)
	fmt.Fprintf(out, "   Results:   %d (%d positive, %d neutral, %d negative)\n",
		len(report.Results), counts["Positive"], counts["Neutral"], counts["Negative"])
	if report.Output != "" {
		fmt.Fprintf(out, "   Output:    %s\n", report.Output)
	} else {
		fmt.Fprintf(out, "   Output:    %s\n", cfg.Output.Format)
	}
	fmt.Fprintf(out, "   Run ID:    %s\n", report.RunID)
	return nil
}

// applySearchFlags applies command-line flag values to the config.
func applySearchFlags(cfg *config.Config) {
	if searchMaxPages > 0 {
		cfg.Search.MaxPages = searchMaxPages
	}
	if searchFormat != "" {
		cfg.Output.Format = strings.ToLower(searchFormat)
	}
	if searchOutput != "" {
		cfg.Output.Directory = searchOutput
	}
	if searchDriver != "" {
		cfg.Scraping.Driver = strings.ToLower(searchDriver)
	}
	if searchNoExtract {
		cfg.Extraction.Enabled = false
	}
}
