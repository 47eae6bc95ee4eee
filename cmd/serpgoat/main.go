package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/serpgoat/internal/config"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "serpgoat",
		Short: "Search result acquisition with platform extraction and sentiment",
		Long: `serpgoat searches a keyword on a results page, follows pagination,
classifies every result by platform (news, blogs, forums, social),
extracts the page content where the platform allows it and scores
each result's sentiment.

Output is written as JSON, JSONL, CSV or to MongoDB.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())
	return rootCmd
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "serpgoat %s\n", config.Version)
		},
	}
}

// configCmd creates the "config" subcommand for inspecting configuration.
func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Search:\n")
			fmt.Fprintf(out, "  Base URL:          %s\n", cfg.Search.BaseURL)
			fmt.Fprintf(out, "  Results/page:      %d\n", cfg.Search.ResultsPerPage)
			fmt.Fprintf(out, "  Max pages:         %d\n", cfg.Search.MaxPages)
			fmt.Fprintf(out, "  Language/country:  %s/%s\n", cfg.Search.Language, cfg.Search.Country)
			fmt.Fprintf(out, "\nScraping:\n")
			fmt.Fprintf(out, "  Driver:            %s\n", cfg.Scraping.Driver)
			fmt.Fprintf(out, "  Headless:          %v\n", cfg.Scraping.Headless)
			fmt.Fprintf(out, "  User agents:       %d configured\n", len(cfg.Scraping.UserAgents))
			fmt.Fprintf(out, "\nRequest:\n")
			fmt.Fprintf(out, "  Retry attempts:    %d\n", cfg.Request.RetryAttempts)
			fmt.Fprintf(out, "  Timeout:           %s\n", cfg.Request.Timeout)
			fmt.Fprintf(out, "  Delay:             %s-%s\n", cfg.Request.MinDelay, cfg.Request.MaxDelay)
			fmt.Fprintf(out, "\nProxy:\n")
			fmt.Fprintf(out, "  Enabled:           %v\n", cfg.Proxy.Enabled)
			fmt.Fprintf(out, "  Rotation:          %s\n", cfg.Proxy.Rotation)
			fmt.Fprintf(out, "  Count:             %d\n", len(cfg.Proxy.URLs))
			fmt.Fprintf(out, "\nPlatforms:          %d configured\n", len(cfg.Platforms))
			fmt.Fprintf(out, "Negative keywords:  %d configured\n", len(cfg.Sentiment.NegativeKeywords))
			fmt.Fprintf(out, "Extraction:         %v\n", cfg.Extraction.Enabled)
			fmt.Fprintf(out, "\nOutput:\n")
			fmt.Fprintf(out, "  Format:            %s\n", cfg.Output.Format)
			fmt.Fprintf(out, "  Directory:         %s\n", cfg.Output.Directory)
			fmt.Fprintf(out, "\nMetrics:\n")
			fmt.Fprintf(out, "  Enabled:           %v\n", cfg.Metrics.Enabled)
			fmt.Fprintf(out, "  Port:              %d\n", cfg.Metrics.Port)
			return nil
		},
	}
}
