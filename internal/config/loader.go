package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from file, environment, and defaults.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are applied on top by the caller.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("SERPGOAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("serpgoat")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".serpgoat"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if not explicitly specified
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// An explicit platforms table replaces the built-in one instead of
	// being merged into it.
	if v.InConfig("platforms") {
		cfg.Platforms = v.GetStringMapStringSlice("platforms")
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("search.base_url", cfg.Search.BaseURL)
	v.SetDefault("search.results_per_page", cfg.Search.ResultsPerPage)
	v.SetDefault("search.max_pages", cfg.Search.MaxPages)
	v.SetDefault("search.language", cfg.Search.Language)
	v.SetDefault("search.country", cfg.Search.Country)
	v.SetDefault("search.warmup_url", cfg.Search.WarmUpURL)
	v.SetDefault("search.results_selector", cfg.Search.ResultsSelector)
	v.SetDefault("search.page_delay_min", cfg.Search.PageDelayMin)
	v.SetDefault("search.page_delay_max", cfg.Search.PageDelayMax)

	v.SetDefault("scraping.driver", cfg.Scraping.Driver)
	v.SetDefault("scraping.headless", cfg.Scraping.Headless)
	v.SetDefault("scraping.user_agents", cfg.Scraping.UserAgents)
	v.SetDefault("scraping.viewport_width", cfg.Scraping.ViewportWidth)
	v.SetDefault("scraping.viewport_height", cfg.Scraping.ViewportHeight)
	v.SetDefault("scraping.locale", cfg.Scraping.Locale)
	v.SetDefault("scraping.timezone", cfg.Scraping.Timezone)

	v.SetDefault("request.retry_attempts", cfg.Request.RetryAttempts)
	v.SetDefault("request.timeout", cfg.Request.Timeout)
	v.SetDefault("request.min_delay", cfg.Request.MinDelay)
	v.SetDefault("request.max_delay", cfg.Request.MaxDelay)
	v.SetDefault("request.backoff_base", cfg.Request.BackoffBase)
	v.SetDefault("request.backoff_max", cfg.Request.BackoffMax)
	v.SetDefault("request.max_body_size", cfg.Request.MaxBodySize)

	v.SetDefault("proxy.enabled", cfg.Proxy.Enabled)
	v.SetDefault("proxy.rotation", cfg.Proxy.Rotation)

	v.SetDefault("sentiment.negative_keywords", cfg.Sentiment.NegativeKeywords)
	v.SetDefault("sentiment.min_text_length", cfg.Sentiment.MinTextLength)
	v.SetDefault("sentiment.min_analyzable_length", cfg.Sentiment.MinAnalyzableLength)
	v.SetDefault("sentiment.lexicon_weight", cfg.Sentiment.LexiconWeight)
	v.SetDefault("sentiment.statistical_weight", cfg.Sentiment.StatisticalWeight)
	v.SetDefault("sentiment.keyword_penalty", cfg.Sentiment.KeywordPenalty)
	v.SetDefault("sentiment.negative_cap", cfg.Sentiment.NegativeCap)
	v.SetDefault("sentiment.fetch_full_content", cfg.Sentiment.FetchFullContent)

	v.SetDefault("extraction.enabled", cfg.Extraction.Enabled)

	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.directory", cfg.Output.Directory)
	v.SetDefault("output.mongo_database", cfg.Output.MongoDatabase)
	v.SetDefault("output.mongo_collection", cfg.Output.MongoCollection)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("metrics.enabled", cfg.Metrics.Enabled)
	v.SetDefault("metrics.port", cfg.Metrics.Port)
	v.SetDefault("metrics.path", cfg.Metrics.Path)
}
