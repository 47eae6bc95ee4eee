package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/IshaanNene/serpgoat/internal/types"
)

// Validate checks the configuration for invalid values. Every failure is a
// *types.ConfigError so callers can tell configuration defects apart from
// runtime failures.
func Validate(cfg *Config) error {
	if err := validateSearch(cfg.Search); err != nil {
		return err
	}
	if err := validatePlatforms(cfg.Platforms); err != nil {
		return err
	}

	if cfg.Scraping.Driver != "browser" && cfg.Scraping.Driver != "http" {
		return invalid("scraping.driver", fmt.Sprintf("must be 'browser' or 'http', got %q", cfg.Scraping.Driver))
	}
	if len(cfg.Scraping.UserAgents) == 0 {
		return invalid("scraping.user_agents", "must not be empty")
	}
	for i, ua := range cfg.Scraping.UserAgents {
		if strings.TrimSpace(ua) == "" {
			return invalid("scraping.user_agents", fmt.Sprintf("entry %d is blank", i))
		}
	}
	if cfg.Scraping.ViewportWidth <= 0 || cfg.Scraping.ViewportHeight <= 0 {
		return invalid("scraping.viewport", "width and height must be > 0")
	}

	if cfg.Request.RetryAttempts < 1 {
		return invalid("request.retry_attempts", fmt.Sprintf("must be >= 1, got %d", cfg.Request.RetryAttempts))
	}
	if cfg.Request.Timeout <= 0 {
		return invalid("request.timeout", "must be > 0")
	}
	if cfg.Request.MinDelay < 0 || cfg.Request.MaxDelay < cfg.Request.MinDelay {
		return invalid("request.min_delay", "must satisfy 0 <= min_delay <= max_delay")
	}
	if cfg.Request.BackoffBase < 0 || cfg.Request.BackoffMax < cfg.Request.BackoffBase {
		return invalid("request.backoff_base", "must satisfy 0 <= backoff_base <= backoff_max")
	}
	if cfg.Request.MaxBodySize <= 0 {
		return invalid("request.max_body_size", "must be > 0")
	}

	if cfg.Proxy.Enabled {
		if cfg.Proxy.Rotation != "round_robin" && cfg.Proxy.Rotation != "random" {
			return invalid("proxy.rotation", fmt.Sprintf("must be 'round_robin' or 'random', got %q", cfg.Proxy.Rotation))
		}
		if len(cfg.Proxy.URLs) == 0 {
			return invalid("proxy.urls", "must not be empty when proxy is enabled")
		}
		for _, proxyURL := range cfg.Proxy.URLs {
			if _, err := url.Parse(proxyURL); err != nil {
				return invalid("proxy.urls", fmt.Sprintf("invalid proxy URL %q: %v", proxyURL, err))
			}
		}
	}

	if err := validateSentiment(cfg.Sentiment); err != nil {
		return err
	}

	validFormats := map[string]bool{
		"json": true, "jsonl": true, "csv": true, "mongodb": true,
	}
	if !validFormats[cfg.Output.Format] {
		return invalid("output.format", fmt.Sprintf("%q is not supported (valid: json, jsonl, csv, mongodb)", cfg.Output.Format))
	}
	if cfg.Output.Format == "mongodb" && cfg.Output.MongoURI == "" {
		return invalid("output.mongo_uri", "must be set when output.format is mongodb")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return invalid("logging.level", fmt.Sprintf("%q is not valid (valid: debug, info, warn, error)", cfg.Logging.Level))
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return invalid("logging.format", fmt.Sprintf("must be 'text' or 'json', got %q", cfg.Logging.Format))
	}

	if cfg.Metrics.Enabled && (cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535) {
		return invalid("metrics.port", fmt.Sprintf("must be 1-65535, got %d", cfg.Metrics.Port))
	}

	return nil
}

func validateSearch(s SearchConfig) error {
	u, err := url.Parse(s.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("search.base_url", fmt.Sprintf("must be an absolute http(s) URL, got %q", s.BaseURL))
	}
	if s.ResultsPerPage < 1 {
		return invalid("search.results_per_page", fmt.Sprintf("must be >= 1, got %d", s.ResultsPerPage))
	}
	if s.MaxPages < 1 {
		return invalid("search.max_pages", fmt.Sprintf("must be >= 1, got %d", s.MaxPages))
	}
	if s.WarmUpURL != "" {
		if _, err := url.ParseRequestURI(s.WarmUpURL); err != nil {
			return invalid("search.warmup_url", err.Error())
		}
	}
	if s.PageDelayMin < 0 || s.PageDelayMax < s.PageDelayMin {
		return invalid("search.page_delay_min", "must satisfy 0 <= page_delay_min <= page_delay_max")
	}
	return nil
}

func validatePlatforms(platforms map[string][]string) error {
	if len(platforms) == 0 {
		return invalid("platforms", "must define at least one platform")
	}
	for name, domains := range platforms {
		p, ok := types.ParsePlatform(name)
		if !ok || p == types.PlatformOther {
			return invalid("platforms."+name, "unknown platform")
		}
		for _, d := range domains {
			if strings.TrimSpace(d) == "" || strings.Contains(d, "/") {
				return invalid("platforms."+name, fmt.Sprintf("invalid domain %q", d))
			}
		}
	}
	return nil
}

func validateSentiment(s SentimentConfig) error {
	if s.LexiconWeight < 0 || s.StatisticalWeight < 0 {
		return invalid("sentiment.lexicon_weight", "weights must be >= 0")
	}
	if s.LexiconWeight+s.StatisticalWeight <= 0 {
		return invalid("sentiment.lexicon_weight", "weights must not both be zero")
	}
	if s.MinTextLength < 0 || s.MinAnalyzableLength < 0 {
		return invalid("sentiment.min_text_length", "lengths must be >= 0")
	}
	if s.KeywordPenalty < 0 {
		return invalid("sentiment.keyword_penalty", "must be >= 0")
	}
	if s.NegativeCap > types.NegativeThreshold {
		return invalid("sentiment.negative_cap", fmt.Sprintf("must be <= %.1f", types.NegativeThreshold))
	}
	return nil
}

func invalid(key, reason string) error {
	return &types.ConfigError{Key: key, Reason: reason}
}
