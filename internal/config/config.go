package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for serpgoat.
type Config struct {
	Search     SearchConfig        `mapstructure:"search"     yaml:"search"`
	Platforms  map[string][]string `mapstructure:"platforms"  yaml:"platforms"`
	Scraping   ScrapingConfig      `mapstructure:"scraping"   yaml:"scraping"`
	Request    RequestConfig       `mapstructure:"request"    yaml:"request"`
	Proxy      ProxyConfig         `mapstructure:"proxy"      yaml:"proxy"`
	Sentiment  SentimentConfig     `mapstructure:"sentiment"  yaml:"sentiment"`
	Extraction ExtractionConfig    `mapstructure:"extraction" yaml:"extraction"`
	Output     OutputConfig        `mapstructure:"output"     yaml:"output"`
	Logging    LoggingConfig       `mapstructure:"logging"    yaml:"logging"`
	Metrics    MetricsConfig       `mapstructure:"metrics"    yaml:"metrics"`
}

// SearchConfig controls the results-page query and pagination.
type SearchConfig struct {
	BaseURL         string        `mapstructure:"base_url"         yaml:"base_url"`
	ResultsPerPage  int           `mapstructure:"results_per_page" yaml:"results_per_page"`
	MaxPages        int           `mapstructure:"max_pages"        yaml:"max_pages"`
	Language        string        `mapstructure:"language"         yaml:"language"`
	Country         string        `mapstructure:"country"          yaml:"country"`
	WarmUpURL       string        `mapstructure:"warmup_url"       yaml:"warmup_url"`
	ResultsSelector string        `mapstructure:"results_selector" yaml:"results_selector"`
	PageDelayMin    time.Duration `mapstructure:"page_delay_min"   yaml:"page_delay_min"`
	PageDelayMax    time.Duration `mapstructure:"page_delay_max"   yaml:"page_delay_max"`
}

// ScrapingConfig controls the browser-like client identity.
type ScrapingConfig struct {
	Driver         string   `mapstructure:"driver"          yaml:"driver"`
	Headless       bool     `mapstructure:"headless"        yaml:"headless"`
	UserAgents     []string `mapstructure:"user_agents"     yaml:"user_agents"`
	ViewportWidth  int      `mapstructure:"viewport_width"  yaml:"viewport_width"`
	ViewportHeight int      `mapstructure:"viewport_height" yaml:"viewport_height"`
	Locale         string   `mapstructure:"locale"          yaml:"locale"`
	Timezone       string   `mapstructure:"timezone"        yaml:"timezone"`
}

// RequestConfig controls retries, timeouts and pacing of page loads.
type RequestConfig struct {
	RetryAttempts int           `mapstructure:"retry_attempts" yaml:"retry_attempts"`
	Timeout       time.Duration `mapstructure:"timeout"        yaml:"timeout"`
	MinDelay      time.Duration `mapstructure:"min_delay"      yaml:"min_delay"`
	MaxDelay      time.Duration `mapstructure:"max_delay"      yaml:"max_delay"`
	BackoffBase   time.Duration `mapstructure:"backoff_base"   yaml:"backoff_base"`
	BackoffMax    time.Duration `mapstructure:"backoff_max"    yaml:"backoff_max"`
	MaxBodySize   int64         `mapstructure:"max_body_size"  yaml:"max_body_size"`
}

// ProxyConfig controls proxy rotation.
type ProxyConfig struct {
	Enabled  bool     `mapstructure:"enabled"  yaml:"enabled"`
	Rotation string   `mapstructure:"rotation" yaml:"rotation"`
	URLs     []string `mapstructure:"urls"     yaml:"urls"`
}

// SentimentConfig controls the sentiment fusion engine.
type SentimentConfig struct {
	NegativeKeywords    []string `mapstructure:"negative_keywords"     yaml:"negative_keywords"`
	MinTextLength       int      `mapstructure:"min_text_length"       yaml:"min_text_length"`
	MinAnalyzableLength int      `mapstructure:"min_analyzable_length" yaml:"min_analyzable_length"`
	LexiconWeight       float64  `mapstructure:"lexicon_weight"        yaml:"lexicon_weight"`
	StatisticalWeight   float64  `mapstructure:"statistical_weight"    yaml:"statistical_weight"`
	KeywordPenalty      float64  `mapstructure:"keyword_penalty"       yaml:"keyword_penalty"`
	NegativeCap         float64  `mapstructure:"negative_cap"          yaml:"negative_cap"`
	FetchFullContent    bool     `mapstructure:"fetch_full_content"    yaml:"fetch_full_content"`
}

// ExtractionConfig controls per-platform content extraction.
type ExtractionConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// OutputConfig controls the result sink.
type OutputConfig struct {
	Format          string `mapstructure:"format"           yaml:"format"`
	Directory       string `mapstructure:"directory"        yaml:"directory"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultNegativeKeywords force a Negative category whenever they appear.
var DefaultNegativeKeywords = []string{
	"scam", "fraud", "fake", "cheat", "scamming", "scammed",
	"fraudulent", "misleading", "deceptive", "false", "lying",
	"rip-off", "ripoff", "rip off", "scammer", "scammers",
	"cheating", "deceiving", "defrauding", "fraudsters",
	"worst", "terrible", "horrible", "bad", "poor", "awful", "unknown",
}

// DefaultPlatforms is the built-in domain table for the classifier.
func DefaultPlatforms() map[string][]string {
	return map[string][]string{
		"news": {
			"cnn.com", "bbc.com", "bbc.co.uk", "reuters.com", "apnews.com", "nytimes.com",
			"theguardian.com", "washingtonpost.com", "bloomberg.com", "forbes.com",
			"news.google.com", "news.yahoo.com", "cnbc.com", "foxnews.com", "nbcnews.com",
		},
		"blog":      {"medium.com", "wordpress.com", "blogspot.com", "substack.com", "tumblr.com", "ghost.io"},
		"reddit":    {"reddit.com", "redd.it"},
		"quora":     {"quora.com"},
		"twitter":   {"twitter.com", "x.com"},
		"facebook":  {"facebook.com", "fb.com"},
		"instagram": {"instagram.com"},
		"tiktok":    {"tiktok.com"},
		"youtube":   {"youtube.com", "youtu.be"},
	}
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			BaseURL:         "https://www.google.com/search",
			ResultsPerPage:  10,
			MaxPages:        3,
			Language:        "en",
			Country:         "us",
			WarmUpURL:       "https://www.google.com",
			ResultsSelector: "#search",
			PageDelayMin:    3 * time.Second,
			PageDelayMax:    6 * time.Second,
		},
		Platforms: DefaultPlatforms(),
		Scraping: ScrapingConfig{
			Driver:   "browser",
			Headless: true,
			UserAgents: []string{
				"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
				"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			},
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			Locale:         "en-US",
			Timezone:       "America/New_York",
		},
		Request: RequestConfig{
			RetryAttempts: 3,
			Timeout:       30 * time.Second,
			MinDelay:      2 * time.Second,
			MaxDelay:      4 * time.Second,
			BackoffBase:   3 * time.Second,
			BackoffMax:    20 * time.Second,
			MaxBodySize:   10 * 1024 * 1024, // 10MB
		},
		Proxy: ProxyConfig{
			Enabled:  false,
			Rotation: "random",
		},
		Sentiment: SentimentConfig{
			NegativeKeywords:    append([]string(nil), DefaultNegativeKeywords...),
			MinTextLength:       50,
			MinAnalyzableLength: 3,
			LexiconWeight:       0.7,
			StatisticalWeight:   0.3,
			KeywordPenalty:      0.3,
			NegativeCap:         -0.1,
			FetchFullContent:    true,
		},
		Extraction: ExtractionConfig{
			Enabled: true,
		},
		Output: OutputConfig{
			Format:          "json",
			Directory:       "./data/output",
			MongoDatabase:   "serpgoat",
			MongoCollection: "results",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
