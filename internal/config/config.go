package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	apperrors "finsight-go-api/internal/errors"
)

const (
	ChartStyleLine        = "line"
	ChartStyleCandlestick = "candlestick"
)

// Config is loaded once at process start and is read-only afterwards.
type Config struct {
	Port               string
	Environment        string
	LogLevel           string
	LogFile            string
	RateLimitPerMinute int
	ChartStyle         string

	Completion CompletionConfig
	Search     SearchConfig
	MarketData MarketDataConfig
}

// CompletionConfig configures the hosted chat-completion API.
type CompletionConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// SearchConfig configures the web search augmenter.
type SearchConfig struct {
	GoogleAPIKey   string
	GoogleEngineID string
	MaxResults     int
	DateRestrict   string
	Sites          []string
	Timeout        time.Duration
}

// MarketDataConfig configures the stock-data providers.
type MarketDataConfig struct {
	AlphaVantageKey string
	HistoryRange    string
	Timeout         time.Duration
}

var validRanges = map[string]bool{
	"5d": true, "1mo": true, "3mo": true, "6mo": true, "1y": true, "2y": true, "5y": true, "ytd": true,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "production")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("rate_limit_per_minute", 60)
	v.SetDefault("chart_style", ChartStyleLine)

	v.SetDefault("groq_api_key", "")
	v.SetDefault("groq_base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq_model", "llama-3.3-70b-versatile")
	v.SetDefault("completion_temperature", 0.3)
	v.SetDefault("completion_max_tokens", 1000)
	v.SetDefault("completion_timeout", "60s")

	v.SetDefault("google_search_api_key", "")
	v.SetDefault("google_search_engine_id", "")
	v.SetDefault("search_max_results", 5)
	v.SetDefault("search_date_restrict", "m1")
	v.SetDefault("search_sites", "")
	v.SetDefault("search_timeout", "10s")

	v.SetDefault("alpha_vantage_key", "")
	v.SetDefault("history_range", "1mo")
	v.SetDefault("fetch_timeout", "10s")
}

// Load reads .env, an optional YAML config file and the environment, in
// increasing order of precedence. Flags, when given, override everything.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, apperrors.Wrapf(err, "read config %s", configFile)
		}
	}

	if flags != nil {
		for key, name := range map[string]string{"port": "port", "log_level": "log-level"} {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, apperrors.Wrapf(err, "bind flag %s", name)
				}
			}
		}
	}

	cfg := &Config{
		Port:               v.GetString("port"),
		Environment:        v.GetString("environment"),
		LogLevel:           v.GetString("log_level"),
		LogFile:            v.GetString("log_file"),
		RateLimitPerMinute: v.GetInt("rate_limit_per_minute"),
		ChartStyle:         strings.ToLower(v.GetString("chart_style")),
		Completion: CompletionConfig{
			APIKey:      v.GetString("groq_api_key"),
			BaseURL:     v.GetString("groq_base_url"),
			Model:       v.GetString("groq_model"),
			Temperature: float32(v.GetFloat64("completion_temperature")),
			MaxTokens:   v.GetInt("completion_max_tokens"),
			Timeout:     v.GetDuration("completion_timeout"),
		},
		Search: SearchConfig{
			GoogleAPIKey:   v.GetString("google_search_api_key"),
			GoogleEngineID: v.GetString("google_search_engine_id"),
			MaxResults:     v.GetInt("search_max_results"),
			DateRestrict:   v.GetString("search_date_restrict"),
			Sites:          splitList(v.GetStringSlice("search_sites")),
			Timeout:        v.GetDuration("search_timeout"),
		},
		MarketData: MarketDataConfig{
			AlphaVantageKey: v.GetString("alpha_vantage_key"),
			HistoryRange:    v.GetString("history_range"),
			Timeout:         v.GetDuration("fetch_timeout"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects malformed values. Missing secrets are not errors; see Warnings.
func (c *Config) Validate() error {
	var problems []string

	if c.Port == "" {
		problems = append(problems, "port is empty")
	}
	if c.ChartStyle != ChartStyleLine && c.ChartStyle != ChartStyleCandlestick {
		problems = append(problems, fmt.Sprintf("chart_style %q must be %q or %q", c.ChartStyle, ChartStyleLine, ChartStyleCandlestick))
	}
	if c.Search.MaxResults < 1 || c.Search.MaxResults > 10 {
		problems = append(problems, fmt.Sprintf("search_max_results %d must be between 1 and 10", c.Search.MaxResults))
	}
	if !validRanges[c.MarketData.HistoryRange] {
		problems = append(problems, fmt.Sprintf("history_range %q is not supported", c.MarketData.HistoryRange))
	}
	if c.Completion.MaxTokens <= 0 {
		problems = append(problems, "completion_max_tokens must be positive")
	}
	if c.Completion.Temperature < 0 || c.Completion.Temperature > 2 {
		problems = append(problems, "completion_temperature must be within [0, 2]")
	}
	for name, d := range map[string]time.Duration{
		"completion_timeout": c.Completion.Timeout,
		"search_timeout":     c.Search.Timeout,
		"fetch_timeout":      c.MarketData.Timeout,
	} {
		if d <= 0 {
			problems = append(problems, name+" must be positive")
		}
	}
	if c.RateLimitPerMinute <= 0 {
		problems = append(problems, "rate_limit_per_minute must be positive")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrConfigInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// Warnings lists optional secrets that are missing and the degraded behaviour they cause.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Completion.APIKey == "" {
		warnings = append(warnings, "GROQ_API_KEY not set, AI insights will be unavailable")
	}
	if !c.GoogleSearchEnabled() {
		warnings = append(warnings, "GOOGLE_SEARCH_API_KEY or GOOGLE_SEARCH_ENGINE_ID not set, using DuckDuckGo only")
	}
	if c.MarketData.AlphaVantageKey == "" {
		warnings = append(warnings, "ALPHA_VANTAGE_KEY not set, fundamentals will show N/A")
	}
	return warnings
}

// GoogleSearchEnabled reports whether both Google Custom Search secrets are present.
func (c *Config) GoogleSearchEnabled() bool {
	return c.Search.GoogleAPIKey != "" && c.Search.GoogleEngineID != ""
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
