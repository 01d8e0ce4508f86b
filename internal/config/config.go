package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultLimit caps saved pairs per snapshot when --limit is absent or invalid.
const DefaultLimit = 50

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	BaseURL         string
	Queries         []string
	Limit           int
	ChainID         string
	PairIDs         []string
	OutDir          string
	RawOut          string
	PGDSN           string
	StateFile       string
	Interval        time.Duration
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RateLimit       float64
	RateBurst       int
	PairsPerRequest int
	UserAgent       string
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DEXSNAP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("base-url", "https://api.dexscreener.com/latest/dex")
	v.SetDefault("limit", DefaultLimit)
	v.SetDefault("chain-id", "solana")
	v.SetDefault("out-dir", "./data/raw")
	v.SetDefault("timeout", 20*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("rate-limit", 4.0)
	v.SetDefault("rate-burst", 2)
	v.SetDefault("pairs-per-request", 30)
	v.SetDefault("user-agent", "dexsnap/1.1")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		BaseURL:         v.GetString("base-url"),
		Queries:         getStringSlice(v, "query"),
		Limit:           v.GetInt("limit"),
		ChainID:         v.GetString("chain-id"),
		PairIDs:         getStringSlice(v, "pair-ids"),
		OutDir:          v.GetString("out-dir"),
		RawOut:          v.GetString("raw-out"),
		PGDSN:           v.GetString("pg-dsn"),
		StateFile:       v.GetString("state-file"),
		Interval:        v.GetDuration("interval"),
		Timeout:         v.GetDuration("timeout"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		RateLimit:       v.GetFloat64("rate-limit"),
		RateBurst:       v.GetInt("rate-burst"),
		PairsPerRequest: v.GetInt("pairs-per-request"),
		UserAgent:       v.GetString("user-agent"),
		LogLevel:        v.GetString("log-level"),
	}

	if cfg.Limit < 1 {
		cfg.Limit = DefaultLimit
	}

	return cfg, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
