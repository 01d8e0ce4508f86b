package config

import (
	"reflect"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.StringSlice("query", nil, "")
	fs.Int("limit", DefaultLimit, "")
	fs.String("base-url", "", "")
	fs.String("out-dir", "./data/raw", "")
	return fs
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.BaseURL != "https://api.dexscreener.com/latest/dex" {
		t.Fatalf("base url default mismatch: %s", cfg.BaseURL)
	}
	if cfg.Limit != DefaultLimit {
		t.Fatalf("limit default mismatch: %d", cfg.Limit)
	}
	if cfg.ChainID != "solana" {
		t.Fatalf("chain id default mismatch: %s", cfg.ChainID)
	}
	if cfg.Timeout != 20*time.Second {
		t.Fatalf("timeout default mismatch: %s", cfg.Timeout)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("max retries default mismatch: %d", cfg.MaxRetries)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level default mismatch: %s", cfg.LogLevel)
	}
}

func TestLoadFlagsOverrideDefaults(t *testing.T) {
	fs := newFlagSet()
	if err := fs.Set("query", "bonk,raydium solana"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if err := fs.Set("limit", "7"); err != nil {
		t.Fatalf("set flag: %v", err)
	}

	cfg, err := Load("", fs)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	want := []string{"bonk", "raydium solana"}
	if !reflect.DeepEqual(cfg.Queries, want) {
		t.Fatalf("queries mismatch: %+v != %+v", cfg.Queries, want)
	}
	if cfg.Limit != 7 {
		t.Fatalf("limit mismatch: %d", cfg.Limit)
	}
}

func TestLoadClampsLimit(t *testing.T) {
	for _, bad := range []string{"0", "-5"} {
		fs := newFlagSet()
		if err := fs.Set("limit", bad); err != nil {
			t.Fatalf("set flag: %v", err)
		}

		cfg, err := Load("", fs)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}
		if cfg.Limit != DefaultLimit {
			t.Fatalf("limit %s should clamp to %d, got %d", bad, DefaultLimit, cfg.Limit)
		}
	}
}

func TestLoadReadsEnv(t *testing.T) {
	t.Setenv("DEXSNAP_BASE_URL", "http://api.example.test/latest/dex")
	t.Setenv("DEXSNAP_OUT_DIR", "/tmp/snapshots")

	cfg, err := Load("", nil)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.BaseURL != "http://api.example.test/latest/dex" {
		t.Fatalf("base url env mismatch: %s", cfg.BaseURL)
	}
	if cfg.OutDir != "/tmp/snapshots" {
		t.Fatalf("out dir env mismatch: %s", cfg.OutDir)
	}
}
