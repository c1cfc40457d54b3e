package config

import (
	"os"
	"testing"
)

func withEnv(t *testing.T, key, value string) {
	t.Helper()
	old, existed := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if existed {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.MaxCandidates != 40 {
		t.Fatalf("expected default max_candidates 40, got %d", cfg.MaxCandidates)
	}
	if cfg.RateLimitRequests != 100 || cfg.RateLimitWindow != 60 {
		t.Fatalf("expected default rate limit 100/60s, got %d/%d", cfg.RateLimitRequests, cfg.RateLimitWindow)
	}
}

func TestLoad_ClampsOutOfRangeMaxCandidates(t *testing.T) {
	withEnv(t, "MAX_CANDIDATES", "5000")
	cfg := Load()
	if cfg.MaxCandidates != 1000 {
		t.Fatalf("expected clamp to 1000, got %d", cfg.MaxCandidates)
	}
}

func TestLoad_FallsBackOnUnparseableInt(t *testing.T) {
	withEnv(t, "DETECTION_CACHE_TTL", "not-a-number")
	cfg := Load()
	if cfg.CacheTTL != 3600 {
		t.Fatalf("expected default 3600 on unparseable value, got %d", cfg.CacheTTL)
	}
}

func TestParseRateLimit(t *testing.T) {
	cases := []struct {
		raw          string
		wantRequests int
		wantWindow   int
	}{
		{"100/minute", 100, 60},
		{"5/second", 5, 1},
		{"20/hour", 20, 3600},
		{"garbage", 100, 60},
		{"0/minute", 100, 60},
	}
	for _, tc := range cases {
		gotRequests, gotWindow := parseRateLimit(tc.raw)
		if gotRequests != tc.wantRequests || gotWindow != tc.wantWindow {
			t.Errorf("parseRateLimit(%q) = %d/%d, want %d/%d", tc.raw, gotRequests, gotWindow, tc.wantRequests, tc.wantWindow)
		}
	}
}
