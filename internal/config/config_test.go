package config

import (
	"testing"
	"time"
)

func TestResolveSource(t *testing.T) {
	cases := []struct {
		cfg  Config
		want string
	}{
		{Config{}, SourceDemo},
		{Config{DatabaseURL: "postgres://x"}, SourcePostgres},
		{Config{RESTURL: "https://db.example"}, SourceREST},
		{Config{DatabaseURL: "postgres://x", RESTURL: "https://db.example"}, SourcePostgres},
		{Config{DataSource: "REST", DatabaseURL: "postgres://x"}, SourceREST},
		{Config{DataSource: "bogus"}, SourceDemo},
	}
	for _, tc := range cases {
		if got := ResolveSource(tc.cfg); got != tc.want {
			t.Fatalf("ResolveSource(%+v) = %q, want %q", tc.cfg, got, tc.want)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CACHE_TTL", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("expected env override, got %q", cfg.Port)
	}
	if cfg.CacheTTL != 2*time.Minute {
		t.Fatalf("expected 2m cache ttl, got %s", cfg.CacheTTL)
	}
	if cfg.RecordingTTL != 15*time.Minute {
		t.Fatalf("expected default recording ttl, got %s", cfg.RecordingTTL)
	}
	if cfg.TrendDays != 14 {
		t.Fatalf("expected 14 trend days, got %d", cfg.TrendDays)
	}
}
