package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("TOKEN_ACCESS_SECRET", "access")
	t.Setenv("TOKEN_REFRESH_SECRET", "refresh")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Fatalf("addr = %q, want 0.0.0.0:8080", cfg.Server.Addr())
	}
	if cfg.Mongo.Database != "sangyan" {
		t.Fatalf("database = %q, want sangyan", cfg.Mongo.Database)
	}
	if cfg.Token.AccessTTL != 15*time.Minute {
		t.Fatalf("access ttl = %v, want 15m", cfg.Token.AccessTTL)
	}
	if cfg.RateLimit.PerMinute != 60 || cfg.RateLimit.Burst != 10 {
		t.Fatalf("rate limit = %d/%d, want 60/10", cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("TOKEN_ACCESS_SECRET", "access")
	t.Setenv("TOKEN_REFRESH_SECRET", "refresh")
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("GOOGLE_CLIENT_ID", "client-id")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Fatalf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Fatalf("mongo uri = %q", cfg.Mongo.URI)
	}
	if cfg.Google.ClientID != "client-id" {
		t.Fatalf("google client id = %q", cfg.Google.ClientID)
	}
}

func TestLoadRequiresTokenSecrets(t *testing.T) {
	t.Setenv("TOKEN_ACCESS_SECRET", "")
	t.Setenv("TOKEN_REFRESH_SECRET", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing token secrets")
	}
}
