package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"reflect"
	"testing"
)

func TestParseAllowList(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"123456789012345678", []string{"123456789012345678"}},
		{"111, 222 ,333", []string{"111", "222", "333"}},
		{",111,,222,", []string{"111", "222"}},
	}

	for _, tt := range tests {
		if got := parseAllowList(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseAllowList(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLoadFromEnvVars(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DISCORD_APP_ID", "123")
	t.Setenv("DISCORD_PUBLIC_KEY", "abcd")
	t.Setenv("ADMIN_API_URL", "https://admin.example.com")
	t.Setenv("ADMIN_API_TOKEN", "sekrit")
	t.Setenv("DISCORD_ALLOWED_USER_IDS", "111,222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.DiscordAppID != "123" {
		t.Errorf("DiscordAppID = %q, want %q", cfg.DiscordAppID, "123")
	}
	if cfg.AdminAPIToken != "sekrit" {
		t.Errorf("AdminAPIToken = %q, want %q", cfg.AdminAPIToken, "sekrit")
	}
	if want := []string{"111", "222"}; !reflect.DeepEqual(cfg.AllowedUserIDs, want) {
		t.Errorf("AllowedUserIDs = %v, want %v", cfg.AllowedUserIDs, want)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for development environment")
	}
}

func TestPublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}

	cfg := &Config{DiscordPublicKey: hex.EncodeToString(pub)}
	key, err := cfg.PublicKey()
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}
	if !key.Equal(pub) {
		t.Error("decoded key does not match original")
	}

	for name, raw := range map[string]string{
		"empty":     "",
		"not hex":   "zzzz",
		"too short": "abcd",
	} {
		cfg := &Config{DiscordPublicKey: raw}
		if _, err := cfg.PublicKey(); err == nil {
			t.Errorf("PublicKey() with %s key succeeded, want error", name)
		}
	}
}
