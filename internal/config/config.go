package config

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/yourusername/linkbot/internal/services/secrets"
)

// Config holds all application configuration.
// In production, secrets are loaded from AWS Secrets Manager.
// In development, everything comes from environment variables.
// The allow-list and admin base URL are immutable after Load; nothing
// mutates a Config during request handling.
type Config struct {
	// Discord
	DiscordAppID     string
	DiscordPublicKey string // hex-encoded Ed25519 public key
	DiscordBotToken  string // only needed by cmd/register

	// Admin API
	AdminAPIURL   string
	AdminAPIToken string

	// Authorization: Discord user IDs allowed to run commands
	AllowedUserIDs []string

	// App (non-secret)
	DatabaseURL string // optional, enables the command audit trail
	Environment string
	LogLevel    string

	// AWS
	KMSKeyID string
}

// Load reads all configuration from the appropriate source.
// Production: secrets from AWS Secrets Manager, non-secrets from env vars.
// Development: everything from environment variables (loaded from .env).
func Load() (*Config, error) {
	cfg := &Config{
		// Non-secret config always comes from env vars
		DiscordAppID: os.Getenv("DISCORD_APP_ID"),
		AdminAPIURL:  os.Getenv("ADMIN_API_URL"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		Environment:  os.Getenv("ENVIRONMENT"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		KMSKeyID:     os.Getenv("KMS_KEY_ID"),
	}

	// The allow-list is deployment configuration, not a secret. It is
	// fixed at startup; there is no runtime mutation path.
	cfg.AllowedUserIDs = parseAllowList(os.Getenv("DISCORD_ALLOWED_USER_IDS"))

	// Try loading secrets from Secrets Manager in production
	if cfg.Environment == "production" {
		if err := cfg.loadFromSecretsManager(); err != nil {
			log.Printf("[CONFIG_WARN] Failed to load from Secrets Manager, falling back to env vars: %v", err)
			cfg.loadFromEnvVars()
		}
	} else {
		cfg.loadFromEnvVars()
	}

	return cfg, nil
}

// loadFromSecretsManager loads secrets from AWS Secrets Manager.
func (c *Config) loadFromSecretsManager() error {
	mgr, err := secrets.NewManager()
	if err != nil {
		return fmt.Errorf("failed to create secrets manager: %w", err)
	}

	discordCreds, err := mgr.GetDiscordCredentials()
	if err != nil {
		return fmt.Errorf("failed to get Discord credentials: %w", err)
	}
	c.DiscordPublicKey = discordCreds.PublicKey
	c.DiscordBotToken = discordCreds.BotToken

	adminToken, err := mgr.GetAdminAPIToken()
	if err != nil {
		return fmt.Errorf("failed to get admin API token: %w", err)
	}
	c.AdminAPIToken = adminToken

	log.Println("[CONFIG] Loaded secrets from AWS Secrets Manager")
	return nil
}

// loadFromEnvVars loads all secrets from environment variables (development).
func (c *Config) loadFromEnvVars() {
	c.DiscordPublicKey = os.Getenv("DISCORD_PUBLIC_KEY")
	c.DiscordBotToken = os.Getenv("DISCORD_BOT_TOKEN")
	c.AdminAPIToken = os.Getenv("ADMIN_API_TOKEN")

	log.Println("[CONFIG] Loaded secrets from environment variables")
}

// PublicKey decodes the configured Discord public key.
// Interaction signature verification cannot run without it, so a missing
// or malformed key is an error rather than a fallback.
func (c *Config) PublicKey() (ed25519.PublicKey, error) {
	if c.DiscordPublicKey == "" {
		return nil, fmt.Errorf("DISCORD_PUBLIC_KEY is not set")
	}
	key, err := hex.DecodeString(c.DiscordPublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid Discord public key: %w", err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid Discord public key length: %d", len(key))
	}
	return ed25519.PublicKey(key), nil
}

// IsProduction returns true if running in production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// parseAllowList splits a comma-separated ID list, dropping whitespace
// and empty entries.
func parseAllowList(raw string) []string {
	var ids []string
	for _, part := range strings.Split(raw, ",") {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}
