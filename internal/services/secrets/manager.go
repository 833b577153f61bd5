package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Manager provides centralized secrets management via AWS Secrets Manager.
// Falls back to environment variables in development when ENVIRONMENT != "production".
type Manager struct {
	client *secretsmanager.Client
	cache  map[string]cachedSecret
	mu     sync.RWMutex
	isDev  bool
}

type cachedSecret struct {
	value     string
	fetchedAt time.Time
}

// DiscordCredentials holds the Discord application secrets.
type DiscordCredentials struct {
	PublicKey string `json:"public_key"`
	BotToken  string `json:"bot_token"`
}

// adminAPISecret holds the admin API bearer token.
type adminAPISecret struct {
	Token string `json:"token"`
}

var (
	instance *Manager
	once     sync.Once
	initErr  error
)

// NewManager creates or returns the singleton secrets manager.
func NewManager() (*Manager, error) {
	once.Do(func() {
		env := os.Getenv("ENVIRONMENT")
		if env != "production" {
			// Development mode: use environment variables
			instance = &Manager{
				cache: make(map[string]cachedSecret),
				isDev: true,
			}
			log.Println("[SECRETS] Using environment variables (development mode)")
			return
		}

		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			initErr = fmt.Errorf("failed to load AWS config for Secrets Manager: %w", err)
			return
		}

		instance = &Manager{
			client: secretsmanager.NewFromConfig(cfg),
			cache:  make(map[string]cachedSecret),
			isDev:  false,
		}
		log.Println("[SECRETS] Using AWS Secrets Manager (production mode)")
	})

	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// GetDiscordCredentials returns the Discord application secrets.
func (m *Manager) GetDiscordCredentials() (*DiscordCredentials, error) {
	if m.isDev {
		return &DiscordCredentials{
			PublicKey: os.Getenv("DISCORD_PUBLIC_KEY"),
			BotToken:  os.Getenv("DISCORD_BOT_TOKEN"),
		}, nil
	}

	var s DiscordCredentials
	raw, err := m.getSecret("linkbot/discord")
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("failed to parse Discord credentials secret: %w", err)
	}
	return &s, nil
}

// GetAdminAPIToken returns the admin API bearer token.
// Priority: ADMIN_API_TOKEN env var (injected by the SAM template) →
// Secrets Manager. Preferring the env var avoids requiring Secrets
// Manager IAM permissions just for this secret. The returned value may
// still be KMS-encrypted; decryption happens at service wiring time.
func (m *Manager) GetAdminAPIToken() (string, error) {
	if token := os.Getenv("ADMIN_API_TOKEN"); token != "" {
		return token, nil
	}

	if m.isDev {
		return "", fmt.Errorf("ADMIN_API_TOKEN environment variable not set")
	}

	var s adminAPISecret
	raw, err := m.getSecret("linkbot/admin-api")
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return "", fmt.Errorf("failed to parse admin API secret: %w", err)
	}
	return s.Token, nil
}

// getSecret fetches a secret from AWS Secrets Manager with a 5-minute cache.
func (m *Manager) getSecret(secretName string) (string, error) {
	// Check cache (TTL: 5 minutes)
	m.mu.RLock()
	if cached, ok := m.cache[secretName]; ok {
		if time.Since(cached.fetchedAt) < 5*time.Minute {
			m.mu.RUnlock()
			return cached.value, nil
		}
	}
	m.mu.RUnlock()

	// Fetch from Secrets Manager
	result, err := m.client.GetSecretValue(context.Background(), &secretsmanager.GetSecretValueInput{
		SecretId: &secretName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch secret %s: %w", secretName, err)
	}

	value := *result.SecretString

	// Update cache
	m.mu.Lock()
	m.cache[secretName] = cachedSecret{
		value:     value,
		fetchedAt: time.Now(),
	}
	m.mu.Unlock()

	return value, nil
}

// InvalidateCache clears all cached secrets (call after secret rotation).
func (m *Manager) InvalidateCache() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache = make(map[string]cachedSecret)
}
