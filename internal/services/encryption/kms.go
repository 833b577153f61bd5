package encryption

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
)

// Service decrypts sensitive configuration values using AWS KMS.
// The admin API bearer token is stored KMS-encrypted in deployment
// configuration and decrypted once at startup. In development mode
// (no KMS key ID), it falls back to base64 encoding which is NOT
// secure but allows local testing without AWS infrastructure.
type Service struct {
	client *kms.Client
	keyID  string
	isDev  bool
}

var (
	instance *Service
	once     sync.Once
	initErr  error
)

// NewService creates or returns the singleton encryption service.
// Pass the KMS key ID from the centralized config (empty string enables dev mode).
func NewService(kmsKeyID string) (*Service, error) {
	once.Do(func() {
		if kmsKeyID == "" {
			// Development mode - no real encryption
			instance = &Service{isDev: true}
			return
		}

		cfg, err := awsconfig.LoadDefaultConfig(context.Background())
		if err != nil {
			initErr = fmt.Errorf("failed to load AWS config: %w", err)
			return
		}

		instance = &Service{
			client: kms.NewFromConfig(cfg),
			keyID:  kmsKeyID,
			isDev:  false,
		}
	})

	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// Encrypt encrypts plaintext and returns a prefixed base64 ciphertext
// suitable for storing in deployment configuration.
// Exposed via `register -encrypt-token` so operators never handle raw KMS output.
func (s *Service) Encrypt(plaintext string) (string, error) {
	if s.isDev {
		// Development fallback: base64 encode with a prefix to identify encrypted values
		return "dev:" + base64.StdEncoding.EncodeToString([]byte(plaintext)), nil
	}

	result, err := s.client.Encrypt(context.Background(), &kms.EncryptInput{
		KeyId:     &s.keyID,
		Plaintext: []byte(plaintext),
	})
	if err != nil {
		return "", fmt.Errorf("KMS encryption failed: %w", err)
	}

	return "kms:" + base64.StdEncoding.EncodeToString(result.CiphertextBlob), nil
}

// Decrypt decrypts a prefixed base64 ciphertext.
// Values without a recognized prefix are returned as-is so plaintext
// tokens in development configuration keep working.
func (s *Service) Decrypt(ciphertext string) (string, error) {
	if rest, ok := strings.CutPrefix(ciphertext, "dev:"); ok {
		decoded, err := base64.StdEncoding.DecodeString(rest)
		if err != nil {
			return "", fmt.Errorf("failed to decode dev ciphertext: %w", err)
		}
		return string(decoded), nil
	}

	rest, ok := strings.CutPrefix(ciphertext, "kms:")
	if !ok {
		// Plaintext token - return as-is
		return ciphertext, nil
	}

	ciphertextBlob, err := base64.StdEncoding.DecodeString(rest)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}

	if s.isDev {
		// In dev mode with KMS-prefixed data, just decode the base64
		return string(ciphertextBlob), nil
	}

	result, err := s.client.Decrypt(context.Background(), &kms.DecryptInput{
		CiphertextBlob: ciphertextBlob,
	})
	if err != nil {
		return "", fmt.Errorf("KMS decryption failed: %w", err)
	}

	return string(result.Plaintext), nil
}

// IsEncrypted checks if a config value appears to be encrypted (has a prefix).
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, "kms:") || strings.HasPrefix(value, "dev:")
}
