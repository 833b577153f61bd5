package logging

import (
	"context"
	"encoding/json"
	"log"
	"time"
)

// SecurityLogger provides structured security event logging.
// Events are logged as JSON to stdout (captured by CloudWatch Logs in Lambda).
type SecurityLogger struct{}

// SecurityEvent represents a structured security event.
type SecurityEvent struct {
	Timestamp time.Time              `json:"timestamp"`
	EventType string                 `json:"event_type"`
	Severity  string                 `json:"severity"` // INFO, WARNING, CRITICAL
	UserID    string                 `json:"user_id,omitempty"`
	IPAddress string                 `json:"ip_address,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Success   bool                   `json:"success"`
}

// NewSecurityLogger creates a new security logger.
func NewSecurityLogger() *SecurityLogger {
	return &SecurityLogger{}
}

// LogEvent logs a security event as structured JSON.
func (sl *SecurityLogger) LogEvent(_ context.Context, event SecurityEvent) {
	event.Timestamp = time.Now()
	eventJSON, err := json.Marshal(event)
	if err != nil {
		log.Printf("[SECURITY_ERROR] Failed to marshal event: %v", err)
		return
	}
	log.Printf("[SECURITY] %s", string(eventJSON))
}

// LogSignatureFailure logs a failed interaction signature verification.
// These requests did not come from Discord.
func (sl *SecurityLogger) LogSignatureFailure(ctx context.Context, ipAddress string) {
	sl.LogEvent(ctx, SecurityEvent{
		EventType: "interaction_signature_failure",
		Severity:  "CRITICAL",
		IPAddress: ipAddress,
		Success:   false,
	})
}

// LogUnauthorizedCommand logs a command attempt by a user outside the allow-list.
func (sl *SecurityLogger) LogUnauthorizedCommand(ctx context.Context, userID, command string) {
	sl.LogEvent(ctx, SecurityEvent{
		EventType: "unauthorized_command",
		Severity:  "WARNING",
		UserID:    userID,
		Success:   false,
		Details: map[string]interface{}{
			"command": command,
		},
	})
}

// LogCommandExecuted logs a completed command dispatch and its outcome.
func (sl *SecurityLogger) LogCommandExecuted(ctx context.Context, userID, command string, success bool) {
	severity := "INFO"
	if !success {
		severity = "WARNING"
	}
	sl.LogEvent(ctx, SecurityEvent{
		EventType: "command_executed",
		Severity:  severity,
		UserID:    userID,
		Success:   success,
		Details: map[string]interface{}{
			"command": command,
		},
	})
}

// LogRateLimitExceeded logs a rate limit violation on the interactions endpoint.
func (sl *SecurityLogger) LogRateLimitExceeded(ctx context.Context, ipAddress string) {
	sl.LogEvent(ctx, SecurityEvent{
		EventType: "rate_limit_exceeded",
		Severity:  "WARNING",
		IPAddress: ipAddress,
		Success:   false,
	})
}
