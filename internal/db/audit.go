package db

import (
	"context"
	"encoding/json"
	"log"
)

// InsertCommandAudit records a command invocation or authorization denial
// in the command_audit table.
// It is fire-and-forget: errors are logged but do not propagate to callers,
// so audit failures never block or alter an interaction reply. A nil Pool
// (no DATABASE_URL configured) makes this a no-op.
func InsertCommandAudit(ctx context.Context, userID, command, outcome string, details map[string]interface{}) {
	if Pool == nil {
		return
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		log.Printf("[AUDIT_WARN] Failed to marshal details: %v", err)
		detailsJSON = []byte("{}")
	}

	query := `
		INSERT INTO command_audit (user_id, command, outcome, details)
		VALUES ($1, $2, $3, $4)
	`
	_, err = Pool.Exec(ctx, query, userID, command, outcome, detailsJSON)
	if err != nil {
		log.Printf("[AUDIT_WARN] Failed to insert command audit: %v", err)
	}
}
