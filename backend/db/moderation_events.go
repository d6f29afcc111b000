package db

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// ModerationEvent is an audit row for an admin action.
type ModerationEvent struct {
	Actor    string
	Action   string
	TargetID string
	Details  any
}

// InsertModerationEvent appends a moderation/audit row (best-effort).
// Callers should treat failures as non-fatal; the primary operation should
// not depend on this log.
func InsertModerationEvent(dbc *sql.DB, ev ModerationEvent) error {
	var detailsJSON []byte
	if ev.Details != nil {
		if b, err := json.Marshal(ev.Details); err == nil {
			detailsJSON = b
		}
	}

	var details any
	if len(detailsJSON) > 0 {
		details = string(detailsJSON)
	}
	_, err := dbc.Exec(`INSERT INTO moderation_events (actor, action, target_id, details)
	  VALUES (?, ?, ?, ?)`, ev.Actor, ev.Action, ev.TargetID, details)
	if err != nil {
		return fmt.Errorf("insert moderation_events: %w", err)
	}
	return nil
}
