package domain

import (
	"encoding/json"
	"time"
)

// SyncedTask mirrors a task owned by the external Todoist account.
// Raw keeps the full upstream payload for fields the mirror does not model.
type SyncedTask struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	RemoteID  string          `json:"remote_id"`
	Content   string          `json:"content"`
	Completed bool            `json:"completed"`
	Raw       json.RawMessage `json:"raw,omitempty"`
	SyncedAt  time.Time       `json:"synced_at"`
}
