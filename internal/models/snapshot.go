package models

import (
	"encoding/json"
	"time"
)

// ProjectionSnapshot is a saved, immutable copy of a computed projection.
type ProjectionSnapshot struct {
	ID      string          `json:"id"`
	OwnerID string          `json:"owner_id"`
	Days    int             `json:"days"`
	TakenAt time.Time       `json:"taken_at"`
	Payload json.RawMessage `json:"payload"`
}
