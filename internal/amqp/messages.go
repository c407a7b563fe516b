package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// AuditEvent describes one successful mutation for the activity log.
type AuditEvent struct {
	Actor      string         `json:"actor"`
	Kind       string         `json:"kind"`
	Details    map[string]any `json:"details,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewAuditEvent(actor, kind string, details map[string]any) *AuditEvent {
	return &AuditEvent{
		Actor:      actor,
		Kind:       kind,
		Details:    details,
		OccurredAt: time.Now().UTC(),
	}
}

func (e *AuditEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func AuditEventFromJSON(data []byte) (*AuditEvent, error) {
	var e AuditEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal audit event: %w", err)
	}
	if e.Kind == "" {
		return nil, fmt.Errorf("audit event missing kind")
	}
	return &e, nil
}
