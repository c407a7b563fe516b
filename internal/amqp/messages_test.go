package amqp

import (
	"testing"
)

func TestAuditEventRoundTrip(t *testing.T) {
	ev := NewAuditEvent("alice", "expense.approved", map[string]any{"expense_id": float64(7)})
	data, err := ev.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := AuditEventFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Actor != "alice" || got.Kind != "expense.approved" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.Details["expense_id"] != float64(7) {
		t.Errorf("details = %v", got.Details)
	}
	if got.OccurredAt.IsZero() {
		t.Error("occurred_at not preserved")
	}
}

func TestAuditEventFromJSONRejectsBadInput(t *testing.T) {
	if _, err := AuditEventFromJSON([]byte(`{not json`)); err == nil {
		t.Error("malformed JSON accepted")
	}
	if _, err := AuditEventFromJSON([]byte(`{"actor":"alice"}`)); err == nil {
		t.Error("event without kind accepted")
	}
}
