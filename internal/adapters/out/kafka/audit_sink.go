package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"parcellocker/internal/core/domain/model/audit"
)

type auditMessage struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Kind      string         `json:"kind"`
	Severity  string         `json:"severity"`
	Details   map[string]any `json:"details,omitempty"`
}

// AuditSink appends audit events to a topic keyed by event kind.
type AuditSink struct {
	producer Producer
	topic    string
}

func NewAuditSink(producer Producer, topic string) *AuditSink {
	return &AuditSink{producer: producer, topic: topic}
}

func (s *AuditSink) Record(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(auditMessage{
		ID:        event.ID.String(),
		Timestamp: event.Timestamp,
		Kind:      string(event.Kind),
		Severity:  string(event.Severity),
		Details:   event.Details,
	})
	if err != nil {
		return fmt.Errorf("encode audit event %s: %w", event.Kind, err)
	}

	if err = s.producer.SendMessage(ctx, s.topic, []byte(event.Kind), value); err != nil {
		return fmt.Errorf("publish audit event %s: %w", event.Kind, err)
	}
	return nil
}
