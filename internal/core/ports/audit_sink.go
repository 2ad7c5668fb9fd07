package ports

import (
	"context"

	"parcellocker/internal/core/domain/model/audit"
)

// AuditSink receives one event per transition, credential attempt and
// administrative override. The core never reads events back.
type AuditSink interface {
	Record(ctx context.Context, event audit.Event) error
}
