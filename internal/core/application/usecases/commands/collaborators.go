package commands

import (
	"context"
	"errors"
	"log/slog"

	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/metrics"
	"parcellocker/internal/pkg/clock"
	"parcellocker/internal/pkg/errs"
)

// Collaborators are the side channels every handler uses after its transaction:
// notifications, the audit trail, time and logging.
type Collaborators struct {
	Notifier ports.Notifier
	Audit    ports.AuditSink
	Clock    clock.Clock
	Logger   *slog.Logger
}

func (c Collaborators) Validate() error {
	var errList []error
	if c.Notifier == nil {
		errList = append(errList, errs.NewValueIsRequiredError("notifier"))
	}
	if c.Audit == nil {
		errList = append(errList, errs.NewValueIsRequiredError("audit sink"))
	}
	if c.Clock == nil {
		errList = append(errList, errs.NewValueIsRequiredError("clock"))
	}
	if c.Logger == nil {
		errList = append(errList, errs.NewValueIsRequiredError("logger"))
	}
	return errors.Join(errList...)
}

// record emits one audit event. A failing sink is logged and counted, never
// returned: the state change it describes has already been committed.
func (c Collaborators) record(ctx context.Context, kind audit.Kind, severity audit.Severity, details map[string]any) {
	event := audit.NewEvent(c.Clock.Now(), kind, severity, details)
	if err := c.Audit.Record(ctx, event); err != nil {
		metrics.AuditFailuresTotal.Inc()
		c.Logger.ErrorContext(ctx, "failed to record audit event",
			"kind", string(kind),
			"event_id", event.ID.String(),
			"error", err,
		)
	}
}

// notify sends one message and reports whether the transport accepted it.
// Failures are logged and audited but do not undo anything.
func (c Collaborators) notify(
	ctx context.Context,
	recipient string,
	kind ports.TemplateKind,
	parcelID kernel.UUID,
	data map[string]string,
) bool {
	err := c.Notifier.Send(ctx, recipient, kind, data)
	if err == nil {
		metrics.NotificationsTotal.WithLabelValues(string(kind), "sent").Inc()
		return true
	}

	metrics.NotificationsTotal.WithLabelValues(string(kind), "failed").Inc()
	c.Logger.WarnContext(ctx, "notification delivery failed",
		"kind", string(kind),
		"parcel_id", parcelID.String(),
		"error", err,
	)
	c.record(ctx, audit.NotificationFailed, audit.Warning, map[string]any{
		"parcel_id": parcelID.String(),
		"template":  string(kind),
		"error":     err.Error(),
	})
	return false
}
