package logging

import (
	"context"
	"log/slog"
	"maps"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/ports"
)

// secretKeys are masked before a message is logged.
var secretKeys = map[string]bool{"pin": true, "token": true}

// Notifier logs messages instead of delivering them.
type Notifier struct {
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger.With("component", "notifier")}
}

func (n *Notifier) Send(ctx context.Context, recipient string, kind ports.TemplateKind, data map[string]string) error {
	masked := maps.Clone(data)
	for key, value := range masked {
		if secretKeys[key] {
			masked[key] = credential.MaskPIN(value)
		}
	}

	n.logger.InfoContext(ctx, "notification",
		"recipient", recipient,
		"template", string(kind),
		"data", masked,
	)
	return nil
}
