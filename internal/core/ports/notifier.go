package ports

import (
	"context"
	"errors"
)

// ErrDeliveryFailure wraps every notifier failure. A failed delivery never rolls
// back the state change that triggered it.
var ErrDeliveryFailure = errors.New("notification delivery failed")

// TemplateKind is the fixed set of messages the core asks to deliver.
type TemplateKind string

const (
	DepositConfirmation TemplateKind = "deposit-confirmation"
	PINIssued           TemplateKind = "pin-issued"
	PINReissued         TemplateKind = "pin-reissued"
	Reminder            TemplateKind = "reminder"
	AdminMissingAlert   TemplateKind = "admin-missing-alert"
)

// Notifier hands a message to an outbound transport. Delivery is not assumed to
// be synchronous or guaranteed; implementations may be slow and callers must not
// hold locks while calling Send.
type Notifier interface {
	Send(ctx context.Context, recipient string, kind TemplateKind, data map[string]string) error
}
