// Package audit defines the structured events the core emits to its audit sink.
// Events are append-only output; nothing in the core reads them back.
package audit

import (
	"time"

	"parcellocker/internal/core/domain/model/kernel"
)

// Kind names what happened.
type Kind string

const (
	LockerReserved        Kind = "locker.reserved"
	LockerReleased        Kind = "locker.released"
	LockerProvisioned     Kind = "locker.provisioned"
	LockerStatusOverride  Kind = "locker.status_override"
	LockerFlagged         Kind = "locker.flagged"
	ParcelTransition      Kind = "parcel.transition"
	ParcelDeposited       Kind = "parcel.deposited"
	PINIssued             Kind = "credential.pin_issued"
	PINReissued           Kind = "credential.pin_reissued"
	PINForceReissued      Kind = "credential.pin_force_reissued"
	TokenIssued           Kind = "credential.token_issued"
	TokenRedeemed         Kind = "credential.token_redeemed"
	VerificationSucceeded Kind = "credential.verification_succeeded"
	VerificationFailed    Kind = "credential.verification_failed"
	RegenerationRefused   Kind = "credential.regeneration_refused"
	ReminderSent          Kind = "reminder.sent"
	ReminderFailed        Kind = "reminder.failed"
	NotificationFailed    Kind = "notification.failed"
)

type Severity string

const (
	Info     Severity = "info"
	Warning  Severity = "warning"
	Critical Severity = "critical"
)

// Event is one audit record. Details never carry a full PIN or token.
type Event struct {
	ID        kernel.UUID
	Timestamp time.Time
	Kind      Kind
	Severity  Severity
	Details   map[string]any
}

func NewEvent(now time.Time, kind Kind, severity Severity, details map[string]any) Event {
	if details == nil {
		details = map[string]any{}
	}
	return Event{
		ID:        kernel.NewUUID(),
		Timestamp: now,
		Kind:      kind,
		Severity:  severity,
		Details:   details,
	}
}
