package parcel

import (
	"errors"
	"fmt"
	"time"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var (
	ErrParcelIsNotConstructed = errors.New("Parcel must be created via NewParcel or RestoreParcel")
	// ErrAlreadyReminded is returned when a reminder was already recorded for this deposit.
	ErrAlreadyReminded = errors.New("reminder already sent")
)

// Parcel is the aggregate root for one deposited item. It owns the lifecycle
// status and timestamps; the locker it occupies and the pickup credential are
// separate aggregates referenced by identifier.
//
// Invariants:
//   - a parcel in Deposited or PickupDisputed references a locker
//   - only Missing detaches the locker reference
//   - reminderSentAt is set at most once
type Parcel struct {
	id        kernel.UUID
	lockerID  *int
	size      locker.SizeClass
	recipient kernel.Recipient
	status    Status

	depositedAt    time.Time
	pickedUpAt     *time.Time
	closedAt       *time.Time
	reminderSentAt *time.Time

	guard guard.ConstructorGuard
}

// NewParcel creates a parcel in Deposited bound to lockerID.
func NewParcel(
	id kernel.UUID,
	lockerID int,
	size locker.SizeClass,
	recipient kernel.Recipient,
	depositedAt time.Time,
) (*Parcel, error) {
	return RestoreParcel(id, &lockerID, size, recipient, Deposited, depositedAt, nil, nil, nil)
}

// RestoreParcel rebuilds a parcel from persistence.
func RestoreParcel(
	id kernel.UUID,
	lockerID *int,
	size locker.SizeClass,
	recipient kernel.Recipient,
	status Status,
	depositedAt time.Time,
	pickedUpAt *time.Time,
	closedAt *time.Time,
	reminderSentAt *time.Time,
) (*Parcel, error) {
	p := &Parcel{
		pickedUpAt:     pickedUpAt,
		closedAt:       closedAt,
		reminderSentAt: reminderSentAt,
		guard:          guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		p.setID(id),
		p.setSize(size),
		p.setRecipient(recipient),
		p.setStatus(status),
		p.setDepositedAt(depositedAt),
	); err != nil {
		return nil, err
	}

	if err := p.setLockerID(lockerID); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *Parcel) Validate() error {
	if p == nil {
		return ErrParcelIsNotConstructed
	}
	return p.guard.Validate(ErrParcelIsNotConstructed)
}

func (p *Parcel) ID() kernel.UUID {
	return p.id
}

// LockerID returns the locker the parcel is bound to, or nil once detached.
func (p *Parcel) LockerID() *int {
	if p.lockerID == nil {
		return nil
	}
	id := *p.lockerID
	return &id
}

func (p *Parcel) Size() locker.SizeClass {
	return p.size
}

func (p *Parcel) Recipient() kernel.Recipient {
	return p.recipient
}

func (p *Parcel) Status() Status {
	return p.status
}

func (p *Parcel) DepositedAt() time.Time {
	return p.depositedAt
}

func (p *Parcel) PickedUpAt() *time.Time {
	return p.pickedUpAt
}

// ClosedAt is when the parcel last left Deposited or PickedUp.
func (p *Parcel) ClosedAt() *time.Time {
	return p.closedAt
}

func (p *Parcel) ReminderSentAt() *time.Time {
	return p.reminderSentAt
}

// IsActive reports whether the parcel still owns its locker.
func (p *Parcel) IsActive() bool {
	return p.status.HoldsLocker()
}

// CheckPickUp validates Deposited -> PickedUp without applying it. Credential
// checks live with the credential aggregate.
func (p *Parcel) CheckPickUp() error {
	_, err := p.status.TransitionTo(PickedUp)
	return err
}

// PickUp moves the parcel to PickedUp. The locker reference is kept so that a
// later dispute can flag the compartment.
func (p *Parcel) PickUp(now time.Time) error {
	if err := p.CheckPickUp(); err != nil {
		return err
	}
	p.status = PickedUp
	p.pickedUpAt = &now
	return nil
}

// CheckRetract validates Deposited -> RetractedBySender within window of deposit.
func (p *Parcel) CheckRetract(now time.Time, window time.Duration) error {
	if _, err := p.status.TransitionTo(RetractedBySender); err != nil {
		return err
	}
	if now.Sub(p.depositedAt) > window {
		return NewInvalidTransitionError(p.status, RetractedBySender, "retraction window elapsed")
	}
	return nil
}

func (p *Parcel) Retract(now time.Time, window time.Duration) error {
	if err := p.CheckRetract(now, window); err != nil {
		return err
	}
	p.status = RetractedBySender
	p.closedAt = &now
	return nil
}

// CheckMarkMissing validates Deposited|PickupDisputed -> Missing.
func (p *Parcel) CheckMarkMissing() error {
	if _, err := p.status.TransitionTo(Missing); err != nil {
		return err
	}
	if p.lockerID == nil {
		return NewInvalidTransitionError(p.status, Missing, "parcel has no locker")
	}
	return nil
}

// MarkMissing moves the parcel to Missing and detaches it from its locker.
func (p *Parcel) MarkMissing(now time.Time) error {
	if err := p.CheckMarkMissing(); err != nil {
		return err
	}
	p.status = Missing
	p.lockerID = nil
	p.closedAt = &now
	return nil
}

// CheckDispute validates PickedUp -> PickupDisputed within window of pickup.
func (p *Parcel) CheckDispute(now time.Time, window time.Duration) error {
	if _, err := p.status.TransitionTo(PickupDisputed); err != nil {
		return err
	}
	if p.pickedUpAt == nil || now.Sub(*p.pickedUpAt) > window {
		return NewInvalidTransitionError(p.status, PickupDisputed, "dispute window elapsed")
	}
	if p.lockerID == nil {
		return NewInvalidTransitionError(p.status, PickupDisputed, "parcel has no locker")
	}
	return nil
}

func (p *Parcel) Dispute(now time.Time, window time.Duration) error {
	if err := p.CheckDispute(now, window); err != nil {
		return err
	}
	p.status = PickupDisputed
	p.closedAt = &now
	return nil
}

// IsOverdue reports whether a deposited parcel has exceeded the pickup window.
func (p *Parcel) IsOverdue(now time.Time, maxPickupWindow time.Duration) bool {
	return p.status == Deposited && now.Sub(p.depositedAt) > maxPickupWindow
}

// CheckExpire validates Deposited -> Expired once the pickup window has elapsed.
func (p *Parcel) CheckExpire(now time.Time, maxPickupWindow time.Duration) error {
	if _, err := p.status.TransitionTo(Expired); err != nil {
		return err
	}
	if !p.IsOverdue(now, maxPickupWindow) {
		return NewInvalidTransitionError(p.status, Expired, "pickup window not elapsed")
	}
	return nil
}

func (p *Parcel) Expire(now time.Time, maxPickupWindow time.Duration) error {
	if err := p.CheckExpire(now, maxPickupWindow); err != nil {
		return err
	}
	p.status = Expired
	p.closedAt = &now
	return nil
}

// NeedsReminder reports whether the parcel is eligible for its single reminder.
func (p *Parcel) NeedsReminder(now time.Time, threshold time.Duration) bool {
	return p.status == Deposited && p.reminderSentAt == nil && now.Sub(p.depositedAt) >= threshold
}

// MarkReminded records the reminder attempt. It fails if one was already recorded.
func (p *Parcel) MarkReminded(now time.Time) error {
	if p.reminderSentAt != nil {
		return ErrAlreadyReminded
	}
	if p.status != Deposited {
		return NewInvalidTransitionError(p.status, p.status, "reminders apply to deposited parcels only")
	}
	p.reminderSentAt = &now
	return nil
}

func (p *Parcel) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	p.id = id
	return nil
}

func (p *Parcel) setSize(size locker.SizeClass) error {
	if err := size.Validate(); err != nil {
		return err
	}
	p.size = size
	return nil
}

func (p *Parcel) setRecipient(recipient kernel.Recipient) error {
	if err := recipient.Validate(); err != nil {
		return err
	}
	p.recipient = recipient
	return nil
}

func (p *Parcel) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	p.status = status
	return nil
}

func (p *Parcel) setDepositedAt(depositedAt time.Time) error {
	if depositedAt.IsZero() {
		return errs.NewValueIsRequiredError("depositedAt")
	}
	p.depositedAt = depositedAt
	return nil
}

func (p *Parcel) setLockerID(lockerID *int) error {
	if lockerID != nil && *lockerID <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("locker id", fmt.Errorf("%d is not greater than 0", *lockerID))
	}
	if lockerID == nil && p.status.HoldsLocker() {
		return errs.NewValueIsRequiredErrorWithCause("locker id", fmt.Errorf("%s parcel must reference a locker", p.status))
	}
	if lockerID != nil {
		id := *lockerID
		p.lockerID = &id
	}
	return nil
}
