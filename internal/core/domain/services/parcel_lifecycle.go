package services

import (
	"errors"
	"fmt"
	"time"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/pkg/errs"
)

// ErrLockerMismatch is returned when the locker handed in is not the one the
// parcel references.
var ErrLockerMismatch = errors.New("locker does not belong to parcel")

// DeliveryMode decides what the recipient receives at deposit time.
type DeliveryMode int

const (
	// DeliverPIN issues the PIN immediately.
	DeliverPIN DeliveryMode = iota
	// DeliverToken issues a generation token that is later redeemed for a PIN.
	DeliverToken
)

// Windows are the time limits of the guarded transitions.
type Windows struct {
	Retraction time.Duration
	Dispute    time.Duration
	MaxPickup  time.Duration
}

func (w Windows) Validate() error {
	var errList []error
	if w.Retraction <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("retraction window"))
	}
	if w.Dispute <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("dispute window"))
	}
	if w.MaxPickup <= 0 {
		errList = append(errList, errs.NewValueIsInvalidError("max pickup window"))
	}
	return errors.Join(errList...)
}

// Deposit is the outcome of a successful deposit. Exactly one of PIN and Token is
// set; both must be delivered and then dropped.
type Deposit struct {
	Parcel     *parcel.Parcel
	Locker     *locker.Locker
	Credential *credential.Credential
	PIN        *credential.IssuedPIN
	Token      *credential.IssuedToken
}

// ParcelLifecycle applies cross-aggregate transitions: parcel status, the locker
// it occupies and its credential move together. Every guard on every aggregate
// is checked before the first mutation, so a refused transition changes nothing.
type ParcelLifecycle struct {
	windows     Windows
	pool        LockerPool
	credentials *credential.Manager
}

func NewParcelLifecycle(windows Windows, credentials *credential.Manager) (*ParcelLifecycle, error) {
	if err := windows.Validate(); err != nil {
		return nil, err
	}
	if credentials == nil {
		return nil, errs.NewValueIsRequiredError("credentials")
	}
	return &ParcelLifecycle{
		windows:     windows,
		pool:        NewLockerPool(),
		credentials: credentials,
	}, nil
}

func (lc *ParcelLifecycle) Windows() Windows {
	return lc.windows
}

func (lc *ParcelLifecycle) Credentials() *credential.Manager {
	return lc.credentials
}

// Deposit reserves a locker from candidates, creates the parcel in Deposited and
// issues its first credential.
func (lc *ParcelLifecycle) Deposit(
	id kernel.UUID,
	size locker.SizeClass,
	recipient kernel.Recipient,
	mode DeliveryMode,
	candidates []*locker.Locker,
	now time.Time,
) (Deposit, error) {
	selected, err := lc.pool.Select(size, candidates)
	if err != nil {
		return Deposit{}, err
	}

	p, err := parcel.NewParcel(id, selected.ID(), size, recipient, now)
	if err != nil {
		return Deposit{}, err
	}
	c, err := credential.NewCredential(id)
	if err != nil {
		return Deposit{}, err
	}

	result := Deposit{Parcel: p, Locker: selected, Credential: c}
	switch mode {
	case DeliverToken:
		token, tokenErr := lc.credentials.IssueGenerationToken(c, now)
		if tokenErr != nil {
			return Deposit{}, tokenErr
		}
		result.Token = &token
	default:
		pin, pinErr := lc.credentials.Issue(c, now)
		if pinErr != nil {
			return Deposit{}, pinErr
		}
		result.PIN = &pin
	}

	if err = selected.Occupy(); err != nil {
		return Deposit{}, err
	}
	return result, nil
}

// PickUp verifies pin and moves the parcel to PickedUp, consuming the PIN and
// releasing the locker. An expired or wrong PIN both yield
// credential.ErrCredentialInvalid.
func (lc *ParcelLifecycle) PickUp(
	p *parcel.Parcel,
	l *locker.Locker,
	c *credential.Credential,
	pin string,
	now time.Time,
) error {
	if err := p.CheckPickUp(); err != nil {
		return err
	}
	if err := lc.checkLocker(p, l); err != nil {
		return err
	}
	if err := l.CheckRelease(); err != nil {
		return err
	}
	if !lc.credentials.Verify(c, pin, now) {
		return credential.ErrCredentialInvalid
	}

	if err := p.PickUp(now); err != nil {
		return err
	}
	if err := lc.credentials.Consume(c, now); err != nil {
		return err
	}
	return lc.pool.Release(l)
}

// Retract returns a freshly deposited parcel to its sender within the
// retraction window.
func (lc *ParcelLifecycle) Retract(p *parcel.Parcel, l *locker.Locker, c *credential.Credential, now time.Time) error {
	if err := p.CheckRetract(now, lc.windows.Retraction); err != nil {
		return err
	}
	if err := lc.checkLocker(p, l); err != nil {
		return err
	}
	if err := l.CheckRelease(); err != nil {
		return err
	}

	if err := p.Retract(now, lc.windows.Retraction); err != nil {
		return err
	}
	if err := lc.credentials.Revoke(c); err != nil {
		return err
	}
	return lc.pool.Release(l)
}

// MarkMissing detaches the parcel from its locker and takes the locker out of
// service for inspection.
func (lc *ParcelLifecycle) MarkMissing(p *parcel.Parcel, l *locker.Locker, c *credential.Credential, now time.Time) error {
	if err := p.CheckMarkMissing(); err != nil {
		return err
	}
	if err := lc.checkLocker(p, l); err != nil {
		return err
	}

	if err := p.MarkMissing(now); err != nil {
		return err
	}
	if err := lc.credentials.Revoke(c); err != nil {
		return err
	}
	l.TakeOutOfService()
	return nil
}

// Dispute re-flags the already released locker as disputed_contents. A locker
// that was handed to another parcel in the meantime makes the dispute invalid.
func (lc *ParcelLifecycle) Dispute(p *parcel.Parcel, l *locker.Locker, now time.Time) error {
	if err := p.CheckDispute(now, lc.windows.Dispute); err != nil {
		return err
	}
	if err := lc.checkLocker(p, l); err != nil {
		return err
	}
	if err := l.CheckFlagDisputed(); err != nil {
		return parcel.NewInvalidTransitionError(p.Status(), parcel.PickupDisputed, err.Error())
	}

	if err := p.Dispute(now, lc.windows.Dispute); err != nil {
		return err
	}
	return l.FlagDisputed()
}

// Expire returns an uncollected parcel to the sender once the pickup window has
// elapsed.
func (lc *ParcelLifecycle) Expire(p *parcel.Parcel, l *locker.Locker, c *credential.Credential, now time.Time) error {
	if err := p.CheckExpire(now, lc.windows.MaxPickup); err != nil {
		return err
	}
	if err := lc.checkLocker(p, l); err != nil {
		return err
	}
	if err := l.CheckRelease(); err != nil {
		return err
	}

	if err := p.Expire(now, lc.windows.MaxPickup); err != nil {
		return err
	}
	if err := lc.credentials.Revoke(c); err != nil {
		return err
	}
	return lc.pool.Release(l)
}

func (lc *ParcelLifecycle) checkLocker(p *parcel.Parcel, l *locker.Locker) error {
	if err := l.Validate(); err != nil {
		return err
	}
	lockerID := p.LockerID()
	if lockerID == nil || *lockerID != l.ID() {
		return fmt.Errorf("%w: parcel %s, locker %d", ErrLockerMismatch, p.ID(), l.ID())
	}
	return nil
}
