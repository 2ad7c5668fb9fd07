package credential

import (
	"errors"
	"fmt"
	"time"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"
	"parcellocker/internal/pkg/guard"
)

var (
	// ErrCredentialInvalid is the only verification failure reported to callers;
	// wrong, expired and malformed credentials look the same.
	ErrCredentialInvalid = errors.New("credential is invalid")
	// ErrRateLimited means the daily regeneration cap for the parcel is reached.
	ErrRateLimited = errors.New("daily credential generation limit reached")
	// ErrIdentifierMismatch must be translated to a not-found result before it
	// leaves the application layer.
	ErrIdentifierMismatch = errors.New("recipient identifier does not match")
	// ErrCredentialClosed is returned when issuing after pickup or revocation.
	ErrCredentialClosed = errors.New("credential is closed")

	ErrCredentialIsNotConstructed = errors.New("Credential must be created via NewCredential or RestoreCredential")
)

// Credential is the security half of a parcel record, joined to the parcel by
// its identifier. Only Manager mutates it; the PIN itself is never stored.
type Credential struct {
	parcelID kernel.UUID
	state    State

	pinHash   []byte
	pinExpiry *time.Time

	tokenHash   []byte
	tokenExpiry *time.Time

	dailyGenerationCount int
	lastGenerationDate   string

	verifiedAt *time.Time

	guard guard.ConstructorGuard
}

// Record is the persisted form of a Credential. Adapters copy it field by field;
// nothing else should read it.
type Record struct {
	ParcelID             kernel.UUID
	State                State
	PINHash              []byte
	PINExpiry            *time.Time
	TokenHash            []byte
	TokenExpiry          *time.Time
	DailyGenerationCount int
	LastGenerationDate   string
	VerifiedAt           *time.Time
}

func NewCredential(parcelID kernel.UUID) (*Credential, error) {
	return RestoreCredential(Record{ParcelID: parcelID, State: NoPIN})
}

func RestoreCredential(r Record) (*Credential, error) {
	if err := r.ParcelID.Validate(); err != nil {
		return nil, err
	}
	if _, ok := getStateStrings()[r.State]; !ok {
		return nil, errs.NewValueIsInvalidErrorWithCause("credential state", fmt.Errorf("%d is not a valid state", r.State))
	}
	if r.DailyGenerationCount < 0 {
		return nil, errs.NewValueIsInvalidErrorWithCause("daily generation count",
			fmt.Errorf("%d is negative", r.DailyGenerationCount))
	}
	return &Credential{
		parcelID:             r.ParcelID,
		state:                r.State,
		pinHash:              cloneBytes(r.PINHash),
		pinExpiry:            cloneTime(r.PINExpiry),
		tokenHash:            cloneBytes(r.TokenHash),
		tokenExpiry:          cloneTime(r.TokenExpiry),
		dailyGenerationCount: r.DailyGenerationCount,
		lastGenerationDate:   r.LastGenerationDate,
		verifiedAt:           cloneTime(r.VerifiedAt),
		guard:                guard.NewConstructorGuard(),
	}, nil
}

func (c *Credential) Validate() error {
	if c == nil {
		return ErrCredentialIsNotConstructed
	}
	return c.guard.Validate(ErrCredentialIsNotConstructed)
}

func (c *Credential) Snapshot() Record {
	return Record{
		ParcelID:             c.parcelID,
		State:                c.state,
		PINHash:              cloneBytes(c.pinHash),
		PINExpiry:            cloneTime(c.pinExpiry),
		TokenHash:            cloneBytes(c.tokenHash),
		TokenExpiry:          cloneTime(c.tokenExpiry),
		DailyGenerationCount: c.dailyGenerationCount,
		LastGenerationDate:   c.lastGenerationDate,
		VerifiedAt:           cloneTime(c.verifiedAt),
	}
}

func (c *Credential) ParcelID() kernel.UUID {
	return c.parcelID
}

func (c *Credential) State() State {
	return c.state
}

// PINExpiry is readable before verification so callers can tell an expired PIN
// from a wrong one.
func (c *Credential) PINExpiry() *time.Time {
	return cloneTime(c.pinExpiry)
}

func (c *Credential) TokenExpiry() *time.Time {
	return cloneTime(c.tokenExpiry)
}

func (c *Credential) DailyGenerationCount() int {
	return c.dailyGenerationCount
}

func (c *Credential) VerifiedAt() *time.Time {
	return cloneTime(c.verifiedAt)
}

// IsPINExpired reports whether an issued PIN is past its expiry at now.
func (c *Credential) IsPINExpired(now time.Time) bool {
	return c.state == PINIssued && c.pinExpiry != nil && now.After(*c.pinExpiry)
}

func (c *Credential) setPIN(hash []byte, expiry time.Time) {
	c.state = PINIssued
	c.pinHash = hash
	c.pinExpiry = &expiry
	c.tokenHash = nil
	c.tokenExpiry = nil
}

func (c *Credential) setToken(hash []byte, expiry time.Time) {
	c.state = TokenIssued
	c.tokenHash = hash
	c.tokenExpiry = &expiry
	c.pinHash = nil
	c.pinExpiry = nil
}

func (c *Credential) markVerified(now time.Time) {
	c.state = Verified
	c.verifiedAt = &now
	c.pinHash = nil
	c.tokenHash = nil
	c.tokenExpiry = nil
}

func (c *Credential) revoke() {
	c.state = Revoked
	c.pinHash = nil
	c.tokenHash = nil
	c.tokenExpiry = nil
}

// countGeneration applies the calendar-day window and the daily cap.
func (c *Credential) countGeneration(day string, limit int) error {
	if c.lastGenerationDate != day {
		c.lastGenerationDate = day
		c.dailyGenerationCount = 0
	}
	if c.dailyGenerationCount >= limit {
		return ErrRateLimited
	}
	c.dailyGenerationCount++
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
