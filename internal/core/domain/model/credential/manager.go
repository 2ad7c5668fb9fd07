package credential

import (
	"crypto/pbkdf2"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"
	"strings"
	"time"

	"parcellocker/internal/core/domain/model/kernel"
)

const tokenBytes = 32

// IssuedPIN is handed to the caller exactly once; only its hash is kept.
type IssuedPIN struct {
	PIN    string
	Expiry time.Time
}

// IssuedToken is a generation token handed to the caller exactly once.
type IssuedToken struct {
	Token  string
	Expiry time.Time
}

// Manager issues, hashes, verifies and invalidates parcel credentials.
// It holds no per-parcel state and is safe for concurrent use; callers serialize
// access to a single Credential through their unit of work.
type Manager struct {
	policy Policy
	random io.Reader
	pins   func() (string, error)
}

type Option func(*Manager)

// WithRandom replaces the entropy source used for PINs, salts and tokens.
func WithRandom(r io.Reader) Option {
	return func(m *Manager) {
		m.random = r
	}
}

// WithPINSource replaces PIN generation, e.g. to issue a known PIN in tests.
func WithPINSource(source func() (string, error)) Option {
	return func(m *Manager) {
		m.pins = source
	}
}

func NewManager(policy Policy, opts ...Option) (*Manager, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	m := &Manager{policy: policy, random: rand.Reader}
	for _, opt := range opts {
		opt(m)
	}
	if m.pins == nil {
		m.pins = m.randomPIN
	}
	return m, nil
}

func (m *Manager) Policy() Policy {
	return m.policy
}

// Issue generates a new PIN, replacing any earlier PIN or pending token.
func (m *Manager) Issue(c *Credential, now time.Time) (IssuedPIN, error) {
	if err := c.Validate(); err != nil {
		return IssuedPIN{}, err
	}
	if c.state.IsClosed() {
		return IssuedPIN{}, fmt.Errorf("%w: %s", ErrCredentialClosed, c.state)
	}

	pin, err := m.pins()
	if err != nil {
		return IssuedPIN{}, fmt.Errorf("generate pin: %w", err)
	}
	if !m.wellFormed(pin) {
		return IssuedPIN{}, fmt.Errorf("generate pin: %d digits expected", m.policy.PINLength)
	}

	hash, err := m.hashPIN(pin)
	if err != nil {
		return IssuedPIN{}, err
	}

	expiry := now.Add(m.policy.PINTTL)
	c.setPIN(hash, expiry)
	return IssuedPIN{PIN: pin, Expiry: expiry}, nil
}

// Verify recomputes the derivation with the stored salt and compares in constant
// time. It returns false for a malformed record, an expired PIN or a mismatch.
func (m *Manager) Verify(c *Credential, pin string, now time.Time) bool {
	if c.Validate() != nil || c.state != PINIssued || c.pinExpiry == nil {
		return false
	}
	if now.After(*c.pinExpiry) {
		return false
	}
	if len(c.pinHash) != m.policy.SaltLength+m.policy.KeyLength || !m.wellFormed(pin) {
		return false
	}
	salt := c.pinHash[:m.policy.SaltLength]
	stored := c.pinHash[m.policy.SaltLength:]
	derived, err := m.derive(pin, salt)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(stored, derived) == 1
}

// Consume marks a verified PIN as used; it cannot be verified again.
func (m *Manager) Consume(c *Credential, now time.Time) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.state != PINIssued {
		return fmt.Errorf("%w: %s", ErrCredentialInvalid, c.state)
	}
	c.markVerified(now)
	return nil
}

// RequestRegeneration re-issues a PIN for a recipient who proves the parcel's
// contact identifier. Mismatch is checked before the daily cap so the cap cannot
// be guessed at by strangers.
func (m *Manager) RequestRegeneration(
	c *Credential,
	recipient kernel.Recipient,
	claimedIdentifier string,
	now time.Time,
) (IssuedPIN, error) {
	if err := m.authorizeRegeneration(c, recipient, claimedIdentifier, now); err != nil {
		return IssuedPIN{}, err
	}
	return m.Issue(c, now)
}

// IssueGenerationToken defers PIN issuance: the recipient later redeems the token
// for a PIN. Any earlier PIN is invalidated.
func (m *Manager) IssueGenerationToken(c *Credential, now time.Time) (IssuedToken, error) {
	if err := c.Validate(); err != nil {
		return IssuedToken{}, err
	}
	if c.state.IsClosed() {
		return IssuedToken{}, fmt.Errorf("%w: %s", ErrCredentialClosed, c.state)
	}

	raw := make([]byte, tokenBytes)
	if _, err := io.ReadFull(m.random, raw); err != nil {
		return IssuedToken{}, fmt.Errorf("generate token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(token))

	expiry := now.Add(m.policy.TokenTTL)
	c.setToken(sum[:], expiry)
	return IssuedToken{Token: token, Expiry: expiry}, nil
}

// RequestTokenRegeneration issues a fresh token under the same identifier check
// and daily cap as PIN regeneration. The counter window only resets when the
// calendar day has rolled over, even if the previous token expired.
func (m *Manager) RequestTokenRegeneration(
	c *Credential,
	recipient kernel.Recipient,
	claimedIdentifier string,
	now time.Time,
) (IssuedToken, error) {
	if err := m.authorizeRegeneration(c, recipient, claimedIdentifier, now); err != nil {
		return IssuedToken{}, err
	}
	return m.IssueGenerationToken(c, now)
}

// RedeemGenerationToken exchanges a pending, unexpired token for a PIN. The token
// is single-use: issuing the PIN clears it.
func (m *Manager) RedeemGenerationToken(c *Credential, token string, now time.Time) (IssuedPIN, error) {
	if err := c.Validate(); err != nil {
		return IssuedPIN{}, err
	}
	if c.state != TokenIssued || c.tokenExpiry == nil || now.After(*c.tokenExpiry) {
		return IssuedPIN{}, ErrCredentialInvalid
	}
	sum := sha256.Sum256([]byte(strings.TrimSpace(token)))
	if subtle.ConstantTimeCompare(c.tokenHash, sum[:]) != 1 {
		return IssuedPIN{}, ErrCredentialInvalid
	}
	return m.Issue(c, now)
}

// ForceReissue is the administrative re-issue: no identifier check, no daily cap.
func (m *Manager) ForceReissue(c *Credential, now time.Time) (IssuedPIN, error) {
	return m.Issue(c, now)
}

// Revoke invalidates every outstanding secret once the parcel reached a terminal
// status. Revoking a closed credential is a no-op.
func (m *Manager) Revoke(c *Credential) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.state.IsClosed() {
		return nil
	}
	c.revoke()
	return nil
}

func (m *Manager) authorizeRegeneration(
	c *Credential,
	recipient kernel.Recipient,
	claimedIdentifier string,
	now time.Time,
) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !recipient.Matches(claimedIdentifier) {
		return ErrIdentifierMismatch
	}
	if c.state.IsClosed() {
		return fmt.Errorf("%w: %s", ErrCredentialClosed, c.state)
	}
	return c.countGeneration(m.policy.day(now), m.policy.MaxDailyGenerations)
}

func (m *Manager) hashPIN(pin string) ([]byte, error) {
	salt := make([]byte, m.policy.SaltLength)
	if _, err := io.ReadFull(m.random, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	derived, err := m.derive(pin, salt)
	if err != nil {
		return nil, err
	}
	return append(salt, derived...), nil
}

// derive is PBKDF2-HMAC-SHA256 with the policy's iteration count and key length.
func (m *Manager) derive(pin string, salt []byte) ([]byte, error) {
	derived, err := pbkdf2.Key(sha256.New, pin, salt, m.policy.Iterations, m.policy.KeyLength)
	if err != nil {
		return nil, fmt.Errorf("derive pin hash: %w", err)
	}
	return derived, nil
}

// randomPIN draws uniformly from [0, 10^length) and keeps leading zeros.
func (m *Manager) randomPIN() (string, error) {
	upper := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(m.policy.PINLength)), nil)
	n, err := rand.Int(m.random, upper)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", m.policy.PINLength, n.Int64()), nil
}

func (m *Manager) wellFormed(pin string) bool {
	if len(pin) != m.policy.PINLength {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// MaskPIN keeps at most the two leading digits for audit records.
func MaskPIN(pin string) string {
	const visible = 2
	if len(pin) <= visible {
		return strings.Repeat("*", len(pin))
	}
	return pin[:visible] + strings.Repeat("*", len(pin)-visible)
}
