package kernel

import (
	"crypto/subtle"
	"strings"

	"parcellocker/internal/pkg/errs"
)

const maxRecipientLength = 320

// ErrRecipientIsNotConstructed is returned when validating a zero-value Recipient.
var ErrRecipientIsNotConstructed = errs.NewValueIsRequiredError("Recipient must be created via NewRecipient")

// Recipient is the opaque contact address (e-mail, phone number, ...) a parcel is
// addressed to. The core never interprets it beyond case-insensitive comparison.
type Recipient struct {
	address    string
	normalized string
}

// NewRecipient trims surrounding whitespace and keeps the address as given for
// delivery, while comparisons use a lower-cased form.
func NewRecipient(address string) (Recipient, error) {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return Recipient{}, errs.NewValueIsRequiredError("recipient")
	}
	if len(trimmed) > maxRecipientLength {
		return Recipient{}, errs.NewValueIsOutOfRangeError("recipient length", len(trimmed), 1, maxRecipientLength)
	}
	return Recipient{
		address:    trimmed,
		normalized: strings.ToLower(trimmed),
	}, nil
}

// String returns the address for notification delivery.
func (r Recipient) String() string {
	return r.address
}

// Matches compares a claimed identifier case-insensitively in constant time with
// respect to the content, so response timing does not leak partial matches.
func (r Recipient) Matches(claimed string) bool {
	if r.normalized == "" {
		return false
	}
	candidate := strings.ToLower(strings.TrimSpace(claimed))
	return subtle.ConstantTimeCompare([]byte(r.normalized), []byte(candidate)) == 1
}

func (r Recipient) Validate() error {
	if r.normalized == "" {
		return ErrRecipientIsNotConstructed
	}
	return nil
}
