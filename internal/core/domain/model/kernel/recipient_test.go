package kernel_test

import (
	"strings"
	"testing"

	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecipient(t *testing.T) {
	t.Run("should keep original casing for delivery", func(t *testing.T) {
		r, err := kernel.NewRecipient("  Alice@Example.org ")

		require.NoError(t, err)
		assert.Equal(t, "Alice@Example.org", r.String())
	})

	t.Run("should reject blank address", func(t *testing.T) {
		_, err := kernel.NewRecipient("   ")

		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("should reject overly long address", func(t *testing.T) {
		_, err := kernel.NewRecipient(strings.Repeat("a", 400))

		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})
}

func TestRecipient_Matches(t *testing.T) {
	r, err := kernel.NewRecipient("Alice@Example.org")
	require.NoError(t, err)

	testCases := []struct {
		claimed  string
		expected bool
	}{
		{"alice@example.org", true},
		{"ALICE@EXAMPLE.ORG", true},
		{" alice@example.org ", true},
		{"alice@example.com", false},
		{"alice", false},
		{"", false},
	}

	for _, tc := range testCases {
		t.Run(tc.claimed, func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Matches(tc.claimed))
		})
	}

	t.Run("zero value never matches", func(t *testing.T) {
		var zero kernel.Recipient
		assert.False(t, zero.Matches(""))
		require.ErrorIs(t, zero.Validate(), kernel.ErrRecipientIsNotConstructed)
	})
}
