package credential_test

import (
	"bytes"
	"crypto/pbkdf2"
	"crypto/sha256"
	"strings"
	"testing"
	"time"

	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var issuedAt = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newManager(t *testing.T, opts ...credential.Option) *credential.Manager {
	t.Helper()
	m, err := credential.NewManager(credential.DefaultPolicy(), opts...)
	require.NoError(t, err)
	return m
}

func fixedPIN(pin string) credential.Option {
	return credential.WithPINSource(func() (string, error) { return pin, nil })
}

func newCredential(t *testing.T) *credential.Credential {
	t.Helper()
	c, err := credential.NewCredential(kernel.NewUUID())
	require.NoError(t, err)
	return c
}

func recipient(t *testing.T) kernel.Recipient {
	t.Helper()
	r, err := kernel.NewRecipient("Ann@Example.com")
	require.NoError(t, err)
	return r
}

func TestNewManager(t *testing.T) {
	t.Run("should reject weak parameters", func(t *testing.T) {
		policy := credential.DefaultPolicy()
		policy.Iterations = 1000
		policy.KeyLength = 16
		policy.SaltLength = 8

		m, err := credential.NewManager(policy)

		require.Error(t, err)
		assert.Nil(t, m)
		assert.Contains(t, err.Error(), "pin iterations")
		assert.Contains(t, err.Error(), "pin key length")
		assert.Contains(t, err.Error(), "pin salt length")
	})
}

func TestManager_Issue(t *testing.T) {
	t.Run("should round trip a fresh PIN", func(t *testing.T) {
		m := newManager(t)
		c := newCredential(t)

		issued, err := m.Issue(c, issuedAt)

		require.NoError(t, err)
		assert.Len(t, issued.PIN, 6)
		assert.Equal(t, issuedAt.Add(24*time.Hour), issued.Expiry)
		assert.Equal(t, credential.PINIssued, c.State())
		assert.True(t, m.Verify(c, issued.PIN, issuedAt))
	})

	t.Run("should store salt and derived key, never the PIN", func(t *testing.T) {
		m := newManager(t, fixedPIN("482913"))
		c := newCredential(t)

		_, err := m.Issue(c, issuedAt)
		require.NoError(t, err)

		record := c.Snapshot()
		assert.Len(t, record.PINHash, 16+32)
		assert.False(t, bytes.Contains(record.PINHash, []byte("482913")))
	})

	t.Run("should derive the key with PBKDF2-HMAC-SHA256", func(t *testing.T) {
		m := newManager(t, fixedPIN("482913"))
		c := newCredential(t)

		_, err := m.Issue(c, issuedAt)
		require.NoError(t, err)

		policy := credential.DefaultPolicy()
		record := c.Snapshot()
		salt, stored := record.PINHash[:policy.SaltLength], record.PINHash[policy.SaltLength:]
		want, err := pbkdf2.Key(sha256.New, "482913", salt, policy.Iterations, policy.KeyLength)
		require.NoError(t, err)
		assert.Equal(t, want, stored)
	})

	t.Run("should salt every issuance differently", func(t *testing.T) {
		m := newManager(t, fixedPIN("482913"))
		a, b := newCredential(t), newCredential(t)

		_, err := m.Issue(a, issuedAt)
		require.NoError(t, err)
		_, err = m.Issue(b, issuedAt)
		require.NoError(t, err)

		assert.NotEqual(t, a.Snapshot().PINHash, b.Snapshot().PINHash)
	})

	t.Run("should keep leading zeros", func(t *testing.T) {
		m := newManager(t, credential.WithRandom(bytes.NewReader(make([]byte, 64))))
		c := newCredential(t)

		issued, err := m.Issue(c, issuedAt)

		require.NoError(t, err)
		assert.Equal(t, "000000", issued.PIN)
	})

	t.Run("reissue invalidates the previous PIN", func(t *testing.T) {
		pins := []string{"111111", "222222"}
		m := newManager(t, credential.WithPINSource(func() (string, error) {
			pin := pins[0]
			pins = pins[1:]
			return pin, nil
		}))
		c := newCredential(t)

		_, err := m.Issue(c, issuedAt)
		require.NoError(t, err)
		_, err = m.Issue(c, issuedAt.Add(time.Minute))
		require.NoError(t, err)

		assert.False(t, m.Verify(c, "111111", issuedAt.Add(time.Minute)))
		assert.True(t, m.Verify(c, "222222", issuedAt.Add(time.Minute)))
	})

	t.Run("closed credential cannot be reissued", func(t *testing.T) {
		m := newManager(t)
		c := newCredential(t)
		require.NoError(t, m.Revoke(c))

		_, err := m.Issue(c, issuedAt)

		require.ErrorIs(t, err, credential.ErrCredentialClosed)
	})
}

func TestManager_Verify(t *testing.T) {
	m := newManager(t, fixedPIN("482913"))

	t.Run("should reject any other PIN", func(t *testing.T) {
		c := newCredential(t)
		_, err := m.Issue(c, issuedAt)
		require.NoError(t, err)

		assert.False(t, m.Verify(c, "482914", issuedAt))
		assert.False(t, m.Verify(c, "48291", issuedAt))
		assert.False(t, m.Verify(c, "48291a", issuedAt))
		assert.False(t, m.Verify(c, "", issuedAt))
	})

	t.Run("should reject the right PIN after expiry", func(t *testing.T) {
		c := newCredential(t)
		_, err := m.Issue(c, issuedAt)
		require.NoError(t, err)
		expired := issuedAt.Add(24*time.Hour + time.Second)

		assert.True(t, c.IsPINExpired(expired))
		assert.False(t, m.Verify(c, "482913", expired))
		assert.True(t, m.Verify(c, "482913", issuedAt.Add(24*time.Hour)))
	})

	t.Run("should return false on a malformed stored hash", func(t *testing.T) {
		expiry := issuedAt.Add(time.Hour)
		c, err := credential.RestoreCredential(credential.Record{
			ParcelID:  kernel.NewUUID(),
			State:     credential.PINIssued,
			PINHash:   []byte("short"),
			PINExpiry: &expiry,
		})
		require.NoError(t, err)

		assert.False(t, m.Verify(c, "482913", issuedAt))
	})

	t.Run("a consumed PIN cannot be verified again", func(t *testing.T) {
		c := newCredential(t)
		_, err := m.Issue(c, issuedAt)
		require.NoError(t, err)

		require.NoError(t, m.Consume(c, issuedAt))

		assert.Equal(t, credential.Verified, c.State())
		assert.False(t, m.Verify(c, "482913", issuedAt))
		require.ErrorIs(t, m.Consume(c, issuedAt), credential.ErrCredentialInvalid)
	})

	t.Run("never issued", func(t *testing.T) {
		assert.False(t, m.Verify(newCredential(t), "482913", issuedAt))
	})
}

func TestManager_RequestRegeneration(t *testing.T) {
	m := newManager(t)

	t.Run("should match the identifier case-insensitively", func(t *testing.T) {
		c := newCredential(t)

		issued, err := m.RequestRegeneration(c, recipient(t), "  ann@EXAMPLE.com ", issuedAt)

		require.NoError(t, err)
		assert.True(t, m.Verify(c, issued.PIN, issuedAt))
		assert.Equal(t, 1, c.DailyGenerationCount())
	})

	t.Run("mismatch is reported before the cap and does not count", func(t *testing.T) {
		c := newCredential(t)

		_, err := m.RequestRegeneration(c, recipient(t), "eve@example.com", issuedAt)

		require.ErrorIs(t, err, credential.ErrIdentifierMismatch)
		assert.Equal(t, 0, c.DailyGenerationCount())
		assert.Equal(t, credential.NoPIN, c.State())
	})

	t.Run("fourth request in a day is rate limited until the day rolls over", func(t *testing.T) {
		c := newCredential(t)
		for i := 0; i < 3; i++ {
			_, err := m.RequestRegeneration(c, recipient(t), "ann@example.com", issuedAt.Add(time.Duration(i)*time.Hour))
			require.NoError(t, err)
		}
		before := c.Snapshot()

		_, err := m.RequestRegeneration(c, recipient(t), "ann@example.com", issuedAt.Add(10*time.Hour))
		require.ErrorIs(t, err, credential.ErrRateLimited)
		assert.Equal(t, before, c.Snapshot())

		nextDay := time.Date(2025, 3, 11, 0, 0, 1, 0, time.UTC)
		_, err = m.RequestRegeneration(c, recipient(t), "ann@example.com", nextDay)
		require.NoError(t, err)
		assert.Equal(t, 1, c.DailyGenerationCount())
	})

	t.Run("calendar day follows the configured timezone", func(t *testing.T) {
		policy := credential.DefaultPolicy()
		policy.MaxDailyGenerations = 1
		policy.Calendar = time.FixedZone("UTC+3", 3*60*60)
		local, err := credential.NewManager(policy)
		require.NoError(t, err)
		c := newCredential(t)

		_, err = local.RequestRegeneration(c, recipient(t), "ann@example.com", time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		// 21:30 UTC is already the 11th at UTC+3.
		_, err = local.RequestRegeneration(c, recipient(t), "ann@example.com", time.Date(2025, 3, 10, 21, 30, 0, 0, time.UTC))
		require.NoError(t, err)
	})
}

func TestManager_GenerationToken(t *testing.T) {
	m := newManager(t, fixedPIN("482913"))

	t.Run("should redeem a token once for a PIN", func(t *testing.T) {
		c := newCredential(t)
		token, err := m.IssueGenerationToken(c, issuedAt)
		require.NoError(t, err)
		assert.Equal(t, credential.TokenIssued, c.State())
		assert.Equal(t, issuedAt.Add(72*time.Hour), token.Expiry)
		assert.False(t, strings.Contains(string(c.Snapshot().TokenHash), token.Token))

		issued, err := m.RedeemGenerationToken(c, token.Token, issuedAt.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "482913", issued.PIN)
		assert.True(t, m.Verify(c, "482913", issuedAt.Add(time.Hour)))

		_, err = m.RedeemGenerationToken(c, token.Token, issuedAt.Add(time.Hour))
		require.ErrorIs(t, err, credential.ErrCredentialInvalid)
	})

	t.Run("should refuse an expired or wrong token", func(t *testing.T) {
		c := newCredential(t)
		token, err := m.IssueGenerationToken(c, issuedAt)
		require.NoError(t, err)

		_, err = m.RedeemGenerationToken(c, token.Token+"x", issuedAt)
		require.ErrorIs(t, err, credential.ErrCredentialInvalid)

		_, err = m.RedeemGenerationToken(c, token.Token, issuedAt.Add(73*time.Hour))
		require.ErrorIs(t, err, credential.ErrCredentialInvalid)
		assert.Equal(t, credential.TokenIssued, c.State())
	})

	t.Run("token regeneration shares the daily cap", func(t *testing.T) {
		c := newCredential(t)
		_, err := m.RequestRegeneration(c, recipient(t), "ann@example.com", issuedAt)
		require.NoError(t, err)
		_, err = m.RequestTokenRegeneration(c, recipient(t), "ann@example.com", issuedAt)
		require.NoError(t, err)
		_, err = m.RequestTokenRegeneration(c, recipient(t), "ann@example.com", issuedAt)
		require.NoError(t, err)

		_, err = m.RequestTokenRegeneration(c, recipient(t), "ann@example.com", issuedAt.Add(time.Hour))
		require.ErrorIs(t, err, credential.ErrRateLimited)
	})

	t.Run("issuing a token invalidates the PIN", func(t *testing.T) {
		c := newCredential(t)
		_, err := m.Issue(c, issuedAt)
		require.NoError(t, err)

		_, err = m.IssueGenerationToken(c, issuedAt)
		require.NoError(t, err)

		assert.False(t, m.Verify(c, "482913", issuedAt))
		assert.Nil(t, c.PINExpiry())
	})
}

func TestManager_ForceReissueAndRevoke(t *testing.T) {
	m := newManager(t, fixedPIN("482913"))

	t.Run("force reissue ignores the daily cap", func(t *testing.T) {
		c := newCredential(t)
		for i := 0; i < 5; i++ {
			_, err := m.ForceReissue(c, issuedAt)
			require.NoError(t, err)
		}
		assert.Equal(t, 0, c.DailyGenerationCount())
	})

	t.Run("revoke clears every secret", func(t *testing.T) {
		c := newCredential(t)
		_, err := m.Issue(c, issuedAt)
		require.NoError(t, err)

		require.NoError(t, m.Revoke(c))

		assert.Equal(t, credential.Revoked, c.State())
		assert.Nil(t, c.Snapshot().PINHash)
		assert.False(t, m.Verify(c, "482913", issuedAt))
		require.NoError(t, m.Revoke(c))
	})
}

func TestMaskPIN(t *testing.T) {
	assert.Equal(t, "48****", credential.MaskPIN("482913"))
	assert.Equal(t, "**", credential.MaskPIN("48"))
	assert.Equal(t, "", credential.MaskPIN(""))
}
