package services_test

import (
	"testing"

	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func restoreLocker(t *testing.T, id int, size locker.SizeClass, status locker.Status) *locker.Locker {
	t.Helper()
	l, err := locker.RestoreLocker(id, "L", size, status)
	require.NoError(t, err)
	return l
}

func TestLockerPool_Reserve(t *testing.T) {
	pool := services.NewLockerPool()

	t.Run("should pick the lowest identifier of the exact size", func(t *testing.T) {
		candidates := []*locker.Locker{
			restoreLocker(t, 9, locker.Small, locker.Free),
			restoreLocker(t, 3, locker.Small, locker.Free),
			restoreLocker(t, 1, locker.Small, locker.Occupied),
		}

		l, err := pool.Reserve(locker.Small, candidates)

		require.NoError(t, err)
		assert.Equal(t, 3, l.ID())
		assert.Equal(t, locker.Occupied, l.Status())
	})

	t.Run("should substitute upward", func(t *testing.T) {
		candidates := []*locker.Locker{
			restoreLocker(t, 1, locker.Small, locker.Occupied),
			restoreLocker(t, 4, locker.Medium, locker.Free),
		}

		l, err := pool.Reserve(locker.Small, candidates)

		require.NoError(t, err)
		assert.Equal(t, locker.Medium, l.Size())
	})

	t.Run("should never substitute downward", func(t *testing.T) {
		candidates := []*locker.Locker{
			restoreLocker(t, 1, locker.Small, locker.Free),
			restoreLocker(t, 2, locker.Medium, locker.Free),
		}

		l, err := pool.Reserve(locker.Large, candidates)

		require.ErrorIs(t, err, locker.ErrNotAvailable)
		assert.Nil(t, l)
		assert.Equal(t, locker.Free, candidates[0].Status())
		assert.Equal(t, locker.Free, candidates[1].Status())
	})

	t.Run("should skip out of service and disputed lockers", func(t *testing.T) {
		candidates := []*locker.Locker{
			restoreLocker(t, 1, locker.Large, locker.OutOfService),
			restoreLocker(t, 2, locker.Large, locker.DisputedContents),
		}

		_, err := pool.Reserve(locker.Small, candidates)

		require.ErrorIs(t, err, locker.ErrNotAvailable)
	})

	t.Run("should reject an unknown size", func(t *testing.T) {
		_, err := pool.Reserve(locker.UnknownSize, nil)

		require.Error(t, err)
		assert.NotErrorIs(t, err, locker.ErrNotAvailable)
	})
}

func TestLockerPool_Release(t *testing.T) {
	pool := services.NewLockerPool()

	t.Run("occupied becomes free", func(t *testing.T) {
		l := restoreLocker(t, 1, locker.Small, locker.Occupied)
		require.NoError(t, pool.Release(l))
		assert.Equal(t, locker.Free, l.Status())
	})

	t.Run("out of service is sticky", func(t *testing.T) {
		l := restoreLocker(t, 1, locker.Small, locker.OutOfService)
		require.NoError(t, pool.Release(l))
		assert.Equal(t, locker.OutOfService, l.Status())
	})
}
