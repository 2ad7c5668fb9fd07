package guard_test

import (
	"errors"
	"sync"
	"testing"

	"parcellocker/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConstructorGuard(t *testing.T) {
	t.Run("creates_properly_constructed_guard", func(t *testing.T) {
		// When
		g := guard.NewConstructorGuard()

		// Then
		require.NoError(t, g.Validate(errors.New("not constructed")))
		require.NoError(t, g.Validate(nil))
	})
}

func TestConstructorGuard_Validate(t *testing.T) {
	t.Run("zero_value_guard_returns_custom_error", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard
		expectedError := errors.New("locker not constructed")

		// When
		err := g.Validate(expectedError)

		// Then
		require.Error(t, err)
		assert.Equal(t, expectedError, err)
	})

	t.Run("zero_value_guard_returns_default_error_when_nil", func(t *testing.T) {
		// Given
		var g guard.ConstructorGuard

		// When
		err := g.Validate(nil)

		// Then
		require.ErrorIs(t, err, guard.ErrDefaultConstructorGuard)
	})
}

// TestConstructorGuardUsageExample shows a command that can only be used when
// built through its constructor.
func TestConstructorGuardUsageExample(t *testing.T) {
	type pickupCommand struct {
		pin   string
		guard guard.ConstructorGuard
	}

	errPickupCommandNotConstructed := errors.New("pickupCommand must be created via newPickupCommand")

	newPickupCommand := func(pin string) (pickupCommand, error) {
		if pin == "" {
			return pickupCommand{}, errors.New("pin is required")
		}
		return pickupCommand{pin: pin, guard: guard.NewConstructorGuard()}, nil
	}

	t.Run("constructed_command_is_valid", func(t *testing.T) {
		cmd, err := newPickupCommand("482913")
		require.NoError(t, err)
		require.NoError(t, cmd.guard.Validate(errPickupCommandNotConstructed))
		assert.Equal(t, "482913", cmd.pin)
	})

	t.Run("literal_command_is_rejected", func(t *testing.T) {
		cmd := pickupCommand{pin: "482913"}
		require.ErrorIs(t, cmd.guard.Validate(errPickupCommandNotConstructed), errPickupCommandNotConstructed)
	})

	t.Run("failed_constructor_returns_zero_value", func(t *testing.T) {
		cmd, err := newPickupCommand("")
		require.Error(t, err)
		require.Error(t, cmd.guard.Validate(errPickupCommandNotConstructed))
	})
}

func TestConstructorGuardConcurrency(t *testing.T) {
	g := guard.NewConstructorGuard()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, g.Validate(nil))
		}()
	}
	wg.Wait()
}
