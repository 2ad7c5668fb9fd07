package cmd

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"parcellocker/internal/core/application/usecases/queries"
	"parcellocker/internal/core/domain/model/locker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "memory")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", config.HTTPPort)
	assert.Equal(t, StoreMemory, config.Store)
	assert.Equal(t, 6, config.Credential.PINLength)
	assert.Equal(t, 100_000, config.Credential.Iterations)
	assert.Equal(t, 3, config.Credential.MaxDailyGenerations)
	assert.Equal(t, 24*time.Hour, config.ReminderThreshold)
	assert.Equal(t, time.Hour, config.SweepInterval)
	assert.Equal(t, 168*time.Hour, config.MaxPickupWindow)
	assert.Equal(t, SinkLog, config.Notifier)
	assert.Empty(t, config.LockerSeed)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "memory")
	t.Setenv("PIN_LENGTH", "8")
	t.Setenv("CALENDAR_TIMEZONE", "Europe/Berlin")
	t.Setenv("SWEEP_INTERVAL", "10m")
	t.Setenv("NOTIFIER", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("LOCKER_SEED", "small:2,large:1")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8, config.Credential.PINLength)
	assert.Equal(t, "Europe/Berlin", config.Credential.Calendar.String())
	assert.Equal(t, 10*time.Minute, config.SweepInterval)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, config.KafkaBrokers)
	assert.Equal(t, []LockerSeed{{Size: locker.Small, Count: 2}, {Size: locker.Large, Count: 1}}, config.LockerSeed)
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "sqlite")
	t.Setenv("PIN_ITERATIONS", "1000")
	t.Setenv("SWEEP_BUDGET", "soon")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SWEEP_BUDGET")

	t.Setenv("SWEEP_BUDGET", "5m")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE")
	assert.Contains(t, err.Error(), "pin iterations")
}

func TestLoadConfig_KafkaSinkNeedsBrokers(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "memory")
	t.Setenv("AUDIT_SINK", "kafka")

	_, err := LoadConfig()
	require.ErrorContains(t, err, "KAFKA_BROKERS")
}

func TestParseLockerSeed(t *testing.T) {
	_, err := ParseLockerSeed("small")
	require.Error(t, err)
	_, err = ParseLockerSeed("tiny:2")
	require.Error(t, err)
	_, err = ParseLockerSeed("small:0")
	require.Error(t, err)

	seed, err := ParseLockerSeed(" Medium:3 ")
	require.NoError(t, err)
	assert.Equal(t, []LockerSeed{{Size: locker.Medium, Count: 3}}, seed)
}

func TestCompositionRoot_SeedsEmptyMemoryStoreOnce(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("STORE", "memory")
	t.Setenv("LOCKER_SEED", "small:2,medium:1")
	config, err := LoadConfig()
	require.NoError(t, err)

	root, err := NewCompositionRoot(config, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = root.Close() })

	seeded, err := root.SeedLockers(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 3, seeded)

	again, err := root.SeedLockers(t.Context())
	require.NoError(t, err)
	assert.Zero(t, again)

	lockers, err := root.CreateListLockersQueryHandler().Handle(t.Context(), queries.NewListLockersQuery())
	require.NoError(t, err)
	require.Len(t, lockers, 3)
	assert.Equal(t, "S01", lockers[0].Label)
	assert.Equal(t, "M03", lockers[2].Label)

	_, err = root.CreateReminderScheduler()
	require.NoError(t, err)
}

func TestCompositionRoot_PostgresNeedsDatabase(t *testing.T) {
	config := Config{Store: StorePostgres}
	_, err := NewCompositionRoot(config, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
}
