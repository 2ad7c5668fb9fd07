package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"parcellocker/internal/adapters/out/memory"
	"parcellocker/internal/core/application/usecases/commands"
	"parcellocker/internal/core/domain/model/audit"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLease struct {
	mock.Mock
}

func (m *MockLease) Acquire(ctx context.Context, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockLease) Release(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

// countingNotifier counts send attempts per template; kinds in failing are
// counted and then refused.
type countingNotifier struct {
	mu      sync.Mutex
	count   map[ports.TemplateKind]int
	failing map[ports.TemplateKind]bool
}

func (n *countingNotifier) Send(_ context.Context, _ string, kind ports.TemplateKind, _ map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.count[kind]++
	if n.failing[kind] {
		return ports.ErrDeliveryFailure
	}
	return nil
}

func (n *countingNotifier) fail(kind ports.TemplateKind) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failing[kind] = true
}

func (n *countingNotifier) sent(kind ports.TemplateKind) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.count[kind]
}

type discardAudit struct{}

func (discardAudit) Record(context.Context, audit.Event) error { return nil }

type sweepFixture struct {
	clock    *clock.Manual
	store    *memory.UnitOfWorkFactory
	notifier *countingNotifier
	expire   commands.ExpireOverdueParcelsCommandHandler
	remind   commands.SendRemindersCommandHandler
	deposit  commands.DepositParcelCommandHandler
	logger   *slog.Logger
}

func newSweepFixture(t *testing.T, lockers int) *sweepFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	credentials, err := credential.NewManager(credential.DefaultPolicy())
	require.NoError(t, err)
	lifecycle, err := services.NewParcelLifecycle(services.Windows{
		Retraction: 15 * time.Minute,
		Dispute:    30 * time.Minute,
		MaxPickup:  7 * 24 * time.Hour,
	}, credentials)
	require.NoError(t, err)

	store := memory.NewUnitOfWorkFactory(memory.NewStore())
	factory := commands.UoWFactoryFunc(func() commands.UoW { return store.Create() })
	f := &sweepFixture{
		clock:    clock.NewManual(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
		store:    store,
		notifier: &countingNotifier{
			count:   make(map[ports.TemplateKind]int),
			failing: make(map[ports.TemplateKind]bool),
		},
		logger:   logger,
	}
	collab := commands.Collaborators{Notifier: f.notifier, Audit: discardAudit{}, Clock: f.clock, Logger: logger}

	f.expire = commands.NewExpireOverdueParcelsCommandHandler(factory, lifecycle, collab)
	f.remind, err = commands.NewSendRemindersCommandHandler(factory, 24*time.Hour, collab)
	require.NoError(t, err)
	f.deposit = commands.NewDepositParcelCommandHandler(factory, lifecycle, collab)

	provision := commands.NewProvisionLockerCommandHandler(factory, collab)
	for id := 1; id <= lockers; id++ {
		cmd, cmdErr := commands.NewProvisionLockerCommand(id, "L", locker.Small)
		require.NoError(t, cmdErr)
		require.NoError(t, provision.Handle(t.Context(), cmd))
	}
	return f
}

func (f *sweepFixture) depositParcel(t *testing.T) commands.DepositParcelResult {
	t.Helper()
	cmd, err := commands.NewDepositParcelCommand(locker.Small, "ann@example.com", services.DeliverPIN)
	require.NoError(t, err)
	result, err := f.deposit.Handle(t.Context(), cmd)
	require.NoError(t, err)
	return result
}

func (f *sweepFixture) status(t *testing.T, result commands.DepositParcelResult) parcel.Status {
	t.Helper()
	uow := f.store.Create()
	require.NoError(t, uow.Begin(t.Context()))
	defer func() { _ = uow.Rollback(t.Context()) }()
	p, err := uow.ParcelRepository().Get(t.Context(), result.ParcelID)
	require.NoError(t, err)
	return p.Status()
}

func (f *sweepFixture) scheduler(t *testing.T, lease ports.SweepLease, batchSize int) *ReminderScheduler {
	t.Helper()
	s, err := NewReminderScheduler(f.expire, f.remind, lease, SchedulerConfig{
		Interval:  time.Hour,
		Budget:    time.Minute,
		BatchSize: batchSize,
	}, f.logger)
	require.NoError(t, err)
	return s
}

func TestReminderScheduler_RunOnceExpiresThenReminds(t *testing.T) {
	f := newSweepFixture(t, 3)

	stale := f.depositParcel(t)
	f.clock.Advance(6 * 24 * time.Hour)
	due := f.depositParcel(t)
	f.clock.Advance(25 * time.Hour)
	fresh := f.depositParcel(t)

	result, err := f.scheduler(t, memory.NewLease(), 10).RunOnce(t.Context())
	require.NoError(t, err)

	assert.False(t, result.Skipped)
	assert.Equal(t, 1, result.Expired.Succeeded)
	assert.Equal(t, 1, result.Reminders.Succeeded)
	assert.Equal(t, parcel.Expired, f.status(t, stale))
	assert.Equal(t, parcel.Deposited, f.status(t, due))
	assert.Equal(t, parcel.Deposited, f.status(t, fresh))
	assert.Equal(t, 1, f.notifier.sent(ports.Reminder), "the expired parcel gets no reminder")
}

func TestReminderScheduler_SecondRunSendsNoDuplicateReminders(t *testing.T) {
	f := newSweepFixture(t, 2)
	f.depositParcel(t)
	f.depositParcel(t)
	f.clock.Advance(25 * time.Hour)

	s := f.scheduler(t, memory.NewLease(), 10)
	first, err := s.RunOnce(t.Context())
	require.NoError(t, err)
	second, err := s.RunOnce(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 2, first.Reminders.Succeeded)
	assert.Zero(t, second.Reminders.Found)
	assert.Equal(t, 2, f.notifier.sent(ports.Reminder))
}

func TestReminderScheduler_DrainsFullBatches(t *testing.T) {
	f := newSweepFixture(t, 5)
	for range 5 {
		f.depositParcel(t)
	}
	f.clock.Advance(25 * time.Hour)

	result, err := f.scheduler(t, memory.NewLease(), 2).RunOnce(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Reminders.Succeeded)
	assert.Equal(t, 5, f.notifier.sent(ports.Reminder))
}

func TestReminderScheduler_DrainsBatchesWhoseSendsAllFail(t *testing.T) {
	f := newSweepFixture(t, 5)
	for range 5 {
		f.depositParcel(t)
	}
	f.clock.Advance(25 * time.Hour)
	f.notifier.fail(ports.Reminder)

	s := f.scheduler(t, memory.NewLease(), 2)
	result, err := s.RunOnce(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 5, result.Reminders.Claimed)
	assert.Equal(t, 5, result.Reminders.Failed)
	assert.Zero(t, result.Reminders.Succeeded)
	assert.Equal(t, 5, f.notifier.sent(ports.Reminder), "every due parcel got its one attempt in this run")

	again, err := s.RunOnce(t.Context())
	require.NoError(t, err)
	assert.Zero(t, again.Reminders.Found)
	assert.Equal(t, 5, f.notifier.sent(ports.Reminder))
}

func TestReminderScheduler_SkipsWhenLeaseIsHeld(t *testing.T) {
	f := newSweepFixture(t, 1)
	f.depositParcel(t)
	f.clock.Advance(25 * time.Hour)

	lease := memory.NewLease()
	_, held, err := lease.Acquire(t.Context(), time.Hour)
	require.NoError(t, err)
	require.True(t, held)

	result, err := f.scheduler(t, lease, 10).RunOnce(t.Context())
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Zero(t, f.notifier.sent(ports.Reminder))
}

func TestReminderScheduler_LeaseErrorsAndRelease(t *testing.T) {
	f := newSweepFixture(t, 1)

	unavailable := &MockLease{}
	unavailable.On("Acquire", mock.Anything, time.Minute+leaseGrace).Return("", false, errors.New("connection refused"))
	_, err := f.scheduler(t, unavailable, 10).RunOnce(t.Context())
	require.Error(t, err)
	unavailable.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)

	lease := &MockLease{}
	lease.On("Acquire", mock.Anything, mock.Anything).Return("holder-1", true, nil)
	lease.On("Release", mock.Anything, "holder-1").Return(errors.New("key vanished"))
	_, err = f.scheduler(t, lease, 10).RunOnce(t.Context())
	require.NoError(t, err, "a failed release is logged, not returned")
	lease.AssertExpectations(t)
}

func TestReminderScheduler_ConfigValidation(t *testing.T) {
	f := newSweepFixture(t, 0)

	_, err := NewReminderScheduler(f.expire, f.remind, memory.NewLease(), SchedulerConfig{}, f.logger)
	require.Error(t, err)

	_, err = NewReminderScheduler(f.expire, f.remind, nil, SchedulerConfig{
		Interval: time.Hour, Budget: time.Minute, BatchSize: 1,
	}, f.logger)
	require.Error(t, err)
}

func TestReminderScheduler_StartStop(t *testing.T) {
	f := newSweepFixture(t, 1)
	f.depositParcel(t)
	f.clock.Advance(25 * time.Hour)

	s, err := NewReminderScheduler(f.expire, f.remind, memory.NewLease(), SchedulerConfig{
		Interval:  time.Second,
		Budget:    time.Second,
		BatchSize: 10,
	}, f.logger)
	require.NoError(t, err)

	manager := NewJobManager(s)
	require.NoError(t, manager.StartAll())
	require.Error(t, s.Start(), "already started")

	assert.Eventually(t, func() bool {
		return f.notifier.sent(ports.Reminder) == 1
	}, 5*time.Second, 50*time.Millisecond)

	manager.StopAll()
	s.Stop()
}
