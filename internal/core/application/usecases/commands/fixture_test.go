package commands_test

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
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/pkg/clock"

	"github.com/stretchr/testify/require"
)

const (
	knownPIN  = "482913"
	recipient = "ann@example.com"
)

var errTransport = errors.New("smtp relay unreachable")

type sentMessage struct {
	Recipient string
	Kind      ports.TemplateKind
	Data      map[string]string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	fail bool
}

func (n *recordingNotifier) Send(_ context.Context, to string, kind ports.TemplateKind, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.Join(ports.ErrDeliveryFailure, errTransport)
	}
	n.sent = append(n.sent, sentMessage{Recipient: to, Kind: kind, Data: data})
	return nil
}

func (n *recordingNotifier) byKind(kind ports.TemplateKind) []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentMessage
	for _, m := range n.sent {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

type recordingAudit struct {
	mu     sync.Mutex
	events []audit.Event
}

func (a *recordingAudit) Record(_ context.Context, event audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *recordingAudit) byKind(kind audit.Kind) []audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []audit.Event
	for _, e := range a.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// harness wires every handler against a fresh in-memory store.
type harness struct {
	clock       *clock.Manual
	store       *memory.UnitOfWorkFactory
	factory     commands.UoWFactory
	notifier    *recordingNotifier
	audit       *recordingAudit
	credentials *credential.Manager
	lifecycle   *services.ParcelLifecycle
	collab      commands.Collaborators
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	credentials, err := credential.NewManager(credential.DefaultPolicy(),
		credential.WithPINSource(func() (string, error) { return knownPIN, nil }))
	require.NoError(t, err)

	lifecycle, err := services.NewParcelLifecycle(services.Windows{
		Retraction: 15 * time.Minute,
		Dispute:    30 * time.Minute,
		MaxPickup:  7 * 24 * time.Hour,
	}, credentials)
	require.NoError(t, err)

	store := memory.NewUnitOfWorkFactory(memory.NewStore())
	h := &harness{
		clock:       clock.NewManual(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)),
		store:       store,
		factory:     commands.UoWFactoryFunc(func() commands.UoW { return store.Create() }),
		notifier:    &recordingNotifier{},
		audit:       &recordingAudit{},
		credentials: credentials,
		lifecycle:   lifecycle,
	}
	h.collab = commands.Collaborators{
		Notifier: h.notifier,
		Audit:    h.audit,
		Clock:    h.clock,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	require.NoError(t, h.collab.Validate())
	return h
}

func (h *harness) provision(t *testing.T, id int, size locker.SizeClass) {
	t.Helper()
	cmd, err := commands.NewProvisionLockerCommand(id, "R"+string(rune('A'+id-1)), size)
	require.NoError(t, err)
	require.NoError(t, commands.NewProvisionLockerCommandHandler(h.factory, h.collab).Handle(t.Context(), cmd))
}

func (h *harness) deposit(t *testing.T, size locker.SizeClass, mode services.DeliveryMode) (commands.DepositParcelResult, error) {
	t.Helper()
	cmd, err := commands.NewDepositParcelCommand(size, recipient, mode)
	require.NoError(t, err)
	return commands.NewDepositParcelCommandHandler(h.factory, h.lifecycle, h.collab).Handle(t.Context(), cmd)
}

func (h *harness) pickUp(t *testing.T, id kernel.UUID, pin string) (commands.PickUpParcelResult, error) {
	t.Helper()
	cmd, err := commands.NewPickUpParcelCommand(id, pin)
	require.NoError(t, err)
	return commands.NewPickUpParcelCommandHandler(h.factory, h.lifecycle, h.collab).Handle(t.Context(), cmd)
}

func (h *harness) parcel(t *testing.T, id kernel.UUID) *parcel.Parcel {
	t.Helper()
	uow := h.store.Create()
	require.NoError(t, uow.Begin(t.Context()))
	defer func() { _ = uow.Rollback(t.Context()) }()
	p, err := uow.ParcelRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return p
}

func (h *harness) locker(t *testing.T, id int) *locker.Locker {
	t.Helper()
	uow := h.store.Create()
	require.NoError(t, uow.Begin(t.Context()))
	defer func() { _ = uow.Rollback(t.Context()) }()
	l, err := uow.LockerRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return l
}

func (h *harness) credential(t *testing.T, id kernel.UUID) *credential.Credential {
	t.Helper()
	uow := h.store.Create()
	require.NoError(t, uow.Begin(t.Context()))
	defer func() { _ = uow.Rollback(t.Context()) }()
	c, err := uow.CredentialRepository().Get(t.Context(), id)
	require.NoError(t, err)
	return c
}
