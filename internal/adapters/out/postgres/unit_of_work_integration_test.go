package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "parcellocker/internal/adapters/out/postgres"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/model/parcel"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite runs the GORM unit of work and its
// repositories against a real PostgreSQL.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
	now       time.Time
	recipient kernel.Recipient
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.Migrate(db))
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)

	suite.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	suite.recipient, err = kernel.NewRecipient("ann@example.com")
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE lockers, parcels, credentials").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) inTx(fn func(uow ports.UnitOfWork)) {
	ctx := suite.T().Context()
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	fn(uow)
	suite.Require().NoError(uow.Commit(ctx))
}

func (suite *UnitOfWorkIntegrationTestSuite) addLockers(lockers ...*locker.Locker) {
	suite.inTx(func(uow ports.UnitOfWork) {
		for _, l := range lockers {
			suite.Require().NoError(uow.LockerRepository().Add(suite.T().Context(), l))
		}
	})
}

func (suite *UnitOfWorkIntegrationTestSuite) newLocker(id int, size locker.SizeClass, status locker.Status) *locker.Locker {
	l, err := locker.RestoreLocker(id, "L", size, status)
	suite.Require().NoError(err)
	return l
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "commit without begin")
	suite.Require().Error(uow.Rollback(ctx), "rollback without begin")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "second begin does not nest")
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().Error(uow.Rollback(ctx), "rollback after commit reports no transaction")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollbackDiscardsChanges() {
	ctx := suite.T().Context()
	suite.addLockers(suite.newLocker(1, locker.Small, locker.Free))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	l, err := uow.LockerRepository().GetForUpdate(ctx, 1)
	suite.Require().NoError(err)
	suite.Require().NoError(l.Occupy())
	suite.Require().NoError(uow.LockerRepository().Update(ctx, l))
	suite.Require().NoError(uow.Rollback(ctx))

	stored, err := suite.factory.Create().LockerRepository().Get(ctx, 1)
	suite.Require().NoError(err)
	suite.Equal(locker.Free, stored.Status())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestLockerRepository() {
	ctx := suite.T().Context()
	suite.addLockers(
		suite.newLocker(4, locker.Large, locker.Free),
		suite.newLocker(2, locker.Medium, locker.Free),
		suite.newLocker(1, locker.Small, locker.Occupied),
		suite.newLocker(3, locker.Medium, locker.OutOfService),
	)
	repo := suite.factory.Create().LockerRepository()

	found, err := repo.FindFreeFitting(ctx, locker.Small, 10)
	suite.Require().NoError(err)
	suite.Require().Len(found, 2)
	suite.Equal(2, found[0].ID())
	suite.Equal(4, found[1].ID())

	all, err := repo.GetAll(ctx)
	suite.Require().NoError(err)
	suite.Len(all, 4)

	err = repo.Add(ctx, suite.newLocker(2, locker.Small, locker.Free))
	suite.Require().ErrorIs(err, errs.ErrValueIsInvalid)

	_, err = repo.Get(ctx, 99)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	err = repo.Update(ctx, suite.newLocker(99, locker.Small, locker.Free))
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestFindFreeFittingSkipsLockedRows() {
	ctx := suite.T().Context()
	suite.addLockers(
		suite.newLocker(1, locker.Small, locker.Free),
		suite.newLocker(2, locker.Small, locker.Free),
	)

	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))
	defer func() { _ = first.Rollback(ctx) }()
	taken, err := first.LockerRepository().FindFreeFitting(ctx, locker.Small, 1)
	suite.Require().NoError(err)
	suite.Require().Len(taken, 1)
	suite.Equal(1, taken[0].ID())

	second := suite.factory.Create()
	suite.Require().NoError(second.Begin(ctx))
	defer func() { _ = second.Rollback(ctx) }()
	next, err := second.LockerRepository().FindFreeFitting(ctx, locker.Small, 1)
	suite.Require().NoError(err)
	suite.Require().Len(next, 1)
	suite.Equal(2, next[0].ID())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestParcelAndCredentialRoundTrip() {
	ctx := suite.T().Context()
	suite.addLockers(suite.newLocker(1, locker.Small, locker.Occupied))

	p, err := parcel.NewParcel(kernel.NewUUID(), 1, locker.Small, suite.recipient, suite.now)
	suite.Require().NoError(err)
	c, err := credential.NewCredential(p.ID())
	suite.Require().NoError(err)
	manager, err := credential.NewManager(credential.DefaultPolicy(),
		credential.WithPINSource(func() (string, error) { return "482913", nil }))
	suite.Require().NoError(err)
	_, err = manager.Issue(c, suite.now)
	suite.Require().NoError(err)

	suite.inTx(func(uow ports.UnitOfWork) {
		suite.Require().NoError(uow.ParcelRepository().Add(ctx, p))
		suite.Require().NoError(uow.CredentialRepository().Add(ctx, c))
	})

	suite.inTx(func(uow ports.UnitOfWork) {
		stored, getErr := uow.ParcelRepository().GetForUpdate(ctx, p.ID())
		suite.Require().NoError(getErr)
		suite.Equal(parcel.Deposited, stored.Status())
		suite.Require().NotNil(stored.LockerID())
		suite.Equal(1, *stored.LockerID())
		suite.True(stored.DepositedAt().Equal(suite.now))

		storedCredential, getErr := uow.CredentialRepository().Get(ctx, p.ID())
		suite.Require().NoError(getErr)
		suite.True(manager.Verify(storedCredential, "482913", suite.now.Add(time.Hour)))

		suite.Require().NoError(stored.MarkMissing(suite.now.Add(time.Hour)))
		suite.Require().NoError(manager.Revoke(storedCredential))
		suite.Require().NoError(uow.ParcelRepository().Update(ctx, stored))
		suite.Require().NoError(uow.CredentialRepository().Update(ctx, storedCredential))
	})

	repo := suite.factory.Create().ParcelRepository()
	missing, err := repo.Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(parcel.Missing, missing.Status())
	suite.Nil(missing.LockerID())

	active, err := repo.ExistsActiveForLocker(ctx, 1)
	suite.Require().NoError(err)
	suite.False(active)

	revoked, err := suite.factory.Create().CredentialRepository().Get(ctx, p.ID())
	suite.Require().NoError(err)
	suite.Equal(credential.Revoked, revoked.State())

	_, err = repo.Get(ctx, kernel.NewUUID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestSweepQueries() {
	ctx := suite.T().Context()
	suite.addLockers(
		suite.newLocker(1, locker.Small, locker.Occupied),
		suite.newLocker(2, locker.Small, locker.Occupied),
		suite.newLocker(3, locker.Small, locker.Occupied),
	)

	old, err := parcel.NewParcel(kernel.NewUUID(), 1, locker.Small, suite.recipient, suite.now)
	suite.Require().NoError(err)
	fresh, err := parcel.NewParcel(kernel.NewUUID(), 2, locker.Small, suite.recipient, suite.now.Add(48*time.Hour))
	suite.Require().NoError(err)
	reminded, err := parcel.NewParcel(kernel.NewUUID(), 3, locker.Small, suite.recipient, suite.now.Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(reminded.MarkReminded(suite.now.Add(25 * time.Hour)))

	suite.inTx(func(uow ports.UnitOfWork) {
		for _, p := range []*parcel.Parcel{old, fresh, reminded} {
			suite.Require().NoError(uow.ParcelRepository().Add(ctx, p))
		}
	})
	repo := suite.factory.Create().ParcelRepository()

	due, err := repo.FindDueForReminder(ctx, suite.now.Add(24*time.Hour), 10)
	suite.Require().NoError(err)
	suite.Require().Len(due, 1)
	suite.True(due[0].IsEqual(old.ID()))

	overdue, err := repo.FindOverdue(ctx, suite.now.Add(2*time.Minute), 10)
	suite.Require().NoError(err)
	suite.Require().Len(overdue, 2)
	suite.True(overdue[0].IsEqual(old.ID()))
	suite.True(overdue[1].IsEqual(reminded.ID()))

	limited, err := repo.FindOverdue(ctx, suite.now.Add(2*time.Minute), 1)
	suite.Require().NoError(err)
	suite.Len(limited, 1)

	active, err := repo.ExistsActiveForLocker(ctx, 2)
	suite.Require().NoError(err)
	suite.True(active)
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
