package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	httpin "parcellocker/internal/adapters/in/http"
	"parcellocker/internal/adapters/out/kafka"
	"parcellocker/internal/adapters/out/logging"
	"parcellocker/internal/adapters/out/memory"
	"parcellocker/internal/adapters/out/postgres"
	"parcellocker/internal/adapters/out/redislease"
	"parcellocker/internal/core/application/usecases/commands"
	"parcellocker/internal/core/application/usecases/queries"
	"parcellocker/internal/core/domain/model/credential"
	"parcellocker/internal/core/domain/services"
	"parcellocker/internal/core/ports"
	"parcellocker/internal/jobs"
	"parcellocker/internal/pkg/clock"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	sweepLeaseKey     = "parcellocker:sweep-lease"
	kafkaWriteTimeout = 10 * time.Second
)

// CompositionRoot builds every adapter once and hands out handlers wired to them.
type CompositionRoot struct {
	config     Config
	logger     *slog.Logger
	clock      clock.Clock
	uowFactory ports.UnitOfWorkFactory

	credentials *credential.Manager
	lifecycle   *services.ParcelLifecycle
	collab      commands.Collaborators
	lease       ports.SweepLease

	closers []func() error
}

// NewCompositionRoot wires the configured adapters. db may be nil when the
// memory store is selected.
func NewCompositionRoot(config Config, db *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	c := &CompositionRoot{
		config: config,
		logger: logger,
		clock:  clock.System{},
	}

	switch config.Store {
	case StorePostgres:
		if db == nil {
			return nil, errors.New("postgres store selected without a database connection")
		}
		c.uowFactory = postgres.NewGormUnitOfWorkFactory(db)
	default:
		c.uowFactory = memory.NewUnitOfWorkFactory(memory.NewStore())
	}

	var err error
	c.credentials, err = credential.NewManager(config.Credential)
	if err != nil {
		return nil, fmt.Errorf("credential policy: %w", err)
	}
	c.lifecycle, err = services.NewParcelLifecycle(services.Windows{
		Retraction: config.RetractionWindow,
		Dispute:    config.DisputeWindow,
		MaxPickup:  config.MaxPickupWindow,
	}, c.credentials)
	if err != nil {
		return nil, fmt.Errorf("lifecycle windows: %w", err)
	}

	var producer kafka.Producer
	if config.Notifier == SinkKafka || config.AuditSink == SinkKafka {
		writer := kafka.NewWriterProducer(config.KafkaBrokers, kafkaWriteTimeout)
		c.closers = append(c.closers, writer.Close)
		producer = writer
	}

	c.collab = commands.Collaborators{
		Notifier: logging.NewNotifier(logger),
		Audit:    logging.NewAuditSink(logger),
		Clock:    c.clock,
		Logger:   logger,
	}
	if config.Notifier == SinkKafka {
		c.collab.Notifier = kafka.NewNotifier(producer, config.KafkaNotificationTopic)
	}
	if config.AuditSink == SinkKafka {
		c.collab.Audit = kafka.NewAuditSink(producer, config.KafkaAuditTopic)
	}

	if config.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		c.closers = append(c.closers, client.Close)
		c.lease = redislease.New(client, sweepLeaseKey)
	} else {
		c.lease = memory.NewLease()
	}

	return c, nil
}

func (c *CompositionRoot) commandUoWFactory() commands.UoWFactory {
	return commands.UoWFactoryFunc(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateProvisionLockerCommandHandler() commands.ProvisionLockerCommandHandler {
	return commands.NewProvisionLockerCommandHandler(c.commandUoWFactory(), c.collab)
}

func (c *CompositionRoot) CreateExpireOverdueParcelsCommandHandler() commands.ExpireOverdueParcelsCommandHandler {
	return commands.NewExpireOverdueParcelsCommandHandler(c.commandUoWFactory(), c.lifecycle, c.collab)
}

func (c *CompositionRoot) CreateSendRemindersCommandHandler() (commands.SendRemindersCommandHandler, error) {
	return commands.NewSendRemindersCommandHandler(c.commandUoWFactory(), c.config.ReminderThreshold, c.collab)
}

func (c *CompositionRoot) CreateListLockersQueryHandler() queries.ListLockersQueryHandler {
	return queries.NewListLockersQueryHandler(c.uowFactory)
}

// CreateHandlers wires every use case the HTTP API exposes.
func (c *CompositionRoot) CreateHandlers() httpin.Handlers {
	f := c.commandUoWFactory()
	return httpin.Handlers{
		ProvisionLocker:          c.CreateProvisionLockerCommandHandler(),
		SetLockerStatus:          commands.NewSetLockerStatusCommandHandler(f, c.collab),
		DepositParcel:            commands.NewDepositParcelCommandHandler(f, c.lifecycle, c.collab),
		PickUpParcel:             commands.NewPickUpParcelCommandHandler(f, c.lifecycle, c.collab),
		RetractParcel:            commands.NewRetractParcelCommandHandler(f, c.lifecycle, c.collab),
		MarkParcelMissing:        commands.NewMarkParcelMissingCommandHandler(f, c.lifecycle, c.collab, c.config.AdminContact),
		DisputePickup:            commands.NewDisputePickupCommandHandler(f, c.lifecycle, c.collab),
		RequestPinRegeneration:   commands.NewRequestPinRegenerationCommandHandler(f, c.credentials, c.collab),
		RequestTokenRegeneration: commands.NewRequestTokenRegenerationCommandHandler(f, c.credentials, c.collab),
		RedeemGenerationToken:    commands.NewRedeemGenerationTokenCommandHandler(f, c.credentials, c.collab),
		ForceReissuePin:          commands.NewForceReissuePinCommandHandler(f, c.credentials, c.collab),
		GetParcel:                queries.NewGetParcelQueryHandler(c.uowFactory, c.clock),
		ListLockers:              c.CreateListLockersQueryHandler(),
	}
}

func (c *CompositionRoot) CreateServer() *httpin.Server {
	return httpin.NewServer(c.CreateHandlers(), c.logger)
}

func (c *CompositionRoot) CreateRateLimiter() *httpin.RateLimiter {
	return httpin.NewRateLimiter(c.config.PickupRatePerSecond, c.config.PickupBurst)
}

func (c *CompositionRoot) CreateReminderScheduler() (*jobs.ReminderScheduler, error) {
	remind, err := c.CreateSendRemindersCommandHandler()
	if err != nil {
		return nil, err
	}
	return jobs.NewReminderScheduler(
		c.CreateExpireOverdueParcelsCommandHandler(),
		remind,
		c.lease,
		jobs.SchedulerConfig{
			Interval:  c.config.SweepInterval,
			Budget:    c.config.SweepBudget,
			BatchSize: c.config.SweepBatchSize,
		},
		c.logger,
	)
}

// SeedLockers provisions the configured lockers when the store has none.
// Lockers are numbered from 1 in seed order and labelled by size, e.g. "S01".
func (c *CompositionRoot) SeedLockers(ctx context.Context) (int, error) {
	if len(c.config.LockerSeed) == 0 {
		return 0, nil
	}

	existing, err := c.CreateListLockersQueryHandler().Handle(ctx, queries.NewListLockersQuery())
	if err != nil {
		return 0, err
	}
	if len(existing) > 0 {
		return 0, nil
	}

	handler := c.CreateProvisionLockerCommandHandler()
	id := 0
	for _, seed := range c.config.LockerSeed {
		for range seed.Count {
			id++
			label := fmt.Sprintf("%s%02d", strings.ToUpper(seed.Size.String()[:1]), id)
			cmd, cmdErr := commands.NewProvisionLockerCommand(id, label, seed.Size)
			if cmdErr != nil {
				return id - 1, cmdErr
			}
			if err = handler.Handle(ctx, cmd); err != nil {
				return id - 1, fmt.Errorf("provision locker %d: %w", id, err)
			}
		}
	}
	return id, nil
}

// Close releases the Kafka writer and the Redis client.
func (c *CompositionRoot) Close() error {
	var errList []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errList = append(errList, c.closers[i]())
	}
	return errors.Join(errList...)
}
