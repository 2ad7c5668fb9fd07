// Package jobs provides scheduled background tasks for the parcel locker.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// ReminderScheduler runs one sweep every SWEEP_INTERVAL (default 1h):
//
//  1. parcels left in their locker past the pickup window are returned to sender
//  2. parcels deposited longer than the reminder threshold get their single reminder
//
// Each step works through independent per-parcel transactions, so one failing
// parcel or notification does not abort the batch.
//
// # Usage
//
//	scheduler, err := jobs.NewReminderScheduler(expireHandler, remindHandler, lease, cfg, logger)
//	if err != nil {
//		return err
//	}
//
//	jobManager := jobs.NewJobManager(scheduler)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
//
// Tests call RunOnce to perform one sweep synchronously.
//
// # Overlap
//
// A sweep never starts while another is running. Inside the process the cron
// chain skips a tick while the previous run is active; across replicas the
// ports.SweepLease (in-process flag or Redis key) decides who runs. Each run is
// bounded by SWEEP_BUDGET; whatever it did not reach is picked up next time.
package jobs
