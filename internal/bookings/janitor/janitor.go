// Package janitor sweeps expired advisory booking locks. Locks are normally
// released by the admission path; the sweep reclaims locks orphaned by a
// crash mid-admission so a property never stays blocked past the lock TTL.
package janitor

import (
	"context"
	"time"

	"lodgebook/internal/bookings/repository"
	"lodgebook/pkg/config"

	"github.com/robfig/cron/v3"
)

type LockJanitor struct {
	lockRepo repository.BookingLockRepository
	cfg      *config.Config
	cron     *cron.Cron
}

func NewLockJanitor(lockRepo repository.BookingLockRepository, cfg *config.Config) *LockJanitor {
	return &LockJanitor{
		lockRepo: lockRepo,
		cfg:      cfg,
		cron:     cron.New(),
	}
}

// Start schedules the sweep and returns. The schedule comes from
// configuration (cron spec or @every form).
func (j *LockJanitor) Start() error {
	if _, err := j.cron.AddFunc(j.cfg.LockSweepSchedule, j.sweep); err != nil {
		return err
	}
	j.cron.Start()
	j.cfg.Log.Info("Lock janitor started", "schedule", j.cfg.LockSweepSchedule)
	return nil
}

// Stop halts scheduling and waits for an in-flight sweep to finish.
func (j *LockJanitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
	j.cfg.Log.Info("Lock janitor stopped")
}

func (j *LockJanitor) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), j.cfg.RequestTimeout)
	defer cancel()

	removed, err := j.lockRepo.DeleteExpired(ctx, time.Now())
	if err != nil {
		j.cfg.Log.Error("Lock sweep failed", "error", err)
		return
	}
	if removed > 0 {
		j.cfg.Log.Info("Expired booking locks removed", "count", removed)
	}
}
