package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventorysync.com/pkg/date"
	"inventorysync.com/pkg/inventory"
	"inventorysync.com/pkg/lock"
)

const (
	DefaultVendor  = "Nectar"
	DefaultTimeout = 10 * time.Minute
	DefaultLockTTL = 15 * time.Minute
)

// Adjuster runs the vendor inventory adjustment. *inventory.Syncer
// satisfies it.
type Adjuster interface {
	AdjustVendor(ctx context.Context, vendor string) inventory.Result
}

type Options struct {
	Vendor  string
	Timeout time.Duration
	LockTTL time.Duration
	Locker  lock.Locker
	Logger  *zap.Logger
}

// Job adjusts one vendor's inventory per run. Failures end up in the
// RunReport and are never returned to the scheduler.
type Job struct {
	adjuster Adjuster
	vendor   string
	timeout  time.Duration
	lockTTL  time.Duration
	locker   lock.Locker
	logger   *zap.Logger
	now      func() time.Time
}

type RunReport struct {
	RunID      string
	Vendor     string
	Items      int
	StartedAt  time.Time
	FinishedAt time.Time
	Skipped    bool
	Err        error
}

func NewJob(adjuster Adjuster, opts Options) *Job {
	if opts.Vendor == "" {
		opts.Vendor = DefaultVendor
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultLockTTL
	}
	if opts.Locker == nil {
		opts.Locker = lock.Local{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Job{
		adjuster: adjuster,
		vendor:   opts.Vendor,
		timeout:  opts.Timeout,
		lockTTL:  opts.LockTTL,
		locker:   opts.Locker,
		logger:   opts.Logger,
		now:      time.Now,
	}
} // ./NewJob

func (j *Job) Vendor() string {
	return j.vendor
} // ./Vendor

func (j *Job) lockName() string {
	return "inventory-adjust:" + j.vendor
} // ./lockName

func (j *Job) Run(ctx context.Context) RunReport {
	report := RunReport{
		RunID:     uuid.NewString(),
		Vendor:    j.vendor,
		StartedAt: j.now(),
	}
	logger := j.logger.With(zap.String("run_id", report.RunID), zap.String("vendor", j.vendor))
	logger.Info("running scheduled inventory update")

	release, ok, err := j.locker.Acquire(ctx, j.lockName(), j.lockTTL)
	switch {
	case err != nil:
		report.Err = err
		return j.finish(logger, report)
	case !ok:
		report.Skipped = true
		return j.finish(logger, report)
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			logger.Warn("release run lock", zap.Error(err))
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	res := j.adjuster.AdjustVendor(runCtx, j.vendor)
	report.Items = len(res.Items)
	report.Err = res.Err
	return j.finish(logger, report)
} // ./Run

func (j *Job) finish(logger *zap.Logger, report RunReport) RunReport {
	report.FinishedAt = j.now()
	fields := []zap.Field{
		zap.Int("items", report.Items),
		zap.String("started_at", date.ToReportFormat(report.StartedAt)),
		zap.String("finished_at", date.ToReportFormat(report.FinishedAt)),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	}
	switch {
	case report.Skipped:
		logger.Info("inventory update skipped, lock held elsewhere", fields...)
	case report.Err != nil:
		logger.Error("inventory update failed", append(fields, zap.Error(report.Err))...)
	default:
		logger.Info("inventory update result", fields...)
	}
	return report
} // ./finish
