package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSpec fires at the top of every hour.
const DefaultSpec = "0 * * * *"

type Scheduler struct {
	cron   *cron.Cron
	entry  cron.EntryID
	spec   string
	logger *zap.Logger
}

// New registers job under spec. A run that is still going when the next one
// is due makes the next one a no-op.
func New(spec string, job *Job, logger *zap.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSpec
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	id, err := c.AddFunc(spec, func() {
		job.Run(context.Background())
	})
	if err != nil {
		return nil, errors.Wrapf(err, "schedule %q", spec)
	}
	return &Scheduler{cron: c, entry: id, spec: spec, logger: logger}, nil
} // ./New

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec), zap.Time("next", s.Next()))
} // ./Start

// Next reports when the job fires next; zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
} // ./Next

// Stop halts scheduling and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "waiting for scheduled job")
	}
} // ./Stop

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
} // ./Info

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
} // ./Error
