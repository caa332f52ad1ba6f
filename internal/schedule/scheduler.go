package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNoJob is returned by Run when nothing was scheduled.
var ErrNoJob = errors.New("no job scheduled")

// Job is one scheduled run. The context is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

// Scheduler runs a single job on a cron schedule. A run that is still in
// progress when the next one is due causes that next run to be skipped.
type Scheduler struct {
	cron     *cron.Cron
	logger   *slog.Logger
	location *time.Location
	runFirst bool

	mu      sync.Mutex
	entryID cron.EntryID
	spec    string
	job     Job
	ctx     context.Context //nolint:containedctx // job runs need the Run context
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger for run results and skipped runs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocation evaluates schedules in loc instead of the local time zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithRunOnStart runs the job once as soon as Run starts.
func WithRunOnStart(enabled bool) Option {
	return func(s *Scheduler) {
		s.runFirst = enabled
	}
}

// New creates a Scheduler.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:   slog.Default(),
		location: time.Local,
		ctx:      context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}

	logger := cronLogger{logger: s.logger}
	s.cron = cron.New(
		cron.WithLocation(s.location),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	return s
}

// ValidateSpec checks a five-field cron expression or descriptor such as "@daily".
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return nil
}

// Schedule sets job to run on spec. A previous schedule is replaced.
func (s *Scheduler) Schedule(spec string, job Job) error {
	if job == nil {
		return ErrNoJob
	}
	if err := ValidateSpec(spec); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entryID != 0 {
		s.cron.Remove(s.entryID)
	}
	id, err := s.cron.AddFunc(spec, s.invoke)
	if err != nil {
		return fmt.Errorf("adding cron entry: %w", err)
	}
	s.entryID = id
	s.spec = spec
	s.job = job
	s.logger.Info("rescan scheduled", "schedule", spec, "timezone", s.location.String())
	return nil
}

// Next returns the next activation time, or the zero time when nothing is
// scheduled or the scheduler is not running.
func (s *Scheduler) Next() time.Time {
	s.mu.Lock()
	id := s.entryID
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	return s.cron.Entry(id).Next
}

// Run starts the scheduler and blocks until ctx is done. It then stops
// scheduling and waits for a running job to return.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.job == nil {
		s.mu.Unlock()
		return ErrNoJob
	}
	s.ctx = ctx
	s.mu.Unlock()

	if s.runFirst {
		s.invoke()
	}

	s.cron.Start()
	if next := s.Next(); !next.IsZero() {
		s.logger.Info("waiting for next rescan", "next", next.Format(time.RFC3339))
	}

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) invoke() {
	s.mu.Lock()
	job, ctx, spec := s.job, s.ctx, s.spec
	s.mu.Unlock()

	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	if err := job(ctx); err != nil {
		s.logger.Error("scheduled rescan failed", "schedule", spec, "error", err)
		return
	}
	s.logger.Info("scheduled rescan finished", "schedule", spec, "elapsed", time.Since(start).Round(time.Millisecond))
}

// cronLogger adapts slog to cron.Logger. Cron's own scheduling chatter is
// logged at debug level.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
