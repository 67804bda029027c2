package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/romanzzaa/price-notifier/internal/usecase"
)

// Job - what the scheduler drives: one startup run, then a tick per trigger
type Job interface {
	Startup(ctx context.Context) usecase.TickResult
	Tick(ctx context.Context) usecase.TickResult
}

// JobStatus - snapshot of the scheduled job, served on /status
type JobStatus struct {
	Schedule   string             `json:"schedule"`
	NextRun    time.Time          `json:"next_run"`
	LastRun    time.Time          `json:"last_run"`
	LastResult usecase.TickResult `json:"last_result,omitempty"`
	Runs       int                `json:"runs"`
}

var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	expr        string
	job         Job
	tickTimeout time.Duration
	logger      *slog.Logger

	cron    *cron.Cron
	entryID cron.EntryID

	mu         sync.RWMutex
	baseCtx    context.Context
	lastRun    time.Time
	lastResult usecase.TickResult
	runs       int
}

func NewScheduler(expr string, job Job, tickTimeout time.Duration, logger *slog.Logger) (*Scheduler, error) {
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", expr, err)
	}

	logger = logger.With("component", "scheduler")
	s := &Scheduler{
		expr:        expr,
		job:         job,
		tickTimeout: tickTimeout,
		logger:      logger,
		baseCtx:     context.Background(),
	}

	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger{logger}),
	)
	s.entryID = s.cron.Schedule(sched, cron.FuncJob(s.runTick))
	return s, nil
}

// Run sends the startup check, then fires ticks on schedule until ctx is done.
// Returns after in-flight ticks have finished.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	s.baseCtx = ctx
	s.mu.Unlock()

	s.run("startup", s.job.Startup)

	s.cron.Start()
	s.logger.Info("Scheduler started",
		slog.String("schedule", s.expr),
		slog.Time("next_run", s.cron.Entry(s.entryID).Next))

	<-ctx.Done()

	s.logger.Info("Stopping scheduler...")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runTick() {
	s.run("tick", s.job.Tick)
}

func (s *Scheduler) run(kind string, fn func(context.Context) usecase.TickResult) {
	s.mu.RLock()
	base := s.baseCtx
	s.mu.RUnlock()

	if base.Err() != nil {
		return
	}

	ctx, cancel := context.WithTimeout(base, s.tickTimeout)
	defer cancel()

	log := s.logger.With(slog.String("tick_id", uuid.NewString()), slog.String("kind", kind))
	start := time.Now()
	log.Debug("Running job")

	result := fn(ctx)

	s.mu.Lock()
	s.lastRun = start
	s.lastResult = result
	s.runs++
	s.mu.Unlock()

	log.Info("Job finished",
		slog.String("result", string(result)),
		slog.Duration("took", time.Since(start)))
}

func (s *Scheduler) Status() JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return JobStatus{
		Schedule:   s.expr,
		NextRun:    s.cron.Entry(s.entryID).Next,
		LastRun:    s.lastRun,
		LastResult: s.lastResult,
		Runs:       s.runs,
	}
}

// cronLogger routes cron's internal logging into slog
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug("cron: "+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
