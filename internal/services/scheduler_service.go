package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Sweep names
const (
	SweepExpireStaleBookings    = "expire-stale-bookings"
	SweepReleaseCheckedOutRooms = "release-checked-out-rooms"
)

// SweepFunc is one reconciliation pass
type SweepFunc func(ctx context.Context) (*SweepResult, error)

// ScheduledTask is a named recurring sweep
type ScheduledTask struct {
	Name     string
	Interval time.Duration
	Run      SweepFunc
}

// TaskStatus describes a registered task for the admin dashboard
type TaskStatus struct {
	Name       string       `json:"name"`
	Interval   string       `json:"interval"`
	NextRun    *time.Time   `json:"next_run,omitempty"`
	PrevRun    *time.Time   `json:"prev_run,omitempty"`
	LastResult *SweepResult `json:"last_result,omitempty"`
	LastError  string       `json:"last_error,omitempty"`
}

// SchedulerService runs named sweeps on independent timers. A panicking or
// failing tick is logged and never cancels later ticks; a tick still running
// when the next one fires makes the next one skip.
type SchedulerService struct {
	cron    *cron.Cron
	logger  *logrus.Logger
	locker  SweepLocker
	lockTTL time.Duration

	mu      sync.Mutex
	tasks   map[string]*ScheduledTask
	entries map[string]cron.EntryID
	last    map[string]*SweepResult
	lastErr map[string]string
	started bool
}

// NewSchedulerService creates a scheduler. locker may be nil for single-instance deployments.
func NewSchedulerService(logger *logrus.Logger, locker SweepLocker, lockTTL time.Duration) *SchedulerService {
	cronLogger := cron.PrintfLogger(logger)
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	return &SchedulerService{
		cron:    c,
		logger:  logger,
		locker:  locker,
		lockTTL: lockTTL,
		tasks:   make(map[string]*ScheduledTask),
		entries: make(map[string]cron.EntryID),
		last:    make(map[string]*SweepResult),
		lastErr: make(map[string]string),
	}
}

// NewReconciliationScheduler registers both reconciliation sweeps at their policy intervals
func NewReconciliationScheduler(recon *ReconciliationService, logger *logrus.Logger, locker SweepLocker, lockTTL time.Duration) (*SchedulerService, error) {
	s := NewSchedulerService(logger, locker, lockTTL)
	tasks := []ScheduledTask{
		{Name: SweepExpireStaleBookings, Interval: ExpireSweepInterval, Run: recon.ExpireStaleBookings},
		{Name: SweepReleaseCheckedOutRooms, Interval: CheckoutSweepInterval, Run: recon.ReleaseCheckedOutRooms},
	}
	for _, t := range tasks {
		if err := s.Register(t); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a task; it is scheduled immediately when the scheduler is running
func (s *SchedulerService) Register(task ScheduledTask) error {
	if task.Name == "" || task.Run == nil || task.Interval <= 0 {
		return fmt.Errorf("invalid scheduled task %q", task.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[task.Name]; exists {
		return fmt.Errorf("scheduled task %q already registered", task.Name)
	}

	t := task
	id, err := s.cron.AddFunc("@every "+t.Interval.String(), func() { s.tick(&t) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", t.Name, err)
	}
	s.tasks[t.Name] = &t
	s.entries[t.Name] = id
	return nil
}

// Start starts the timers
func (s *SchedulerService) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true

	for name, t := range s.tasks {
		s.logger.WithFields(logrus.Fields{
			"task":     name,
			"interval": t.Interval.String(),
		}).Info("Scheduled reconciliation sweep")
	}
}

// Stop stops the timers and waits for running ticks to finish
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("Stopping scheduler...")
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// RunNow runs one task synchronously, outside the timer
func (s *SchedulerService) RunNow(ctx context.Context, name string) (*SweepResult, error) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return nil, NewNotFoundError("Unknown sweep: " + name)
	}
	return s.run(ctx, t)
}

// Status lists every registered task with its next and previous run
func (s *SchedulerService) Status() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]TaskStatus, 0, len(s.tasks))
	for name, t := range s.tasks {
		st := TaskStatus{
			Name:       name,
			Interval:   t.Interval.String(),
			LastResult: s.last[name],
			LastError:  s.lastErr[name],
		}
		if s.started {
			entry := s.cron.Entry(s.entries[name])
			if !entry.Next.IsZero() {
				next := entry.Next
				st.NextRun = &next
			}
			if !entry.Prev.IsZero() {
				prev := entry.Prev
				st.PrevRun = &prev
			}
		}
		statuses = append(statuses, st)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// tick is the timer entry point; errors stop here
func (s *SchedulerService) tick(t *ScheduledTask) {
	ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout(t))
	defer cancel()

	if _, err := s.run(ctx, t); err != nil {
		s.logger.WithError(err).WithField("task", t.Name).Error("Reconciliation sweep failed")
	}
}

func (s *SchedulerService) run(ctx context.Context, t *ScheduledTask) (*SweepResult, error) {
	if s.locker != nil {
		release, acquired, err := s.locker.TryLock(ctx, t.Name, s.tickTimeout(t))
		if err != nil {
			s.record(t.Name, nil, err)
			return nil, err
		}
		if !acquired {
			s.logger.WithField("task", t.Name).Debug("Sweep already running elsewhere, skipping tick")
			return &SweepResult{Sweep: t.Name, Skipped: true, StartedAt: time.Now()}, nil
		}
		defer release()
	}

	result, err := t.Run(ctx)
	s.record(t.Name, result, err)
	return result, err
}

func (s *SchedulerService) record(name string, result *SweepResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result != nil {
		s.last[name] = result
	}
	if err != nil {
		s.lastErr[name] = err.Error()
	} else {
		delete(s.lastErr, name)
	}
}

func (s *SchedulerService) tickTimeout(t *ScheduledTask) time.Duration {
	if s.lockTTL > 0 && s.lockTTL < t.Interval {
		return s.lockTTL
	}
	return t.Interval
}
