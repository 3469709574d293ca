package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"news-atlas/internal/cache"
	"news-atlas/internal/services/news"
)

const (
	DefaultSchedule = "@every 15m"
	defaultTimeout  = 10 * time.Minute
	lockName        = "refresh"
)

var ErrLocked = errors.New("refresh lock held by another instance")

// Refresher runs one ingest-and-locate batch.
type Refresher interface {
	Refresh(ctx context.Context) (*news.RefreshResult, error)
}

// Status describes the most recent run.
type Status struct {
	Schedule   string              `json:"schedule,omitempty"`
	Running    bool                `json:"running"`
	LastRunAt  time.Time           `json:"last_run_at,omitempty"`
	LastError  string              `json:"last_error,omitempty"`
	LastResult *news.RefreshResult `json:"last_result,omitempty"`
}

// Scheduler triggers refreshes on a cron schedule. With a Redis cache it
// takes a lock so only one replica refreshes at a time.
type Scheduler struct {
	refresher Refresher
	lock      *cache.RedisCache
	timeout   time.Duration

	cron    *cron.Cron
	cronID  cron.EntryID
	running atomic.Bool

	mu       sync.Mutex
	schedule string
	last     Status
}

func NewScheduler(refresher Refresher, lock *cache.RedisCache, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Scheduler{
		refresher: refresher,
		lock:      lock,
		timeout:   timeout,
		cron:      cron.New(),
	}
}

// Start registers the refresh job and starts the cron runner.
func (s *Scheduler) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSchedule
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.RunOnce(ctx); err != nil {
			log.Warn().Err(err).Msg("Scheduled refresh did not complete")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to add refresh job: %w", err)
	}

	s.cronID = id
	s.schedule = schedule
	s.cron.Start()
	log.Info().Str("schedule", schedule).Msg("Refresh scheduler started")
	return nil
}

// Stop stops the cron runner and waits for a running job to finish or ctx
// to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		log.Warn().Msg("Refresh scheduler stop timed out")
	}
	log.Info().Msg("Refresh scheduler stopped")
}

// RunOnce runs a refresh now unless one is already running here or on
// another instance holding the lock.
func (s *Scheduler) RunOnce(ctx context.Context) (*news.RefreshResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		log.Info().Msg("Refresh skipped: previous run still in progress")
		return nil, news.ErrRefreshInProgress
	}
	defer s.running.Store(false)

	release, err := s.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	result, err := s.refresher.Refresh(ctx)
	s.record(result, err)
	return result, err
}

func (s *Scheduler) acquire(ctx context.Context) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}

	key := cache.LockKey(lockName)
	ok, err := s.lock.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), s.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire refresh lock: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}
	return func() {
		if err := s.lock.Del(context.WithoutCancel(ctx), key); err != nil {
			log.Warn().Err(err).Msg("Failed to release refresh lock")
		}
	}, nil
}

func (s *Scheduler) record(result *news.RefreshResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last.LastRunAt = time.Now().UTC()
	s.last.LastResult = result
	s.last.LastError = ""
	if err != nil {
		s.last.LastError = err.Error()
	}
}

func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.last
	st.Schedule = s.schedule
	st.Running = s.running.Load()
	return st
}
