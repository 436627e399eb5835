package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/offsync/internal/client/client"
	"github.com/dmitrijs2005/offsync/internal/client/connectivity"
	"github.com/dmitrijs2005/offsync/internal/client/models"
	"github.com/dmitrijs2005/offsync/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxRetries = 3

	AssessmentEndpoint = "/api/assessment"
	AnalyticsEndpoint  = "/api/analytics"
)

// ErrOffline is returned by Sync when there is no connectivity.
var ErrOffline = errors.New("offline: sync skipped")

type State int32

const (
	Idle State = iota
	Syncing
)

func (s State) String() string {
	if s == Syncing {
		return "syncing"
	}
	return "idle"
}

// PassResult counts what happened to each item during one pass.
type PassResult struct {
	// Delivered queue items, removed from the queue.
	Delivered int `json:"delivered"`
	// Retried queue items that failed and stay queued.
	Retried int `json:"retried"`
	// DeadLettered queue items that hit the retry ceiling.
	DeadLettered int `json:"dead_lettered"`
	// Synced assessments and analytics events accepted by the remote.
	Synced int `json:"synced"`
	// Failed sweep pushes, left unsynced for the next pass.
	Failed int `json:"failed"`
	// Stale records rewritten locally while their push was in flight. They
	// stay unsynced so the next pass pushes the newer version.
	Stale int `json:"stale,omitempty"`
}

// unsynced is the part of a domain facade the sweep step needs.
type unsynced interface {
	ListUnsynced(ctx context.Context) ([]models.StoredItem, error)
	MarkSynced(ctx context.Context, pushed models.StoredItem) (bool, error)
}

type SchedulerOption func(*Scheduler)

// WithMaxRetries sets the queue retry ceiling.
func WithMaxRetries(n int) SchedulerOption {
	return func(s *Scheduler) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// Scheduler pushes local changes to the remote authority. At most one pass
// runs at a time.
type Scheduler struct {
	remote     client.Client
	conn       connectivity.Source
	repos      Repositories
	logger     logging.Logger
	maxRetries int

	state atomic.Int32
	group singleflight.Group
}

func NewScheduler(remote client.Client, conn connectivity.Source, repos Repositories, logger logging.Logger, opts ...SchedulerOption) *Scheduler {
	if logger == nil {
		logger = logging.Nop()
	}
	s := &Scheduler{
		remote:     remote,
		conn:       conn,
		repos:      repos,
		logger:     logger,
		maxRetries: DefaultMaxRetries,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Sync runs one pass and returns its result. A caller arriving while a pass
// is running waits for that pass instead of starting another. The pass
// itself ignores ctx cancellation; ctx only bounds how long the caller waits.
func (s *Scheduler) Sync(ctx context.Context) (PassResult, error) {
	if !s.conn.Online() {
		return PassResult{}, ErrOffline
	}

	passCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("pass", func() (any, error) {
		return s.pass(passCtx)
	})

	select {
	case r := <-ch:
		res, _ := r.Val.(PassResult)
		return res, r.Err
	case <-ctx.Done():
		return PassResult{}, ctx.Err()
	}
}

// Start schedules a pass on every offline to online transition of the
// connectivity source, unless one is already running. The returned func
// stops listening and waits for a scheduled pass to finish.
func (s *Scheduler) Start(ctx context.Context) func() {
	ctx, cancel := context.WithCancel(ctx)
	events, unsubscribe := s.conn.Subscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case online, ok := <-events:
				if !ok {
					return
				}
				if !online {
					continue
				}
				if s.State() == Syncing {
					s.logger.Debug(ctx, "connectivity restored during a pass, not scheduling another")
					continue
				}
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := s.Sync(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, ErrOffline) {
						s.logger.Error(ctx, "sync pass failed", "error", err)
					}
				}()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			unsubscribe()
			wg.Wait()
		})
	}
}

func (s *Scheduler) pass(ctx context.Context) (PassResult, error) {
	s.state.Store(int32(Syncing))
	defer s.state.Store(int32(Idle))

	started := time.Now()
	var res PassResult

	err := s.drainQueue(ctx, &res)
	if err == nil {
		err = s.sweep(ctx, "assessment", AssessmentEndpoint, s.repos.Assessments, &res)
	}
	if err == nil {
		err = s.sweep(ctx, "analytics", AnalyticsEndpoint, s.repos.Analytics, &res)
	}

	args := []any{
		"delivered", res.Delivered,
		"retried", res.Retried,
		"dead_lettered", res.DeadLettered,
		"synced", res.Synced,
		"failed", res.Failed,
		"stale", res.Stale,
		"took", time.Since(started),
	}
	if err != nil {
		s.logger.Error(ctx, "sync pass aborted", append(args, "error", err)...)
		return res, err
	}
	s.logger.Info(ctx, "sync pass finished", args...)
	return res, nil
}

// drainQueue tries every queued mutation once, oldest first.
func (s *Scheduler) drainQueue(ctx context.Context, res *PassResult) error {
	items, err := s.repos.Queue.ListPending(ctx)
	if err != nil {
		return fmt.Errorf("list queue: %w", err)
	}

	for _, item := range items {
		if item.Retries >= s.maxRetries {
			if err := s.deadLetter(ctx, item, errors.New("retry ceiling reached")); err != nil {
				return err
			}
			res.DeadLettered++
			continue
		}

		sendErr := s.remote.Send(ctx, item.Action, item.Endpoint, item.Data)
		if sendErr == nil {
			if err := s.repos.Queue.Remove(ctx, item.ID); err != nil {
				return fmt.Errorf("remove delivered %s: %w", item.ID, err)
			}
			res.Delivered++
			continue
		}

		retries, err := s.repos.Queue.BumpRetry(ctx, item.ID)
		if err != nil {
			return err
		}
		s.logger.Warn(ctx, "queue delivery failed",
			"id", item.ID, "action", item.Action, "endpoint", item.Endpoint,
			"retries", retries, "error", sendErr)

		if retries >= s.maxRetries {
			item.Retries = retries
			if err := s.deadLetter(ctx, item, sendErr); err != nil {
				return err
			}
			res.DeadLettered++
			continue
		}
		res.Retried++
	}
	return nil
}

func (s *Scheduler) deadLetter(ctx context.Context, item models.QueueItem, reason error) error {
	if _, err := s.repos.DeadLetters.Bury(ctx, item, reason); err != nil {
		return err
	}
	if err := s.repos.Queue.Remove(ctx, item.ID); err != nil {
		return fmt.Errorf("remove dead-lettered %s: %w", item.ID, err)
	}
	s.logger.Warn(ctx, "queue item dead-lettered", "id", item.ID, "endpoint", item.Endpoint, "retries", item.Retries)
	return nil
}

// sweep pushes unsynced records of one facade. Failures are left for the
// next pass with no retry limit.
func (s *Scheduler) sweep(ctx context.Context, kind, endpoint string, src unsynced, res *PassResult) error {
	items, err := src.ListUnsynced(ctx)
	if err != nil {
		return fmt.Errorf("list unsynced %s: %w", kind, err)
	}

	for _, item := range items {
		if err := s.remote.Send(ctx, models.ActionCreate, endpoint, item.Data); err != nil {
			s.logger.Warn(ctx, "sync push failed", "kind", kind, "id", item.ID, "error", err)
			res.Failed++
			continue
		}
		marked, err := src.MarkSynced(ctx, item)
		if err != nil {
			return err
		}
		if !marked {
			s.logger.Debug(ctx, "record changed during push, left unsynced", "kind", kind, "id", item.ID)
			res.Stale++
			continue
		}
		res.Synced++
	}
	return nil
}
