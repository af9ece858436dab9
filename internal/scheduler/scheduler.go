// Package scheduler enqueues recurring background jobs on a cron schedule.
// Jobs run on the task queue, the scheduler only decides when.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
)

type Enqueuer interface {
	Enqueue(task backlite.Task) (string, error)
}

// Job is a task enqueued whenever Schedule fires.
type Job struct {
	Name     string
	Schedule string
	Task     backlite.Task
}

type Scheduler struct {
	queue Enqueuer
	jobs  []Job

	cron       *cron.Cron
	entries    map[string]cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func New(queue Enqueuer, jobs ...Job) *Scheduler {
	return &Scheduler{
		queue:   queue,
		jobs:    jobs,
		entries: make(map[string]cron.EntryID),
	}
}

// Start validates every job schedule and begins firing them. It stops on
// its own when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	if len(s.jobs) == 0 {
		log.Printf("Scheduler: no jobs configured")
		return nil
	}

	c := cron.New(cron.WithParser(parser))
	entries := make(map[string]cron.EntryID, len(s.jobs))
	for _, job := range s.jobs {
		if err := ValidateSchedule(job.Schedule); err != nil {
			return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Name, err)
		}

		job := job
		id, err := c.AddFunc(job.Schedule, func() {
			if _, err := s.enqueue(job); err != nil {
				log.Printf("Scheduler: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
		entries[job.Name] = id
	}

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron = c
	s.entries = entries
	s.cron.Start()
	s.isRunning = true

	for _, job := range s.jobs {
		next, _ := NextRun(job.Schedule, time.Now())
		log.Printf("Scheduler: %s scheduled '%s' (%s). Next run: %v",
			job.Name, job.Schedule, Describe(job.Schedule), next)
	}

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop waits for in-flight enqueues and stops the cron loop.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	<-s.cron.Stop().Done()
	s.cancelFunc()

	s.isRunning = false
	s.cancelFunc = nil
	log.Printf("Scheduler: stopped")
}

// RunNow enqueues the named job immediately and returns the task id.
func (s *Scheduler) RunNow(name string) (string, error) {
	for _, job := range s.jobs {
		if job.Name == name {
			return s.enqueue(job)
		}
	}
	return "", fmt.Errorf("unknown job: %s", name)
}

func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the named job fires next, or nil when the
// scheduler is stopped or the job is unknown.
func (s *Scheduler) NextRunTime(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	id, ok := s.entries[name]
	if !ok {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

func (s *Scheduler) enqueue(job Job) (string, error) {
	id, err := s.queue.Enqueue(job.Task)
	if err != nil {
		return "", fmt.Errorf("failed to enqueue %s: %w", job.Name, err)
	}
	log.Printf("Scheduler: enqueued %s (task %s)", job.Name, id)
	return id, nil
}
