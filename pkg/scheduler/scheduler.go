package scheduler

import (
	"sync"
	"sync/atomic"
	"time"

	"voyago/pkg/logger"
)

// Task is invoked on every tick with the tick time.
type Task func(now time.Time)

// Scheduler runs a task on a fixed interval until stopped. It is the trigger
// for periodic maintenance such as expiring abandoned pending holds.
type Scheduler struct {
	name     string
	interval time.Duration
	task     Task
	log      *logger.Logger

	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	stopCh    chan struct{}
	doneCh    chan struct{}
}

func New(name string, interval time.Duration, task Task, log *logger.Logger) *Scheduler {
	return &Scheduler{
		name:     name,
		interval: interval,
		task:     task,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		s.started.Store(true)
		go s.run()
		s.log.Info("Scheduler started", "task", s.name, "interval", s.interval)
	})
}

func (s *Scheduler) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.task(now)
		case <-s.stopCh:
			return
		}
	}
}

// Stop halts the tick loop and waits for a task in flight to finish.
// Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.started.Load() {
			<-s.doneCh
		}
		s.log.Info("Scheduler stopped", "task", s.name)
	})
}
