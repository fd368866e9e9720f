package workers

import (
	"chat-broadcaster/contract"
	"chat-broadcaster/errors"
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var _ contract.ISupervisor = (*Supervisor)(nil)

// Supervisor keeps the broadcasting workers alive.
//
// Each worker runs in its own goroutine. A worker returning an error or
// panicking is restarted after restartInterval, a worker returning nil is
// considered done. Canceling the parent context or calling Stop ends
// every worker, and Run returns once all of them have.
type Supervisor struct {
	mu              sync.Mutex
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	log             *slog.Logger
	workers         []contract.Worker
	restartInterval time.Duration
	restarts        atomic.Uint64
}

func NewSupervisor(log *slog.Logger, restartInterval time.Duration) *Supervisor {
	return &Supervisor{log: log, restartInterval: restartInterval}
}

// Run starts every registered worker and blocks until all of them returned.
// Stop only cancels the supervised children, not the parent.
func (s *Supervisor) Run(ctx context.Context) {
	supervisedCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	workers := s.workers
	s.mu.Unlock()
	defer cancel()

	for _, worker := range workers {
		s.Start(supervisedCtx, worker)
	}
	s.wg.Wait()
}

func (s *Supervisor) Add(worker ...contract.Worker) contract.ISupervisor {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workers = append(s.workers, worker...)
	return s
}

// Start runs one worker under supervision in a dedicated goroutine.
func (s *Supervisor) Start(ctx context.Context, worker contract.Worker) {
	s.wg.Add(1)
	name := contract.GetWorkerName(worker)

	go func() {
		defer s.wg.Done()
		for {
			err := s.runOnce(ctx, name, worker)
			switch {
			case ctx.Err() != nil:
				s.log.Info("Worker stopped", "name", name)
				return
			case err == nil:
				s.log.Info("Worker finished", "name", name)
				return
			}

			s.log.Warn("Worker crashed, restarting", "name", name, "error", err, "restart_in", s.restartInterval)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.restartInterval):
				s.restarts.Add(1)
			}
		}
	}()
}

func (s *Supervisor) runOnce(ctx context.Context, name string, worker contract.Worker) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Worker panic recovered", "name", name, "panic", r)
			err = errors.ErrWorkerPanic
		}
	}()
	return worker.Run(ctx)
}

// Restarts counts how many times a crashed worker was started again.
func (s *Supervisor) Restarts() uint64 {
	return s.restarts.Load()
}

func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}
