package workerpool

import (
	"sync"

	"go.uber.org/zap"
)

// Pool is a bounded worker pool for fire-and-forget jobs, used to keep
// realtime and event publishes off the request path without letting
// goroutines grow with load. It is constructed and injected explicitly,
// with Start/Stop bracketing the process lifecycle.
type Pool struct {
	jobs    chan func()
	workers int
	logger  *zap.Logger

	wg   sync.WaitGroup
	quit chan struct{}
}

// New creates a pool with the given worker count and queue size.
func New(workers, queueSize int, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Pool{
		jobs:    make(chan func(), queueSize),
		workers: workers,
		logger:  logger,
		quit:    make(chan struct{}),
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.jobs:
					p.run(workerID, job)
				case <-p.quit:
					return
				}
			}
		}(i)
	}
}

func (p *Pool) run(workerID int, job func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker recovered from panic",
				zap.Int("worker", workerID),
				zap.Any("panic", r))
		}
	}()
	job()
}

// Submit enqueues a job, dropping it when the queue is full. Callers use
// the pool only for best-effort side effects, so dropping under pressure
// is preferable to blocking a request.
func (p *Pool) Submit(job func()) bool {
	select {
	case p.jobs <- job:
		return true
	default:
		p.logger.Warn("worker pool queue full, job dropped")
		return false
	}
}

// Stop signals the workers and waits for them to drain.
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
