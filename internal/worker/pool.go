package worker

import (
	"context"
	"sync"

	"github.com/suivest/suivest-go/internal/logger"
)

// Job represents a task to be executed by a worker
type Job interface {
	Process(ctx context.Context) error
}

// Pool is a fixed-size worker pool. Reconciliation jobs run through it so a
// slow vault check never delays the projector or lifecycle loops.
type Pool struct {
	workers  int
	jobQueue chan Job
	baseCtx  context.Context
	wg       sync.WaitGroup
	quit     chan struct{}
}

// NewPool creates a new worker pool. Jobs inherit baseCtx, so cancelling it
// cancels in-flight work.
func NewPool(baseCtx context.Context, workers int, queueSize int) *Pool {
	return &Pool{
		workers:  workers,
		jobQueue: make(chan Job, queueSize),
		baseCtx:  baseCtx,
		quit:     make(chan struct{}),
	}
}

// Start starts the workers
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case job := <-p.jobQueue:
			if err := job.Process(p.baseCtx); err != nil {
				logger.FromContext(p.baseCtx).Error(LogMsgWorkerJobFailed, "error", err)
			}
		case <-p.quit:
			return
		}
	}
}

// TryEnqueue adds a job without blocking; returns false when the queue is
// full. Periodic producers drop rather than stall, the next tick retries.
func (p *Pool) TryEnqueue(job Job) bool {
	select {
	case p.jobQueue <- job:
		return true
	default:
		return false
	}
}

// Enqueue adds a job to the queue, blocking while it is full
func (p *Pool) Enqueue(job Job) {
	p.jobQueue <- job
}

// Stop stops the workers and waits for them to finish
func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
