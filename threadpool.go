package ecsvault

import (
	"runtime"
	"sync"

	"github.com/TheBitDrifter/bark"
)

// ThreadPool is a fixed-size FIFO worker pool: Enqueue hands the task
// to a buffered channel (four slots per worker) and blocks only while
// that buffer is full, WaitIdle blocks until every enqueued
// task has run, and Close stops accepting new work and drains what's
// already queued before returning. A panicking task is recovered and
// logged rather than killing its worker goroutine. This is a named
// deliverable in its own right, not an ambient concern to outsource to
// golang.org/x/sync/errgroup, whose per-call goroutine model has no
// enqueue/FIFO/wait-idle-without-error contract to match. Built on
// stdlib sync/channels only.
type ThreadPool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	closeMu sync.Mutex
	closed  bool
}

// NewThreadPool starts a pool of n workers. n <= 0 defaults to
// runtime.GOMAXPROCS(0), matching Config.DefaultPoolSize's documented
// zero-value meaning.
func NewThreadPool(n int) *ThreadPool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &ThreadPool{
		tasks: make(chan func(), n*4),
	}
	for i := 0; i < n; i++ {
		go p.worker()
	}
	return p
}

func (p *ThreadPool) worker() {
	for task := range p.tasks {
		p.runTask(task)
	}
}

// runTask runs task with panic recovery so one bad task can't take
// down the worker goroutine (and with it, every task still queued
// behind it).
func (p *ThreadPool) runTask(task func()) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("thread pool task panicked", "panic", r)
		}
	}()
	task()
}

// Enqueue schedules fn to run on a worker goroutine. Panics if called
// after Close.
func (p *ThreadPool) Enqueue(fn func()) {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		panic(bark.AddTrace(assertionError{"enqueue on closed thread pool"}))
	}
	p.wg.Add(1)
	p.closeMu.Unlock()
	p.tasks <- fn
}

// WaitIdle blocks until every task enqueued so far has completed.
func (p *ThreadPool) WaitIdle() {
	p.wg.Wait()
}

// Close stops accepting new work, waits for the queue to drain, and
// releases the worker goroutines. Idempotent.
func (p *ThreadPool) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	p.closeMu.Unlock()

	p.wg.Wait()
	close(p.tasks)
}
