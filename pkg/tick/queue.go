// Package tick provides a FIFO task queue drained by a single goroutine.
//
// Work that must not run inline with its caller (auth-change callbacks,
// follow-up fetches) is deferred onto the queue and runs on the next turn,
// after every task that was queued before it.
package tick

import (
	"runtime/debug"
	"sync"

	"servimarket/pkg/logger"
)

// Scheduler defers a task to a later turn. Defer reports false when the task
// was rejected because the scheduler is closed.
type Scheduler interface {
	Defer(task func()) bool
}

type Queue struct {
	mu       sync.Mutex
	idle     *sync.Cond
	pending  []func()
	inflight int
	closed   bool

	wake chan struct{}
	stop chan struct{}
	done chan struct{}
	log  *logger.Logger
}

func NewQueue(log *logger.Logger) *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		stop: make(chan struct{}),
		done: make(chan struct{}),
		log:  log,
	}
	q.idle = sync.NewCond(&q.mu)
	go q.run()
	return q
}

func (q *Queue) Defer(task func()) bool {
	if task == nil {
		return false
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, task)
	q.inflight++
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Wait blocks until the queue is empty and no task is running, including
// tasks deferred by tasks that were already queued.
func (q *Queue) Wait() {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.inflight > 0 {
		q.idle.Wait()
	}
}

// Close stops accepting tasks, lets the worker finish what is already queued
// and waits for it to exit. Safe to call more than once.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()

	close(q.stop)
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.stop:
				if q.drained() {
					return
				}
				continue
			}
		}
		task := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.exec(task)

		q.mu.Lock()
		q.inflight--
		if q.inflight == 0 {
			q.idle.Broadcast()
		}
		q.mu.Unlock()
	}
}

func (q *Queue) drained() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending) == 0
}

func (q *Queue) exec(task func()) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("Deferred task panicked",
				"error", r,
				"stack", string(debug.Stack()),
			)
		}
	}()
	task()
}
