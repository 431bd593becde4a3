package terminal

import (
	"sync"
	"time"
)

// Timer is a pending scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call stopped it
	// before it fired.
	Stop() bool
}

// Scheduler runs callbacks after a delay. Callbacks must be delivered on the
// goroutine that drives the session.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Timer
}

// NewPostScheduler returns a Scheduler that waits with time.AfterFunc and
// hands each due callback to post, which must enqueue it on the host's event
// loop.
func NewPostScheduler(post func(func())) Scheduler {
	return postScheduler{post: post}
}

type postScheduler struct {
	post func(func())
}

func (p postScheduler) Schedule(d time.Duration, fn func()) Timer {
	t := &postTimer{}
	t.timer = time.AfterFunc(d, func() {
		p.post(func() {
			if t.cancelled() {
				return
			}
			fn()
		})
	})
	return t
}

type postTimer struct {
	timer *time.Timer

	mu      sync.Mutex
	stopped bool
}

// Stop also suppresses a callback that was already posted but has not run.
func (t *postTimer) Stop() bool {
	t.mu.Lock()
	t.stopped = true
	t.mu.Unlock()
	return t.timer.Stop()
}

func (t *postTimer) cancelled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// pending tracks the timers a session owns so Close can cancel them.
type pending struct {
	sched  Scheduler
	timers map[*handle]struct{}
}

type handle struct {
	owner *pending
	timer Timer
	done  bool
}

func (h *handle) Stop() bool {
	if h.done {
		return false
	}
	h.done = true
	delete(h.owner.timers, h)
	return h.timer.Stop()
}

func newPending(s Scheduler) *pending {
	return &pending{sched: s, timers: make(map[*handle]struct{})}
}

func (p *pending) schedule(d time.Duration, fn func()) *handle {
	h := &handle{owner: p}
	p.timers[h] = struct{}{}
	h.timer = p.sched.Schedule(d, func() {
		if h.done {
			return
		}
		h.done = true
		delete(p.timers, h)
		fn()
	})
	return h
}

func (p *pending) len() int { return len(p.timers) }

func (p *pending) stopAll() {
	for h := range p.timers {
		h.Stop()
	}
}
