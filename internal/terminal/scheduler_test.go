package terminal

import (
	"testing"
	"time"
)

func TestPostSchedulerDeliversThroughPost(t *testing.T) {
	posted := make(chan func(), 4)
	sched := NewPostScheduler(func(fn func()) { posted <- fn })

	ran := false
	sched.Schedule(5*time.Millisecond, func() { ran = true })

	select {
	case fn := <-posted:
		if ran {
			t.Fatal("callback ran before the host executed it")
		}
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("callback was never posted")
	}
	if !ran {
		t.Error("callback did not run")
	}
}

func TestPostSchedulerStop(t *testing.T) {
	posted := make(chan func(), 4)
	sched := NewPostScheduler(func(fn func()) { posted <- fn })

	timer := sched.Schedule(time.Hour, func() { t.Error("stopped callback ran") })
	if !timer.Stop() {
		t.Error("Stop() = false for a pending timer")
	}

	// Stopped after posting but before the host ran it.
	ran := false
	late := sched.Schedule(time.Millisecond, func() { ran = true })
	var fn func()
	select {
	case fn = <-posted:
	case <-time.After(2 * time.Second):
		t.Fatal("callback was never posted")
	}
	late.Stop()
	fn()
	if ran {
		t.Error("callback ran after Stop")
	}
}

func TestSessionWithPostScheduler(t *testing.T) {
	posted := make(chan func(), 4)
	fx := &recordingEffects{}
	h := newHarness(t)
	s := New(Options{
		Profile:       h.profile,
		Effects:       fx,
		Scheduler:     NewPostScheduler(func(fn func()) { posted <- fn }),
		NavigateDelay: time.Millisecond,
	})

	s.Submit("goto contact")
	select {
	case fn := <-posted:
		fn()
	case <-time.After(2 * time.Second):
		t.Fatal("navigation was never posted")
	}
	if len(fx.calls) != 1 || fx.calls[0] != "navigate anchor contact" {
		t.Errorf("calls = %v", fx.calls)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d", s.Pending())
	}
}
