package terminal

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jngonzales/portfolio/internal/content"
)

// fakeScheduler is a manual clock. Advance fires due callbacks in order.
type fakeScheduler struct {
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	at      time.Time
	seq     int
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeScheduler) Now() time.Time { return f.now }

func (f *fakeScheduler) Schedule(d time.Duration, fn func()) Timer {
	t := &fakeTimer{at: f.now.Add(d), seq: len(f.timers), fn: fn}
	f.timers = append(f.timers, t)
	return t
}

func (f *fakeScheduler) Advance(d time.Duration) {
	f.now = f.now.Add(d)
	for {
		var due []*fakeTimer
		for _, t := range f.timers {
			if !t.stopped && !t.fired && !t.at.After(f.now) {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at.Equal(due[j].at) {
				return due[i].seq < due[j].seq
			}
			return due[i].at.Before(due[j].at)
		})
		due[0].fired = true
		due[0].fn()
	}
}

// recordingEffects logs every side effect as a short string.
type recordingEffects struct {
	calls []string
}

func (r *recordingEffects) Navigate(d Destination) {
	r.calls = append(r.calls, fmt.Sprintf("navigate %s %s", d.Kind, d.Target))
}
func (r *recordingEffects) OpenExternal(url string) { r.calls = append(r.calls, "open "+url) }
func (r *recordingEffects) DownloadResource(path, filename string) {
	r.calls = append(r.calls, "download "+path+" "+filename)
}
func (r *recordingEffects) SetTheme(t Theme)     { r.calls = append(r.calls, "theme "+string(t)) }
func (r *recordingEffects) ToggleAmbientEffect() { r.calls = append(r.calls, "ambient") }
func (r *recordingEffects) CloseTerminal()       { r.calls = append(r.calls, "close") }

type harness struct {
	s       *Session
	sched   *fakeScheduler
	fx      *recordingEffects
	profile *content.Profile
	rounds  []RoundResult
	cmds    []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithProfile(t, content.MustDefault())
}

func newHarnessWithProfile(t *testing.T, p *content.Profile) *harness {
	t.Helper()
	h := &harness{sched: newFakeScheduler(), fx: &recordingEffects{}, profile: p}
	h.s = New(Options{
		Profile:   p,
		Effects:   h.fx,
		Scheduler: h.sched,
		Now:       h.sched.Now,
		Rand:      func(int) int { return 0 },
		OnCommand: func(name string) { h.cmds = append(h.cmds, name) },
		OnRound:   func(r RoundResult) { h.rounds = append(h.rounds, r) },
	})
	return h
}

// submitOutput submits raw and returns the lines it appended.
func (h *harness) submitOutput(raw string) []Line {
	before := len(h.s.Lines())
	h.s.Submit(raw)
	lines := h.s.Lines()
	if len(lines) < before {
		return nil
	}
	return lines[before:]
}

func (h *harness) lastLine(t *testing.T) Line {
	t.Helper()
	lines := h.s.Lines()
	if len(lines) == 0 {
		t.Fatal("scrollback is empty")
	}
	return lines[len(lines)-1]
}

func (h *harness) typeString(v string) {
	for _, r := range v {
		h.s.TypeRune(r)
	}
}
