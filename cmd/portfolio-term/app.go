package main

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jngonzales/portfolio/internal/config"
	"github.com/jngonzales/portfolio/internal/content"
	"github.com/jngonzales/portfolio/internal/konami"
	"github.com/jngonzales/portfolio/internal/logging"
	"github.com/jngonzales/portfolio/internal/sound"
	"github.com/jngonzales/portfolio/internal/store"
	"github.com/jngonzales/portfolio/internal/terminal"
)

const (
	frameInterval = 50 * time.Millisecond
	statusTTL     = 4 * time.Second
)

type view int

const (
	viewCard view = iota
	viewTerminal
)

// recorder is the part of the store the TUI reports to.
type recorder interface {
	RecordCommand(ctx context.Context, sessionID, command string) error
	RecordScore(ctx context.Context, score store.Score) error
	RecordSession(ctx context.Context, sess store.Session) error
}

// callEvent carries a scheduled callback into the event loop.
type callEvent struct {
	tcell.EventTime
	fn func()
}

// App is the terminal UI host. All state is owned by the Run goroutine.
type App struct {
	screen  tcell.Screen
	cfg     *config.Config
	profile *content.Profile
	sound   *sound.Service
	rec     recorder // optional

	play     func(snd sound.Sound)
	openURL  func(url string) error
	download func(ctx context.Context, url, dst string) error

	card      *terminal.Card
	session   *terminal.Session
	sessionID string
	started   time.Time
	closing   bool
	detector  konami.Detector

	view     view
	theme    terminal.Theme
	rain     *rain
	status   string
	statusAt time.Time
	quit     bool
	done     chan struct{}
}

func newApp(screen tcell.Screen, cfg *config.Config, p *content.Profile, snd *sound.Service) *App {
	a := &App{
		screen:   screen,
		cfg:      cfg,
		profile:  p,
		sound:    snd,
		openURL:  openBrowser,
		download: fetchFile,
		theme:    terminal.ThemeDark,
		rain:     newRain(),
		done:     make(chan struct{}),
	}
	a.play = snd.Play
	a.card = terminal.NewCard(p, &hostEffects{a: a})
	return a
}

// Run polls screen events until the user quits.
func (a *App) Run() {
	defer close(a.done)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-a.done:
				return
			}
		}
	}()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	a.draw()
	for !a.quit {
		select {
		case ev := <-events:
			a.handle(ev)
		case <-ticker.C:
			a.rain.step()
		}
		a.draw()
	}
	a.disposeSession()
}

// post delivers fn to the event loop through the screen's event queue.
func (a *App) post(fn func()) {
	ev := &callEvent{fn: fn}
	ev.SetEventNow()
	if err := a.screen.PostEvent(ev); err == nil {
		return
	}
	go func() {
		for range 100 {
			select {
			case <-a.done:
				return
			case <-time.After(10 * time.Millisecond):
			}
			if a.screen.PostEvent(ev) == nil {
				return
			}
		}
		logging.Warn("dropped scheduled terminal callback, event queue full")
	}()
}

func (a *App) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *callEvent:
		ev.fn()
	case *tcell.EventResize:
		a.screen.Sync()
		a.rain.resize(a.screen.Size())
	case *tcell.EventKey:
		a.handleKey(ev)
	}

	if a.closing {
		a.closing = false
		a.disposeSession()
		a.view = viewCard
		a.play(sound.Hover)
		a.setStatus("terminal closed")
	}
}

func (a *App) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		a.quit = true
		return
	case tcell.KeyF3:
		if a.sound.ToggleMute() {
			a.setStatus("sound muted")
		} else {
			a.setStatus("sound on")
		}
		return
	}

	if a.view == viewCard {
		a.cardKey(ev)
	} else {
		a.terminalKey(ev)
	}
}

func (a *App) cardKey(ev *tcell.EventKey) {
	if a.detector.Feed(konamiKey(ev)) || ev.Key() == tcell.KeyF2 {
		a.card.SetInput("")
		a.openTerminal()
		return
	}

	switch ev.Key() {
	case tcell.KeyEnter:
		a.card.Enter()
		a.play(sound.Click)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		a.card.Backspace()
	case tcell.KeyRune:
		a.card.TypeRune(ev.Rune())
		a.play(sound.Type)
	}
}

func (a *App) terminalKey(ev *tcell.EventKey) {
	s := a.session
	switch ev.Key() {
	case tcell.KeyEnter:
		s.Enter()
		a.play(sound.Click)
	case tcell.KeyUp:
		s.RecallPrevious()
		a.play(sound.Hover)
	case tcell.KeyDown:
		s.RecallNext()
		a.play(sound.Hover)
	case tcell.KeyTab:
		s.Complete()
	case tcell.KeyEscape:
		s.Cancel()
	case tcell.KeyCtrlL:
		s.ClearScreen()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		s.Backspace()
	case tcell.KeyRune:
		s.TypeRune(ev.Rune())
		a.play(sound.Type)
	}
}

func konamiKey(ev *tcell.EventKey) konami.Key {
	switch ev.Key() {
	case tcell.KeyUp:
		return konami.Up
	case tcell.KeyDown:
		return konami.Down
	case tcell.KeyLeft:
		return konami.Left
	case tcell.KeyRight:
		return konami.Right
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'b', 'B':
			return konami.B
		case 'a', 'A':
			return konami.A
		}
	}
	return konami.Other
}

// openTerminal switches to the full terminal, creating a session on first
// use.
func (a *App) openTerminal() {
	a.view = viewTerminal
	a.play(sound.PowerUp)
	if a.session != nil {
		return
	}

	id := uuid.NewString()
	a.sessionID = id
	a.started = time.Now()
	a.session = terminal.New(terminal.Options{
		Profile:        a.profile,
		Effects:        &hostEffects{a: a},
		Scheduler:      terminal.NewPostScheduler(a.post),
		NavigateDelay:  a.cfg.NavigateDelay,
		ExitDelay:      a.cfg.ExitDelay,
		NextRoundDelay: a.cfg.NextRoundDelay,
		OnCommand: func(name string) {
			a.record(func(ctx context.Context, r recorder) error {
				return r.RecordCommand(ctx, id, name)
			})
		},
		OnRound: func(res terminal.RoundResult) {
			a.play(sound.Success)
			score := store.Score{
				SessionID: id,
				WPM:       res.WPM,
				ElapsedMS: res.Elapsed.Milliseconds(),
				Prompt:    res.Prompt,
			}
			a.record(func(ctx context.Context, r recorder) error {
				return r.RecordScore(ctx, score)
			})
		},
	})
	logging.Info("terminal session opened", zap.String("session_id", id))
}

// disposeSession closes the session, cancelling its pending effects.
func (a *App) disposeSession() {
	if a.session == nil {
		return
	}
	a.session.Close()
	stats := a.session.Stats()
	summary := store.Session{
		ID:           a.sessionID,
		Transport:    "tui",
		StartedAt:    a.started,
		EndedAt:      time.Now(),
		Commands:     stats.Commands,
		Rounds:       stats.RoundsCompleted,
		HighScoreWPM: stats.HighScoreWPM,
	}
	a.record(func(ctx context.Context, r recorder) error {
		return r.RecordSession(ctx, summary)
	})
	logging.Info("terminal session closed",
		zap.String("session_id", a.sessionID),
		zap.Int("commands", stats.Commands),
	)
	a.session = nil
	a.sessionID = ""
}

// record writes synchronously on the event loop.
func (a *App) record(fn func(ctx context.Context, r recorder) error) {
	if a.rec == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := fn(ctx, a.rec); err != nil {
		logging.Warn("failed to record terminal activity", zap.Error(err))
	}
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusAt = time.Now()
}
