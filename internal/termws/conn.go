package termws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jngonzales/portfolio/internal/logging"
	"github.com/jngonzales/portfolio/internal/metrics"
	"github.com/jngonzales/portfolio/internal/store"
	"github.com/jngonzales/portfolio/internal/terminal"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// conn is one websocket connection and the session it drives. Everything
// touching the session runs on the loop goroutine.
type conn struct {
	srv     *Server
	id      string
	ws      *websocket.Conn
	started time.Time

	send  chan []byte
	inbox chan func()
	quit  chan struct{}
	done  chan struct{}
	once  sync.Once

	session *terminal.Session
	ended   bool
}

func newConn(srv *Server, id string, ws *websocket.Conn) *conn {
	c := &conn{
		srv:     srv,
		id:      id,
		ws:      ws,
		started: time.Now(),
		send:    make(chan []byte, 256),
		inbox:   make(chan func(), 64),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	opts := srv.opts
	c.session = terminal.New(terminal.Options{
		Profile:        opts.Profile,
		Effects:        &effects{c: c},
		Scheduler:      terminal.NewPostScheduler(c.post),
		NavigateDelay:  opts.NavigateDelay,
		ExitDelay:      opts.ExitDelay,
		NextRoundDelay: opts.NextRoundDelay,
		OnCommand: func(name string) {
			metrics.RecordCommand(name)
			srv.record("command", func(ctx context.Context, r Recorder) error {
				return r.RecordCommand(ctx, id, name)
			})
		},
		OnRound: func(res terminal.RoundResult) {
			metrics.RecordRound(res.WPM)
			score := store.Score{
				SessionID: id,
				WPM:       res.WPM,
				ElapsedMS: res.Elapsed.Milliseconds(),
				Prompt:    res.Prompt,
			}
			srv.record("score", func(ctx context.Context, r Recorder) error {
				return r.RecordScore(ctx, score)
			})
		},
	})
	return c
}

// post hands fn to the loop goroutine. It drops fn once the loop is gone.
func (c *conn) post(fn func()) {
	select {
	case c.inbox <- fn:
	case <-c.done:
	}
}

// stop asks the loop to end the session.
func (c *conn) stop() {
	c.once.Do(func() { close(c.quit) })
}

func (c *conn) loop() {
	metrics.SessionOpened()
	logging.Info("terminal session opened", zap.String("session_id", c.id))
	defer c.teardown()

	c.flush()
	for {
		select {
		case fn := <-c.inbox:
			fn()
			c.flush()
			if c.ended {
				return
			}
		case <-c.quit:
			return
		}
	}
}

func (c *conn) teardown() {
	c.session.Close()
	close(c.done)
	close(c.send)
	c.srv.remove(c)
	metrics.SessionClosed()

	stats := c.session.Stats()
	summary := store.Session{
		ID:           c.id,
		Transport:    "ws",
		StartedAt:    c.started,
		EndedAt:      time.Now(),
		Commands:     stats.Commands,
		Rounds:       stats.RoundsCompleted,
		HighScoreWPM: stats.HighScoreWPM,
	}
	c.srv.record("session", func(ctx context.Context, r Recorder) error {
		return r.RecordSession(ctx, summary)
	})
	logging.Info("terminal session closed",
		zap.String("session_id", c.id),
		zap.Int("commands", stats.Commands),
		zap.Int("rounds", stats.RoundsCompleted),
		zap.Duration("duration", summary.EndedAt.Sub(c.started)),
	)
}

// flush pushes the current session state to the client.
func (c *conn) flush() {
	s := c.session
	c.enqueue(&ServerMessage{Kind: KindSnapshot, Snapshot: &Snapshot{
		SessionID: c.id,
		Prompt:    s.Prompt(),
		Input:     s.Input(),
		Cwd:       s.Cwd(),
		Mode:      s.Mode().String(),
		Lines:     s.Lines(),
		Game:      s.Game(),
		Stats:     s.Stats(),
		Closed:    c.ended,
	}})
}

func (c *conn) enqueue(msg *ServerMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to encode terminal message", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	default:
		logging.Warn("terminal client send buffer full, dropping connection", zap.String("session_id", c.id))
		c.stop()
	}
}

func (c *conn) handle(msg ClientMessage) {
	s := c.session
	switch msg.Kind {
	case KindInput:
		s.SetInput(msg.Value)
	case KindSubmit:
		s.Submit(msg.Value)
	case KindEnter:
		s.Enter()
	case KindRecallPrevious:
		s.RecallPrevious()
	case KindRecallNext:
		s.RecallNext()
	case KindComplete:
		s.Complete()
	case KindCancel:
		s.Cancel()
	case KindClearScreen:
		s.ClearScreen()
	default:
		c.enqueue(&ServerMessage{Kind: KindError, Error: "unknown message kind: " + msg.Kind})
	}
}

func (c *conn) readPump() {
	defer c.stop()

	c.ws.SetReadLimit(maxMessageSize)
	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Warn("terminal websocket read error", zap.String("session_id", c.id), zap.Error(err))
			}
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.post(func() {
				c.enqueue(&ServerMessage{Kind: KindError, Error: "invalid message"})
			})
			continue
		}
		c.post(func() { c.handle(msg) })
	}
}

func (c *conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.ws.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.ws.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.stop()
				return
			}
		case <-ticker.C:
			c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.stop()
				return
			}
		}
	}
}

// effects forwards session side effects to the browser. It is only called
// from the loop goroutine.
type effects struct {
	c *conn
}

func (e *effects) emit(fx Effect) {
	metrics.RecordEffect(fx.Name)
	e.c.enqueue(&ServerMessage{Kind: KindEffect, Effect: &fx})
}

func (e *effects) Navigate(d terminal.Destination) {
	e.emit(Effect{Name: EffectNavigate, Target: d.Target, Dest: d.Kind.String()})
}

func (e *effects) OpenExternal(url string) {
	e.emit(Effect{Name: EffectOpenExternal, URL: url})
}

func (e *effects) DownloadResource(path, filename string) {
	e.emit(Effect{Name: EffectDownload, Path: path, Filename: filename})
}

func (e *effects) SetTheme(t terminal.Theme) {
	e.emit(Effect{Name: EffectSetTheme, Theme: string(t)})
}

func (e *effects) ToggleAmbientEffect() {
	e.emit(Effect{Name: EffectToggleAmbient})
}

// CloseTerminal ends the session after the current event is flushed.
func (e *effects) CloseTerminal() {
	e.emit(Effect{Name: EffectClose})
	e.c.ended = true
}
