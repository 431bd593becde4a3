// Package termws hosts terminal sessions over websockets, one session per
// connection.
package termws

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jngonzales/portfolio/internal/content"
	"github.com/jngonzales/portfolio/internal/logging"
	"github.com/jngonzales/portfolio/internal/store"
)

// Recorder persists terminal activity. *store.Store implements it.
type Recorder interface {
	RecordCommand(ctx context.Context, sessionID, command string) error
	RecordScore(ctx context.Context, score store.Score) error
	RecordSession(ctx context.Context, sess store.Session) error
}

// Options configures a Server.
type Options struct {
	Profile  *content.Profile
	Recorder Recorder // optional

	NavigateDelay  time.Duration
	ExitDelay      time.Duration
	NextRoundDelay time.Duration

	// AllowedOrigins lists browser origins allowed to connect. Empty means
	// same origin only.
	AllowedOrigins []string
}

// Server upgrades HTTP requests and runs one terminal session per
// connection.
type Server struct {
	opts     Options
	upgrader websocket.Upgrader

	connsMu sync.Mutex
	conns   map[string]*conn
	closing bool

	loops sync.WaitGroup

	// writes feeds the single recorder goroutine, keeping writes in the
	// order sessions produced them.
	writes      chan recordWrite
	writerDone  chan struct{}
	closeWrites sync.Once
}

type recordWrite struct {
	what string
	fn   func(ctx context.Context, r Recorder) error
}

const recordQueueSize = 256

// NewServer creates a websocket terminal server.
func NewServer(opts Options) *Server {
	s := &Server{
		opts:  opts,
		conns: make(map[string]*conn),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if opts.Recorder != nil {
		s.writes = make(chan recordWrite, recordQueueSize)
		s.writerDone = make(chan struct{})
		go s.writer()
	}
	if len(opts.AllowedOrigins) > 0 {
		s.upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(opts.AllowedOrigins, origin)
		}
	}
	return s
}

// ServeHTTP upgrades the request and serves a session until the
// connection closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.connsMu.Lock()
	closing := s.closing
	s.connsMu.Unlock()
	if closing {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := newConn(s, uuid.NewString(), ws)

	s.connsMu.Lock()
	if s.closing {
		s.connsMu.Unlock()
		ws.Close()
		return
	}
	s.conns[c.id] = c
	s.loops.Add(1)
	s.connsMu.Unlock()

	go c.writePump()
	go func() {
		defer s.loops.Done()
		c.loop()
	}()
	c.readPump()
}

func (s *Server) remove(c *conn) {
	s.connsMu.Lock()
	delete(s.conns, c.id)
	s.connsMu.Unlock()
}

// Count returns the number of open sessions.
func (s *Server) Count() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.conns)
}

// Shutdown closes every session, cancelling their pending effects, and waits
// for session loops and recorder writes to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.connsMu.Lock()
	s.closing = true
	for _, c := range s.conns {
		c.stop()
	}
	s.connsMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.loops.Wait()
		if s.writes != nil {
			s.closeWrites.Do(func() { close(s.writes) })
			<-s.writerDone
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// record queues a recorder write. Only session loops call it, so the queue
// is closed once every loop has returned.
func (s *Server) record(what string, fn func(ctx context.Context, r Recorder) error) {
	if s.writes == nil {
		return
	}
	s.writes <- recordWrite{what: what, fn: fn}
}

func (s *Server) writer() {
	defer close(s.writerDone)
	for w := range s.writes {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := w.fn(ctx, s.opts.Recorder); err != nil {
			logging.Warn("failed to record terminal activity", zap.String("what", w.what), zap.Error(err))
		}
		cancel()
	}
}
