// Package terminal implements the portfolio's virtual terminal: a command
// interpreter over a read-only virtual filesystem with history recall, tab
// completion and the hacktype typing game, plus the smaller bento card
// widget.
//
// A Session performs no I/O. Side effects go through the host's Effects and
// delayed work through its Scheduler. Sessions are not safe for concurrent
// use; the host must deliver input events and scheduled callbacks from one
// goroutine.
package terminal

import (
	"math/rand/v2"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jngonzales/portfolio/internal/content"
	"github.com/jngonzales/portfolio/internal/vfs"
)

// Mode reports whether the session dispatches commands or runs the game.
type Mode int

const (
	ModeShell Mode = iota
	ModeGame
)

func (m Mode) String() string {
	if m == ModeGame {
		return "game"
	}
	return "shell"
}

// Options configures a Session. Profile and Scheduler are required.
type Options struct {
	Profile   *content.Profile
	Tree      *vfs.Tree // defaults to Profile.Tree()
	Effects   Effects
	Scheduler Scheduler
	Now       func() time.Time
	Rand      func(n int) int

	NavigateDelay  time.Duration
	ExitDelay      time.Duration
	NextRoundDelay time.Duration

	// OnCommand is called after every dispatched command with its
	// lower cased name. Unregistered names are reported as UnknownCommand.
	OnCommand func(name string)
	// OnRound is called for every completed hacktype round.
	OnRound func(r RoundResult)
}

const (
	DefaultNavigateDelay  = 500 * time.Millisecond
	DefaultExitDelay      = 500 * time.Millisecond
	DefaultNextRoundDelay = 1500 * time.Millisecond
)

func (o *Options) setDefaults() {
	if o.Tree == nil {
		o.Tree = o.Profile.Tree()
	}
	if o.Effects == nil {
		o.Effects = NopEffects{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Rand == nil {
		o.Rand = rand.IntN
	}
	if o.NavigateDelay <= 0 {
		o.NavigateDelay = DefaultNavigateDelay
	}
	if o.ExitDelay <= 0 {
		o.ExitDelay = DefaultExitDelay
	}
	if o.NextRoundDelay <= 0 {
		o.NextRoundDelay = DefaultNextRoundDelay
	}
}

// Stats are lifetime counters for a session.
type Stats struct {
	Commands        int `json:"commands"`
	RoundsCompleted int `json:"rounds_completed"`
	LastWPM         int `json:"last_wpm"`
	HighScoreWPM    int `json:"high_score_wpm"`
}

// Session is one independent terminal instance.
type Session struct {
	opts    Options
	profile *content.Profile
	tree    *vfs.Tree
	timers  *pending

	lines   []Line
	input   string
	cwd     []string
	history []string
	// cursor indexes history while browsing, -1 otherwise.
	cursor int

	game   *game
	stats  Stats
	closed bool
}

// New creates a session positioned at the filesystem root with the welcome
// banner in its scrollback.
func New(opts Options) *Session {
	if opts.Profile == nil {
		panic("terminal: Options.Profile is required")
	}
	if opts.Scheduler == nil {
		panic("terminal: Options.Scheduler is required")
	}
	opts.setDefaults()

	s := &Session{
		opts:    opts,
		profile: opts.Profile,
		tree:    opts.Tree,
		timers:  newPending(opts.Scheduler),
		cwd:     []string{opts.Tree.RootName()},
		cursor:  -1,
	}
	banners := s.profile.Banners
	if banners.Logo != "" {
		s.println(LineASCII, banners.Logo)
	}
	if banners.Welcome != "" {
		s.println(LineSystem, banners.Welcome)
	}
	if banners.Hint != "" {
		s.println(LineSystem, banners.Hint)
	}
	return s
}

func (s *Session) println(kind LineKind, text string) {
	s.lines = append(s.lines, Line{Kind: kind, Text: text})
}

func (s *Session) shellPrompt() string {
	owner := s.profile.Owner
	return owner.User + "@" + owner.Host + ":~/" + strings.Join(s.cwd, "/") + "$"
}

// Submit runs one command line. In game mode it does nothing.
func (s *Session) Submit(raw string) {
	if s.closed || s.game != nil {
		return
	}
	s.lines = append(s.lines, Line{Kind: LineInput, Text: raw, Prompt: s.shellPrompt()})
	s.cursor = -1

	name, args := ParseCommand(raw)
	if name == "" {
		return
	}

	if cmd, ok := commandIndex[name]; ok {
		cmd.run(s, args)
	} else {
		s.println(LineError, strings.Fields(raw)[0]+": command not found. Type 'help' for available commands.")
		name = UnknownCommand
	}

	s.history = append(s.history, raw)
	s.stats.Commands++
	if s.opts.OnCommand != nil {
		s.opts.OnCommand(name)
	}
}

// Enter submits the pending input. After a completed round it starts the
// next one immediately.
func (s *Session) Enter() {
	if s.closed {
		return
	}
	if s.game != nil {
		if s.game.phase == PhaseScored {
			s.startRound()
		}
		return
	}
	raw := s.input
	s.input = ""
	s.Submit(raw)
}

// SetInput replaces the pending input buffer, as one keystroke. In game
// mode the buffer is compared against the round's prompt.
func (s *Session) SetInput(v string) {
	if s.closed {
		return
	}
	if s.game != nil {
		s.gameInput(v)
		return
	}
	s.input = v
	s.cursor = -1
}

// TypeRune appends r to the pending input.
func (s *Session) TypeRune(r rune) {
	s.SetInput(s.input + string(r))
}

// Backspace removes the last rune of the pending input.
func (s *Session) Backspace() {
	if s.input == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.input)
	s.SetInput(s.input[:len(s.input)-size])
}

// RecallPrevious replaces the pending input with the next older history
// entry, stopping at the oldest.
func (s *Session) RecallPrevious() {
	if s.closed || s.game != nil || len(s.history) == 0 {
		return
	}
	switch {
	case s.cursor < 0:
		s.cursor = len(s.history) - 1
	case s.cursor > 0:
		s.cursor--
	}
	s.input = s.history[s.cursor]
}

// RecallNext moves toward newer history entries. Moving past the newest
// stops browsing and clears the pending input.
func (s *Session) RecallNext() {
	if s.closed || s.game != nil {
		return
	}
	if s.cursor >= 0 && s.cursor < len(s.history)-1 {
		s.cursor++
		s.input = s.history[s.cursor]
		return
	}
	s.cursor = -1
	s.input = ""
}

// Complete expands the last token of the pending input when exactly one
// entry of the current directory starts with it, ignoring case.
func (s *Session) Complete() {
	if s.closed || s.game != nil {
		return
	}
	head, token := "", s.input
	if i := strings.LastIndexAny(s.input, " \t"); i >= 0 {
		head, token = s.input[:i+1], s.input[i+1:]
	}

	dir, err := s.tree.ResolveDir(s.cwd)
	if err != nil {
		return
	}
	prefix := strings.ToLower(token)
	var match string
	matches := 0
	for _, n := range dir.Children() {
		if strings.HasPrefix(strings.ToLower(n.Name()), prefix) {
			match = n.Name()
			matches++
		}
	}
	if matches != 1 {
		return
	}
	s.input = head + match
	s.cursor = -1
}

// Cancel handles the escape key: it ends the typing game.
func (s *Session) Cancel() {
	if s.closed || s.game == nil {
		return
	}
	s.endGame()
}

// ClearScreen empties the scrollback without echoing or touching history.
func (s *Session) ClearScreen() {
	if s.closed || s.game != nil {
		return
	}
	s.lines = nil
}

// Close cancels every pending scheduled effect. Afterwards the session
// ignores all input and no scheduled callback runs.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.timers.stopAll()
}

// Lines returns a copy of the scrollback.
func (s *Session) Lines() []Line { return slices.Clone(s.lines) }

// Input returns the pending input buffer.
func (s *Session) Input() string { return s.input }

// Prompt returns the prompt shown before the input buffer.
func (s *Session) Prompt() string {
	if s.game != nil {
		return "⌨️ >"
	}
	return s.shellPrompt()
}

// Cwd returns the current directory path from the root.
func (s *Session) Cwd() []string { return slices.Clone(s.cwd) }

// History returns the submitted lines, oldest first.
func (s *Session) History() []string { return slices.Clone(s.history) }

func (s *Session) Mode() Mode {
	if s.game != nil {
		return ModeGame
	}
	return ModeShell
}

func (s *Session) Stats() Stats { return s.stats }

func (s *Session) Closed() bool { return s.closed }

// Pending reports the number of scheduled callbacks that have not fired.
func (s *Session) Pending() int { return s.timers.len() }
