package terminal

import (
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Phase is the state of the hacktype game.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePrompted
	PhaseTyping
	PhaseScored
)

var phaseNames = [...]string{"idle", "prompted", "typing", "scored"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if name == string(b) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown game phase %q", b)
}

// RoundResult describes one completed round.
type RoundResult struct {
	Round   int
	Prompt  string
	Elapsed time.Duration
	WPM     int
	Total   int
	High    int
}

// GameStatus is a snapshot of the game for rendering.
type GameStatus struct {
	Phase  Phase  `json:"phase"`
	Prompt string `json:"prompt,omitempty"`
	Typed  string `json:"typed,omitempty"`
	// Correct is the number of leading runes of Typed that match Prompt.
	Correct   int `json:"correct"`
	Round     int `json:"round"`
	Score     int `json:"score"`
	HighScore int `json:"high_score"`
}

type game struct {
	phase  Phase
	prompt string
	start  time.Time
	round  int
	score  int
	next   *handle
}

const hacktypeBanner = `╔════════════════════════════════════════════════════╗
║  🎮 HACKTYPE - Hacker Typing Challenge            ║
╠════════════════════════════════════════════════════╣
║  Type the code below as fast as you can!          ║
║  Press ESC to exit the game.                      ║
╚════════════════════════════════════════════════════╝
  ▶ `

const scoreRule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// WPM converts a typed prompt length and elapsed time to words per minute,
// five characters per word.
func WPM(chars int, elapsed time.Duration) int {
	if elapsed < time.Millisecond {
		elapsed = time.Millisecond
	}
	words := float64(chars) / 5
	return int(math.Round(words / elapsed.Seconds() * 60))
}

func (s *Session) startRound() {
	if s.game == nil {
		s.game = &game{}
	}
	g := s.game
	if g.next != nil {
		g.next.Stop()
		g.next = nil
	}
	prompts := s.profile.Hacktype.Prompts
	g.prompt = prompts[s.opts.Rand(len(prompts))]
	g.phase = PhasePrompted
	g.start = time.Time{}
	g.round++
	s.input = ""
	s.println(LineSystem, hacktypeBanner+g.prompt)
}

func (s *Session) gameInput(v string) {
	g := s.game
	if g.phase == PhaseScored || v == s.input {
		return
	}
	if g.phase == PhasePrompted {
		g.phase = PhaseTyping
		g.start = s.opts.Now()
	}
	s.input = v
	if v == g.prompt {
		s.scoreRound()
	}
}

func (s *Session) scoreRound() {
	g := s.game
	elapsed := max(s.opts.Now().Sub(g.start), time.Millisecond)
	wpm := WPM(utf8.RuneCountInString(g.prompt), elapsed)
	g.score += wpm
	if wpm > s.stats.HighScoreWPM {
		s.stats.HighScoreWPM = wpm
	}
	s.stats.LastWPM = wpm
	s.stats.RoundsCompleted++
	g.phase = PhaseScored

	s.println(LineSuccess, fmt.Sprintf(`✅ Perfect! Round %d complete!
%s
  ⏱️  Time: %.2fs
  ⚡ Speed: %d WPM
  🏆 High Score: %d WPM
  📊 Total Score: %d
%s
  Press ENTER to continue or ESC to quit.`,
		g.round, scoreRule, elapsed.Seconds(), wpm, s.stats.HighScoreWPM, g.score, scoreRule))

	if s.opts.OnRound != nil {
		s.opts.OnRound(RoundResult{
			Round:   g.round,
			Prompt:  g.prompt,
			Elapsed: elapsed,
			WPM:     wpm,
			Total:   g.score,
			High:    s.stats.HighScoreWPM,
		})
	}

	g.next = s.timers.schedule(s.opts.NextRoundDelay, func() {
		g.next = nil
		if s.game == g {
			s.startRound()
		}
	})
}

func (s *Session) endGame() {
	g := s.game
	if g.next != nil {
		g.next.Stop()
	}
	s.println(LineSystem, fmt.Sprintf("Game ended. Final score: %d points over %d rounds.\nType 'hacktype' to play again!", g.score, g.round))
	s.game = nil
	s.input = ""
}

// Game returns a snapshot of the typing game. Phase is PhaseIdle outside
// game mode.
func (s *Session) Game() GameStatus {
	st := GameStatus{HighScore: s.stats.HighScoreWPM}
	g := s.game
	if g == nil {
		return st
	}
	st.Phase = g.phase
	st.Prompt = g.prompt
	st.Typed = s.input
	st.Round = g.round
	st.Score = g.score
	st.Correct = commonPrefixRunes(g.prompt, s.input)
	return st
}

func commonPrefixRunes(a, b string) int {
	n := 0
	for a != "" && b != "" {
		ra, sa := utf8.DecodeRuneInString(a)
		rb, sb := utf8.DecodeRuneInString(b)
		if ra != rb {
			break
		}
		n++
		a, b = a[sa:], b[sb:]
	}
	return n
}
