// Package sound plays the terminal's interface sounds. Everything is
// synthesised, so there are no asset files to ship.
package sound

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Sound names an interface sound.
type Sound int

const (
	Hover Sound = iota
	Click
	Type
	PowerUp
	Success
)

var soundNames = [...]string{"hover", "click", "type", "power_up", "success"}

func (s Sound) String() string {
	if s < 0 || int(s) >= len(soundNames) {
		return fmt.Sprintf("Sound(%d)", int(s))
	}
	return soundNames[s]
}

// Service owns the speaker and the mute flag. The zero value is not usable;
// create one with New at startup and share it with every widget.
type Service struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	muted       bool
	volume      float64
}

// New creates a service. Sounds stay silent until Initialize succeeds.
func New(muted bool) *Service {
	return &Service{
		mixer:  &beep.Mixer{},
		muted:  muted,
		volume: 0.3,
	}
}

// Initialize opens the audio device. It is safe to call more than once and
// fails on machines without one; the service then stays silent.
func (s *Service) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Play mixes in a sound. It is a no-op while muted or uninitialised.
func (s *Service) Play(snd Sound) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized || s.muted {
		return
	}
	st := Stream(snd)
	if st == nil {
		return
	}
	speaker.Lock()
	s.mixer.Add(&effects.Volume{Streamer: st, Base: 2, Volume: math.Log2(s.volume)})
	speaker.Unlock()
}

// ToggleMute flips the mute flag and returns the new state.
func (s *Service) ToggleMute() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.muted = !s.muted
	return s.muted
}

func (s *Service) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()
}

func (s *Service) Muted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.muted
}

// Close silences everything still playing.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// Stream returns a fresh finite streamer for snd, or nil for an unknown
// sound.
func Stream(snd Sound) beep.Streamer {
	switch snd {
	case Hover:
		return tone(1320, 25*time.Millisecond)
	case Click:
		return tone(660, 40*time.Millisecond)
	case Type:
		return tone(1800, 12*time.Millisecond)
	case PowerUp:
		return beep.Take(sampleRate.N(400*time.Millisecond), &sweep{from: 220, to: 1320, length: sampleRate.N(400 * time.Millisecond)})
	case Success:
		return beep.Seq(
			tone(660, 90*time.Millisecond),
			tone(880, 90*time.Millisecond),
			tone(1320, 180*time.Millisecond),
		)
	}
	return nil
}

func tone(freq float64, d time.Duration) beep.Streamer {
	sine, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		return beep.Silence(sampleRate.N(d))
	}
	n := sampleRate.N(d)
	return &fade{Streamer: beep.Take(n, sine), total: n}
}

// fade applies a linear release envelope so short tones do not click.
type fade struct {
	beep.Streamer
	total int
	pos   int
}

func (f *fade) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		env := 1 - float64(f.pos)/float64(f.total)
		samples[i][0] *= env
		samples[i][1] *= env
		f.pos++
	}
	return n, ok
}

// sweep is a sine whose frequency rises linearly from `from` to `to` over
// length samples.
type sweep struct {
	from, to float64
	length   int
	pos      int
	phase    float64
}

func (g *sweep) Stream(samples [][2]float64) (int, bool) {
	for i := range samples {
		progress := math.Min(float64(g.pos)/float64(g.length), 1)
		freq := g.from + (g.to-g.from)*progress
		g.phase += 2 * math.Pi * freq / float64(sampleRate)
		v := 0.5 * math.Sin(g.phase) * (1 - 0.5*progress)
		samples[i][0] = v
		samples[i][1] = v
		g.pos++
	}
	return len(samples), true
}

func (g *sweep) Err() error { return nil }
