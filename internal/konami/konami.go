// Package konami detects the konami code in a stream of key presses.
package konami

// Key is an abstract key press. Hosts map their own key events onto it.
type Key int

const (
	Other Key = iota
	Up
	Down
	Left
	Right
	B
	A
)

// Sequence is ↑ ↑ ↓ ↓ ← → ← → B A.
var Sequence = []Key{Up, Up, Down, Down, Left, Right, Left, Right, B, A}

// Detector remembers the most recent keys. The zero value is ready to use.
type Detector struct {
	recent []Key
}

// Feed records a key press and reports whether it completed the sequence.
// A match resets the detector.
func (d *Detector) Feed(k Key) bool {
	d.recent = append(d.recent, k)
	if len(d.recent) > len(Sequence) {
		d.recent = d.recent[len(d.recent)-len(Sequence):]
	}
	if len(d.recent) < len(Sequence) {
		return false
	}
	for i, want := range Sequence {
		if d.recent[i] != want {
			return false
		}
	}
	d.recent = d.recent[:0]
	return true
}

// Progress returns how many keys are buffered.
func (d *Detector) Progress() int {
	return len(d.recent)
}

func (d *Detector) Reset() {
	d.recent = d.recent[:0]
}
