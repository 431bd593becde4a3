package terminal

import "fmt"

// LineKind selects how a scrollback line is rendered.
type LineKind int

const (
	LineInput LineKind = iota
	LineOutput
	LineError
	LineSystem
	LineASCII
	LineSuccess
)

var lineKindNames = [...]string{"input", "output", "error", "system", "ascii", "success"}

func (k LineKind) String() string {
	if k < 0 || int(k) >= len(lineKindNames) {
		return "unknown"
	}
	return lineKindNames[k]
}

// MarshalText encodes the kind by name for JSON snapshots.
func (k LineKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *LineKind) UnmarshalText(b []byte) error {
	for i, name := range lineKindNames {
		if name == string(b) {
			*k = LineKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown line kind %q", b)
}

// Line is one entry of the scrollback. Prompt is only set on input lines and
// holds the prompt that was active when the line was entered.
type Line struct {
	Kind   LineKind `json:"kind"`
	Text   string   `json:"text"`
	Prompt string   `json:"prompt,omitempty"`
}

func (l Line) String() string {
	if l.Kind == LineInput {
		return l.Prompt + " " + l.Text
	}
	return l.Text
}
