package termws

import "github.com/jngonzales/portfolio/internal/terminal"

// Client message kinds.
const (
	KindInput          = "input"
	KindSubmit         = "submit"
	KindEnter          = "enter"
	KindRecallPrevious = "recall_previous"
	KindRecallNext     = "recall_next"
	KindComplete       = "complete"
	KindCancel         = "cancel"
	KindClearScreen    = "clear_screen"
)

// Server message kinds.
const (
	KindSnapshot = "snapshot"
	KindEffect   = "effect"
	KindError    = "error"
)

// Effect names sent to the browser.
const (
	EffectNavigate      = "navigate"
	EffectOpenExternal  = "open_external"
	EffectDownload      = "download"
	EffectSetTheme      = "set_theme"
	EffectToggleAmbient = "toggle_ambient"
	EffectClose         = "close"
)

// ClientMessage is one input event from the browser. Value carries the
// whole input buffer for "input" and the raw line for "submit".
type ClientMessage struct {
	Kind  string `json:"kind"`
	Value string `json:"value,omitempty"`
}

// ServerMessage wraps everything the server pushes.
type ServerMessage struct {
	// "snapshot", "effect" or "error"
	Kind string `json:"kind"`

	Snapshot *Snapshot `json:"snapshot,omitempty"`
	Effect   *Effect   `json:"effect,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Snapshot is the full render state of a session.
type Snapshot struct {
	SessionID string              `json:"session_id"`
	Prompt    string              `json:"prompt"`
	Input     string              `json:"input"`
	Cwd       []string            `json:"cwd"`
	Mode      string              `json:"mode"`
	Lines     []terminal.Line     `json:"lines"`
	Game      terminal.GameStatus `json:"game"`
	Stats     terminal.Stats      `json:"stats"`
	Closed    bool                `json:"closed"`
}

// Effect asks the browser to perform a side effect.
type Effect struct {
	Name string `json:"name"`

	// navigate
	Target string `json:"target,omitempty"`
	Dest   string `json:"dest,omitempty"` // "route" or "anchor"

	// open_external
	URL string `json:"url,omitempty"`

	// download
	Path     string `json:"path,omitempty"`
	Filename string `json:"filename,omitempty"`

	// set_theme
	Theme string `json:"theme,omitempty"`
}
