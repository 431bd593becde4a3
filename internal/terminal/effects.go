package terminal

import (
	"go.uber.org/zap"

	"github.com/jngonzales/portfolio/internal/logging"
)

// DestKind distinguishes route changes from in-page scrolls.
type DestKind int

const (
	DestRoute DestKind = iota
	DestAnchor
)

func (k DestKind) String() string {
	if k == DestAnchor {
		return "anchor"
	}
	return "route"
}

// Destination is a resolved `goto` target. For anchors Target is the
// element id, for routes it is the path.
type Destination struct {
	Key    string
	Target string
	Kind   DestKind
}

// Theme is a colour scheme the host can switch to.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Effects is implemented by the host application. Calls are fire and forget;
// the session never inspects their outcome.
type Effects interface {
	Navigate(dest Destination)
	OpenExternal(url string)
	DownloadResource(path, filename string)
	SetTheme(theme Theme)
	ToggleAmbientEffect()
	CloseTerminal()
}

// NopEffects ignores every side effect.
type NopEffects struct{}

func (NopEffects) Navigate(Destination)             {}
func (NopEffects) OpenExternal(string)              {}
func (NopEffects) DownloadResource(string, string) {}
func (NopEffects) SetTheme(Theme)                   {}
func (NopEffects) ToggleAmbientEffect()             {}
func (NopEffects) CloseTerminal()                   {}

// invokeEffect runs fn against fx. A panicking host effect is logged and
// swallowed so it never unwinds through the session.
func invokeEffect(fx Effects, name string, fn func(Effects)) {
	defer func() {
		if r := recover(); r != nil {
			logging.Warn("terminal effect panicked",
				zap.String("effect", name),
				zap.Any("panic", r),
			)
		}
	}()
	fn(fx)
}
