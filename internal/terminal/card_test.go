package terminal

import (
	"slices"
	"testing"

	"github.com/jngonzales/portfolio/internal/content"
)

func cardTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.String()
	}
	return out
}

func TestCardCommands(t *testing.T) {
	p := content.MustDefault()
	c := NewCard(p, nil)
	if got := cardTexts(c.Lines()); !slices.Equal(got, []string{p.Card.Welcome}) {
		t.Fatalf("initial lines = %v", got)
	}

	c.SetInput("  HELP ")
	c.Enter()
	help, _ := p.CardCommand("help")
	want := append([]string{p.Card.Welcome, "$   HELP "}, help...)
	if got := cardTexts(c.Lines()); !slices.Equal(got, want) {
		t.Errorf("lines after help = %q", got)
	}
	if c.Input() != "" {
		t.Errorf("Input() = %q after Enter", c.Input())
	}
}

func TestCardUnknownAndEmpty(t *testing.T) {
	c := NewCard(content.MustDefault(), nil)
	c.Submit("")
	c.Submit("hack the planet")
	got := cardTexts(c.Lines())[1:]
	want := []string{
		"$ ",
		"$ hack the planet",
		"Command not found: hack the planet",
		`Type "help" for available commands.`,
	}
	if !slices.Equal(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestCardClear(t *testing.T) {
	p := content.MustDefault()
	c := NewCard(p, nil)
	c.Submit("about")
	c.Submit("clear")
	if got := cardTexts(c.Lines()); !slices.Equal(got, []string{p.Card.Cleared}) {
		t.Errorf("lines after clear = %q", got)
	}
}

func TestCardMatrixToggle(t *testing.T) {
	p := content.MustDefault()
	fx := &recordingEffects{}
	c := NewCard(p, fx)

	c.Submit("matrix")
	if !c.MatrixEnabled() {
		t.Error("matrix should be enabled")
	}
	lines := cardTexts(c.Lines())
	if last := lines[len(lines)-1]; last != "Matrix mode: ENABLED 🔴" {
		t.Errorf("last line = %q", last)
	}

	c.Submit("Matrix")
	lines = cardTexts(c.Lines())
	if got := lines[len(lines)-2:]; !slices.Equal(got, p.Card.MatrixOff) {
		t.Errorf("disable report = %q", got)
	}
	if c.MatrixEnabled() {
		t.Error("matrix should be disabled")
	}
	if !slices.Equal(fx.calls, []string{"ambient", "ambient"}) {
		t.Errorf("calls = %v", fx.calls)
	}

	c.SetMatrix(true)
	c.Submit("matrix")
	lines = cardTexts(c.Lines())
	if last := lines[len(lines)-1]; last != "Returning to normal reality..." {
		t.Errorf("after SetMatrix(true) last line = %q", last)
	}
}

func TestCardEditing(t *testing.T) {
	c := NewCard(content.MustDefault(), nil)
	for _, r := range "skillsé" {
		c.TypeRune(r)
	}
	c.Backspace()
	if c.Input() != "skills" {
		t.Errorf("Input() = %q", c.Input())
	}
	if c.Prompt() != "jn@portfolio:~" {
		t.Errorf("Prompt() = %q", c.Prompt())
	}
}
