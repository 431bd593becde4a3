package terminal

import (
	"slices"
	"strings"

	"github.com/jngonzales/portfolio/internal/content"
)

// Card is the small landing page terminal. It answers a fixed table of
// commands from the profile and can toggle the ambient matrix effect.
type Card struct {
	profile *content.Profile
	effects Effects

	lines  []Line
	input  string
	matrix bool
}

// NewCard creates a card showing the welcome line.
func NewCard(p *content.Profile, fx Effects) *Card {
	if fx == nil {
		fx = NopEffects{}
	}
	c := &Card{profile: p, effects: fx}
	c.println(p.Card.Welcome)
	return c
}

func (c *Card) println(text string) {
	c.lines = append(c.lines, Line{Kind: LineOutput, Text: text})
}

// Submit runs one card command.
func (c *Card) Submit(raw string) {
	cmd := strings.ToLower(strings.TrimSpace(raw))
	echo := Line{Kind: LineInput, Text: raw, Prompt: "$"}

	switch cmd {
	case "clear":
		c.lines = nil
		c.println(c.profile.Card.Cleared)
		return
	case "matrix":
		c.lines = append(c.lines, echo)
		report := c.profile.Card.MatrixOn
		if c.matrix {
			report = c.profile.Card.MatrixOff
		}
		c.matrix = !c.matrix
		invokeEffect(c.effects, "toggle_ambient", func(fx Effects) { fx.ToggleAmbientEffect() })
		for _, l := range report {
			c.println(l)
		}
		return
	case "":
		c.lines = append(c.lines, echo)
		return
	}

	c.lines = append(c.lines, echo)
	if out, ok := c.profile.CardCommand(cmd); ok {
		for _, l := range out {
			c.println(l)
		}
		return
	}
	c.println("Command not found: " + raw)
	c.println(`Type "help" for available commands.`)
}

// Enter submits and clears the pending input.
func (c *Card) Enter() {
	raw := c.input
	c.input = ""
	c.Submit(raw)
}

func (c *Card) SetInput(v string) { c.input = v }

func (c *Card) TypeRune(r rune) { c.input += string(r) }

func (c *Card) Backspace() {
	if r := []rune(c.input); len(r) > 0 {
		c.input = string(r[:len(r)-1])
	}
}

func (c *Card) Input() string { return c.input }

func (c *Card) Lines() []Line { return slices.Clone(c.lines) }

// Prompt is the card's title bar prompt.
func (c *Card) Prompt() string { return c.profile.Card.Prompt }

// MatrixEnabled reports the card's view of the ambient effect.
func (c *Card) MatrixEnabled() bool { return c.matrix }

// SetMatrix syncs the ambient state when another widget toggled it.
func (c *Card) SetMatrix(on bool) { c.matrix = on }
