package main

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/jngonzales/portfolio/internal/terminal"
)

type palette struct {
	bg      tcell.Color
	fg      tcell.Color
	prompt  tcell.Color
	err     tcell.Color
	system  tcell.Color
	ascii   tcell.Color
	success tcell.Color
	dim     tcell.Color
}

var palettes = map[terminal.Theme]palette{
	terminal.ThemeDark: {
		bg:      tcell.ColorBlack,
		fg:      tcell.ColorSilver,
		prompt:  tcell.ColorLime,
		err:     tcell.ColorRed,
		system:  tcell.ColorAqua,
		ascii:   tcell.ColorGreen,
		success: tcell.ColorYellow,
		dim:     tcell.ColorGray,
	},
	terminal.ThemeLight: {
		bg:      tcell.ColorWhite,
		fg:      tcell.ColorBlack,
		prompt:  tcell.ColorGreen,
		err:     tcell.ColorMaroon,
		system:  tcell.ColorNavy,
		ascii:   tcell.ColorTeal,
		success: tcell.ColorOlive,
		dim:     tcell.ColorGray,
	},
}

func (p palette) style(fg tcell.Color) tcell.Style {
	return tcell.StyleDefault.Background(p.bg).Foreground(fg)
}

func (p palette) lineStyle(k terminal.LineKind) tcell.Style {
	switch k {
	case terminal.LineInput:
		return p.style(p.prompt).Bold(true)
	case terminal.LineError:
		return p.style(p.err)
	case terminal.LineSystem:
		return p.style(p.system)
	case terminal.LineASCII:
		return p.style(p.ascii)
	case terminal.LineSuccess:
		return p.style(p.success)
	}
	return p.style(p.fg)
}

type row struct {
	text  string
	style tcell.Style
}

func (a *App) draw() {
	pal := palettes[a.theme]
	a.screen.SetStyle(pal.style(pal.fg))
	a.screen.Clear()
	width, height := a.screen.Size()
	if width <= 0 || height < 4 {
		a.screen.Show()
		return
	}
	a.rain.draw(a.screen, pal.bg)

	title := " " + a.profile.Owner.Name + " | " + a.profile.Owner.Title
	if a.view == viewTerminal {
		title += " | god mode"
	}
	if a.sound.Muted() {
		title += " | muted"
	}
	drawText(a.screen, 0, 0, width, title, pal.style(pal.dim).Reverse(true))

	var lines []terminal.Line
	var prompt, input string
	if a.view == viewTerminal && a.session != nil {
		lines = a.session.Lines()
		prompt, input = a.session.Prompt(), a.session.Input()
	} else {
		lines = a.card.Lines()
		prompt, input = a.card.Prompt(), a.card.Input()
	}

	// Rows between the title bar and the input and status rows.
	body := height - 3
	var rows []row
	for _, l := range lines {
		style := pal.lineStyle(l.Kind)
		for _, text := range strings.Split(l.String(), "\n") {
			for _, part := range wrap(text, width) {
				rows = append(rows, row{text: part, style: style})
			}
		}
	}
	if len(rows) > body {
		rows = rows[len(rows)-body:]
	}
	for i, r := range rows {
		drawText(a.screen, 0, 1+i, width, r.text, r.style)
	}

	a.drawInput(pal, height-2, width, prompt, input)

	status := a.status
	if status == "" || time.Since(a.statusAt) > statusTTL {
		status = "F2 terminal  F3 mute  Ctrl+C quit"
	}
	drawText(a.screen, 0, height-1, width, status, pal.style(pal.dim))

	a.screen.Show()
}

// drawInput renders the input row. In the game the typed text is split into
// a correct prefix and the rest.
func (a *App) drawInput(pal palette, y, width int, prompt, input string) {
	x := drawText(a.screen, 0, y, width, prompt+" ", pal.style(pal.prompt).Bold(true))

	if a.view == viewTerminal && a.session != nil && a.session.Mode() == terminal.ModeGame {
		g := a.session.Game()
		runes := []rune(input)
		correct := min(g.Correct, len(runes))
		x = drawText(a.screen, x, y, width, string(runes[:correct]), pal.style(pal.success))
		x = drawText(a.screen, x, y, width, string(runes[correct:]), pal.style(pal.err).Underline(true))
	} else {
		x = drawText(a.screen, x, y, width, input, pal.style(pal.fg))
	}
	if x < width {
		a.screen.ShowCursor(x, y)
	}
}

// drawText draws s from column x and returns the column after it.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) int {
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x+w > width {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		x += w
	}
	return x
}

// wrap splits s into pieces at most width columns wide.
func wrap(s string, width int) []string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return []string{s}
	}
	var out []string
	var b strings.Builder
	col := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if col+w > width && col > 0 {
			out = append(out, b.String())
			b.Reset()
			col = 0
		}
		b.WriteRune(r)
		col += w
	}
	return append(out, b.String())
}
