package main

import (
	"math/rand/v2"

	"github.com/gdamore/tcell/v2"
)

const rainTail = 8

var rainGlyphs = []rune("ｱｲｳｴｵｶｷｸｹｺｻｼｽｾｿﾀﾁﾂﾃﾄ0123456789@#$%&*")

// rain is the matrix background: one falling drop per column.
type rain struct {
	enabled bool
	width   int
	height  int
	heads   []int
	glyphs  [][]rune
}

func newRain() *rain {
	return &rain{}
}

func (r *rain) toggle() {
	r.enabled = !r.enabled
}

func (r *rain) resize(width, height int) {
	r.width, r.height = width, height
	r.heads = make([]int, width)
	r.glyphs = make([][]rune, width)
	for x := range r.heads {
		r.heads[x] = -rand.IntN(height + 1)
		r.glyphs[x] = make([]rune, height)
		for y := range r.glyphs[x] {
			r.glyphs[x][y] = rainGlyphs[rand.IntN(len(rainGlyphs))]
		}
	}
}

func (r *rain) step() {
	if !r.enabled {
		return
	}
	for x := range r.heads {
		r.heads[x]++
		if r.heads[x]-rainTail > r.height {
			r.heads[x] = -rand.IntN(r.height/2 + 1)
		}
		if y := r.heads[x]; y >= 0 && y < r.height {
			r.glyphs[x][y] = rainGlyphs[rand.IntN(len(rainGlyphs))]
		}
	}
}

func (r *rain) draw(screen tcell.Screen, bg tcell.Color) {
	if !r.enabled {
		return
	}
	for x, head := range r.heads {
		for i := range rainTail {
			y := head - i
			if y < 0 || y >= r.height {
				continue
			}
			level := int32(255 - i*255/rainTail)
			style := tcell.StyleDefault.Background(bg).Foreground(tcell.NewRGBColor(0, level, 0))
			if i == 0 {
				style = style.Foreground(tcell.ColorWhite)
			}
			screen.SetContent(x, y, r.glyphs[x][y], nil, style)
		}
	}
}
