package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"refillmap/internal/render"
)

// panel is a bordered rectangle drawn over the map
type panel struct {
	x, y          int
	width, height int
}

// contains reports whether the cell is inside the panel, border included
func (p *panel) contains(x, y int) bool {
	return x >= p.x && x < p.x+p.width && y >= p.y && y < p.y+p.height
}

func (p *panel) resize(x, y, width, height int) {
	p.x, p.y, p.width, p.height = x, y, width, height
}

// clear blanks the interior so the map does not show through
func (p *panel) clear(screen tcell.Screen) {
	for row := p.y + 1; row < p.y+p.height-1; row++ {
		for col := p.x + 1; col < p.x+p.width-1; col++ {
			screen.SetContent(col, row, ' ', nil, tcell.StyleDefault)
		}
	}
}

// drawFrame draws the border with a centred title
func (p *panel) drawFrame(screen tcell.Screen, title string) {
	if p.width < 2 || p.height < 2 {
		return
	}
	style := render.StyleLabel

	screen.SetContent(p.x, p.y, '┌', nil, style)
	screen.SetContent(p.x+p.width-1, p.y, '┐', nil, style)
	screen.SetContent(p.x, p.y+p.height-1, '└', nil, style)
	screen.SetContent(p.x+p.width-1, p.y+p.height-1, '┘', nil, style)

	for i := 1; i < p.width-1; i++ {
		screen.SetContent(p.x+i, p.y, '─', nil, style)
		screen.SetContent(p.x+i, p.y+p.height-1, '─', nil, style)
	}

	for i := 1; i < p.height-1; i++ {
		screen.SetContent(p.x, p.y+i, '│', nil, style)
		screen.SetContent(p.x+p.width-1, p.y+i, '│', nil, style)
	}

	if title != "" {
		title = runewidth.Truncate(title, p.width-2, "…")
		drawText(screen, p.x+(p.width-runewidth.StringWidth(title))/2, p.y, p.width-2, title, style)
	}
}

// drawText writes text clipped to maxWidth columns and returns the columns used
func drawText(screen tcell.Screen, x, y, maxWidth int, text string, style tcell.Style) int {
	if maxWidth <= 0 {
		return 0
	}
	text = runewidth.Truncate(text, maxWidth, "…")
	col := 0
	for _, ch := range text {
		screen.SetContent(x+col, y, ch, nil, style)
		col += runewidth.RuneWidth(ch)
	}
	return col
}
