package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

// renderMinimap draws the viewport scaled to width x height characters, with
// the header band as a dotted line and every non-minimized window as a box
// labelled with its id. The selected window is drawn last so it stays on top.
func renderMinimap(windows []window.Record, vp geometry.Viewport, headerHeight, width, height, selectedID int) []string {
	if vp.Width <= 0 || vp.Height <= 0 || width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	if headerHeight > 0 && headerHeight < vp.Height {
		y := headerHeight * height / vp.Height
		if y > 0 && y < height-1 {
			for x := 1; x < width-1; x++ {
				canvas[y][x] = '┄'
			}
		}
	}

	var selected *window.Record
	for i := range windows {
		rec := windows[i]
		if rec.Minimized {
			continue
		}
		if rec.ID == selectedID {
			selected = &windows[i]
			continue
		}
		drawTile(canvas, rec.Rect(), rec.ID, vp.Width, vp.Height, width, height)
	}
	if selected != nil {
		drawTile(canvas, selected.Rect(), selected.ID, vp.Width, vp.Height, width, height)
	}

	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

// drawTile maps rect from viewport pixels onto the canvas. Parts outside the
// viewport are clipped to the inner border; a window entirely off-canvas is
// skipped.
func drawTile(canvas [][]rune, rect geometry.Rect, id int, vpW, vpH, canvasW, canvasH int) {
	x1 := rect.X * canvasW / vpW
	y1 := rect.Y * canvasH / vpH
	x2 := (rect.X + rect.Width) * canvasW / vpW
	y2 := (rect.Y + rect.Height) * canvasH / vpH

	if x2 < 1 || y2 < 1 || x1 > canvasW-2 || y1 > canvasH-2 {
		return
	}

	// Clamp to canvas bounds
	x1 = max(x1, 1)
	y1 = max(y1, 1)
	x2 = min(x2, canvasW-2)
	y2 = min(y2, canvasH-2)

	// Need at least 2x2 for a tile
	if x2 <= x1 || y2 <= y1 {
		return
	}

	for y := y1 + 1; y < y2; y++ {
		for x := x1 + 1; x < x2; x++ {
			canvas[y][x] = ' '
		}
	}
	for x := x1; x <= x2; x++ {
		canvas[y1][x] = '─'
		canvas[y2][x] = '─'
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = '│'
		canvas[y][x2] = '│'
	}
	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 && centerX > x1 && centerX < x2 {
		label := fmt.Sprintf("%d", id)
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}
	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}
	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", max(width, 0))
	for i := range lines {
		lines[i] = empty
	}
	return lines
}
