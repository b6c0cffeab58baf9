package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/canvaslist/internal/geometry"
	"github.com/1broseidon/canvaslist/internal/window"
)

// ANSI escape codes
const (
	escClear      = "\x1b[2J"
	escHome       = "\x1b[H"
	escHideCursor = "\x1b[?25l"
	escShowCursor = "\x1b[?25h"
	escBold       = "\x1b[1m"
	escDim        = "\x1b[2m"
	escReset      = "\x1b[0m"
	escReverse    = "\x1b[7m"
	escCyan       = "\x1b[36m"
	escYellow     = "\x1b[33m"
	escRed        = "\x1b[31m"
	escGreen      = "\x1b[32m"
)

func moveTo(row, col int) string {
	return fmt.Sprintf("\x1b[%d;%dH", row, col)
}

func (t *TUI) render() {
	t.updateSize()

	var sb strings.Builder

	// Hide cursor during render
	sb.WriteString(escHideCursor)
	sb.WriteString(escReset)
	sb.WriteString(escClear)
	sb.WriteString(escHome)

	const (
		sepWidth       = 3 // " │ "
		maxListWidth   = 44
		minListWidth   = 20
		minCanvasWidth = 12
		headerLines    = 2 // title + divider
		footerLines    = 3 // divider + status + footer
	)

	width := max(t.width, 1)
	height := max(t.height, 1)

	listWidth := min(max(width*2/5, minListWidth), maxListWidth)
	canvasWidth := width - listWidth - sepWidth
	if canvasWidth < minCanvasWidth {
		canvasWidth = minCanvasWidth
		listWidth = max(width-sepWidth-canvasWidth, minListWidth)
	}
	bodyHeight := max(height-headerLines-footerLines, 1)

	sb.WriteString(escBold)
	sb.WriteString(escCyan)
	sb.WriteString(centerText("canvaslist inspector", width))
	sb.WriteString(escReset)
	sb.WriteString("\r\n")
	sb.WriteString(strings.Repeat("─", width))
	sb.WriteString("\r\n")

	listLines := t.renderWindowList(listWidth, bodyHeight)
	mapLines := t.renderMap(canvasWidth, bodyHeight)

	for i := 0; i < bodyHeight; i++ {
		if i < len(listLines) {
			sb.WriteString(listLines[i])
		} else {
			sb.WriteString(strings.Repeat(" ", listWidth))
		}
		sb.WriteString(" │ ")
		if i < len(mapLines) {
			sb.WriteString(mapLines[i])
		}
		sb.WriteString("\r\n")
	}

	sb.WriteString(strings.Repeat("─", width))
	sb.WriteString("\r\n")
	sb.WriteString(truncateANSI(t.renderStatus(), width))
	sb.WriteString("\r\n")
	sb.WriteString(truncateANSI(t.renderFooter(), width))

	fmt.Print(sb.String())
}

func (t *TUI) renderWindowList(width, height int) []string {
	lines := make([]string, 0, height)
	lines = append(lines, padRight(escBold+"Windows"+escReset, width))

	if len(t.windows) == 0 {
		lines = append(lines, padRight(escDim+"(no windows)"+escReset, width))
		return lines
	}

	for i, rec := range t.windows {
		if len(lines) >= height {
			break
		}
		entry := formatEntry(rec)
		if visibleLength(entry) > width-2 {
			entry = truncateANSI(entry, width-2)
		}

		prefix := "  "
		if rec.Minimized {
			prefix = escYellow + "- " + escReset
		}

		var line string
		if i == t.selectedIndex {
			line = escReverse + prefix + entry + escReset
		} else {
			line = prefix + entry
		}
		lines = append(lines, padRight(line, width))
	}
	return lines
}

// formatEntry is one window list row: id, kind, geometry and title.
func formatEntry(rec window.Record) string {
	s := fmt.Sprintf("%3d %-4s %5d,%-5d %dx%d", rec.ID, rec.Kind, rec.Position.X, rec.Position.Y, rec.Size.Width, rec.Size.Height)
	if rec.Title != "" {
		s += " " + rec.Title
	}
	return s
}

func (t *TUI) renderMap(width, height int) []string {
	var vp geometry.Viewport
	if t.status != nil {
		vp = t.status.Viewport
	}

	lines := make([]string, 0, height)
	title := fmt.Sprintf("%sViewport %s%s", escBold, vp, escReset)
	lines = append(lines, padRight(truncateANSI(title, width), width))

	canvasHeight := max(height-1, 1)
	canvasWidth := max(width-1, 1)
	lines = append(lines, renderMinimap(t.windows, vp, t.headerHeight, canvasWidth, canvasHeight, t.selectedID())...)

	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return lines
}

func (t *TUI) renderStatus() string {
	if t.lastError != "" {
		return fmt.Sprintf("%sError: %s%s", escRed, t.lastError, escReset)
	}
	if t.status == nil {
		return escDim + "Not connected" + escReset
	}

	line := fmt.Sprintf("Windows: %s%d%s  |  Minimized: %s%d%s  |  Views: %s%d%s  |  Session: %s%s%s",
		escCyan, t.status.WindowCount, escReset,
		escYellow, t.status.Minimized, escReset,
		escCyan, t.status.Views, escReset,
		escGreen, t.status.Session, escReset)
	if t.lastInfo != "" {
		line += "  |  " + escDim + t.lastInfo + escReset
	}
	return line
}

func (t *TUI) renderFooter() string {
	keys := []string{
		"j/k/↑/↓:nav", "f:front", "m:min/restore", "H/J/K/L:move", "s:scan", "r:refresh", "q/esc/^C:quit",
	}
	return escDim + strings.Join(keys, "  ") + escReset
}

func centerText(text string, width int) string {
	visibleLen := visibleLength(text)
	if visibleLen >= width {
		return text
	}
	padding := (width - visibleLen) / 2
	return strings.Repeat(" ", padding) + text
}

func padRight(text string, width int) string {
	visibleLen := visibleLength(text)
	if visibleLen >= width {
		return text
	}
	return text + strings.Repeat(" ", width-visibleLen)
}

// visibleLength returns the visible length of a string, ignoring ANSI codes.
func visibleLength(s string) int {
	inEscape := false
	length := 0
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		length++
	}
	return length
}

func truncateANSI(text string, width int) string {
	if width < 1 {
		return ""
	}
	if visibleLength(text) <= width {
		return text
	}

	var sb strings.Builder
	inEscape := false
	visible := 0
	for _, r := range text {
		if r == '\x1b' {
			inEscape = true
			sb.WriteRune(r)
			continue
		}
		if inEscape {
			sb.WriteRune(r)
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}

		if visible >= width-1 {
			break
		}
		sb.WriteRune(r)
		visible++
	}

	sb.WriteString("…")
	sb.WriteString(escReset)
	return sb.String()
}
