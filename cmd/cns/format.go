package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/zulandar/consuntivo/internal/notify"
	"golang.org/x/term"
)

const defaultWidth = 120

// column describes one table column. Max bounds the width of the column;
// zero leaves it unbounded.
type column struct {
	title string
	right bool
	max   int
}

// cell is a table value with an optional foreground colour.
type cell struct {
	text  string
	color string
}

// terminalWidth returns the width of w when it is a terminal.
func terminalWidth(w io.Writer) int {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultWidth
}

// renderTable writes rows as aligned columns. Colours are only emitted when
// w is a colour-capable terminal.
func renderTable(w io.Writer, cols []column, rows [][]cell) {
	r := lipgloss.NewRenderer(w)

	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = lipgloss.Width(c.title)
	}
	for _, row := range rows {
		for i, c := range row {
			if n := lipgloss.Width(c.text); n > widths[i] {
				widths[i] = n
			}
		}
	}
	for i, c := range cols {
		if c.max > 0 && widths[i] > c.max {
			widths[i] = c.max
		}
	}
	fitWidths(widths, cols, terminalWidth(w))

	style := func(i int) lipgloss.Style {
		s := r.NewStyle().Width(widths[i]).MaxWidth(widths[i])
		if cols[i].right {
			s = s.Align(lipgloss.Right)
		}
		return s
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = style(i).Bold(true).Render(c.title)
	}
	fmt.Fprintln(w, strings.Join(header, "  "))

	for _, row := range rows {
		line := make([]string, len(row))
		for i, c := range row {
			s := style(i)
			if c.color != "" {
				s = s.Foreground(lipgloss.Color(c.color))
			}
			line[i] = s.Render(truncate(c.text, widths[i]))
		}
		fmt.Fprintln(w, strings.Join(line, "  "))
	}
}

// fitWidths shrinks the widest bounded columns until the row fits total.
func fitWidths(widths []int, cols []column, total int) {
	sum := 2 * (len(widths) - 1)
	for _, n := range widths {
		sum += n
	}
	for sum > total {
		widest := -1
		for i, c := range cols {
			if c.max > 0 && widths[i] > 8 && (widest < 0 || widths[i] > widths[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			return
		}
		widths[widest]--
		sum--
	}
}

// truncate cuts s to n cells, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > n {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// formatHours renders already-rounded hours without trailing zeros.
func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// printMessage writes a notification as plain text.
func printMessage(w io.Writer, msg notify.Message) {
	r := lipgloss.NewRenderer(w)
	fmt.Fprintln(w, r.NewStyle().Bold(true).Render(msg.Title))
	if msg.Text != "" {
		fmt.Fprintln(w, msg.Text)
	}
	for _, f := range msg.Fields {
		fmt.Fprintf(w, "\n%s\n%s\n", r.NewStyle().Underline(true).Render(f.Name), f.Value)
	}
}
