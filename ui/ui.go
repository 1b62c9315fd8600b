package ui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
)

func getElementWidth(widthTotal int, count int) (int, int) {
	if count == 0 {
		return 0, 0
	}
	remainder := widthTotal % count
	width := int(math.Floor(float64(widthTotal) / float64(count)))

	return width, remainder
}

type TextAlign int

const (
	LeftAlign TextAlign = iota
	RightAlign
)

func (ta TextAlign) String() string {
	return [...]string{"LeftAlign", "RightAlign"}[ta]
}

type Cell struct {
	Text  string
	Width int
	Align TextAlign
}

// Line lays cells out on one row of the given width. Cells without a width
// share what the fixed cells leave over.
func Line(width int, cells ...Cell) string {
	widthFlex := width
	var widthFlexCells []*int

	for i, cell := range cells {
		if cell.Width <= 0 {
			widthFlexCells = append(widthFlexCells, &cells[i].Width)
			continue
		}
		widthFlex -= cell.Width
	}
	if widthFlex < 0 {
		widthFlex = 0
	}

	widthWithoutRemainder, remainder := getElementWidth(widthFlex, len(widthFlexCells))
	for i := range widthFlexCells {
		*widthFlexCells[i] = widthWithoutRemainder
		if i < remainder {
			*widthFlexCells[i] = widthWithoutRemainder + 1
		}
	}

	var gridLine strings.Builder
	for _, cell := range cells {
		// Measure printable width; byte slicing would split multi-byte runes.
		textWidth := ansi.PrintableRuneWidth(cell.Text)
		if textWidth > cell.Width {
			cell.Text = Truncate(cell.Text, cell.Width)
			textWidth = ansi.PrintableRuneWidth(cell.Text)
		}
		pad := cell.Width - textWidth
		if pad < 0 {
			pad = 0
		}

		if cell.Align == RightAlign {
			gridLine.WriteString(strings.Repeat(" ", pad) + cell.Text)
			continue
		}
		gridLine.WriteString(cell.Text + strings.Repeat(" ", pad))
	}
	return gridLine.String()
}

// Truncate cuts old to at most n printable columns, dropping ANSI escapes
// when it has to cut.
func Truncate(old string, n int) string {
	var (
		out       strings.Builder
		outlength int
		isansi    bool
	)
	if n <= 0 {
		return ""
	}
	for _, c := range old {
		if c == ansi.Marker {
			isansi = true
		} else if isansi {
			if ansi.IsTerminator(c) {
				isansi = false
			}
		} else {
			w := runewidth.RuneWidth(c)
			if outlength+w > n {
				return out.String()
			}
			out.WriteRune(c)
			outlength += w
		}
	}
	return old
}

func JoinLines(texts ...string) string {
	return strings.Join(
		texts,
		"\n",
	)
}
