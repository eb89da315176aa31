// Package canvas implements a sparse dot-matrix drawing surface for text
// diagrams. Each output character encodes a 2x4 block of pixels as a
// braille pattern (U+2800..U+28FF); plain text can be overlaid on the
// character grid and always wins over pixels in the same cell.
package canvas

import "strings"

// brailleBits maps a pixel offset (dx in 0..1, dy in 0..3) within one
// character cell to its bit in the braille pattern block.
var brailleBits = [2][4]rune{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

const brailleBase = 0x2800

// Canvas is a character grid of cols x rows cells, addressable as a pixel
// grid of 2*cols x 4*rows dots.
type Canvas struct {
	cols, rows int
	dots       []rune // braille bit mask per cell
	text       []rune // 0 = no text in this cell
}

// New returns an empty canvas of the given character dimensions.
func New(cols, rows int) *Canvas {
	return &Canvas{
		cols: cols,
		rows: rows,
		dots: make([]rune, cols*rows),
		text: make([]rune, cols*rows),
	}
}

// Cols returns the width of the canvas in characters.
func (c *Canvas) Cols() int { return c.cols }

// Rows returns the height of the canvas in characters.
func (c *Canvas) Rows() int { return c.rows }

// SetPixel turns on the dot at pixel coordinate (x, y). Out-of-range
// coordinates are ignored.
func (c *Canvas) SetPixel(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.cols || row >= c.rows {
		return
	}
	c.dots[row*c.cols+col] |= brailleBits[x%2][y%4]
}

// Line draws a straight line between two pixel coordinates (Bresenham).
func (c *Canvas) Line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		c.SetPixel(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// WriteText places s on the character grid starting at (col, row). Text
// that runs past the right edge is clipped.
func (c *Canvas) WriteText(col, row int, s string) {
	if row < 0 || row >= c.rows {
		return
	}
	for i, r := range []rune(s) {
		x := col + i
		if x < 0 || x >= c.cols {
			continue
		}
		c.text[row*c.cols+x] = r
	}
}

// Frame renders the canvas as a plain text block. Cells holding text render
// their rune; cells holding pixels render the braille pattern; empty cells
// render as spaces. Trailing spaces are trimmed per line.
func (c *Canvas) Frame() string {
	var sb strings.Builder
	line := make([]rune, c.cols)
	for row := 0; row < c.rows; row++ {
		for col := 0; col < c.cols; col++ {
			switch cell := row*c.cols + col; {
			case c.text[cell] != 0:
				line[col] = c.text[cell]
			case c.dots[cell] != 0:
				line[col] = brailleBase + c.dots[cell]
			default:
				line[col] = ' '
			}
		}
		sb.WriteString(strings.TrimRight(string(line), " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
