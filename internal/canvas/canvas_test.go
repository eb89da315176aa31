package canvas

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanvas_single_pixel(t *testing.T) {
	c := New(2, 1)
	c.SetPixel(0, 0)

	// top-left dot of the first braille cell
	require.Equal(t, "⠁\n", c.Frame())
}

func TestCanvas_vertical_line_fills_one_cell(t *testing.T) {
	c := New(1, 1)
	c.Line(0, 0, 0, 3)

	// all four dots of the left column
	require.Equal(t, string(rune(0x2800|0x01|0x02|0x04|0x40))+"\n", c.Frame())
}

func TestCanvas_line_endpoints_set(t *testing.T) {
	c := New(10, 4)
	c.Line(2, 1, 17, 14)

	require.True(t, pixelSet(c, 2, 1))
	require.True(t, pixelSet(c, 17, 14))
}

func TestCanvas_text_wins_over_dots(t *testing.T) {
	c := New(4, 1)
	c.Line(0, 0, 7, 0)
	c.WriteText(1, 0, "ab")

	frame := strings.TrimRight(c.Frame(), "\n")
	require.Equal(t, 'a', []rune(frame)[1])
	require.Equal(t, 'b', []rune(frame)[2])
	require.NotEqual(t, ' ', []rune(frame)[0], "dots still visible outside text")
}

func TestCanvas_out_of_range_ignored(t *testing.T) {
	c := New(2, 2)
	c.SetPixel(-1, 0)
	c.SetPixel(0, -4)
	c.SetPixel(100, 0)
	c.WriteText(0, 99, "clipped")

	require.Equal(t, "\n\n", c.Frame())
}

func pixelSet(c *Canvas, x, y int) bool {
	col, row := x/2, y/4
	return c.dots[row*c.cols+col]&brailleBits[x%2][y%4] != 0
}
