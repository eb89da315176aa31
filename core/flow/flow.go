// Package flow renders a frozen topology as a text diagram.
//
// Actors are laid out top-to-bottom by their longest-path layer and
// left-to-right in registration order. Each actor renders as three stacked
// label rows (inbound ports, actor name, outbound ports); edges are drawn
// between port labels as braille dot lines routed downward through the
// spacer rows between layers.
package flow

import (
	"strings"

	"github.com/farm-ng/hollywood/core/graph"
	"github.com/farm-ng/hollywood/internal/canvas"
)

const (
	// tokenWidth is the number of characters available for one label.
	tokenWidth = 16
	// cellWidth is a label plus its bracket characters.
	cellWidth = tokenWidth + 2
	// rowsPerLayer: inbound, actor, outbound, then three spacer rows the
	// edge lines are routed through.
	rowsPerLayer = 6
)

// Render draws the flow graph of a frozen topology. Rendering is
// deterministic: the same topology always yields the same text block.
// An unfrozen topology renders as an empty string, since no layering has
// been computed yet.
func Render(t *graph.Topology) string {
	if !t.Frozen() {
		return ""
	}
	layers := t.Layers()

	maxWidth := 0
	for _, layer := range layers {
		w := 0
		for _, n := range layer {
			w += nodeWidth(n)
		}
		if w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth == 0 {
		return ""
	}

	c := canvas.New(maxWidth*cellWidth, len(layers)*rowsPerLayer)

	// cell column of every port label, for edge routing
	portCol := make(map[*graph.Port]int)

	for layerIdx, layer := range layers {
		base := layerIdx * rowsPerLayer
		cursor := 0
		for _, n := range layer {
			w := nodeWidth(n)

			inbound := n.Inbound()
			pad := (w - len(inbound)) / 2
			for i, p := range inbound {
				col := cursor + pad + i
				portCol[p] = col
				c.WriteText(col*cellWidth, base, label(p.Name(), bracket(i, len(inbound), '|')))
			}

			actorCol := cursor + (w-1)/2
			c.WriteText(actorCol*cellWidth, base+1, label(n.Name(), [2]byte{'*', '*'}))

			outbound := n.Outbound()
			pad = (w - len(outbound)) / 2
			for i, p := range outbound {
				col := cursor + pad + i
				portCol[p] = col
				c.WriteText(col*cellWidth, base+2, label(p.Name(), bracket(i, len(outbound), '|')))
			}

			cursor += w
		}
	}

	drawConnection := func(from, to *graph.Port) {
		fromCol, ok := portCol[from]
		if !ok {
			return
		}
		toCol, ok := portCol[to]
		if !ok {
			return
		}
		// start just below the outbound label, end just above the inbound
		// label; the spacer rows keep lines clear of unrelated labels
		startRow := from.Node().Layer()*rowsPerLayer + 3
		endRow := to.Node().Layer()*rowsPerLayer - 1
		if endRow < 0 {
			endRow = 0
		}
		x0 := (fromCol*cellWidth + tokenWidth/2) * 2
		x1 := (toCol*cellWidth + tokenWidth/2) * 2
		c.Line(x0, startRow*4, x1, endRow*4)
	}

	for _, e := range t.Edges() {
		drawConnection(e.From(), e.To())
	}
	for _, l := range t.Links() {
		drawConnection(l.From(), l.To())
	}

	return c.Frame()
}

func nodeWidth(n *graph.Node) int {
	w := len(n.Inbound())
	if o := len(n.Outbound()); o > w {
		w = o
	}
	if w == 0 {
		w = 1
	}
	return w
}

func bracket(i, total int, b byte) [2]byte {
	left, right := byte(' '), byte(' ')
	if i == 0 {
		left = b
	}
	if i == total-1 {
		right = b
	}
	return [2]byte{left, right}
}

// label fits s into exactly cellWidth characters: truncated if longer than
// tokenWidth, centered otherwise, wrapped in the bracket pair.
func label(s string, b [2]byte) string {
	if len(s) > tokenWidth {
		s = s[:tokenWidth]
	} else {
		extra := tokenWidth - len(s)
		left := extra / 2
		s = strings.Repeat(" ", left) + s + strings.Repeat(" ", extra-left)
	}
	return string(b[0]) + s + string(b[1])
}
