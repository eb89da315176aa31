package flow

import (
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/farm-ng/hollywood/core/graph"
)

func buildTopology(t *testing.T) *graph.Topology {
	t.Helper()
	topo := graph.NewTopology()
	f64 := reflect.TypeOf(float64(0))

	src, err := topo.AddNode("periodic")
	require.NoError(t, err)
	avg, err := topo.AddNode("moving_average")
	require.NoError(t, err)
	sink, err := topo.AddNode("printer")
	require.NoError(t, err)

	ts, err := src.AddOutbound("time_stamp", f64)
	require.NoError(t, err)
	value, err := avg.AddInbound("value", f64)
	require.NoError(t, err)
	average, err := avg.AddOutbound("average", f64)
	require.NoError(t, err)
	printable, err := sink.AddInbound("printable", f64)
	require.NoError(t, err)

	_, err = topo.Connect(ts, value)
	require.NoError(t, err)
	_, err = topo.Connect(average, printable)
	require.NoError(t, err)
	return topo
}

func TestRender_unfrozen_is_empty(t *testing.T) {
	topo := buildTopology(t)
	require.Empty(t, Render(topo))
}

func TestRender_contains_actors_and_ports(t *testing.T) {
	topo := buildTopology(t)
	require.NoError(t, topo.Freeze())

	out := Render(topo)
	for _, want := range []string{
		"*   periodic_0   *",
		"*moving_average_0*",
		"*   printer_0    *",
		"|   time_stamp   |",
		"|     value      |",
		"|    average     |",
		"|   printable    |",
	} {
		require.Contains(t, out, want)
	}
}

func TestRender_layers_top_to_bottom(t *testing.T) {
	topo := buildTopology(t)
	require.NoError(t, topo.Freeze())

	out := Render(topo)
	srcAt := strings.Index(out, "periodic_0")
	avgAt := strings.Index(out, "moving_average_")
	sinkAt := strings.Index(out, "printer_0")
	require.Less(t, srcAt, avgAt)
	require.Less(t, avgAt, sinkAt)
}

func TestRender_idempotent(t *testing.T) {
	topo := buildTopology(t)
	require.NoError(t, topo.Freeze())

	first := Render(topo)
	second := Render(topo)
	require.Equal(t, first, second)
}

func TestRender_draws_edge_lines(t *testing.T) {
	topo := buildTopology(t)
	require.NoError(t, topo.Freeze())

	out := Render(topo)
	var dots int
	for _, r := range out {
		if r >= 0x2800 && r <= 0x28ff {
			dots++
		}
	}
	require.Positive(t, dots, "edges render as braille dots")
}
