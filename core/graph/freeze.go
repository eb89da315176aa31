package graph

// Freeze finalizes the topology. It verifies that the feed-forward subgraph
// (data edges only, request-reply links are exempt) is acyclic and computes
// the topological order and longest-path layering used by the scheduler and
// the flow-graph renderer. Freeze is idempotent; after the first successful
// call every mutating operation fails with [ErrFrozen].
func (t *Topology) Freeze() error {
	if t.frozen {
		return nil
	}

	succ := make([][]int, len(t.nodes))
	indeg := make([]int, len(t.nodes))
	for _, e := range t.edges {
		from, to := e.from.node.id, e.to.node.id
		succ[from] = append(succ[from], to)
		indeg[to]++
	}

	// Kahn's algorithm. The ready queue is kept in registration order so
	// the resulting order and layering are deterministic.
	order := make([]*Node, 0, len(t.nodes))
	layer := make([]int, len(t.nodes))
	queue := make([]int, 0, len(t.nodes))
	deg := append([]int(nil), indeg...)
	for id := range t.nodes {
		if deg[id] == 0 {
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, t.nodes[id])
		for _, next := range succ[id] {
			if l := layer[id] + 1; l > layer[next] {
				layer[next] = l
			}
			deg[next]--
			if deg[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(order) != len(t.nodes) {
		return &CycleError{Actors: t.findCycle(deg)}
	}

	maxLayer := 0
	for _, n := range t.nodes {
		n.layer = layer[n.id]
		if n.layer > maxLayer {
			maxLayer = n.layer
		}
	}
	layers := make([][]*Node, maxLayer+1)
	for _, n := range t.nodes { // registration order within each layer
		layers[n.layer] = append(layers[n.layer], n)
	}

	t.order = order
	t.layers = layers
	t.frozen = true
	return nil
}

// findCycle extracts one cycle from the subgraph of nodes that Kahn's
// algorithm could not retire (deg > 0). Every such node keeps at least one
// unretired predecessor, so walking predecessors must revisit a node.
func (t *Topology) findCycle(deg []int) []string {
	pred := make([][]int, len(t.nodes))
	for _, e := range t.edges {
		from, to := e.from.node.id, e.to.node.id
		if deg[from] > 0 && deg[to] > 0 {
			pred[to] = append(pred[to], from)
		}
	}

	start := -1
	for id := range t.nodes {
		if deg[id] > 0 {
			start = id
			break
		}
	}
	if start < 0 {
		return nil
	}

	visitedAt := make(map[int]int)
	path := []int{}
	cur := start
	for {
		if at, seen := visitedAt[cur]; seen {
			loop := append(path[at:], cur)
			// path was collected against edge direction
			names := make([]string, len(loop))
			for i, id := range loop {
				names[len(loop)-1-i] = t.nodes[id].name
			}
			return names
		}
		visitedAt[cur] = len(path)
		path = append(path, cur)
		cur = pred[cur][0]
	}
}
