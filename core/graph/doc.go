// Package graph holds the static topology of a compute pipeline: actors
// (nodes), their named typed ports, feed-forward edges and request-reply
// links.
//
// A [Topology] is mutable while the pipeline is being configured and
// becomes immutable once [Topology.Freeze] succeeds. Freeze validates that
// the feed-forward subgraph is acyclic (request-reply links are exempt,
// they are the sanctioned mechanism for feedback) and computes a
// topological order plus a longest-path layering. Both are consumed by the
// scheduler in core/pipeline and by the renderer in core/flow.
//
// All connection errors are detected at configuration time:
//
//   - [ErrTypeMismatch]: outbound and inbound port carry different types
//   - [ErrUnknownPort]: a port does not belong to a registered node
//   - [ErrDuplicatePort]: a port name is reused within one node
//   - [ErrCycleDetected]: the feed-forward subgraph contains a cycle
//
// A failed operation never partially mutates the topology.
package graph
