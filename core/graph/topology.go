package graph

import (
	"fmt"
	"reflect"

	"github.com/farm-ng/hollywood/core/reflector"
)

// PortKind distinguishes feed-forward data ports from request-reply ports.
type PortKind int

const (
	// DataPort carries one-way messages along feed-forward edges.
	DataPort PortKind = iota
	// RequestPort carries request-reply calls along links.
	RequestPort
)

// Dir is the direction of a port relative to its owning actor.
type Dir int

const (
	// In marks a consuming port.
	In Dir = iota
	// Out marks a producing port.
	Out
)

func (d Dir) String() string {
	if d == In {
		return "inbound"
	}
	return "outbound"
}

// Port is a typed, named endpoint owned by exactly one node.
type Port struct {
	node *Node
	name string
	kind PortKind
	dir  Dir

	// message type; for request ports this is the request type
	typ reflect.Type
	// reply type, set for request ports only
	reply reflect.Type
}

func (p *Port) Name() string       { return p.name }
func (p *Port) Node() *Node        { return p.node }
func (p *Port) Kind() PortKind     { return p.kind }
func (p *Port) Dir() Dir           { return p.dir }
func (p *Port) Type() reflect.Type { return p.typ }

// ReplyType returns the reply message type of a request port, nil otherwise.
func (p *Port) ReplyType() reflect.Type { return p.reply }

func (p *Port) String() string {
	return fmt.Sprintf("%s/%s", p.node.name, p.name)
}

// Node is one actor in the topology.
type Node struct {
	topo  *Topology
	id    int
	name  string
	layer int

	inbound  []*Port
	outbound []*Port
}

func (n *Node) Name() string { return n.name }

// ID is the registration index of the node, stable for the lifetime of the
// topology. Registration order breaks layering ties in the visualizer.
func (n *Node) ID() int { return n.id }

// Layer is the longest-path layer assigned by [Topology.Freeze]. It is zero
// before the topology is frozen.
func (n *Node) Layer() int { return n.layer }

// Inbound returns the node's consuming ports in declaration order. The
// returned slice must not be modified.
func (n *Node) Inbound() []*Port { return n.inbound }

// Outbound returns the node's producing ports in declaration order. The
// returned slice must not be modified.
func (n *Node) Outbound() []*Port { return n.outbound }

// AddInbound declares a consuming data port carrying messages of type t.
func (n *Node) AddInbound(name string, t reflect.Type) (*Port, error) {
	return n.addPort(name, DataPort, In, t, nil)
}

// AddOutbound declares a producing data port carrying messages of type t.
func (n *Node) AddOutbound(name string, t reflect.Type) (*Port, error) {
	return n.addPort(name, DataPort, Out, t, nil)
}

// AddInRequest declares a port on which the node serves request-reply calls.
func (n *Node) AddInRequest(name string, req, reply reflect.Type) (*Port, error) {
	return n.addPort(name, RequestPort, In, req, reply)
}

// AddOutRequest declares a port through which the node issues request-reply
// calls to another actor.
func (n *Node) AddOutRequest(name string, req, reply reflect.Type) (*Port, error) {
	return n.addPort(name, RequestPort, Out, req, reply)
}

func (n *Node) addPort(name string, kind PortKind, dir Dir, t, reply reflect.Type) (*Port, error) {
	if n.topo.frozen {
		return nil, ErrFrozen
	}
	// Port names share one namespace per node and direction, regardless of
	// kind, so the flow graph can label them unambiguously.
	for _, p := range n.ports(dir) {
		if p.name == name {
			return nil, fmt.Errorf("%w: %s port %q on actor %q", ErrDuplicatePort, dir, name, n.name)
		}
	}
	p := &Port{node: n, name: name, kind: kind, dir: dir, typ: t, reply: reply}
	if dir == In {
		n.inbound = append(n.inbound, p)
	} else {
		n.outbound = append(n.outbound, p)
	}
	return p, nil
}

func (n *Node) ports(dir Dir) []*Port {
	if dir == In {
		return n.inbound
	}
	return n.outbound
}

// Edge is a validated feed-forward connection from an outbound data port to
// an inbound data port.
type Edge struct {
	id   int
	from *Port
	to   *Port
}

func (e *Edge) From() *Port { return e.from }
func (e *Edge) To() *Port   { return e.to }

func (e *Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.from, e.to)
}

// Link is a request-reply association between an out-request port and an
// in-request port. Links are exempt from the acyclicity check.
type Link struct {
	id   int
	from *Port
	to   *Port
}

func (l *Link) From() *Port { return l.from }
func (l *Link) To() *Port   { return l.to }

func (l *Link) String() string {
	return fmt.Sprintf("%s ?-> %s", l.from, l.to)
}

// Topology is the collection of nodes, ports, edges and links that makes up
// a compute graph. It is not safe for concurrent mutation; after a
// successful [Topology.Freeze] it is read-only and safe to share.
type Topology struct {
	nodes  []*Node
	byName map[string]*Node
	edges  []*Edge
	links  []*Link

	frozen bool
	order  []*Node
	layers [][]*Node
}

// NewTopology returns an empty, mutable topology.
func NewTopology() *Topology {
	return &Topology{byName: make(map[string]*Node)}
}

// AddNode registers a new actor node. The name hint is suffixed with a
// counter to produce a unique node name (the first "period" node becomes
// "period_0").
func (t *Topology) AddNode(nameHint string) (*Node, error) {
	if t.frozen {
		return nil, ErrFrozen
	}
	name := ""
	for i := 0; ; i++ {
		name = fmt.Sprintf("%s_%d", nameHint, i)
		if _, taken := t.byName[name]; !taken {
			break
		}
	}
	n := &Node{topo: t, id: len(t.nodes), name: name}
	t.nodes = append(t.nodes, n)
	t.byName[name] = n
	return n, nil
}

// Node looks up a node by its unique name.
func (t *Topology) Node(name string) (*Node, bool) {
	n, ok := t.byName[name]
	return n, ok
}

func (t *Topology) Nodes() []*Node { return t.nodes }
func (t *Topology) Edges() []*Edge { return t.edges }
func (t *Topology) Links() []*Link { return t.links }

// Connect adds a feed-forward edge from an outbound data port to an inbound
// data port of another actor. Both ports must carry the same message type.
// On failure the topology is left unchanged.
func (t *Topology) Connect(from, to *Port) (*Edge, error) {
	if t.frozen {
		return nil, ErrFrozen
	}
	if err := t.checkPair(from, to, DataPort); err != nil {
		return nil, err
	}
	if from.typ != to.typ {
		return nil, fmt.Errorf("%w: %s sends %s, %s expects %s",
			ErrTypeMismatch,
			from, reflector.TypeInfoForType(from.typ).Name,
			to, reflector.TypeInfoForType(to.typ).Name)
	}
	e := &Edge{id: len(t.edges), from: from, to: to}
	t.edges = append(t.edges, e)
	return e, nil
}

// ConnectAdapter adds a feed-forward edge whose endpoint types differ; the
// caller is responsible for converting messages en route (see the adapter
// connect in core/pipeline). All other validation matches [Topology.Connect].
func (t *Topology) ConnectAdapter(from, to *Port) (*Edge, error) {
	if t.frozen {
		return nil, ErrFrozen
	}
	if err := t.checkPair(from, to, DataPort); err != nil {
		return nil, err
	}
	e := &Edge{id: len(t.edges), from: from, to: to}
	t.edges = append(t.edges, e)
	return e, nil
}

// ConnectRequest adds a request-reply link from an out-request port to an
// in-request port. Request and reply types must match pairwise. Links do
// not participate in the cycle check.
func (t *Topology) ConnectRequest(from, to *Port) (*Link, error) {
	if t.frozen {
		return nil, ErrFrozen
	}
	if err := t.checkPair(from, to, RequestPort); err != nil {
		return nil, err
	}
	if from.typ != to.typ || from.reply != to.reply {
		return nil, fmt.Errorf("%w: %s is (%s -> %s), %s is (%s -> %s)",
			ErrTypeMismatch,
			from, reflector.TypeInfoForType(from.typ).Name, reflector.TypeInfoForType(from.reply).Name,
			to, reflector.TypeInfoForType(to.typ).Name, reflector.TypeInfoForType(to.reply).Name)
	}
	l := &Link{id: len(t.links), from: from, to: to}
	t.links = append(t.links, l)
	return l, nil
}

func (t *Topology) checkPair(from, to *Port, kind PortKind) error {
	if from == nil || to == nil {
		return fmt.Errorf("%w: nil port", ErrUnknownPort)
	}
	if from.node == nil || from.node.topo != t {
		return fmt.Errorf("%w: %s belongs to a different topology", ErrUnknownPort, from)
	}
	if to.node == nil || to.node.topo != t {
		return fmt.Errorf("%w: %s belongs to a different topology", ErrUnknownPort, to)
	}
	if from.dir != Out || from.kind != kind {
		return fmt.Errorf("%w: %s is not a producing port of the required kind", ErrUnknownPort, from)
	}
	if to.dir != In || to.kind != kind {
		return fmt.Errorf("%w: %s is not a consuming port of the required kind", ErrUnknownPort, to)
	}
	if from.node == to.node {
		return fmt.Errorf("%w: %s and %s", ErrSelfConnect, from, to)
	}
	return nil
}

// Frozen reports whether the topology has been finalized.
func (t *Topology) Frozen() bool { return t.frozen }

// Order returns the topological order computed by [Topology.Freeze].
func (t *Topology) Order() []*Node { return t.order }

// Layers returns the longest-path layering computed by [Topology.Freeze]:
// layer i holds every node whose longest path from a source has length i,
// in registration order.
func (t *Topology) Layers() [][]*Node { return t.layers }
