package actors

import (
	"cmp"
	"container/heap"

	"github.com/farm-ng/hollywood/core/pipeline"
)

// ZipPair carries one value into a zip actor together with the key that
// associates it with values arriving on the other inbound ports.
type ZipPair[K cmp.Ordered, V any] struct {
	Key   K
	Value V
}

// Tuple2 is the output of a [Zip2] actor: the shared key and one value from
// each inbound port.
type Tuple2[K cmp.Ordered, A, B any] struct {
	Key   K
	Item0 A
	Item1 B
}

// Tuple3 is the output of a [Zip3] actor.
type Tuple3[K cmp.Ordered, A, B, C any] struct {
	Key   K
	Item0 A
	Item1 B
	Item2 C
}

// pairHeap is a min-heap of pending pairs ordered by key. It buffers values
// that arrived out of key order until their counterparts show up.
type pairHeap[K cmp.Ordered, V any] []ZipPair[K, V]

func (h pairHeap[K, V]) Len() int           { return len(h) }
func (h pairHeap[K, V]) Less(i, j int) bool { return h[i].Key < h[j].Key }
func (h pairHeap[K, V]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *pairHeap[K, V]) Push(x any) { *h = append(*h, x.(ZipPair[K, V])) }

func (h *pairHeap[K, V]) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]
	return p
}

func (h *pairHeap[K, V]) push(p ZipPair[K, V]) { heap.Push(h, p) }
func (h *pairHeap[K, V]) pop() ZipPair[K, V]   { return heap.Pop(h).(ZipPair[K, V]) }
func (h pairHeap[K, V]) front() K              { return h[0].Key }

// Zip2State buffers pending pairs per inbound port.
type Zip2State[K cmp.Ordered, A, B any] struct {
	item0 pairHeap[K, A]
	item1 pairHeap[K, B]
}

// Zip2Actor is the port surface of a registered two-way zip actor.
type Zip2Actor[K cmp.Ordered, A, B any] struct {
	Handle *pipeline.Handle[struct{}, Zip2State[K, A, B]]

	// Item0 and Item1 consume the keyed input streams.
	Item0 *pipeline.Inbound[ZipPair[K, A]]
	Item1 *pipeline.Inbound[ZipPair[K, B]]
	// Zipped emits one tuple per key present on both inputs.
	Zipped *pipeline.Outbound[Tuple2[K, A, B]]
}

// Zip2 registers a key-ordered join over two inbound streams: whenever both
// ports hold a pair with the lowest outstanding key, the two values are
// emitted together on the zipped port. A lowest key present on only one
// port is discarded once the other port has moved past it, so the output
// keys are strictly increasing.
func Zip2[K cmp.Ordered, A, B any](b *pipeline.Builder) *Zip2Actor[K, A, B] {
	h := pipeline.Register(b, "zip2", struct{}{}, Zip2State[K, A, B]{})
	zipped := pipeline.OutboundPort[Tuple2[K, A, B]](h, "zipped")

	match := func(ctx *pipeline.Ctx, s *Zip2State[K, A, B]) error {
		for len(s.item0) > 0 && len(s.item1) > 0 {
			k0, k1 := s.item0.front(), s.item1.front()
			low := min(k0, k1)
			if k0 == low && k1 == low {
				p0, p1 := s.item0.pop(), s.item1.pop()
				err := zipped.Send(ctx, Tuple2[K, A, B]{Key: low, Item0: p0.Value, Item1: p1.Value})
				if err != nil {
					return err
				}
				continue
			}
			if k0 == low {
				s.item0.pop()
			}
			if k1 == low {
				s.item1.pop()
			}
		}
		return nil
	}

	item0 := pipeline.InboundPort(h, "item0",
		func(ctx *pipeline.Ctx, _ struct{}, s *Zip2State[K, A, B], p ZipPair[K, A]) error {
			s.item0.push(p)
			return match(ctx, s)
		})
	item1 := pipeline.InboundPort(h, "item1",
		func(ctx *pipeline.Ctx, _ struct{}, s *Zip2State[K, A, B], p ZipPair[K, B]) error {
			s.item1.push(p)
			return match(ctx, s)
		})

	return &Zip2Actor[K, A, B]{Handle: h, Item0: item0, Item1: item1, Zipped: zipped}
}

// Zip3State buffers pending pairs per inbound port.
type Zip3State[K cmp.Ordered, A, B, C any] struct {
	item0 pairHeap[K, A]
	item1 pairHeap[K, B]
	item2 pairHeap[K, C]
}

// Zip3Actor is the port surface of a registered three-way zip actor.
type Zip3Actor[K cmp.Ordered, A, B, C any] struct {
	Handle *pipeline.Handle[struct{}, Zip3State[K, A, B, C]]

	Item0 *pipeline.Inbound[ZipPair[K, A]]
	Item1 *pipeline.Inbound[ZipPair[K, B]]
	Item2 *pipeline.Inbound[ZipPair[K, C]]
	// Zipped emits one tuple per key present on all three inputs.
	Zipped *pipeline.Outbound[Tuple3[K, A, B, C]]
}

// Zip3 registers a key-ordered join over three inbound streams; see [Zip2]
// for the matching rules.
func Zip3[K cmp.Ordered, A, B, C any](b *pipeline.Builder) *Zip3Actor[K, A, B, C] {
	h := pipeline.Register(b, "zip3", struct{}{}, Zip3State[K, A, B, C]{})
	zipped := pipeline.OutboundPort[Tuple3[K, A, B, C]](h, "zipped")

	match := func(ctx *pipeline.Ctx, s *Zip3State[K, A, B, C]) error {
		for len(s.item0) > 0 && len(s.item1) > 0 && len(s.item2) > 0 {
			k0, k1, k2 := s.item0.front(), s.item1.front(), s.item2.front()
			low := min(k0, k1, k2)
			if k0 == low && k1 == low && k2 == low {
				p0, p1, p2 := s.item0.pop(), s.item1.pop(), s.item2.pop()
				err := zipped.Send(ctx, Tuple3[K, A, B, C]{
					Key: low, Item0: p0.Value, Item1: p1.Value, Item2: p2.Value,
				})
				if err != nil {
					return err
				}
				continue
			}
			if k0 == low {
				s.item0.pop()
			}
			if k1 == low {
				s.item1.pop()
			}
			if k2 == low {
				s.item2.pop()
			}
		}
		return nil
	}

	item0 := pipeline.InboundPort(h, "item0",
		func(ctx *pipeline.Ctx, _ struct{}, s *Zip3State[K, A, B, C], p ZipPair[K, A]) error {
			s.item0.push(p)
			return match(ctx, s)
		})
	item1 := pipeline.InboundPort(h, "item1",
		func(ctx *pipeline.Ctx, _ struct{}, s *Zip3State[K, A, B, C], p ZipPair[K, B]) error {
			s.item1.push(p)
			return match(ctx, s)
		})
	item2 := pipeline.InboundPort(h, "item2",
		func(ctx *pipeline.Ctx, _ struct{}, s *Zip3State[K, A, B, C], p ZipPair[K, C]) error {
			s.item2.push(p)
			return match(ctx, s)
		})

	return &Zip3Actor[K, A, B, C]{Handle: h, Item0: item0, Item1: item1, Item2: item2, Zipped: zipped}
}
