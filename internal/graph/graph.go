// Package graph builds the weighted undirected address-relationship graph
// used for community detection: funding edges between token sources and
// their recipients, and coordinated-swap edges between initiators acting in
// lockstep.
package graph

import (
	"evm-token-lab/internal/evmaddr"
)

// Edge types and their fixed weights.
const (
	EdgeSourceFunding   = "source_funding"
	EdgeMintFunding     = "mint_funding"
	EdgeCoordinatedSwap = "coordinated_swap"

	WeightFunding         = 5.0
	WeightCoordinatedSwap = 10.0
)

// Node is one address in the relationship graph.
type Node struct {
	Address   string // lowercase hex
	IsSource  bool   // received the initial zero-address transfer or initiated a mint
	IsSwapper bool   // appeared as a swap initiator
	SwapCount int    // classified swap rows this address initiated
}

// Edge is one typed relationship between two addresses. A and B are stored
// in lexical order; From/To preserve the direction of the creating event.
type Edge struct {
	A, B   string  // endpoints, A < B
	From   string  // funding origin or first coordinated initiator
	To     string  // funding recipient or second coordinated initiator
	Type   string  // source_funding | mint_funding | coordinated_swap
	Weight float64 // fixed per edge type
	Block  int64   // block of the creating event
	Action string  // coordinated action label, empty for funding edges
	Value  float64 // value of the creating event
}

type edgeKey struct {
	a, b     string
	edgeType string
}

// AddressGraph is an undirected weighted multigraph over addresses.
// Excluded addresses (the token contract, its pool, the zero address) never
// become nodes. Iteration order over nodes and edges is insertion order, so
// identical input sequences produce identical graphs.
type AddressGraph struct {
	nodes     map[string]*Node
	nodeOrder []string
	edges     map[edgeKey]*Edge
	edgeOrder []edgeKey
	excluded  map[string]struct{}
}

// NewAddressGraph creates an empty graph with the given excluded addresses.
func NewAddressGraph(excluded ...string) *AddressGraph {
	ex := make(map[string]struct{}, len(excluded)+1)
	ex[evmaddr.Zero] = struct{}{}
	for _, addr := range excluded {
		if a := evmaddr.Normalize(addr); a != "" {
			ex[a] = struct{}{}
		}
	}
	return &AddressGraph{
		nodes:    make(map[string]*Node),
		edges:    make(map[edgeKey]*Edge),
		excluded: ex,
	}
}

// Excluded reports whether an address may never become a node.
func (g *AddressGraph) Excluded(addr string) bool {
	if addr == "" {
		return true
	}
	_, ok := g.excluded[addr]
	return ok
}

// EnsureNode registers an address as a node, returning nil for excluded or
// empty addresses. Repeated calls return the existing node.
func (g *AddressGraph) EnsureNode(addr string) *Node {
	if g.Excluded(addr) {
		return nil
	}
	if n, ok := g.nodes[addr]; ok {
		return n
	}
	n := &Node{Address: addr}
	g.nodes[addr] = n
	g.nodeOrder = append(g.nodeOrder, addr)
	return n
}

// Node returns the node for an address, or nil.
func (g *AddressGraph) Node(addr string) *Node {
	return g.nodes[addr]
}

// AddEdge adds a typed edge between two addresses. The call is idempotent
// per (pair, type) key: the first creation wins and later calls keep its
// metadata. Edges to excluded addresses or self-loops are ignored.
func (g *AddressGraph) AddEdge(from, to, edgeType string, weight float64, block int64, action string, value float64) *Edge {
	if from == to {
		return nil
	}
	// Neither endpoint may register as a node on a dropped edge.
	if g.Excluded(from) || g.Excluded(to) {
		return nil
	}
	nFrom := g.EnsureNode(from)
	nTo := g.EnsureNode(to)
	if nFrom == nil || nTo == nil {
		return nil
	}

	a, b := from, to
	if b < a {
		a, b = b, a
	}
	key := edgeKey{a, b, edgeType}
	if e, ok := g.edges[key]; ok {
		return e
	}
	e := &Edge{
		A: a, B: b,
		From: from, To: to,
		Type:   edgeType,
		Weight: weight,
		Block:  block,
		Action: action,
		Value:  value,
	}
	g.edges[key] = e
	g.edgeOrder = append(g.edgeOrder, key)
	return e
}

// Nodes returns all nodes in insertion order.
func (g *AddressGraph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodeOrder))
	for _, addr := range g.nodeOrder {
		out = append(out, g.nodes[addr])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *AddressGraph) Edges() []*Edge {
	out := make([]*Edge, 0, len(g.edgeOrder))
	for _, key := range g.edgeOrder {
		out = append(out, g.edges[key])
	}
	return out
}

// EdgesOf returns all edges incident to an address, in insertion order.
func (g *AddressGraph) EdgesOf(addr string) []*Edge {
	var out []*Edge
	for _, key := range g.edgeOrder {
		if key.a == addr || key.b == addr {
			out = append(out, g.edges[key])
		}
	}
	return out
}

// EdgeBetween returns the edge of the given type between two addresses, or
// nil.
func (g *AddressGraph) EdgeBetween(x, y, edgeType string) *Edge {
	a, b := x, y
	if b < a {
		a, b = b, a
	}
	return g.edges[edgeKey{a, b, edgeType}]
}

// NodeCount returns the number of registered nodes.
func (g *AddressGraph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct (pair, type) edges.
func (g *AddressGraph) EdgeCount() int { return len(g.edges) }

// HasEdges reports whether any relationship was found at all.
func (g *AddressGraph) HasEdges() bool { return len(g.edges) > 0 }
