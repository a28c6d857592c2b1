// Package lattice builds the redundancy lattice: the antichains over the
// non-empty subsets of n sources, ordered so that a node lies below another
// when it is a refinement of it.
//
// Nodes live in an arena addressed by NodeID. IDs are assigned in a
// bottom-up topological order: every node's strict down-set has smaller IDs,
// the bottom node {{1},...,{n}} is ID 0 and the top node {{1,...,n}} has the
// largest ID.
package lattice

import (
	"fmt"
	"sort"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

// Supported source counts.
const (
	MinSources = 1
	MaxSources = 4
)

// NodeID addresses a node in Lattice.Nodes.
type NodeID int

// Node is one antichain of the lattice with its order relations.
type Node struct {
	ID        NodeID
	Antichain Antichain
	Label     string

	// Children are the nodes this one covers (one refinement step down).
	Children []NodeID
	// Parents are the nodes covering this one.
	Parents []NodeID
	// Below is the strict down-set, ascending.
	Below []NodeID
}

// Lattice is an immutable redundancy lattice for a fixed number of sources.
type Lattice struct {
	n       int
	Nodes   []Node
	byLabel map[string]NodeID
}

// Build enumerates the redundancy lattice for n sources.
func Build(n int) (*Lattice, error) {
	if n < MinSources || n > MaxSources {
		return nil, fmt.Errorf("lattice for %d sources (supported %d-%d): %w",
			n, MinSources, MaxSources, internalerr.ErrUnsupportedSources)
	}

	chains := enumerate(n)
	size := len(chains)

	// leq[i][j]: chains[i] ≼ chains[j]
	leq := make([][]bool, size)
	for i := range chains {
		leq[i] = make([]bool, size)
		for j := range chains {
			leq[i][j] = chains[i].Below(chains[j])
		}
	}

	// A strict down-set grows strictly along the order, so sorting by its
	// size yields a linear extension.
	downCount := make([]int, size)
	for j := 0; j < size; j++ {
		for i := 0; i < size; i++ {
			if i != j && leq[i][j] {
				downCount[j]++
			}
		}
	}
	perm := make([]int, size)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		if downCount[perm[a]] != downCount[perm[b]] {
			return downCount[perm[a]] < downCount[perm[b]]
		}
		return chains[perm[a]].String() < chains[perm[b]].String()
	})

	l := &Lattice{
		n:       n,
		Nodes:   make([]Node, size),
		byLabel: make(map[string]NodeID, size),
	}
	for id, src := range perm {
		label := chains[src].String()
		l.Nodes[id] = Node{ID: NodeID(id), Antichain: chains[src], Label: label}
		l.byLabel[label] = NodeID(id)
	}

	below := func(a, b int) bool { return a != b && leq[perm[a]][perm[b]] }
	for j := 0; j < size; j++ {
		node := &l.Nodes[j]
		for i := 0; i < j; i++ {
			if below(i, j) {
				node.Below = append(node.Below, NodeID(i))
			}
		}
		for _, i := range node.Below {
			covered := true
			for _, k := range node.Below {
				if below(int(i), int(k)) {
					covered = false
					break
				}
			}
			if covered {
				node.Children = append(node.Children, i)
				l.Nodes[i].Parents = append(l.Nodes[i].Parents, NodeID(j))
			}
		}
	}

	return l, nil
}

// NumSources returns the number of sources the lattice was built for.
func (l *Lattice) NumSources() int { return l.n }

// Len returns the number of nodes.
func (l *Lattice) Len() int { return len(l.Nodes) }

// Bottom returns the least node {{1},...,{n}}.
func (l *Lattice) Bottom() NodeID { return 0 }

// Top returns the greatest node {{1,...,n}}.
func (l *Lattice) Top() NodeID { return NodeID(len(l.Nodes) - 1) }

// Node returns the node with the given ID.
func (l *Lattice) Node(id NodeID) (*Node, error) {
	if id < 0 || int(id) >= len(l.Nodes) {
		return nil, fmt.Errorf("lattice node %d of %d: %w", id, len(l.Nodes), internalerr.ErrNotFound)
	}
	return &l.Nodes[id], nil
}

// Label returns the antichain label of a node, "" if the ID is unknown.
func (l *Lattice) Label(id NodeID) string {
	if id < 0 || int(id) >= len(l.Nodes) {
		return ""
	}
	return l.Nodes[id].Label
}

// Lookup finds a node by antichain label. Any spelling accepted by
// ParseAntichain works.
func (l *Lattice) Lookup(label string) (NodeID, error) {
	if id, ok := l.byLabel[label]; ok {
		return id, nil
	}
	a, err := ParseAntichain(label)
	if err != nil {
		return 0, err
	}
	if id, ok := l.byLabel[a.String()]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("lattice node %s for %d sources: %w", label, l.n, internalerr.ErrNotFound)
}

// Leq reports whether node a lies below or at node b.
func (l *Lattice) Leq(a, b NodeID) bool {
	return l.Nodes[a].Antichain.Below(l.Nodes[b].Antichain)
}

// enumerate lists every non-empty antichain over the non-empty subsets of
// n sources.
func enumerate(n int) []Antichain {
	coalitions := make([]Coalition, 0, 1<<uint(n)-1)
	for c := 1; c < 1<<uint(n); c++ {
		coalitions = append(coalitions, Coalition(c))
	}

	var out []Antichain
	for set := 1; set < 1<<uint(len(coalitions)); set++ {
		var a Antichain
		ok := true
		for i, c := range coalitions {
			if set&(1<<uint(i)) == 0 {
				continue
			}
			for _, prev := range a {
				if prev.SubsetOf(c) || c.SubsetOf(prev) {
					ok = false
					break
				}
			}
			if !ok {
				break
			}
			a = append(a, c)
		}
		if ok {
			a.sort()
			out = append(out, a)
		}
	}
	return out
}
