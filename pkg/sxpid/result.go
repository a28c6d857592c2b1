package sxpid

import (
	"fmt"

	"github.com/cognicore/sxpid/pkg/sxpid/lattice"
	"github.com/cognicore/sxpid/pkg/sxpid/pmf"
	"github.com/cognicore/sxpid/pkg/sxpid/solver"
)

// Triple is an (informative, misinformative, informative-misinformative)
// value in bits.
type Triple = solver.Triple

// NodeValue holds the two quantities computed at a lattice node.
type NodeValue struct {
	// Shared is the shared-exclusion redundancy of the node's coalitions.
	Shared Triple `json:"shared" yaml:"shared"`
	// Atom is the partial information exclusive to the node.
	Atom Triple `json:"atom" yaml:"atom"`
}

// PointwiseEntry is the decomposition of one observed realization.
type PointwiseEntry struct {
	Realization pmf.Realization
	Prob        float64
	// Nodes is indexed by lattice.NodeID.
	Nodes []NodeValue
}

// Derived holds values computed from the input during one call.
type Derived struct {
	Samples         int
	SourceAlphabets []int
	TargetAlphabet  int
}

// Map returns the alphabet sizes under the keys alph_s1, alph_s2, ...
// and alph_t.
func (d Derived) Map() map[string]int {
	out := make(map[string]int, len(d.SourceAlphabets)+1)
	for i, a := range d.SourceAlphabets {
		out[fmt.Sprintf("alph_s%d", i+1)] = a
	}
	out["alph_t"] = d.TargetAlphabet
	return out
}

// Result is the output of one estimate.
type Result struct {
	Lattice   *lattice.Lattice
	PMF       *pmf.PMF
	Pointwise []PointwiseEntry
	// Average is indexed by lattice.NodeID.
	Average []NodeValue
	Derived Derived
}

// Ptw returns the pointwise atoms keyed by realization key ("s1,...,sn|t")
// and node label.
func (r *Result) Ptw() map[string]map[string]Triple {
	out := make(map[string]map[string]Triple, len(r.Pointwise))
	for _, pw := range r.Pointwise {
		nodes := make(map[string]Triple, len(pw.Nodes))
		for id, v := range pw.Nodes {
			nodes[r.Lattice.Label(lattice.NodeID(id))] = v.Atom
		}
		out[pw.Realization.Key()] = nodes
	}
	return out
}

// Avg returns the averaged atoms keyed by node label.
func (r *Result) Avg() map[string]Triple {
	out := make(map[string]Triple, len(r.Average))
	for id, v := range r.Average {
		out[r.Lattice.Label(lattice.NodeID(id))] = v.Atom
	}
	return out
}

// SharedAvg returns the averaged shared information keyed by node label.
func (r *Result) SharedAvg() map[string]Triple {
	out := make(map[string]Triple, len(r.Average))
	for id, v := range r.Average {
		out[r.Lattice.Label(lattice.NodeID(id))] = v.Shared
	}
	return out
}

// Node returns the averaged values of the node with the given label.
func (r *Result) Node(label string) (NodeValue, error) {
	id, err := r.Lattice.Lookup(label)
	if err != nil {
		return NodeValue{}, err
	}
	return r.Average[id], nil
}

// At returns the pointwise decomposition of a realization.
func (r *Result) At(real pmf.Realization) (PointwiseEntry, bool) {
	key := real.Key()
	for _, pw := range r.Pointwise {
		if pw.Realization.Key() == key {
			return pw, true
		}
	}
	return PointwiseEntry{}, false
}

// MutualInformation returns I(T; S1..Sn), the shared information of the
// top node.
func (r *Result) MutualInformation() float64 {
	return r.Average[r.Lattice.Top()].Shared.Info
}

func newResult(p *pmf.PMF, l *lattice.Lattice, sol *solver.Solution, d Derived) *Result {
	res := &Result{
		Lattice:   l,
		PMF:       p,
		Pointwise: make([]PointwiseEntry, len(sol.Pointwise)),
		Average:   make([]NodeValue, l.Len()),
		Derived:   d,
	}
	for i, pw := range sol.Pointwise {
		nodes := make([]NodeValue, l.Len())
		for id := range nodes {
			nodes[id] = NodeValue{Shared: pw.Shared[id], Atom: pw.Atoms[id]}
		}
		res.Pointwise[i] = PointwiseEntry{Realization: pw.Realization, Prob: pw.Prob, Nodes: nodes}
	}
	for id := range res.Average {
		res.Average[id] = NodeValue{Shared: sol.SharedAvg[id], Atom: sol.AtomAvg[id]}
	}
	return res
}
