// Package solver computes the shared-exclusion partial information
// decomposition of a joint PMF over a redundancy lattice.
//
// For a realization (s, t) and a node α = {a1, ..., ak}, the shared
// information is split into an informative and a misinformative part:
//
//	i⁺(α) = -log2 P(a1 ∨ ... ∨ ak)
//	i⁻(α) = -log2 P(a1 ∨ ... ∨ ak | t)
//
// where ai is the event that the sources of coalition ai take their
// realised values. The union probabilities are evaluated by
// inclusion-exclusion over PMF marginals. Partial information atoms follow
// by Möbius inversion over the lattice, done separately for both parts:
//
//	π±(α) = i±(α) - Σ_{β ≺ α} π±(β)
package solver

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/bits"

	"github.com/cognicore/sxpid/pkg/sxpid/info"
	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
	"github.com/cognicore/sxpid/pkg/sxpid/lattice"
	"github.com/cognicore/sxpid/pkg/sxpid/pmf"
)

// DefaultTolerance bounds rounding error in the invariant checks.
const DefaultTolerance = 1e-9

// Triple is an informative/misinformative pair and their difference.
type Triple struct {
	Informative    float64 `json:"informative" yaml:"informative"`
	Misinformative float64 `json:"misinformative" yaml:"misinformative"`
	Info           float64 `json:"info" yaml:"info"`
}

// NewTriple builds a Triple from its two parts.
func NewTriple(plus, minus float64) Triple {
	return Triple{Informative: plus, Misinformative: minus, Info: plus - minus}
}

// Options tunes a Solve call. The zero value is usable.
type Options struct {
	// Logger receives debug records when Verbose is set.
	Logger  *slog.Logger
	Verbose bool
	// Tolerance for the mass and monotonicity checks; DefaultTolerance if 0.
	Tolerance float64
}

// Pointwise holds the decomposition of one realization, indexed by NodeID.
type Pointwise struct {
	Realization pmf.Realization
	Prob        float64
	Shared      []Triple
	Atoms       []Triple
}

// Solution is the complete decomposition of a PMF.
type Solution struct {
	// Pointwise follows the canonical entry order of the PMF.
	Pointwise []Pointwise
	// SharedAvg and AtomAvg are the probability-weighted sums of the
	// pointwise values, indexed by NodeID.
	SharedAvg []Triple
	AtomAvg   []Triple
}

// term is one summand of an inclusion-exclusion expansion.
type term struct {
	mask uint
	sign float64
}

// Solve decomposes p over l. It fails fast on malformed inputs and on any
// violated invariant instead of returning partial or non-finite values.
func Solve(p *pmf.PMF, l *lattice.Lattice, opts Options) (*Solution, error) {
	tol := opts.Tolerance
	if tol <= 0 {
		tol = DefaultTolerance
	}
	logger := opts.Logger
	if logger == nil || !opts.Verbose {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if p == nil || l == nil {
		return nil, fmt.Errorf("solve: nil pmf or lattice: %w", internalerr.ErrInvariant)
	}
	if p.NumSources() != l.NumSources() {
		return nil, fmt.Errorf("solve: pmf has %d sources, lattice %d: %w",
			p.NumSources(), l.NumSources(), internalerr.ErrInvariant)
	}
	if err := p.Check(tol); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}
	if err := checkLattice(l); err != nil {
		return nil, fmt.Errorf("solve: %w", err)
	}

	expansions := make([][]term, l.Len())
	for i, node := range l.Nodes {
		expansions[i] = expand(node.Antichain)
	}

	nMasks := 1 << uint(p.NumSources())
	marg := make([]float64, nMasks)
	margT := make([]float64, nMasks)

	sol := &Solution{
		Pointwise: make([]Pointwise, 0, p.Len()),
		SharedAvg: make([]Triple, l.Len()),
		AtomAvg:   make([]Triple, l.Len()),
	}

	logger.Debug("solving decomposition",
		"sources", p.NumSources(),
		"realizations", p.Len(),
		"nodes", l.Len())

	for _, e := range p.Entries() {
		for m := 0; m < nMasks; m++ {
			marg[m] = p.Marginal(uint(m), e.Sources)
			margT[m] = p.MarginalWithTarget(uint(m), e.Sources, e.Target)
		}
		pt := margT[0]
		if pt <= 0 {
			return nil, fmt.Errorf("solve: realization %s has P(t)=%v: %w", e.Realization, pt, internalerr.ErrInvariant)
		}

		pw := Pointwise{
			Realization: e.Realization,
			Prob:        e.Prob,
			Shared:      make([]Triple, l.Len()),
			Atoms:       make([]Triple, l.Len()),
		}

		for id, exp := range expansions {
			var union, unionT float64
			for _, tm := range exp {
				union += tm.sign * marg[tm.mask]
				unionT += tm.sign * margT[tm.mask]
			}
			cond := unionT / pt

			plus, err := surprisal(union, tol)
			if err != nil {
				return nil, fmt.Errorf("solve: node %s at %s: P=%v: %w", l.Nodes[id].Label, e.Realization, union, err)
			}
			minus, err := surprisal(cond, tol)
			if err != nil {
				return nil, fmt.Errorf("solve: node %s at %s: P(.|t)=%v: %w", l.Nodes[id].Label, e.Realization, cond, err)
			}
			pw.Shared[id] = NewTriple(plus, minus)
		}

		if err := checkMonotone(l, pw.Shared, tol); err != nil {
			return nil, fmt.Errorf("solve: at %s: %w", e.Realization, err)
		}

		for id := range l.Nodes {
			plus := pw.Shared[id].Informative
			minus := pw.Shared[id].Misinformative
			for _, b := range l.Nodes[id].Below {
				plus -= pw.Atoms[b].Informative
				minus -= pw.Atoms[b].Misinformative
			}
			pw.Atoms[id] = NewTriple(plus, minus)
		}

		for id := range l.Nodes {
			if !finite(pw.Shared[id]) || !finite(pw.Atoms[id]) {
				return nil, fmt.Errorf("solve: node %s at %s is not finite: %w",
					l.Nodes[id].Label, e.Realization, internalerr.ErrInvariant)
			}
			accumulate(&sol.SharedAvg[id], pw.Shared[id], e.Prob)
			accumulate(&sol.AtomAvg[id], pw.Atoms[id], e.Prob)
			if opts.Verbose {
				logger.Debug("pointwise node",
					"realization", e.Key(),
					"node", l.Nodes[id].Label,
					"shared", pw.Shared[id].Info,
					"atom_plus", pw.Atoms[id].Informative,
					"atom_minus", pw.Atoms[id].Misinformative)
			}
		}

		sol.Pointwise = append(sol.Pointwise, pw)
	}

	logger.Debug("decomposition done",
		"mi", sol.SharedAvg[l.Top()].Info,
		"synergy", sol.AtomAvg[l.Top()].Info)

	return sol, nil
}

// expand lists the inclusion-exclusion terms of P(a1 ∨ ... ∨ ak): one per
// non-empty subset S of the antichain, with mask ∪S and sign (-1)^(|S|+1).
func expand(a lattice.Antichain) []term {
	k := len(a)
	terms := make([]term, 0, 1<<uint(k)-1)
	for set := 1; set < 1<<uint(k); set++ {
		var mask uint
		for i := 0; i < k; i++ {
			if set&(1<<uint(i)) != 0 {
				mask |= a[i].Mask()
			}
		}
		sign := 1.0
		if bits.OnesCount(uint(set))%2 == 0 {
			sign = -1
		}
		terms = append(terms, term{mask: mask, sign: sign})
	}
	return terms
}

// surprisal returns -log2(p) for a probability that must lie in (0, 1];
// values exceeding 1 by at most tol are rounding and count as 1.
func surprisal(p, tol float64) (float64, error) {
	if math.IsNaN(p) || p <= 0 || p > 1+tol {
		return 0, internalerr.ErrInvariant
	}
	if p >= 1 {
		return 0, nil
	}
	return info.Surprisal(p), nil
}

func accumulate(dst *Triple, v Triple, w float64) {
	dst.Informative += w * v.Informative
	dst.Misinformative += w * v.Misinformative
	dst.Info += w * v.Info
}

func finite(t Triple) bool {
	for _, v := range []float64{t.Informative, t.Misinformative, t.Info} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// checkLattice rejects dangling node references and down-sets that are not
// in topological order.
func checkLattice(l *lattice.Lattice) error {
	if l.Len() == 0 {
		return fmt.Errorf("empty lattice: %w", internalerr.ErrInvariant)
	}
	for i, node := range l.Nodes {
		if int(node.ID) != i {
			return fmt.Errorf("lattice node %d stored at %d: %w", node.ID, i, internalerr.ErrInvariant)
		}
		if len(node.Antichain) == 0 {
			return fmt.Errorf("lattice node %d has no coalitions: %w", i, internalerr.ErrInvariant)
		}
		for _, b := range node.Below {
			if b < 0 || int(b) >= i {
				return fmt.Errorf("lattice node %s references %d below it: %w", node.Label, b, internalerr.ErrInvariant)
			}
		}
		for _, c := range node.Children {
			if c < 0 || int(c) >= i {
				return fmt.Errorf("lattice node %s references child %d: %w", node.Label, c, internalerr.ErrInvariant)
			}
		}
	}
	return nil
}

// checkMonotone verifies that neither part of the shared information grows
// from a node to one of its children.
func checkMonotone(l *lattice.Lattice, shared []Triple, tol float64) error {
	for id, node := range l.Nodes {
		for _, c := range node.Children {
			if shared[c].Informative > shared[id].Informative+tol ||
				shared[c].Misinformative > shared[id].Misinformative+tol {
				return fmt.Errorf("shared information of %s exceeds its parent %s: %w",
					l.Nodes[c].Label, node.Label, internalerr.ErrInvariant)
			}
		}
	}
	return nil
}
