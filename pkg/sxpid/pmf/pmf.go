// Package pmf builds the empirical joint probability mass function of a set
// of discrete source variables and one discrete target variable.
package pmf

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

// DefaultTolerance is the allowed deviation of the total mass from 1.
const DefaultTolerance = 1e-9

// Realization is one joint outcome (s1..sn, t).
type Realization struct {
	Sources []int
	Target  int
}

// Key returns the canonical string form "s1,s2,...|t".
func (r Realization) Key() string {
	return encode(allMask(len(r.Sources)), r.Sources, true, r.Target)
}

func (r Realization) String() string {
	return "(" + r.Key() + ")"
}

// Entry is an observed realization with its count and probability.
type Entry struct {
	Realization
	Count int64
	Prob  float64
}

// PMF is an immutable joint distribution over observed realizations.
// Entries are kept in lexicographic order of (sources, target), so two PMFs
// built from the same multiset of samples are identical.
type PMF struct {
	n       int
	total   int64
	entries []Entry
	index   map[string]int

	// marginal tables, one per source mask
	marg       []map[string]float64
	margTarget []map[string]float64
}

// Build counts the aligned samples and normalises them into a PMF.
// sources[i] holds the samples of source i; every source and the target
// must have the same length N >= 1.
func Build(sources [][]int, target []int) (*PMF, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("build pmf: no sources: %w", internalerr.ErrInvalidInput)
	}
	if len(target) == 0 {
		return nil, fmt.Errorf("build pmf: empty target: %w", internalerr.ErrInvalidInput)
	}
	for i, s := range sources {
		if len(s) != len(target) {
			return nil, fmt.Errorf("build pmf: source %d has %d samples, target has %d: %w",
				i+1, len(s), len(target), internalerr.ErrLengthMismatch)
		}
	}

	c := NewCounter(len(sources))
	row := make([]int, len(sources))
	for k := range target {
		for i := range sources {
			row[i] = sources[i][k]
		}
		c.Add(row, target[k])
	}
	return c.PMF()
}

// FromEntries builds a PMF over n sources from explicit probabilities, for
// instance a model distribution. Entries are copied and sorted. The mass is
// not checked here; see Check.
func FromEntries(n int, entries []Entry) (*PMF, error) {
	if n < 1 || len(entries) == 0 {
		return nil, fmt.Errorf("pmf from entries: %d sources, %d entries: %w", n, len(entries), internalerr.ErrInvalidInput)
	}

	own := make([]Entry, len(entries))
	seen := make(map[string]bool, len(entries))
	var total int64
	for i, e := range entries {
		if len(e.Sources) != n {
			return nil, fmt.Errorf("pmf from entries: realization %s has %d sources, want %d: %w",
				e.Realization, len(e.Sources), n, internalerr.ErrShape)
		}
		if seen[e.Key()] {
			return nil, fmt.Errorf("pmf from entries: realization %s: %w", e.Realization, internalerr.ErrDuplicate)
		}
		seen[e.Key()] = true
		e.Sources = append([]int(nil), e.Sources...)
		own[i] = e
		total += e.Count
	}
	sortEntries(own)
	return newPMF(n, total, own), nil
}

func newPMF(n int, total int64, sorted []Entry) *PMF {
	p := &PMF{
		n:       n,
		total:   total,
		entries: sorted,
		index:   make(map[string]int, len(sorted)),
	}
	for i, e := range sorted {
		p.index[e.Key()] = i
	}
	p.buildMarginals()
	return p
}

// NumSources returns the number of source variables.
func (p *PMF) NumSources() int { return p.n }

// Total returns the number of samples the PMF was built from.
func (p *PMF) Total() int64 { return p.total }

// Len returns the number of observed realizations.
func (p *PMF) Len() int { return len(p.entries) }

// Entries returns the observed realizations in canonical order.
// The returned slice must not be modified.
func (p *PMF) Entries() []Entry { return p.entries }

// Prob returns the probability of a realization, 0 if unobserved.
func (p *PMF) Prob(r Realization) float64 {
	i, ok := p.index[r.Key()]
	if !ok {
		return 0
	}
	return p.entries[i].Prob
}

// Marginal returns the probability that the sources selected by mask take
// the values they have in sources. Mask 0 is the certain event.
func (p *PMF) Marginal(mask uint, sources []int) float64 {
	if mask == 0 {
		return 1
	}
	return p.marg[mask][encode(mask, sources, false, 0)]
}

// MarginalWithTarget is Marginal jointly with target == t.
// Mask 0 gives the target marginal P(t).
func (p *PMF) MarginalWithTarget(mask uint, sources []int, t int) float64 {
	return p.margTarget[mask][encode(mask, sources, true, t)]
}

// TargetProb returns P(T = t).
func (p *PMF) TargetProb(t int) float64 {
	return p.MarginalWithTarget(0, nil, t)
}

// Check verifies every probability lies in (0, 1] and that the total mass
// is 1 within tol.
func (p *PMF) Check(tol float64) error {
	if len(p.entries) == 0 {
		return fmt.Errorf("pmf has no realizations: %w", internalerr.ErrInvariant)
	}
	probs := make([]float64, len(p.entries))
	for i, e := range p.entries {
		if !(e.Prob > 0 && e.Prob <= 1) {
			return fmt.Errorf("pmf realization %s has probability %v: %w", e.Realization, e.Prob, internalerr.ErrInvariant)
		}
		probs[i] = e.Prob
	}
	if sum := floats.Sum(probs); math.Abs(sum-1) > tol {
		return fmt.Errorf("pmf mass sums to %v: %w", sum, internalerr.ErrInvariant)
	}
	return nil
}

func (p *PMF) buildMarginals() {
	size := 1 << uint(p.n)
	p.marg = make([]map[string]float64, size)
	p.margTarget = make([]map[string]float64, size)
	for m := 0; m < size; m++ {
		p.marg[m] = make(map[string]float64)
		p.margTarget[m] = make(map[string]float64)
	}
	for _, e := range p.entries {
		for m := 0; m < size; m++ {
			mask := uint(m)
			if mask != 0 {
				p.marg[m][encode(mask, e.Sources, false, 0)] += e.Prob
			}
			p.margTarget[m][encode(mask, e.Sources, true, e.Target)] += e.Prob
		}
	}
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		for k := range a.Sources {
			if a.Sources[k] != b.Sources[k] {
				return a.Sources[k] < b.Sources[k]
			}
		}
		return a.Target < b.Target
	})
}

func allMask(n int) uint {
	return (1 << uint(n)) - 1
}

// encode renders the masked source values (and optionally the target) as a
// map key. Keys are only compared within the table of one mask.
func encode(mask uint, sources []int, withTarget bool, t int) string {
	var b strings.Builder
	first := true
	for i, v := range sources {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		if !first {
			b.WriteByte(',')
		}
		first = false
		b.WriteString(strconv.Itoa(v))
	}
	if withTarget {
		b.WriteByte('|')
		b.WriteString(strconv.Itoa(t))
	}
	return b.String()
}
