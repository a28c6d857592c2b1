// Package info holds the base-2 information primitives shared by the
// decomposition and its reports.
package info

import (
	"math"

	"github.com/cognicore/sxpid/pkg/sxpid/pmf"
)

// Surprisal returns -log2(p) in bits. Zero probabilities are skipped and
// yield 0.
func Surprisal(p float64) float64 {
	if p <= 0 {
		return 0
	}
	return -math.Log2(p)
}

// PMI calculates the pointwise mutual information in bits
//
// PMI(x,y) = log2(P(x,y) / (P(x)P(y)))
//
// Returns 0 if any of the probabilities is zero.
func PMI(pXY, pX, pY float64) float64 {
	if pXY <= 0 || pX <= 0 || pY <= 0 {
		return 0
	}
	return math.Log2(pXY / (pX * pY))
}

// Entropy returns the Shannon entropy in bits of a distribution.
// Values need not be normalised.
func Entropy(values []float64) float64 {
	var total float64
	for _, v := range values {
		if v > 0 {
			total += v
		}
	}
	if total == 0 {
		return 0
	}

	var h float64
	for _, v := range values {
		if v <= 0 {
			continue
		}
		p := v / total
		h -= p * math.Log2(p)
	}
	return h
}

// PointwiseMI returns i(t : s1..sn) for a realization of the joint PMF.
func PointwiseMI(p *pmf.PMF, r pmf.Realization) float64 {
	all := uint(1)<<uint(p.NumSources()) - 1
	return PMI(
		p.MarginalWithTarget(all, r.Sources, r.Target),
		p.Marginal(all, r.Sources),
		p.TargetProb(r.Target),
	)
}

// MutualInformation returns I(T; S1..Sn) of the joint PMF.
func MutualInformation(p *pmf.PMF) float64 {
	var mi float64
	for _, e := range p.Entries() {
		mi += e.Prob * PointwiseMI(p, e.Realization)
	}
	return mi
}

// SourceMI returns I(T; S_mask) for the sources selected by mask.
func SourceMI(p *pmf.PMF, mask uint) float64 {
	var mi float64
	for _, e := range p.Entries() {
		mi += e.Prob * PMI(
			p.MarginalWithTarget(mask, e.Sources, e.Target),
			p.Marginal(mask, e.Sources),
			p.TargetProb(e.Target),
		)
	}
	return mi
}

// TargetEntropy returns H(T).
func TargetEntropy(p *pmf.PMF) float64 {
	byTarget := make(map[int]float64)
	for _, e := range p.Entries() {
		byTarget[e.Target] += e.Prob
	}
	values := make([]float64, 0, len(byTarget))
	for _, v := range byTarget {
		values = append(values, v)
	}
	return Entropy(values)
}
