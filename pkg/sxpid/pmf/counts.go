package pmf

import (
	"fmt"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

// Counter maintains joint realization counts for PMF construction
type Counter struct {
	n      int                    // number of sources
	N      int64                  // total number of samples
	counts map[string]int64       // count per realization key
	tuples map[string]Realization // first copy of each realization
}

// NewCounter creates a new counter for n sources
func NewCounter(n int) *Counter {
	return &Counter{
		n:      n,
		N:      0,
		counts: make(map[string]int64),
		tuples: make(map[string]Realization),
	}
}

// Add records one aligned sample. The sources slice is copied.
func (c *Counter) Add(sources []int, target int) {
	r := Realization{Sources: sources, Target: target}
	key := r.Key()
	c.N++
	if _, ok := c.counts[key]; !ok {
		own := make([]int, len(sources))
		copy(own, sources)
		c.tuples[key] = Realization{Sources: own, Target: target}
	}
	c.counts[key]++
}

// Count returns the number of samples equal to r
func (c *Counter) Count(r Realization) int64 {
	return c.counts[r.Key()]
}

// Total returns the number of samples added
func (c *Counter) Total() int64 {
	return c.N
}

// Distinct returns the number of distinct realizations
func (c *Counter) Distinct() int {
	return len(c.counts)
}

// PMF converts the counts to probabilities by dividing by the sample count.
func (c *Counter) PMF() (*PMF, error) {
	if c.N == 0 {
		return nil, fmt.Errorf("build pmf: no samples: %w", internalerr.ErrInvalidInput)
	}

	entries := make([]Entry, 0, len(c.counts))
	for key, cnt := range c.counts {
		r := c.tuples[key]
		if len(r.Sources) != c.n {
			return nil, fmt.Errorf("build pmf: realization %s has %d sources, want %d: %w",
				r, len(r.Sources), c.n, internalerr.ErrShape)
		}
		entries = append(entries, Entry{
			Realization: r,
			Count:       cnt,
			Prob:        float64(cnt) / float64(c.N),
		})
	}
	sortEntries(entries)

	return newPMF(c.n, c.N, entries), nil
}
