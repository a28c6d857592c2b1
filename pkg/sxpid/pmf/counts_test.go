package pmf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

func TestCounterBasic(t *testing.T) {
	counter := NewCounter(2)

	counter.Add([]int{0, 1}, 1)

	assert.Equal(t, int64(1), counter.Total())
	assert.Equal(t, int64(1), counter.Count(Realization{Sources: []int{0, 1}, Target: 1}))
}

func TestCounterRepeated(t *testing.T) {
	counter := NewCounter(2)

	counter.Add([]int{3, 7}, 2)
	counter.Add([]int{3, 7}, 2)
	counter.Add([]int{3, 7}, 1)

	assert.Equal(t, 2, counter.Distinct())
	assert.Equal(t, int64(2), counter.Count(Realization{Sources: []int{3, 7}, Target: 2}))
}

func TestCounterCopiesInput(t *testing.T) {
	counter := NewCounter(2)

	row := []int{1, 2}
	counter.Add(row, 0)
	row[0] = 9

	p, err := counter.PMF()
	require.NoError(t, err)
	assert.Equal(t, 1, p.Entries()[0].Sources[0], "counter keeps its own copy of the row")
}

func TestCounterEmpty(t *testing.T) {
	_, err := NewCounter(1).PMF()
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func TestCounterWrongWidth(t *testing.T) {
	counter := NewCounter(2)
	counter.Add([]int{1}, 0)

	_, err := counter.PMF()
	assert.ErrorIs(t, err, internalerr.ErrShape)
}

func TestCounterNonExistentRealization(t *testing.T) {
	counter := NewCounter(1)

	counter.Add([]int{0}, 0)

	assert.Zero(t, counter.Count(Realization{Sources: []int{5}, Target: 5}))
}
