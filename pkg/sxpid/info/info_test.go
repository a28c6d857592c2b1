package info

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/sxpid/pkg/sxpid/pmf"
)

const tol = 1e-12

func TestSurprisal(t *testing.T) {
	assert.Equal(t, 2.0, Surprisal(0.25))
	assert.Zero(t, Surprisal(0), "zero probability is skipped")
}

func TestPMI(t *testing.T) {
	assert.InDelta(t, 0, PMI(0.25, 0.5, 0.5), tol, "independent events")
	assert.Less(t, PMI(0.05, 0.5, 0.5), 0.0, "anti-correlated events")
	assert.Zero(t, PMI(0, 0.5, 0.5), "zero joint probability is skipped")
}

func TestEntropy(t *testing.T) {
	testCases := []struct {
		values []float64
		want   float64
	}{
		{[]float64{1, 1}, 1},
		{[]float64{1, 1, 1, 1}, 2},
		{[]float64{5}, 0},
		{[]float64{0, 0}, 0},
		{[]float64{2, 0, 2}, 1},
	}

	for _, tc := range testCases {
		assert.InDelta(t, tc.want, Entropy(tc.values), tol, "%v", tc.values)
	}
}

func TestMutualInformationXOR(t *testing.T) {
	p, err := pmf.Build([][]int{{0, 0, 1, 1}, {0, 1, 0, 1}}, []int{0, 1, 1, 0})
	require.NoError(t, err)

	assert.InDelta(t, 1, MutualInformation(p), tol, "I(T;S1,S2)")
	assert.InDelta(t, 0, SourceMI(p, 0b01), tol, "I(T;S1)")
	assert.InDelta(t, 1, SourceMI(p, 0b11), tol, "I(T;S1,S2) by mask")
	assert.InDelta(t, 1, TargetEntropy(p), tol, "H(T)")
	for _, e := range p.Entries() {
		assert.InDelta(t, 1, PointwiseMI(p, e.Realization), tol, e.Realization.String())
	}
}

func TestMutualInformationCopy(t *testing.T) {
	p, err := pmf.Build([][]int{{0, 1, 2, 3}}, []int{0, 1, 2, 3})
	require.NoError(t, err)

	assert.InDelta(t, 2, MutualInformation(p), tol, "uniform 4-ary copy")
}
