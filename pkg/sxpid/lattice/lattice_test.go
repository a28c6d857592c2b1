package lattice

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/sxpid/pkg/sxpid/internalerr"
)

func TestBuildNodeCounts(t *testing.T) {
	// Dedekind numbers minus the two trivial antichains.
	want := map[int]int{1: 1, 2: 4, 3: 18, 4: 166}

	for n, count := range want {
		l, err := Build(n)
		require.NoError(t, err)
		assert.Equal(t, count, l.Len(), "n=%d", n)
		assert.Equal(t, n, l.NumSources())
	}
}

func TestBuildUnsupported(t *testing.T) {
	for _, n := range []int{-1, 0, 5} {
		_, err := Build(n)
		assert.ErrorIs(t, err, internalerr.ErrUnsupportedSources, "n=%d", n)
	}
}

func TestBottomAndTop(t *testing.T) {
	l, err := Build(3)
	require.NoError(t, err)

	assert.Equal(t, "{{1},{2},{3}}", l.Label(l.Bottom()))
	assert.Equal(t, "{{1,2,3}}", l.Label(l.Top()))

	top := l.Nodes[l.Top()]
	assert.Len(t, top.Below, l.Len()-1)
	assert.Empty(t, top.Parents)
	assert.Empty(t, l.Nodes[l.Bottom()].Children)
}

func TestTwoSourceStructure(t *testing.T) {
	l, err := Build(2)
	require.NoError(t, err)

	bottom := l.Bottom()
	u1, err := l.Lookup("{{1}}")
	require.NoError(t, err)
	u2, err := l.Lookup("{{2}}")
	require.NoError(t, err)
	syn, err := l.Lookup("{{1,2}}")
	require.NoError(t, err)

	assert.ElementsMatch(t, []NodeID{u1, u2}, l.Nodes[syn].Children)
	assert.Equal(t, []NodeID{bottom}, l.Nodes[u1].Children)
	assert.Equal(t, []NodeID{bottom}, l.Nodes[u2].Children)
	assert.ElementsMatch(t, []NodeID{u1, u2}, l.Nodes[bottom].Parents)
}

func TestTopologicalIDs(t *testing.T) {
	for n := MinSources; n <= MaxSources; n++ {
		l, err := Build(n)
		require.NoError(t, err)

		for _, node := range l.Nodes {
			for _, b := range node.Below {
				assert.Less(t, int(b), int(node.ID), "n=%d node %s", n, node.Label)
				assert.True(t, l.Leq(b, node.ID))
			}
			for _, c := range node.Children {
				assert.Contains(t, node.Below, c)
				assert.Contains(t, l.Nodes[c].Parents, node.ID)
			}
		}
	}
}

func TestChildrenAreCovers(t *testing.T) {
	l, err := Build(3)
	require.NoError(t, err)

	for _, node := range l.Nodes {
		for _, c := range node.Children {
			for _, mid := range node.Below {
				if mid == c {
					continue
				}
				assert.False(t, l.Leq(c, mid) && c != mid,
					"%s covers %s but %s lies between", node.Label, l.Label(c), l.Label(mid))
			}
		}
	}
}

func TestLookupSpellings(t *testing.T) {
	l, err := Build(3)
	require.NoError(t, err)

	a, err := l.Lookup("{{1,2},{3}}")
	require.NoError(t, err)
	b, err := l.Lookup("{ {3}, {2,1} }")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, err = l.Lookup("{{1},{1,2}}")
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)

	_, err = l.Lookup("{{4}}")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
}

func TestNodeOutOfRange(t *testing.T) {
	l, err := Build(1)
	require.NoError(t, err)

	_, err = l.Node(3)
	assert.ErrorIs(t, err, internalerr.ErrNotFound)
	assert.Equal(t, "", l.Label(-1))
}

func TestCacheBuildsOnce(t *testing.T) {
	c := NewCache()

	var wg sync.WaitGroup
	results := make([]*Lattice, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := c.Get(4)
			assert.NoError(t, err)
			results[i] = l
		}(i)
	}
	wg.Wait()

	for _, l := range results {
		assert.Same(t, results[0], l)
	}

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Builds)
	assert.Equal(t, []int{4}, stats.Cached)
	assert.Equal(t, int64(16), stats.Hits+stats.Misses)

	again, err := c.Get(4)
	require.NoError(t, err)
	assert.Same(t, results[0], again)
	assert.Equal(t, int64(1), c.Stats().Builds)
}

func TestCacheRejectsUnsupported(t *testing.T) {
	_, err := NewCache().Get(5)
	assert.ErrorIs(t, err, internalerr.ErrUnsupportedSources)
}

func TestDefaultCacheShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestExportYAML(t *testing.T) {
	l, err := Build(2)
	require.NoError(t, err)

	data, err := Export(l).YAML()
	require.NoError(t, err)

	var doc Document
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Sources)
	require.Len(t, doc.Nodes, 4)
	assert.Equal(t, "{{1},{2}}", doc.Nodes[0].Label)
	assert.Equal(t, "{{1,2}}", doc.Nodes[3].Label)
	assert.Len(t, doc.Nodes[3].Children, 2)
}
