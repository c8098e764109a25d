package merging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionFindSingletons(t *testing.T) {
	uf := NewUnionFind(3)

	assert.Equal(t, 3, uf.Count())
	assert.False(t, uf.Connected(0, 1))
	assert.False(t, uf.Connected(1, 2))
}

func TestUnionFindMerging(t *testing.T) {
	uf := NewUnionFind(5)

	assert.True(t, uf.Union(0, 1))
	assert.True(t, uf.Union(3, 4))
	assert.Equal(t, 3, uf.Count())

	assert.True(t, uf.Connected(0, 1))
	assert.False(t, uf.Connected(0, 3))

	// Transitive connection through a shared member
	assert.True(t, uf.Union(1, 3))
	assert.True(t, uf.Connected(0, 4))
	assert.Equal(t, 2, uf.Count())

	// Re-union of already connected members is a no-op
	assert.False(t, uf.Union(0, 4))
	assert.Equal(t, 2, uf.Count())
}

func TestUnionFindComponents(t *testing.T) {
	uf := NewUnionFind(4)
	uf.Union(0, 2)

	components := uf.Components()
	assert.Len(t, components, 3)

	var sizes []int
	for _, members := range components {
		sizes = append(sizes, len(members))
	}
	assert.ElementsMatch(t, []int{2, 1, 1}, sizes)

	members := components[uf.Find(0)]
	assert.Equal(t, []int{0, 2}, members, "members follow index order")
}
