package merging

// UnionFind is a disjoint-set forest over record indices, used to cluster
// records connected by above-threshold similarity edges.
type UnionFind struct {
	parent []int
	rank   []int
	count  int
}

// NewUnionFind creates a forest of n singleton sets.
func NewUnionFind(n int) *UnionFind {
	parent := make([]int, n)
	rank := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &UnionFind{parent: parent, rank: rank, count: n}
}

// Find returns the root of the set containing i, compressing the path.
func (u *UnionFind) Find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

// Union merges the sets containing i and j. Returns false when they were
// already in the same set.
func (u *UnionFind) Union(i, j int) bool {
	ri, rj := u.Find(i), u.Find(j)
	if ri == rj {
		return false
	}

	if u.rank[ri] < u.rank[rj] {
		ri, rj = rj, ri
	}
	u.parent[rj] = ri
	if u.rank[ri] == u.rank[rj] {
		u.rank[ri]++
	}
	u.count--
	return true
}

// Connected reports whether i and j are in the same set.
func (u *UnionFind) Connected(i, j int) bool {
	return u.Find(i) == u.Find(j)
}

// Count returns the number of disjoint sets.
func (u *UnionFind) Count() int {
	return u.count
}

// Components returns the members of each set keyed by root. Member order
// within a component follows index order.
func (u *UnionFind) Components() map[int][]int {
	components := make(map[int][]int)
	for i := range u.parent {
		root := u.Find(i)
		components[root] = append(components[root], i)
	}
	return components
}
