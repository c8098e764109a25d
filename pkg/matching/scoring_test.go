package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical", "smith", "smith", 0},
		{"empty both", "", "", 0},
		{"empty one side", "", "smith", 5},
		{"single substitution", "smith", "smyth", 1},
		{"single insertion", "smith", "smiths", 1},
		{"prefix drop", "jane smith", "j smith", 3},
		{"disjoint", "abc", "xyz", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.LevenshteinDistance(tt.a, tt.b))
			assert.Equal(t, tt.want, s.LevenshteinDistance(tt.b, tt.a))
		})
	}
}

func TestLevenshteinSimilarity(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.Levenshtein("smith", "smith"))
	assert.Equal(t, 1.0, s.Levenshtein("", ""))
	assert.InDelta(t, 0.7, s.Levenshtein("jane smith", "j smith"), 1e-9)
	assert.Equal(t, 0.0, s.Levenshtein("abc", "xyz"))
}

func TestExactMatch(t *testing.T) {
	s := NewScorer()

	assert.Equal(t, 1.0, s.ExactMatch("jane@stanford.edu", "jane@stanford.edu"))
	assert.Equal(t, 0.0, s.ExactMatch("jane@stanford.edu", "j.smith@stanford.edu"))
}

func TestJaccard(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{"identical", []string{"oncology", "crispr"}, []string{"crispr", "oncology"}, 1.0},
		{"half overlap", []string{"oncology", "crispr", "biologics"}, []string{"oncology"}, 1.0 / 3.0},
		{"disjoint", []string{"oncology"}, []string{"proteomics"}, 0.0},
		{"empty left", nil, []string{"oncology"}, 0.0},
		{"empty right", []string{"oncology"}, nil, 0.0},
		{"both empty", nil, nil, 0.0},
		{"duplicates collapse", []string{"oncology", "oncology"}, []string{"oncology"}, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, s.Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestWeightedScore(t *testing.T) {
	s := NewScorer()

	scores := map[string]float64{"name": 1.0, "email": 0.0}
	weights := map[string]float64{"name": 0.75, "email": 0.25}
	assert.InDelta(t, 0.75, s.WeightedScore(scores, weights), 1e-9)

	assert.Equal(t, 0.0, s.WeightedScore(nil, weights))
}
