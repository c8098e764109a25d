package matching

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/yarrow/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig(), testLogger())
	require.NoError(t, err)
	return engine
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	bad := DefaultConfig()
	bad.NameWeight = 0.5
	assert.Error(t, bad.Validate(), "weights no longer sum to 1.0")

	bad = DefaultConfig()
	bad.Workers = 0
	assert.Error(t, bad.Validate())

	bad = DefaultConfig()
	bad.NameWeight = -0.40
	bad.EmailWeight = 1.0
	assert.Error(t, bad.Validate())
}

func TestSimilaritySymmetry(t *testing.T) {
	engine := newTestEngine(t)

	a := &models.LeadRecord{Name: "Jane Smith", Institution: "Stanford Medical Center", Email: "jane@stanford.edu", Keywords: []string{"oncology"}}
	b := &models.LeadRecord{Name: "J. Smith", Institution: "Stanford Medical Center", Email: "jane@stanford.edu", Keywords: []string{"oncology", "crispr"}}

	assert.InDelta(t, engine.Similarity(a, b), engine.Similarity(b, a), 1e-12)
}

func TestSimilarityORCIDAgreementWins(t *testing.T) {
	engine := newTestEngine(t)

	a := &models.LeadRecord{Name: "Jane Smith", ORCID: "0000-0002-1825-0097"}
	b := &models.LeadRecord{Name: "Giovanni Rossi", ORCID: "0000-0002-1825-0097"}

	assert.Equal(t, 1.0, engine.Similarity(a, b), "shared ORCID is a verified identity")
}

func TestSimilarityORCIDConflictVetoes(t *testing.T) {
	engine := newTestEngine(t)

	a := &models.LeadRecord{
		Name:        "Jane Smith",
		Institution: "Stanford Medical Center",
		Email:       "jane@stanford.edu",
		Keywords:    []string{"oncology"},
		ORCID:       "0000-0002-1825-0097",
	}
	b := &models.LeadRecord{
		Name:        "Jane Smith",
		Institution: "Stanford Medical Center",
		Email:       "jane@stanford.edu",
		Keywords:    []string{"oncology"},
		ORCID:       "0000-0003-0077-4738",
	}

	assert.Equal(t, 0.0, engine.Similarity(a, b), "conflicting ORCIDs rule out the pair")
}

func TestSimilarityScoresPresentSignalsOnly(t *testing.T) {
	engine := newTestEngine(t)

	// Only names present: the blend renormalizes over the name weight alone
	a := &models.LeadRecord{Name: "Jane Smith"}
	b := &models.LeadRecord{Name: "Jane Smith"}
	assert.InDelta(t, 1.0, engine.Similarity(a, b), 1e-9)

	// A one-sided email is left out of the blend rather than scored 0
	c := &models.LeadRecord{Name: "Jane Smith", Institution: "Stanford Medical Center", Email: "jane@stanford.edu", Keywords: []string{"oncology"}}
	d := &models.LeadRecord{Name: "J. Smith", Institution: "Stanford Medical Center", Keywords: []string{"oncology"}}
	want := (0.40*0.7 + 0.25*1.0 + 0.15*1.0) / 0.80
	assert.InDelta(t, want, engine.Similarity(c, d), 1e-9)

	// Nothing in common to compare
	assert.Equal(t, 0.0, engine.Similarity(&models.LeadRecord{Name: "Jane Smith"}, &models.LeadRecord{Email: "jane@stanford.edu"}))
}

func TestSimilarityMergesWithoutContactSignals(t *testing.T) {
	engine := newTestEngine(t)

	// Publication and grant records often carry no email or keywords. Name
	// and institution agreement alone must be able to clear the merge
	// threshold.
	a := &models.LeadRecord{Name: "Jane Smith", Institution: "Harvard Medical School"}
	b := &models.LeadRecord{Name: "J. Smith", Institution: "Harvard Med School"}

	assert.GreaterOrEqual(t, engine.Similarity(a, b), 0.80)
}

func TestSimilarityBlend(t *testing.T) {
	engine := newTestEngine(t)

	a := &models.LeadRecord{
		Name:        "Jane Smith",
		Institution: "Stanford Medical Center",
		Email:       "jane@stanford.edu",
		Keywords:    []string{"oncology", "immunotherapy"},
	}
	b := &models.LeadRecord{
		Name:        "J. Smith",
		Institution: "Stanford Medical Center",
		Email:       "JANE@stanford.edu",
		Keywords:    []string{"immunotherapy", "oncology"},
	}

	// name: "jane smith" vs "j smith" is 0.7, everything else matches exactly
	want := 0.40*0.7 + 0.25*1.0 + 0.20*1.0 + 0.15*1.0
	assert.InDelta(t, want, engine.Similarity(a, b), 1e-9)
}

func TestScorePairsBucketsByNameKey(t *testing.T) {
	engine := newTestEngine(t)

	records := []*models.LeadRecord{
		{ID: "r1", Name: "Jane Smith", Institution: "Stanford Medical Center"},
		{ID: "r2", Name: "J. Smith", Institution: "Stanford Medical Center"},
		{ID: "r3", Name: "Wei Zhang", Institution: "Broad Institute"},
	}

	pairs, err := engine.ScorePairs(context.Background(), records)
	require.NoError(t, err)

	require.Len(t, pairs, 1, "only same-bucket records are compared")
	assert.Equal(t, 0, pairs[0].I)
	assert.Equal(t, 1, pairs[0].J)
}

func TestScorePairsIdentityIndexesBypassBuckets(t *testing.T) {
	engine := newTestEngine(t)

	// Different names and institutions, but the same email
	records := []*models.LeadRecord{
		{ID: "r1", Name: "Jane Smith", Institution: "Stanford Medical Center", Email: "jane@stanford.edu"},
		{ID: "r2", Name: "Jane Smith-Okafor", Institution: "Genentech", Email: "jane@stanford.edu"},
	}

	pairs, err := engine.ScorePairs(context.Background(), records)
	require.NoError(t, err)
	require.NotEmpty(t, pairs, "shared email must force a comparison")
}

func TestScorePairsDeterministicOrder(t *testing.T) {
	engine := newTestEngine(t)

	records := []*models.LeadRecord{
		{ID: "r1", Name: "Jane Smith", Institution: "Stanford Medical Center"},
		{ID: "r2", Name: "J. Smith", Institution: "Stanford Medical Center"},
		{ID: "r3", Name: "Jane Smyth", Institution: "Stanford Medical Center"},
		{ID: "r4", Name: "Jane Smith", Institution: ""},
	}

	first, err := engine.ScorePairs(context.Background(), records)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := engine.ScorePairs(context.Background(), records)
		require.NoError(t, err)
		assert.Equal(t, first, again, "worker scheduling must not change the output")
	}
}

func TestScorePairsCancelledContext(t *testing.T) {
	engine := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := []*models.LeadRecord{
		{ID: "r1", Name: "Jane Smith"},
		{ID: "r2", Name: "J. Smith"},
	}

	_, err := engine.ScorePairs(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScorePairsEmptyInput(t *testing.T) {
	engine := newTestEngine(t)

	pairs, err := engine.ScorePairs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}
