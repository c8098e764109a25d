package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/yarrow/pkg/matching"
	"github.com/Ramsey-B/yarrow/pkg/merging"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/scoring"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestCoordinator(t *testing.T, cfg Config) *Coordinator {
	t.Helper()

	log := testLogger()
	engine, err := matching.NewEngine(matching.DefaultConfig(), log)
	require.NoError(t, err)
	resolver, err := merging.NewResolver(merging.DefaultConfig(), log)
	require.NoError(t, err)
	scorer, err := scoring.NewEngine(scoring.DefaultRubric(), log)
	require.NoError(t, err)

	coordinator, err := NewCoordinator(cfg, engine, resolver, scorer, log)
	require.NoError(t, err)
	return coordinator
}

func TestRunSkipsRecordsWithoutIdentity(t *testing.T) {
	coordinator := newTestCoordinator(t, Config{})

	records := []*models.LeadRecord{
		{ID: "r1", Source: models.SourcePublication, SourceRecordID: "pmid-1", Name: "Jane Smith"},
		{ID: "r2", Source: models.SourceGeneric, SourceRecordID: "x-2", Email: "anon@example.org"},
	}

	result, err := coordinator.Run(context.Background(), records)
	require.NoError(t, err)

	assert.Equal(t, 2, result.RawRecords)
	assert.Equal(t, 1, result.SkippedRecords, "records without a name or institution are skipped")
	assert.Equal(t, 1, result.MergedLeads)
}

func TestRunMergesAndRanks(t *testing.T) {
	coordinator := newTestCoordinator(t, Config{})

	activity := time.Now().UTC().AddDate(-1, 0, 0)
	records := []*models.LeadRecord{
		{
			ID: "r1", Source: models.SourcePublication, SourceRecordID: "pmid-1",
			Name: "Jane Smith", Institution: "Stanford Medical Center", Title: "Principal Investigator",
			Email: "jane@stanford.edu", EmailConfidence: 0.9,
			Publications: 7, Grants: 2, LastActivity: activity,
			Keywords: []string{"oncology", "immunotherapy"},
		},
		{
			ID: "r2", Source: models.SourceGrant, SourceRecordID: "nih-2",
			Name: "J. Smith", Institution: "Stanford Medical Center",
			Email: "jane@stanford.edu", EmailConfidence: 0.7,
			Publications: 5, Keywords: []string{"oncology", "immunotherapy"},
		},
		{
			ID: "r3", Source: models.SourceConference, SourceRecordID: "conf-3",
			Name: "Ana Lima", Institution: "Obscure College", Title: "Graduate Student",
		},
	}

	result, err := coordinator.Run(context.Background(), records)
	require.NoError(t, err)

	require.Equal(t, 2, result.MergedLeads, "the two Smith records merge")
	assert.Equal(t, 0, result.SkippedRecords)
	assert.Positive(t, result.Comparisons)

	top := result.Leads[0]
	assert.Equal(t, "Jane Smith", top.Name)
	assert.Equal(t, 12, top.Publications)
	assert.GreaterOrEqual(t, top.Score, result.Leads[1].Score, "output is ranked by score")

	for _, lead := range result.Leads {
		assert.Equal(t, result.BatchID, lead.BatchID)
		assert.NotEmpty(t, lead.Tier)
	}

	summary := result.TierSummary
	assert.Equal(t, 2, summary.TotalLeads)
	assert.Equal(t, top.Score, summary.TopScore)
}

func TestRunDeterministicUnderPermutation(t *testing.T) {
	coordinator := newTestCoordinator(t, Config{})

	base := []*models.LeadRecord{
		{ID: "r1", Source: models.SourcePublication, SourceRecordID: "pmid-1", Name: "Jane Smith", Institution: "Stanford Medical Center", Publications: 7},
		{ID: "r2", Source: models.SourceGrant, SourceRecordID: "nih-2", Name: "J. Smith", Institution: "Stanford Medical Center", Publications: 5},
		{ID: "r3", Source: models.SourceTrial, SourceRecordID: "nct-3", Name: "Wei Zhang", Institution: "Broad Institute", Trials: 2},
		{ID: "r4", Source: models.SourceConference, SourceRecordID: "conf-4", Name: "Ana Lima", Institution: "Hospital das Clinicas"},
	}
	reversed := []*models.LeadRecord{base[3], base[2], base[1], base[0]}

	resultA, err := coordinator.Run(context.Background(), base)
	require.NoError(t, err)
	resultB, err := coordinator.Run(context.Background(), reversed)
	require.NoError(t, err)

	require.Equal(t, resultA.MergedLeads, resultB.MergedLeads)
	for i := range resultA.Leads {
		assert.Equal(t, resultA.Leads[i].ID, resultB.Leads[i].ID, "lead identity must not depend on input order")
		assert.Equal(t, resultA.Leads[i].Score, resultB.Leads[i].Score)
	}
}

func TestRunRejectsOversizedBatch(t *testing.T) {
	coordinator := newTestCoordinator(t, Config{MaxBatchSize: 1})

	records := []*models.LeadRecord{
		{ID: "r1", Name: "Jane Smith"},
		{ID: "r2", Name: "Wei Zhang"},
	}

	_, err := coordinator.Run(context.Background(), records)
	assert.Error(t, err)
}

func TestRunEmptyBatch(t *testing.T) {
	coordinator := newTestCoordinator(t, Config{})

	result, err := coordinator.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, result.MergedLeads)
	assert.Zero(t, result.TierSummary.TotalLeads)
	assert.NotEmpty(t, result.BatchID)
}

func TestNewCoordinatorRejectsNegativeCap(t *testing.T) {
	log := testLogger()
	engine, err := matching.NewEngine(matching.DefaultConfig(), log)
	require.NoError(t, err)
	resolver, err := merging.NewResolver(merging.DefaultConfig(), log)
	require.NoError(t, err)
	scorer, err := scoring.NewEngine(scoring.DefaultRubric(), log)
	require.NoError(t, err)

	_, err = NewCoordinator(Config{MaxBatchSize: -1}, engine, resolver, scorer, log)
	assert.Error(t, err)
}
