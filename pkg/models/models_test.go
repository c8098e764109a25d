package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSourcePriorityOrdering(t *testing.T) {
	assert.Greater(t, SourcePublication.Priority(), SourceGrant.Priority())
	assert.Greater(t, SourceGrant.Priority(), SourceTrial.Priority())
	assert.Greater(t, SourceTrial.Priority(), SourceConference.Priority())
	assert.Greater(t, SourceConference.Priority(), SourceGeneric.Priority())
	assert.Greater(t, SourceGeneric.Priority(), Source("unknown").Priority())
}

func TestParseSource(t *testing.T) {
	assert.Equal(t, SourcePublication, ParseSource("publication"))
	assert.Equal(t, SourceGeneric, ParseSource("web-scrape"), "unknown sources fall back to generic")
	assert.Equal(t, SourceGeneric, ParseSource(""))
}

func TestHasIdentity(t *testing.T) {
	assert.True(t, (&LeadRecord{Name: "Jane Smith"}).HasIdentity())
	assert.True(t, (&LeadRecord{Institution: "Stanford"}).HasIdentity())
	assert.False(t, (&LeadRecord{Email: "jane@stanford.edu", ORCID: "0000-0002-1825-0097"}).HasIdentity())
}

func TestArtifactKey(t *testing.T) {
	r := &LeadRecord{Source: SourcePublication, SourceRecordID: "pmid-100"}
	assert.Equal(t, "publication:pmid-100", r.ArtifactKey())
}

func TestTierFor(t *testing.T) {
	thresholds := DefaultTierThresholds()

	tests := []struct {
		score int
		want  Tier
	}{
		{100, TierHot},
		{75, TierHot},
		{74, TierWarm},
		{50, TierWarm},
		{49, TierCold},
		{25, TierCold},
		{24, TierIce},
		{0, TierIce},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, thresholds.TierFor(tt.score), "score %d", tt.score)
	}
}

func TestNewTierSummary(t *testing.T) {
	leads := []*MergedLead{
		{Score: 80, Tier: TierHot},
		{Score: 60, Tier: TierWarm},
		{Score: 10, Tier: TierIce},
	}

	summary := NewTierSummary(leads)
	assert.Equal(t, 3, summary.TotalLeads)
	assert.Equal(t, 1, summary.Counts[TierHot])
	assert.Equal(t, 1, summary.Counts[TierWarm])
	assert.Equal(t, 0, summary.Counts[TierCold])
	assert.Equal(t, 1, summary.Counts[TierIce])
	assert.Equal(t, 80, summary.TopScore)
	assert.InDelta(t, 50.0, summary.AverageScore, 1e-9)
}

func TestBatchResultSummary(t *testing.T) {
	completed := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	result := &BatchResult{
		BatchID:           "b1",
		RawRecords:        10,
		MergedLeads:       7,
		SkippedRecords:    1,
		DuplicatesRemoved: 2,
		Duration:          1500 * time.Millisecond,
		CompletedAt:       completed,
	}

	summary := result.Summary()
	assert.Equal(t, "b1", summary.BatchID)
	assert.Equal(t, 10, summary.RawRecords)
	assert.Equal(t, 7, summary.MergedLeads)
	assert.Equal(t, int64(1500), summary.DurationMillis)
	assert.Equal(t, completed, summary.CompletedAt)
}
