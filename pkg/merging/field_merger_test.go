package merging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/normalizers"
)

func TestMostTrustedPrefersSourcePriority(t *testing.T) {
	m := NewFieldMerger()

	records := []*models.LeadRecord{
		{ID: "r1", Source: models.SourceConference, Title: "Speaker"},
		{ID: "r2", Source: models.SourcePublication, Title: "Principal Investigator"},
		{ID: "r3", Source: models.SourceGrant, Title: "Co-Investigator"},
	}

	title := m.MostTrusted(records, func(r *models.LeadRecord) string { return r.Title })
	assert.Equal(t, "Principal Investigator", title)
}

func TestMostTrustedSkipsEmptyValues(t *testing.T) {
	m := NewFieldMerger()

	records := []*models.LeadRecord{
		{ID: "r1", Source: models.SourcePublication},
		{ID: "r2", Source: models.SourceConference, Title: "Speaker"},
	}

	title := m.MostTrusted(records, func(r *models.LeadRecord) string { return r.Title })
	assert.Equal(t, "Speaker", title, "a lower priority value beats no value")
}

func TestMostTrustedTieBreaksOnCompletenessThenID(t *testing.T) {
	m := NewFieldMerger()

	fuller := &models.LeadRecord{ID: "r2", Source: models.SourceGrant, Name: "Jane Smith", Institution: "Stanford", Email: "jane@stanford.edu"}
	sparser := &models.LeadRecord{ID: "r1", Source: models.SourceGrant, Name: "J. Smith"}

	name := m.MostTrusted([]*models.LeadRecord{sparser, fuller}, func(r *models.LeadRecord) string { return r.Name })
	assert.Equal(t, "Jane Smith", name, "fuller record wins the priority tie")

	a := &models.LeadRecord{ID: "r1", Source: models.SourceGrant, Name: "J. Smith"}
	b := &models.LeadRecord{ID: "r2", Source: models.SourceGrant, Name: "Jane Smith"}
	name = m.MostTrusted([]*models.LeadRecord{b, a}, func(r *models.LeadRecord) string { return r.Name })
	assert.Equal(t, "J. Smith", name, "lowest record ID wins the completeness tie")
}

func TestBestEmailPicksHighestConfidence(t *testing.T) {
	m := NewFieldMerger()

	records := []*models.LeadRecord{
		{ID: "r1", Source: models.SourcePublication, Email: "j.smith@stanford.edu", EmailConfidence: 0.6},
		{ID: "r2", Source: models.SourceConference, Email: "jane@stanford.edu", EmailConfidence: 0.9},
	}

	email, confidence := m.BestEmail(records)
	assert.Equal(t, "jane@stanford.edu", email, "confidence beats source priority")
	assert.Equal(t, 0.9, confidence)
}

func TestBestEmailEmptyCluster(t *testing.T) {
	m := NewFieldMerger()

	email, confidence := m.BestEmail([]*models.LeadRecord{{ID: "r1", Name: "Jane Smith"}})
	assert.Empty(t, email)
	assert.Zero(t, confidence)
}

func TestSumCountsDeduplicatesArtifacts(t *testing.T) {
	m := NewFieldMerger()

	records := []*models.LeadRecord{
		{ID: "r1", Source: models.SourcePublication, SourceRecordID: "pmid-100", Publications: 7, Grants: 2},
		{ID: "r2", Source: models.SourceGrant, SourceRecordID: "nih-9", Publications: 5},
		// Same artifact as r1 observed twice, must not double count
		{ID: "r3", Source: models.SourcePublication, SourceRecordID: "pmid-100", Publications: 7, Grants: 2},
	}

	total, duplicates := m.SumCounts(records)
	assert.Equal(t, 12, total.Publications)
	assert.Equal(t, 2, total.Grants)
	assert.Equal(t, 1, duplicates)
}

func TestLatestActivity(t *testing.T) {
	m := NewFieldMerger()

	older := time.Date(2023, 4, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC)

	records := []*models.LeadRecord{
		{ID: "r1", LastActivity: older},
		{ID: "r2", LastActivity: newer},
		{ID: "r3"},
	}

	assert.Equal(t, newer, m.LatestActivity(records))
}

func TestUnionKeywords(t *testing.T) {
	m := NewFieldMerger()

	records := []*models.LeadRecord{
		{ID: "r1", Keywords: []string{"Oncology", "CRISPR"}},
		{ID: "r2", Keywords: []string{"crispr", "immunotherapy", ""}},
	}

	keywords := m.UnionKeywords(records, normalizers.NormalizeKeyword)
	assert.Equal(t, []string{"crispr", "immunotherapy", "oncology"}, keywords)
}

func TestDistinctSources(t *testing.T) {
	m := NewFieldMerger()

	records := []*models.LeadRecord{
		{ID: "r1", Source: models.SourceTrial},
		{ID: "r2", Source: models.SourcePublication},
		{ID: "r3", Source: models.SourceTrial},
	}

	assert.Equal(t, []string{"publication", "trial"}, m.DistinctSources(records))
}
