package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Ramsey-B/yarrow/pkg/models"
)

func TestForLeadIgnoresIdentityAndTiming(t *testing.T) {
	a := &models.LeadRecord{
		ID:             "r1",
		Source:         models.SourcePublication,
		SourceRecordID: "pmid-100",
		Name:           "Jane Smith",
		IngestedAt:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	b := &models.LeadRecord{
		ID:             "r2",
		Source:         models.SourcePublication,
		SourceRecordID: "pmid-100",
		Name:           "Jane Smith",
		IngestedAt:     time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC),
	}

	assert.Equal(t, ForLead(a), ForLead(b), "record ID and ingest time must not affect the fingerprint")
}

func TestForLeadNormalizesCosmeticDifferences(t *testing.T) {
	a := &models.LeadRecord{Source: models.SourcePublication, SourceRecordID: "pmid-100", Name: "Dr. José Muñoz", Email: "JOSE@example.org"}
	b := &models.LeadRecord{Source: models.SourcePublication, SourceRecordID: "pmid-100", Name: "jose munoz", Email: "jose@example.org "}

	assert.Equal(t, ForLead(a), ForLead(b))
}

func TestForLeadKeywordOrderInsensitive(t *testing.T) {
	a := &models.LeadRecord{Source: models.SourceGrant, SourceRecordID: "nih-1", Name: "Jane Smith", Keywords: []string{"oncology", "crispr"}}
	b := &models.LeadRecord{Source: models.SourceGrant, SourceRecordID: "nih-1", Name: "Jane Smith", Keywords: []string{"crispr", "oncology"}}

	assert.Equal(t, ForLead(a), ForLead(b))
}

func TestForLeadDistinguishesContent(t *testing.T) {
	base := &models.LeadRecord{Source: models.SourcePublication, SourceRecordID: "pmid-100", Name: "Jane Smith", Publications: 3}

	changedCounts := *base
	changedCounts.Publications = 4
	assert.NotEqual(t, ForLead(base), ForLead(&changedCounts))

	changedSource := *base
	changedSource.Source = models.SourceGrant
	assert.NotEqual(t, ForLead(base), ForLead(&changedSource))

	withActivity := *base
	withActivity.LastActivity = time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC)
	assert.NotEqual(t, ForLead(base), ForLead(&withActivity))
}

func TestGenerateIsStable(t *testing.T) {
	fields := map[string]string{"b": "2", "a": "1"}

	first := Generate(fields)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Generate(map[string]string{"a": "1", "b": "2"}))
	}
}
