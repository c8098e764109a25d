package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/yarrow/pkg/models"
)

func TestWriteCSV(t *testing.T) {
	leads := []*models.MergedLead{
		{
			ID:              "lead-1",
			Name:            "Jane Smith",
			Email:           "jane@stanford.edu",
			EmailConfidence: 0.9,
			Title:           "Principal Investigator",
			Institution:     "Stanford Medical Center",
			Score:           82,
			Tier:            models.TierHot,
			Sources:         []string{"grant", "publication"},
			Keywords:        []string{"immunotherapy", "oncology"},
			Publications:    12,
			Grants:          2,
			ORCID:           "0000-0002-1825-0097",
			LastActivity:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID:    "lead-2",
			Name:  "Wei Zhang",
			Score: 14,
			Tier:  models.TierIce,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, leads))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per lead")

	assert.Equal(t, []string{
		"name", "email", "email_confidence", "title", "institution", "score",
		"tier", "sources", "research_focus", "publications", "grants_count", "orcid",
	}, rows[0])

	assert.Equal(t, []string{
		"Jane Smith", "jane@stanford.edu", "0.90", "Principal Investigator",
		"Stanford Medical Center", "82", "hot", "grant;publication",
		"immunotherapy;oncology", "12", "2", "0000-0002-1825-0097",
	}, rows[1])

	assert.Equal(t, "Wei Zhang", rows[2][0])
	assert.Equal(t, "0.00", rows[2][2])
	assert.Equal(t, "ice", rows[2][6])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
