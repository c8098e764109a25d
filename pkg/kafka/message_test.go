package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLead(t *testing.T) {
	msg := &IncomingMessage{
		Value: []byte(`{
			"source": "publication",
			"source_record_id": "pmid-100",
			"name": "Jane Smith",
			"institution": "Stanford Medical Center",
			"publications": 7,
			"keywords": ["oncology"]
		}`),
	}

	require.NoError(t, msg.ParseLead())
	require.NotNil(t, msg.Lead)
	assert.Equal(t, "publication", msg.Lead.Source)
	assert.Equal(t, "pmid-100", msg.Lead.SourceRecordID)
	assert.Equal(t, "Jane Smith", msg.Lead.Name)
	assert.Equal(t, 7, msg.Lead.Publications)
}

func TestParseLeadRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"malformed json", `{"source": `},
		{"missing source", `{"source_record_id": "pmid-100"}`},
		{"missing source record id", `{"source": "publication"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := &IncomingMessage{Value: []byte(tt.value)}
			assert.Error(t, msg.ParseLead())
			assert.Nil(t, msg.Lead)
		})
	}
}

func TestSourceHeader(t *testing.T) {
	msg := &IncomingMessage{Headers: map[string]string{"source": "trial"}}
	assert.Equal(t, "trial", msg.SourceHeader())

	empty := &IncomingMessage{Headers: map[string]string{}}
	assert.Empty(t, empty.SourceHeader())
}
