package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/yarrow/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed metadata.
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Lead is set after a successful ParseLead
	Lead *models.IngestLeadRequest
}

// ParseLead decodes the message value as a lead observation. The source
// connectors publish one observation per message.
func (m *IncomingMessage) ParseLead() error {
	var lead models.IngestLeadRequest
	if err := json.Unmarshal(m.Value, &lead); err != nil {
		return fmt.Errorf("failed to parse lead message: %w", err)
	}

	if lead.Source == "" {
		return fmt.Errorf("lead message missing source")
	}
	if lead.SourceRecordID == "" {
		return fmt.Errorf("lead message missing source_record_id")
	}

	m.Lead = &lead
	return nil
}

// SourceHeader returns the source declared in the message headers, if any.
// Connectors set it so malformed payloads can still be attributed.
func (m *IncomingMessage) SourceHeader() string {
	return m.Headers["source"]
}
