// Package processor consumes lead observations from the ingest topic and
// stages them for batch runs.
package processor

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/yarrow/internal/repositories/rawlead"
	"github.com/Ramsey-B/yarrow/pkg/kafka"
	"github.com/Ramsey-B/yarrow/pkg/metrics"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

// LeadProcessor stages incoming lead observations from Kafka.
type LeadProcessor struct {
	logger      ectologger.Logger
	rawLeadRepo *rawlead.Repository
}

// NewLeadProcessor creates a new lead processor
func NewLeadProcessor(logger ectologger.Logger, rawLeadRepo *rawlead.Repository) *LeadProcessor {
	return &LeadProcessor{
		logger:      logger,
		rawLeadRepo: rawLeadRepo,
	}
}

// ProcessMessage parses one lead observation and stages it. Malformed
// payloads are logged and dropped so the partition keeps moving; storage
// failures are returned so the message is redelivered.
func (p *LeadProcessor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "LeadProcessor.ProcessMessage")
	defer span.End()

	if msg.Lead == nil {
		if err := msg.ParseLead(); err != nil {
			p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"topic":  msg.Topic,
				"offset": msg.Offset,
			}).Warn("Dropping malformed lead message")
			metrics.RecordIngest(msg.SourceHeader(), "malformed")
			return nil
		}
	}

	record := RecordFromRequest(msg.Lead)

	inserted, err := p.rawLeadRepo.Create(ctx, record)
	if err != nil {
		metrics.RecordIngest(string(record.Source), "error")
		return err
	}

	if !inserted {
		metrics.RecordIngest(string(record.Source), "duplicate")
		p.logger.WithContext(ctx).WithFields(map[string]any{
			"source":           record.Source,
			"source_record_id": record.SourceRecordID,
		}).Debug("Skipped already staged observation")
		return nil
	}

	metrics.RecordIngest(string(record.Source), "staged")
	return nil
}

// RecordFromRequest converts an ingest payload into a raw lead record.
// Unrecognized sources fall back to the generic source.
func RecordFromRequest(req *models.IngestLeadRequest) *models.LeadRecord {
	return &models.LeadRecord{
		Source:          models.ParseSource(req.Source),
		SourceRecordID:  req.SourceRecordID,
		Name:            req.Name,
		Institution:     req.Institution,
		Title:           req.Title,
		Email:           req.Email,
		EmailConfidence: req.EmailConfidence,
		ORCID:           req.ORCID,
		Publications:    req.Publications,
		Grants:          req.Grants,
		Trials:          req.Trials,
		Citations:       req.Citations,
		Conferences:     req.Conferences,
		LastActivity:    req.LastActivity,
		Keywords:        req.Keywords,
	}
}
