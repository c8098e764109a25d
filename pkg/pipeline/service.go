package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/yarrow/internal/repositories/mergedlead"
	"github.com/Ramsey-B/yarrow/internal/repositories/rawlead"
	"github.com/Ramsey-B/yarrow/pkg/kafka"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

// EventPublisher emits lead and batch events to downstream consumers.
type EventPublisher interface {
	PublishLeadEvents(ctx context.Context, events []*kafka.LeadEvent) error
	PublishBatchEvent(ctx context.Context, event *kafka.BatchEvent) error
}

// GraphSyncer mirrors a completed batch into the affiliation graph.
type GraphSyncer interface {
	SyncBatch(ctx context.Context, batchID string, leads []*models.MergedLead) error
}

// SummaryStore caches batch summaries for dashboard reads.
type SummaryStore interface {
	SetSummary(ctx context.Context, summary models.BatchSummary) error
}

// BatchService runs the pipeline over the staged observations and fans the
// results out to storage, Kafka, the graph and the summary cache.
type BatchService struct {
	coordinator    *Coordinator
	rawLeadRepo    *rawlead.Repository
	mergedLeadRepo *mergedlead.Repository
	publisher      EventPublisher
	graph          GraphSyncer
	summaries      SummaryStore
	logger         ectologger.Logger
}

// NewBatchService creates a new batch service. The publisher, graph syncer
// and summary store may be nil, in which case that fan-out step is skipped.
func NewBatchService(
	coordinator *Coordinator,
	rawLeadRepo *rawlead.Repository,
	mergedLeadRepo *mergedlead.Repository,
	publisher EventPublisher,
	graph GraphSyncer,
	summaries SummaryStore,
	logger ectologger.Logger,
) *BatchService {
	return &BatchService{
		coordinator:    coordinator,
		rawLeadRepo:    rawLeadRepo,
		mergedLeadRepo: mergedLeadRepo,
		publisher:      publisher,
		graph:          graph,
		summaries:      summaries,
		logger:         logger,
	}
}

// RunBatch re-derives the full lead set from every staged observation. The
// merged leads replace the previous batch in storage; event publishing, graph
// sync and summary caching are best effort and never fail the batch.
func (s *BatchService) RunBatch(ctx context.Context) (*models.BatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.BatchService.RunBatch")
	defer span.End()

	records, err := s.rawLeadRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load staged observations: %w", err)
	}

	result, err := s.coordinator.Run(ctx, records)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_id": result.BatchID,
	})

	if err := s.mergedLeadRepo.ReplaceBatch(ctx, result.BatchID, result.Leads); err != nil {
		return nil, fmt.Errorf("failed to persist batch %s: %w", result.BatchID, err)
	}

	if err := s.rawLeadRepo.MarkProcessed(ctx, result.CompletedAt); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		events := make([]*kafka.LeadEvent, len(result.Leads))
		for i, lead := range result.Leads {
			events[i] = &kafka.LeadEvent{
				EventType: "lead.scored",
				LeadID:    lead.ID,
				BatchID:   result.BatchID,
				Score:     lead.Score,
				Tier:      lead.Tier,
				Sources:   lead.Sources,
				Lead:      *lead,
				Timestamp: result.CompletedAt,
			}
		}
		if err := s.publisher.PublishLeadEvents(ctx, events); err != nil {
			log.WithError(err).Error("Failed to publish lead events")
		}
		if err := s.publisher.PublishBatchEvent(ctx, &kafka.BatchEvent{
			EventType: "batch.completed",
			BatchID:   result.BatchID,
			Summary:   result.Summary(),
			Timestamp: result.CompletedAt,
		}); err != nil {
			log.WithError(err).Error("Failed to publish batch event")
		}
	}

	if s.graph != nil {
		if err := s.graph.SyncBatch(ctx, result.BatchID, result.Leads); err != nil {
			log.WithError(err).Error("Failed to sync batch to graph")
		}
	}

	if s.summaries != nil {
		if err := s.summaries.SetSummary(ctx, result.Summary()); err != nil {
			log.WithError(err).Error("Failed to cache batch summary")
		}
	}

	return result, nil
}

// RunBatchWithTimeout runs a batch with an upper bound on total runtime.
func (s *BatchService) RunBatchWithTimeout(ctx context.Context, timeout time.Duration) (*models.BatchResult, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.RunBatch(ctx)
}
