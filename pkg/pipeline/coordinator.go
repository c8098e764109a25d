// Package pipeline sequences the lead batch stages: validate, match, resolve,
// score, rank.
package pipeline

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/yarrow/pkg/matching"
	"github.com/Ramsey-B/yarrow/pkg/merging"
	"github.com/Ramsey-B/yarrow/pkg/metrics"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/scoring"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

// Config holds coordinator settings.
type Config struct {
	// MaxBatchSize caps the records per run. 0 means unlimited. Oversized
	// batches are rejected before any stage runs.
	MaxBatchSize int `json:"max_batch_size"`
}

// Coordinator runs the full deduplicate-and-score pipeline over a record
// batch.
type Coordinator struct {
	cfg      Config
	engine   *matching.Engine
	resolver *merging.Resolver
	scorer   *scoring.Engine
	logger   ectologger.Logger
}

// NewCoordinator wires the pipeline stages together.
func NewCoordinator(cfg Config, engine *matching.Engine, resolver *merging.Resolver, scorer *scoring.Engine, logger ectologger.Logger) (*Coordinator, error) {
	if cfg.MaxBatchSize < 0 {
		return nil, fmt.Errorf("max batch size must not be negative, got %d", cfg.MaxBatchSize)
	}
	return &Coordinator{
		cfg:      cfg,
		engine:   engine,
		resolver: resolver,
		scorer:   scorer,
		logger:   logger,
	}, nil
}

// Run executes all pipeline stages over the records and returns the ranked
// result. Records missing both name and institution are skipped and counted,
// never fatal. The output lead set is identical for any permutation of the
// input.
func (c *Coordinator) Run(ctx context.Context, records []*models.LeadRecord) (*models.BatchResult, error) {
	ctx, span := tracing.StartSpan(ctx, "pipeline.Coordinator.Run")
	defer span.End()

	if c.cfg.MaxBatchSize > 0 && len(records) > c.cfg.MaxBatchSize {
		metrics.RecordBatch("rejected", 0)
		return nil, fmt.Errorf("batch of %d records exceeds the maximum of %d", len(records), c.cfg.MaxBatchSize)
	}

	result := &models.BatchResult{
		BatchID:    uuid.New().String(),
		RawRecords: len(records),
		StartedAt:  time.Now().UTC(),
	}

	log := c.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_id":    result.BatchID,
		"raw_records": len(records),
	})
	log.Info("Starting pipeline batch")

	// Validate: drop records with no matchable identity
	stageStart := time.Now()
	valid := make([]*models.LeadRecord, 0, len(records))
	for _, r := range records {
		if r.HasIdentity() {
			valid = append(valid, r)
		} else {
			result.SkippedRecords++
		}
	}
	result.Timings.Validate = time.Since(stageStart)
	metrics.RecordStage("validate", result.Timings.Validate.Seconds())

	// Similarity: score candidate pairs
	stageStart = time.Now()
	pairs, err := c.engine.ScorePairs(ctx, valid)
	if err != nil {
		metrics.RecordBatch("failed", time.Since(result.StartedAt).Seconds())
		return nil, fmt.Errorf("similarity stage failed: %w", err)
	}
	result.Comparisons = len(pairs)
	metrics.ComparisonsTotal.Add(float64(len(pairs)))
	result.Timings.Similarity = time.Since(stageStart)
	metrics.RecordStage("similarity", result.Timings.Similarity.Seconds())

	// Resolve: cluster and reconcile
	stageStart = time.Now()
	leads, duplicates, err := c.resolver.Resolve(ctx, valid, pairs)
	if err != nil {
		metrics.RecordBatch("failed", time.Since(result.StartedAt).Seconds())
		return nil, fmt.Errorf("resolve stage failed: %w", err)
	}
	result.DuplicatesRemoved = duplicates
	result.Timings.Resolve = time.Since(stageStart)
	metrics.RecordStage("resolve", result.Timings.Resolve.Seconds())

	// Score: every lead sees the batch start time as "now"
	stageStart = time.Now()
	c.scorer.ScoreAll(leads, result.StartedAt)
	for _, lead := range leads {
		lead.BatchID = result.BatchID
		lead.CreatedAt = result.StartedAt
		metrics.LeadsScored.WithLabelValues(string(lead.Tier)).Inc()
	}
	result.Timings.Score = time.Since(stageStart)
	metrics.RecordStage("score", result.Timings.Score.Seconds())

	// Rank: score desc, most recent activity first, lead ID as final tiebreak
	sort.Slice(leads, func(i, j int) bool {
		if leads[i].Score != leads[j].Score {
			return leads[i].Score > leads[j].Score
		}
		if !leads[i].LastActivity.Equal(leads[j].LastActivity) {
			return leads[i].LastActivity.After(leads[j].LastActivity)
		}
		return leads[i].ID < leads[j].ID
	})

	result.Leads = leads
	result.MergedLeads = len(leads)
	result.TierSummary = models.NewTierSummary(leads)
	result.CompletedAt = time.Now().UTC()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)

	metrics.RecordBatch("completed", result.Duration.Seconds())

	log.WithFields(map[string]any{
		"merged_leads":       result.MergedLeads,
		"skipped_records":    result.SkippedRecords,
		"duplicates_removed": result.DuplicatesRemoved,
		"comparisons":        result.Comparisons,
		"duration":           result.Duration,
	}).Info("Pipeline batch completed")

	return result, nil
}
