package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Ramsey-B/yarrow/pkg/metrics"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

const (
	summaryKeyPrefix = "yarrow:batch:summary:"
	latestBatchKey   = "yarrow:batch:latest"
)

// SummaryCache stores batch summaries so dashboard reads skip the database.
type SummaryCache struct {
	client *Client
	ttl    time.Duration
}

// NewSummaryCache creates a summary cache with the given entry TTL.
func NewSummaryCache(client *Client, ttl time.Duration) *SummaryCache {
	return &SummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// SetSummary caches a batch summary and marks the batch as the latest.
func (c *SummaryCache) SetSummary(ctx context.Context, summary models.BatchSummary) error {
	ctx, span := tracing.StartSpan(ctx, "redis.SummaryCache.SetSummary")
	defer span.End()

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal batch summary: %w", err)
	}

	if err := c.client.Set(ctx, summaryKeyPrefix+summary.BatchID, data, c.ttl); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("failed to cache batch summary: %w", err)
	}
	if err := c.client.Set(ctx, latestBatchKey, summary.BatchID, c.ttl); err != nil {
		metrics.CacheOperations.WithLabelValues("set", "error").Inc()
		return fmt.Errorf("failed to cache latest batch id: %w", err)
	}

	metrics.CacheOperations.WithLabelValues("set", "success").Inc()
	return nil
}

// GetSummary returns the cached summary for a batch, or nil on a miss.
func (c *SummaryCache) GetSummary(ctx context.Context, batchID string) (*models.BatchSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "redis.SummaryCache.GetSummary")
	defer span.End()

	data, err := c.client.Get(ctx, summaryKeyPrefix+batchID)
	if err != nil {
		if IsNil(err) {
			metrics.CacheOperations.WithLabelValues("get", "miss").Inc()
			return nil, nil
		}
		metrics.CacheOperations.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("failed to read batch summary: %w", err)
	}

	var summary models.BatchSummary
	if err := json.Unmarshal([]byte(data), &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch summary: %w", err)
	}

	metrics.CacheOperations.WithLabelValues("get", "hit").Inc()
	return &summary, nil
}

// LatestBatchID returns the most recently completed batch ID, or empty on a
// miss.
func (c *SummaryCache) LatestBatchID(ctx context.Context) (string, error) {
	id, err := c.client.Get(ctx, latestBatchKey)
	if err != nil {
		if IsNil(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to read latest batch id: %w", err)
	}
	return id, nil
}
