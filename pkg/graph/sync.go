package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/yarrow/pkg/metrics"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

// Syncer mirrors scored leads and their institution affiliations into the
// graph, where analysts explore who-works-where relationships.
type Syncer struct {
	client *Client
	logger ectologger.Logger
}

// NewSyncer creates a new graph syncer
func NewSyncer(client *Client, logger ectologger.Logger) *Syncer {
	return &Syncer{
		client: client,
		logger: logger,
	}
}

// SyncLead upserts a lead node and its AFFILIATED_WITH edge.
func (s *Syncer) SyncLead(ctx context.Context, lead *models.MergedLead) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Syncer.SyncLead")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"lead_id":  lead.ID,
		"batch_id": lead.BatchID,
	})

	props := map[string]any{
		"id":            lead.ID,
		"batch_id":      lead.BatchID,
		"name":          lead.Name,
		"title":         lead.Title,
		"email":         lead.Email,
		"orcid":         lead.ORCID,
		"score":         lead.Score,
		"tier":          string(lead.Tier),
		"sources":       strings.Join(lead.Sources, ","),
		"publications":  lead.Publications,
		"grants":        lead.Grants,
		"trials":        lead.Trials,
		"citations":     lead.Citations,
		"conferences":   lead.Conferences,
		"last_activity": lead.LastActivity.UTC().Format("2006-01-02"),
	}

	cypher := `
		MERGE (l:Lead {id: $id})
		SET l = $props
	`
	params := map[string]any{
		"id":    lead.ID,
		"props": props,
	}

	if lead.Institution != "" {
		cypher = `
			MERGE (l:Lead {id: $id})
			SET l = $props
			MERGE (i:Institution {name: $institution})
			MERGE (l)-[:AFFILIATED_WITH]->(i)
		`
		params["institution"] = lead.Institution
	}

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})

	if err != nil {
		metrics.GraphSyncTotal.WithLabelValues("error").Inc()
		log.WithError(err).Error("Failed to sync lead to graph")
		return fmt.Errorf("failed to sync lead to graph: %w", err)
	}

	metrics.GraphSyncTotal.WithLabelValues("success").Inc()
	log.Debug("Synced lead to graph")
	return nil
}

// SyncBatch upserts every lead of a batch and removes leads from prior
// batches, keeping the graph aligned with the latest run.
func (s *Syncer) SyncBatch(ctx context.Context, batchID string, leads []*models.MergedLead) error {
	ctx, span := tracing.StartSpan(ctx, "graph.Syncer.SyncBatch")
	defer span.End()

	for _, lead := range leads {
		if err := s.SyncLead(ctx, lead); err != nil {
			return err
		}
	}

	// Drop leads that did not survive into this batch
	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (l:Lead)
			WHERE l.batch_id <> $batch_id
			DETACH DELETE l
		`, map[string]any{"batch_id": batchID})
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to prune stale leads from graph: %w", err)
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_id": batchID,
		"leads":    len(leads),
	}).Info("Synced batch to graph")

	return nil
}

// LeadsByInstitution returns the IDs of leads affiliated with an institution,
// ordered by score.
func (s *Syncer) LeadsByInstitution(ctx context.Context, institution string) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "graph.Syncer.LeadsByInstitution")
	defer span.End()

	records, err := s.client.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, `
			MATCH (l:Lead)-[:AFFILIATED_WITH]->(i:Institution {name: $institution})
			RETURN l.id AS id
			ORDER BY l.score DESC
		`, map[string]any{"institution": institution})
		if err != nil {
			return nil, err
		}

		var ids []string
		for result.Next(ctx) {
			if id, ok := result.Record().Get("id"); ok {
				if s, ok := id.(string); ok {
					ids = append(ids, s)
				}
			}
		}
		return ids, result.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query leads by institution: %w", err)
	}

	ids, _ := records.([]string)
	return ids, nil
}
