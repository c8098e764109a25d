package merging

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"

	"github.com/Ramsey-B/yarrow/pkg/matching"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/normalizers"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

// Config holds resolver settings.
type Config struct {
	// MergeThreshold is the minimum pair similarity that links two records
	// into the same cluster.
	MergeThreshold float64 `json:"merge_threshold"`
}

// DefaultConfig returns the standard merge threshold.
func DefaultConfig() Config {
	return Config{MergeThreshold: 0.80}
}

// Validate checks the threshold is a valid similarity.
func (c Config) Validate() error {
	if c.MergeThreshold < 0 || c.MergeThreshold > 1 {
		return fmt.Errorf("merge threshold must be in [0, 1], got %f", c.MergeThreshold)
	}
	return nil
}

// Resolver clusters records with union-find and reconciles each cluster into
// one merged lead.
type Resolver struct {
	cfg    Config
	merger *FieldMerger
	logger ectologger.Logger
}

// NewResolver creates a resolver, validating the config.
func NewResolver(cfg Config, logger ectologger.Logger) (*Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid merging config: %w", err)
	}
	return &Resolver{
		cfg:    cfg,
		merger: NewFieldMerger(),
		logger: logger,
	}, nil
}

// Resolve partitions the records into clusters using the scored pairs and
// reconciles each cluster. Every record lands in exactly one lead. The output
// is sorted by lead ID and is identical for any permutation of the input.
// The second return value is the number of duplicate source artifacts dropped
// while summing counts.
func (r *Resolver) Resolve(ctx context.Context, records []*models.LeadRecord, pairs []matching.PairScore) ([]*models.MergedLead, int, error) {
	ctx, span := tracing.StartSpan(ctx, "merging.Resolver.Resolve")
	defer span.End()

	if len(records) == 0 {
		return nil, 0, nil
	}

	uf := NewUnionFind(len(records))
	for _, p := range pairs {
		if p.I < 0 || p.J >= len(records) {
			return nil, 0, fmt.Errorf("pair (%d, %d) out of range for %d records", p.I, p.J, len(records))
		}
		if p.Score >= r.cfg.MergeThreshold {
			uf.Union(p.I, p.J)
		}
	}

	leads := make([]*models.MergedLead, 0, uf.Count())
	duplicates := 0
	for _, member := range uf.Components() {
		cluster := make([]*models.LeadRecord, len(member))
		for i, idx := range member {
			cluster[i] = records[idx]
		}

		lead, dups := r.reconcile(cluster)
		leads = append(leads, lead)
		duplicates += dups
	}

	sort.Slice(leads, func(i, j int) bool {
		return leads[i].ID < leads[j].ID
	})

	r.logger.WithContext(ctx).WithFields(map[string]any{
		"records":            len(records),
		"merged_leads":       len(leads),
		"duplicate_artifacts": duplicates,
	}).Debug("Resolved record clusters")

	return leads, duplicates, nil
}

// reconcile collapses one cluster into a merged lead.
func (r *Resolver) reconcile(cluster []*models.LeadRecord) (*models.MergedLead, int) {
	// Sort members by record ID so reconciliation sees a canonical order
	sort.Slice(cluster, func(i, j int) bool {
		return cluster[i].ID < cluster[j].ID
	})

	email, confidence := r.merger.BestEmail(cluster)
	total, duplicates := r.merger.SumCounts(cluster)

	refs := make([]models.SourceRecordRef, len(cluster))
	for i, rec := range cluster {
		refs[i] = models.SourceRecordRef{
			RecordID:       rec.ID,
			Source:         rec.Source,
			SourceRecordID: rec.SourceRecordID,
		}
	}

	lead := &models.MergedLead{
		ID:              leadID(cluster),
		Name:            r.merger.MostTrusted(cluster, func(rec *models.LeadRecord) string { return rec.Name }),
		Institution:     r.merger.MostTrusted(cluster, func(rec *models.LeadRecord) string { return rec.Institution }),
		Title:           r.merger.MostTrusted(cluster, func(rec *models.LeadRecord) string { return rec.Title }),
		Email:           email,
		EmailConfidence: confidence,
		ORCID:           r.merger.MostTrusted(cluster, func(rec *models.LeadRecord) string { return rec.ORCID }),
		Publications:    total.Publications,
		Grants:          total.Grants,
		Trials:          total.Trials,
		Citations:       total.Citations,
		Conferences:     total.Conferences,
		LastActivity:    r.merger.LatestActivity(cluster),
		Keywords:        r.merger.UnionKeywords(cluster, normalizers.NormalizeKeyword),
		Sources:         r.merger.DistinctSources(cluster),
		SourceRecords:   refs,
	}

	return lead, duplicates
}

// leadID derives a deterministic lead ID from the sorted contributing record
// IDs, so re-running a batch yields the same lead IDs.
func leadID(cluster []*models.LeadRecord) string {
	ids := make([]string, len(cluster))
	for i, rec := range cluster {
		ids[i] = rec.ID
	}
	sort.Strings(ids)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(strings.Join(ids, "|"))).String()
}
