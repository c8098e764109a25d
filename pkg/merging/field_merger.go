package merging

import (
	"sort"
	"time"

	"github.com/Ramsey-B/yarrow/pkg/models"
)

// FieldMerger reconciles the fields of a record cluster into a single lead.
type FieldMerger struct{}

// NewFieldMerger creates a new FieldMerger
func NewFieldMerger() *FieldMerger {
	return &FieldMerger{}
}

// completeness counts the populated scalar fields of a record. Fuller records
// win ties when two records have the same source priority.
func completeness(r *models.LeadRecord) int {
	count := 0
	for _, v := range []string{r.Name, r.Institution, r.Title, r.Email, r.ORCID} {
		if v != "" {
			count++
		}
	}
	if len(r.Keywords) > 0 {
		count++
	}
	if !r.LastActivity.IsZero() {
		count++
	}
	return count
}

// moreTrusted reports whether a beats b in the reconciliation total order:
// source priority, then completeness, then lowest record ID. The record ID
// tiebreak makes the order total, so reconciliation cannot depend on input
// order.
func moreTrusted(a, b *models.LeadRecord) bool {
	if a.Source.Priority() != b.Source.Priority() {
		return a.Source.Priority() > b.Source.Priority()
	}
	if completeness(a) != completeness(b) {
		return completeness(a) > completeness(b)
	}
	return a.ID < b.ID
}

// rankByTrust returns the records sorted most-trusted first.
func (m *FieldMerger) rankByTrust(records []*models.LeadRecord) []*models.LeadRecord {
	ranked := make([]*models.LeadRecord, len(records))
	copy(ranked, records)
	sort.Slice(ranked, func(i, j int) bool {
		return moreTrusted(ranked[i], ranked[j])
	})
	return ranked
}

// MostTrusted returns the first non-empty value in trust order.
func (m *FieldMerger) MostTrusted(records []*models.LeadRecord, value func(*models.LeadRecord) string) string {
	for _, r := range m.rankByTrust(records) {
		if v := value(r); v != "" {
			return v
		}
	}
	return ""
}

// BestEmail picks the email with the highest confidence. Trust order breaks
// confidence ties. Returns the email and its confidence.
func (m *FieldMerger) BestEmail(records []*models.LeadRecord) (string, float64) {
	var best *models.LeadRecord
	for _, r := range m.rankByTrust(records) {
		if r.Email == "" {
			continue
		}
		if best == nil || r.EmailConfidence > best.EmailConfidence {
			best = r
		}
	}
	if best == nil {
		return "", 0
	}
	return best.Email, best.EmailConfidence
}

// counts holds the additive activity counts of a lead.
type counts struct {
	Publications int
	Grants       int
	Trials       int
	Citations    int
	Conferences  int
}

// SumCounts adds up activity counts across the cluster, counting each source
// artifact once. Records repeating another record's (source, source record
// id) pair describe the same artifact and are dropped. Returns the totals and
// the number of dropped duplicates.
func (m *FieldMerger) SumCounts(records []*models.LeadRecord) (counts, int) {
	var total counts
	seen := make(map[string]bool, len(records))
	duplicates := 0

	// Iterate in trust order so the surviving artifact is deterministic
	for _, r := range m.rankByTrust(records) {
		key := r.ArtifactKey()
		if seen[key] {
			duplicates++
			continue
		}
		seen[key] = true

		total.Publications += r.Publications
		total.Grants += r.Grants
		total.Trials += r.Trials
		total.Citations += r.Citations
		total.Conferences += r.Conferences
	}

	return total, duplicates
}

// LatestActivity returns the most recent activity date in the cluster.
func (m *FieldMerger) LatestActivity(records []*models.LeadRecord) time.Time {
	var latest time.Time
	for _, r := range records {
		if r.LastActivity.After(latest) {
			latest = r.LastActivity
		}
	}
	return latest
}

// UnionKeywords returns the sorted union of the normalized keyword sets.
func (m *FieldMerger) UnionKeywords(records []*models.LeadRecord, normalize func(string) string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, r := range records {
		for _, k := range r.Keywords {
			normalized := normalize(k)
			if normalized == "" || seen[normalized] {
				continue
			}
			seen[normalized] = true
			keywords = append(keywords, normalized)
		}
	}
	sort.Strings(keywords)
	return keywords
}

// DistinctSources returns the sorted distinct sources of the cluster.
func (m *FieldMerger) DistinctSources(records []*models.LeadRecord) []string {
	seen := make(map[string]bool, len(records))
	var sources []string
	for _, r := range records {
		s := string(r.Source)
		if seen[s] {
			continue
		}
		seen[s] = true
		sources = append(sources, s)
	}
	sort.Strings(sources)
	return sources
}
