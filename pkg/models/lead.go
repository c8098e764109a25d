package models

import (
	"time"

	"github.com/lib/pq"
)

// LeadRecord is a single raw observation of a researcher in a public
// biomedical source. Records are immutable once ingested; the pipeline never
// mutates them.
type LeadRecord struct {
	ID              string         `json:"id" db:"id"`
	Source          Source         `json:"source" db:"source"`
	SourceRecordID  string         `json:"source_record_id" db:"source_record_id"`
	Name            string         `json:"name" db:"name"`
	Institution     string         `json:"institution" db:"institution"`
	Title           string         `json:"title" db:"title"`
	Email           string         `json:"email" db:"email"`
	EmailConfidence float64        `json:"email_confidence" db:"email_confidence"`
	ORCID           string         `json:"orcid" db:"orcid"`
	Publications    int            `json:"publications" db:"publications"`
	Grants          int            `json:"grants" db:"grants"`
	Trials          int            `json:"trials" db:"trials"`
	Citations       int            `json:"citations" db:"citations"`
	Conferences     int            `json:"conferences" db:"conferences"`
	LastActivity    time.Time      `json:"last_activity" db:"last_activity"`
	Keywords        pq.StringArray `json:"keywords" db:"keywords"`
	Fingerprint     string         `json:"-" db:"fingerprint"`
	IngestedAt      time.Time      `json:"ingested_at" db:"ingested_at"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty" db:"processed_at"`
}

// HasIdentity reports whether the record carries enough signal to be matched.
// Records with neither a name nor an institution are skipped by the pipeline.
func (r *LeadRecord) HasIdentity() bool {
	return r.Name != "" || r.Institution != ""
}

// ArtifactKey identifies the underlying source artifact. Two records with the
// same key describe the same publication/grant/etc and must not be counted
// twice when activity counts are summed.
func (r *LeadRecord) ArtifactKey() string {
	return string(r.Source) + ":" + r.SourceRecordID
}

// SourceRecordRef is the provenance pointer a merged lead keeps for each
// contributing record.
type SourceRecordRef struct {
	RecordID       string `json:"record_id"`
	Source         Source `json:"source"`
	SourceRecordID string `json:"source_record_id"`
}

// ScoreBreakdown holds the weighted contribution of each rubric feature,
// keyed by feature name. Values are the weighted sub-scores, so they sum to
// Score/100.
type ScoreBreakdown map[string]float64

// MergedLead is a canonical deduplicated lead with reconciled fields and a
// propensity score.
type MergedLead struct {
	ID              string            `json:"id" db:"id"`
	BatchID         string            `json:"batch_id" db:"batch_id"`
	Name            string            `json:"name" db:"name"`
	Institution     string            `json:"institution" db:"institution"`
	Title           string            `json:"title" db:"title"`
	Email           string            `json:"email" db:"email"`
	EmailConfidence float64           `json:"email_confidence" db:"email_confidence"`
	ORCID           string            `json:"orcid" db:"orcid"`
	Publications    int               `json:"publications" db:"publications"`
	Grants          int               `json:"grants" db:"grants"`
	Trials          int               `json:"trials" db:"trials"`
	Citations       int               `json:"citations" db:"citations"`
	Conferences     int               `json:"conferences" db:"conferences"`
	LastActivity    time.Time         `json:"last_activity" db:"last_activity"`
	Keywords        pq.StringArray    `json:"keywords" db:"keywords"`
	Sources         pq.StringArray    `json:"sources" db:"sources"`
	SourceRecords   []SourceRecordRef `json:"source_records" db:"-"`
	Score           int               `json:"score" db:"score"`
	Tier            Tier              `json:"tier" db:"tier"`
	Breakdown       ScoreBreakdown    `json:"breakdown" db:"-"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
}
