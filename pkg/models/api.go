package models

import "time"

// IngestLeadRequest is the payload accepted by the ingest endpoint and the
// Kafka lead topic.
type IngestLeadRequest struct {
	Source          string    `json:"source" validate:"required"`
	SourceRecordID  string    `json:"source_record_id" validate:"required"`
	Name            string    `json:"name"`
	Institution     string    `json:"institution"`
	Title           string    `json:"title"`
	Email           string    `json:"email"`
	EmailConfidence float64   `json:"email_confidence" validate:"gte=0,lte=1"`
	ORCID           string    `json:"orcid"`
	Publications    int       `json:"publications" validate:"gte=0"`
	Grants          int       `json:"grants" validate:"gte=0"`
	Trials          int       `json:"trials" validate:"gte=0"`
	Citations       int       `json:"citations" validate:"gte=0"`
	Conferences     int       `json:"conferences" validate:"gte=0"`
	LastActivity    time.Time `json:"last_activity"`
	Keywords        []string  `json:"keywords"`
}

// LeadListResponse is a paginated list of merged leads.
type LeadListResponse struct {
	Items      []MergedLead `json:"items"`
	TotalCount int          `json:"total_count"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
}

// LeadResponse wraps a single merged lead.
type LeadResponse struct {
	Lead MergedLead `json:"lead"`
}

// RunBatchResponse is returned when a batch run completes.
type RunBatchResponse struct {
	Summary BatchSummary `json:"summary"`
}
