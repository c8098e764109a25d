package models

import "time"

// TierSummary aggregates the scored leads of a batch by tier.
type TierSummary struct {
	Counts       map[Tier]int `json:"counts"`
	TotalLeads   int          `json:"total_leads"`
	AverageScore float64      `json:"average_score"`
	TopScore     int          `json:"top_score"`
}

// NewTierSummary computes the tier summary for a set of scored leads.
func NewTierSummary(leads []*MergedLead) TierSummary {
	summary := TierSummary{
		Counts: map[Tier]int{
			TierHot:  0,
			TierWarm: 0,
			TierCold: 0,
			TierIce:  0,
		},
		TotalLeads: len(leads),
	}

	if len(leads) == 0 {
		return summary
	}

	var total int
	for _, lead := range leads {
		summary.Counts[lead.Tier]++
		total += lead.Score
		if lead.Score > summary.TopScore {
			summary.TopScore = lead.Score
		}
	}
	summary.AverageScore = float64(total) / float64(len(leads))

	return summary
}

// StageTimings records how long each pipeline stage took.
type StageTimings struct {
	Validate   time.Duration `json:"validate"`
	Similarity time.Duration `json:"similarity"`
	Resolve    time.Duration `json:"resolve"`
	Score      time.Duration `json:"score"`
}

// BatchResult is the output of one pipeline run.
type BatchResult struct {
	BatchID           string        `json:"batch_id"`
	Leads             []*MergedLead `json:"leads"`
	RawRecords        int           `json:"raw_records"`
	MergedLeads       int           `json:"merged_leads"`
	SkippedRecords    int           `json:"skipped_records"`
	DuplicatesRemoved int           `json:"duplicates_removed"`
	Comparisons       int           `json:"comparisons"`
	TierSummary       TierSummary   `json:"tier_summary"`
	Timings           StageTimings  `json:"timings"`
	Duration          time.Duration `json:"duration"`
	StartedAt         time.Time     `json:"started_at"`
	CompletedAt       time.Time     `json:"completed_at"`
}

// BatchSummary is the cached, lead-free view of a batch result served to
// dashboard consumers.
type BatchSummary struct {
	BatchID           string      `json:"batch_id"`
	RawRecords        int         `json:"raw_records"`
	MergedLeads       int         `json:"merged_leads"`
	SkippedRecords    int         `json:"skipped_records"`
	DuplicatesRemoved int         `json:"duplicates_removed"`
	TierSummary       TierSummary `json:"tier_summary"`
	DurationMillis    int64       `json:"duration_ms"`
	CompletedAt       time.Time   `json:"completed_at"`
}

// Summary strips the lead list from a batch result.
func (r *BatchResult) Summary() BatchSummary {
	return BatchSummary{
		BatchID:           r.BatchID,
		RawRecords:        r.RawRecords,
		MergedLeads:       r.MergedLeads,
		SkippedRecords:    r.SkippedRecords,
		DuplicatesRemoved: r.DuplicatesRemoved,
		TierSummary:       r.TierSummary,
		DurationMillis:    r.Duration.Milliseconds(),
		CompletedAt:       r.CompletedAt,
	}
}
