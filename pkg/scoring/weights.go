package scoring

import (
	"fmt"

	"github.com/Ramsey-B/yarrow/pkg/models"
)

// Weights holds the rubric feature weights. They must sum to 1.0.
type Weights struct {
	Publications   float64 `json:"publications" validate:"gte=0"`
	Grants         float64 `json:"grants" validate:"gte=0"`
	Trials         float64 `json:"trials" validate:"gte=0"`
	Citations      float64 `json:"citations" validate:"gte=0"`
	Conferences    float64 `json:"conferences" validate:"gte=0"`
	Recency        float64 `json:"recency" validate:"gte=0"`
	RoleFit        float64 `json:"role_fit" validate:"gte=0"`
	InstitutionFit float64 `json:"institution_fit" validate:"gte=0"`
	TopicRelevance float64 `json:"topic_relevance" validate:"gte=0"`
}

// Sum returns the total of all weights.
func (w Weights) Sum() float64 {
	return w.Publications + w.Grants + w.Trials + w.Citations + w.Conferences +
		w.Recency + w.RoleFit + w.InstitutionFit + w.TopicRelevance
}

// Saturation holds the count at which each activity feature reaches its
// maximum contribution.
type Saturation struct {
	Publications int `json:"publications" validate:"gt=0"`
	Grants       int `json:"grants" validate:"gt=0"`
	Trials       int `json:"trials" validate:"gt=0"`
	Citations    int `json:"citations" validate:"gt=0"`
	Conferences  int `json:"conferences" validate:"gt=0"`
}

// Recency holds the activity-age bands. Activity within FullYears scores
// 1.0 and decays linearly to 0 at ZeroYears.
type Recency struct {
	FullYears float64 `json:"full_years" validate:"gt=0"`
	ZeroYears float64 `json:"zero_years" validate:"gt=0"`
}

// Rubric is the full scoring configuration, including the role and
// institution classification tables.
type Rubric struct {
	Weights               Weights               `json:"weights"`
	Saturation            Saturation            `json:"saturation"`
	Recency               Recency               `json:"recency"`
	TargetKeywords        []string              `json:"target_keywords"`
	RoleTiers             []RoleTier            `json:"role_tiers" validate:"dive"`
	InstitutionClasses    []InstitutionClass    `json:"institution_classes" validate:"dive"`
	UnknownInstitutionFit float64               `json:"unknown_institution_fit" validate:"gte=0,lte=1"`
	Tiers                 models.TierThresholds `json:"tiers"`
}

// DefaultRubric returns the standard commercial rubric.
func DefaultRubric() Rubric {
	return Rubric{
		Weights: Weights{
			Publications:   0.15,
			Grants:         0.20,
			Trials:         0.10,
			Citations:      0.05,
			Conferences:    0.10,
			Recency:        0.10,
			RoleFit:        0.10,
			InstitutionFit: 0.10,
			TopicRelevance: 0.10,
		},
		Saturation: Saturation{
			Publications: 10,
			Grants:       3,
			Trials:       3,
			Citations:    1000,
			Conferences:  5,
		},
		Recency: Recency{
			FullYears: 2,
			ZeroYears: 5,
		},
		TargetKeywords: []string{
			"oncology",
			"immunotherapy",
			"gene therapy",
			"crispr",
			"biologics",
			"clinical genomics",
			"drug discovery",
			"precision medicine",
		},
		RoleTiers:             defaultRoleTiers,
		InstitutionClasses:    defaultInstitutionClasses,
		UnknownInstitutionFit: defaultUnknownInstitutionFit,
		Tiers:                 models.DefaultTierThresholds(),
	}
}

// Validate rejects rubrics that would produce scores outside [0, 100] or
// undefined feature values. Called once at config load; the engine assumes a
// valid rubric afterwards.
func (r Rubric) Validate() error {
	weights := map[string]float64{
		"publications":    r.Weights.Publications,
		"grants":          r.Weights.Grants,
		"trials":          r.Weights.Trials,
		"citations":       r.Weights.Citations,
		"conferences":     r.Weights.Conferences,
		"recency":         r.Weights.Recency,
		"role_fit":        r.Weights.RoleFit,
		"institution_fit": r.Weights.InstitutionFit,
		"topic_relevance": r.Weights.TopicRelevance,
	}
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("weight %s must not be negative, got %f", name, w)
		}
	}

	sum := r.Weights.Sum()
	if sum < 1.0-1e-9 || sum > 1.0+1e-9 {
		return fmt.Errorf("rubric weights must sum to 1.0, got %f", sum)
	}

	saturations := map[string]int{
		"publications": r.Saturation.Publications,
		"grants":       r.Saturation.Grants,
		"trials":       r.Saturation.Trials,
		"citations":    r.Saturation.Citations,
		"conferences":  r.Saturation.Conferences,
	}
	for name, s := range saturations {
		if s <= 0 {
			return fmt.Errorf("saturation %s must be positive, got %d", name, s)
		}
	}

	for i, tier := range r.RoleTiers {
		if len(tier.Keywords) == 0 {
			return fmt.Errorf("role tier %d has no keywords", i)
		}
		if tier.Fit < 0 || tier.Fit > 1 {
			return fmt.Errorf("role tier %d fit must be in [0, 1], got %f", i, tier.Fit)
		}
	}
	for i, class := range r.InstitutionClasses {
		if len(class.Keywords) == 0 {
			return fmt.Errorf("institution class %d has no keywords", i)
		}
		if class.Fit < 0 || class.Fit > 1 {
			return fmt.Errorf("institution class %d fit must be in [0, 1], got %f", i, class.Fit)
		}
	}
	if r.UnknownInstitutionFit < 0 || r.UnknownInstitutionFit > 1 {
		return fmt.Errorf("unknown institution fit must be in [0, 1], got %f", r.UnknownInstitutionFit)
	}

	if r.Recency.FullYears <= 0 || r.Recency.ZeroYears <= 0 {
		return fmt.Errorf("recency bands must be positive, got full=%f zero=%f", r.Recency.FullYears, r.Recency.ZeroYears)
	}
	if r.Recency.FullYears >= r.Recency.ZeroYears {
		return fmt.Errorf("recency full band (%f years) must be shorter than the zero band (%f years)", r.Recency.FullYears, r.Recency.ZeroYears)
	}

	if r.Tiers.Hot < r.Tiers.Warm || r.Tiers.Warm < r.Tiers.Cold || r.Tiers.Cold < 0 || r.Tiers.Hot > 100 {
		return fmt.Errorf("tier thresholds must satisfy 0 <= cold <= warm <= hot <= 100, got hot=%d warm=%d cold=%d", r.Tiers.Hot, r.Tiers.Warm, r.Tiers.Cold)
	}

	return nil
}
