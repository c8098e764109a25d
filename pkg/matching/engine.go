package matching

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/normalizers"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

// Config holds the similarity blend weights and worker fan-out.
type Config struct {
	NameWeight        float64 `json:"name_weight"`
	InstitutionWeight float64 `json:"institution_weight"`
	EmailWeight       float64 `json:"email_weight"`
	KeywordWeight     float64 `json:"keyword_weight"`
	Workers           int     `json:"workers"`
}

// DefaultConfig returns the standard blend weights.
func DefaultConfig() Config {
	return Config{
		NameWeight:        0.40,
		InstitutionWeight: 0.25,
		EmailWeight:       0.20,
		KeywordWeight:     0.15,
		Workers:           4,
	}
}

// Validate checks the blend weights. Weights must be non-negative and sum to
// 1.0 so a full match always scores 1.0.
func (c Config) Validate() error {
	weights := map[string]float64{
		"name_weight":        c.NameWeight,
		"institution_weight": c.InstitutionWeight,
		"email_weight":       c.EmailWeight,
		"keyword_weight":     c.KeywordWeight,
	}

	var sum float64
	for name, w := range weights {
		if w < 0 {
			return fmt.Errorf("%s must not be negative, got %f", name, w)
		}
		sum += w
	}
	if sum < 1.0-1e-9 || sum > 1.0+1e-9 {
		return fmt.Errorf("similarity weights must sum to 1.0, got %f", sum)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	return nil
}

// PairScore is the similarity of one candidate record pair. I and J index
// into the record slice passed to ScorePairs, with I < J.
type PairScore struct {
	I     int
	J     int
	Score float64
}

// Engine computes pairwise lead similarity.
type Engine struct {
	cfg    Config
	scorer *Scorer
	logger ectologger.Logger
}

// NewEngine creates a similarity engine, validating the config.
func NewEngine(cfg Config, logger ectologger.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	return &Engine{
		cfg:    cfg,
		scorer: NewScorer(),
		logger: logger,
	}, nil
}

// profile caches the normalized comparison fields of a record.
type profile struct {
	name        string
	institution string
	email       string
	orcid       string
	keywords    []string
	key         normalizers.Key
}

func (e *Engine) profileFor(r *models.LeadRecord) profile {
	return profile{
		name:        normalizers.NormalizeName(r.Name),
		institution: normalizers.NormalizeInstitution(r.Institution),
		email:       normalizers.NormalizeEmail(r.Email),
		orcid:       normalizers.Trim(r.ORCID),
		keywords:    normalizers.NormalizeKeywords(r.Keywords),
		key:         normalizers.KeyFor(r.Name, r.Institution),
	}
}

// Similarity returns the blended similarity of two records in [0, 1].
// Symmetric: Similarity(a, b) == Similarity(b, a).
func (e *Engine) Similarity(a, b *models.LeadRecord) float64 {
	return e.similarity(e.profileFor(a), e.profileFor(b))
}

func (e *Engine) similarity(a, b profile) float64 {
	// An ORCID is a verified identity. Agreement decides the pair outright,
	// disagreement rules it out no matter how alike the names look.
	if a.orcid != "" && b.orcid != "" {
		if a.orcid == b.orcid {
			return 1.0
		}
		return 0.0
	}

	// Only signals present on both sides enter the blend. WeightedScore
	// renormalizes over the included weights, so a record without an email
	// or keywords is scored on what it does carry, not penalized for the
	// gap.
	scores := make(map[string]float64, 4)
	weights := make(map[string]float64, 4)

	if a.name != "" && b.name != "" {
		scores["name"] = e.scorer.Levenshtein(a.name, b.name)
		weights["name"] = e.cfg.NameWeight
	}
	if a.institution != "" && b.institution != "" {
		scores["institution"] = e.scorer.Levenshtein(a.institution, b.institution)
		weights["institution"] = e.cfg.InstitutionWeight
	}
	if a.email != "" && b.email != "" {
		scores["email"] = e.scorer.ExactMatch(a.email, b.email)
		weights["email"] = e.cfg.EmailWeight
	}
	if len(a.keywords) > 0 && len(b.keywords) > 0 {
		scores["keywords"] = e.scorer.Jaccard(a.keywords, b.keywords)
		weights["keywords"] = e.cfg.KeywordWeight
	}

	return e.scorer.WeightedScore(scores, weights)
}

// ScorePairs generates candidate pairs by bucket, scores them across worker
// goroutines, and returns the scored pairs sorted by (I, J). The sort makes
// the output independent of worker scheduling.
func (e *Engine) ScorePairs(ctx context.Context, records []*models.LeadRecord) ([]PairScore, error) {
	ctx, span := tracing.StartSpan(ctx, "matching.Engine.ScorePairs")
	defer span.End()

	profiles := make([]profile, len(records))
	for i, r := range records {
		profiles[i] = e.profileFor(r)
	}

	pairs := candidatePairs(profiles, e.scorer)

	e.logger.WithContext(ctx).WithFields(map[string]any{
		"records":         len(records),
		"candidate_pairs": len(pairs),
	}).Debug("Scoring candidate pairs")

	if len(pairs) == 0 {
		return nil, nil
	}

	workers := e.cfg.Workers
	if workers > len(pairs) {
		workers = len(pairs)
	}

	results := make([]PairScore, len(pairs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				p := pairs[idx]
				results[idx] = PairScore{
					I:     p[0],
					J:     p[1],
					Score: e.similarity(profiles[p[0]], profiles[p[1]]),
				}
			}
		}()
	}

	done := ctx.Done()
	cancelled := false
	for idx := range pairs {
		select {
		case <-done:
			cancelled = true
		case jobs <- idx:
		}
		if cancelled {
			break
		}
	}
	close(jobs)
	wg.Wait()

	if cancelled || ctx.Err() != nil {
		return nil, ctx.Err()
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].I != results[j].I {
			return results[i].I < results[j].I
		}
		return results[i].J < results[j].J
	})

	return results, nil
}
