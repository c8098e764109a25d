package scoring

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/yarrow/pkg/matching"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/normalizers"
)

// hoursPerYear converts activity age to fractional years for recency decay.
const hoursPerYear = 365.25 * 24

// Engine scores merged leads against a weighted rubric. The rubric can be
// swapped at runtime; scoring within one batch always sees one rubric.
type Engine struct {
	mu             sync.RWMutex
	rubric         Rubric
	targetKeywords []string
	scorer         *matching.Scorer
	logger         ectologger.Logger
}

// NewEngine creates a scoring engine, validating the rubric.
func NewEngine(rubric Rubric, logger ectologger.Logger) (*Engine, error) {
	if err := rubric.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rubric: %w", err)
	}
	return &Engine{
		rubric:         rubric,
		targetKeywords: normalizers.NormalizeKeywords(rubric.TargetKeywords),
		scorer:         matching.NewScorer(),
		logger:         logger,
	}, nil
}

// Rubric returns the engine's current rubric.
func (e *Engine) Rubric() Rubric {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rubric
}

// SetRubric validates and installs a new rubric. Leads scored in earlier
// batches keep their old scores until the next run.
func (e *Engine) SetRubric(rubric Rubric) error {
	if err := rubric.Validate(); err != nil {
		return fmt.Errorf("invalid rubric: %w", err)
	}

	e.mu.Lock()
	e.rubric = rubric
	e.targetKeywords = normalizers.NormalizeKeywords(rubric.TargetKeywords)
	e.mu.Unlock()

	e.logger.Info("Updated scoring rubric")
	return nil
}

// Score scores a lead as of now.
func (e *Engine) Score(lead *models.MergedLead) (int, models.Tier, models.ScoreBreakdown) {
	return e.ScoreAt(lead, time.Now().UTC())
}

// ScoreAt scores a lead with recency evaluated against asOf. The pipeline
// passes the batch start time so every lead in a batch sees the same clock.
// Returns the 0-100 score, its tier, and the weighted per-feature breakdown.
func (e *Engine) ScoreAt(lead *models.MergedLead, asOf time.Time) (int, models.Tier, models.ScoreBreakdown) {
	e.mu.RLock()
	rubric := e.rubric
	targets := e.targetKeywords
	e.mu.RUnlock()

	w := rubric.Weights

	breakdown := models.ScoreBreakdown{
		"publications":    w.Publications * saturate(lead.Publications, rubric.Saturation.Publications),
		"grants":          w.Grants * saturate(lead.Grants, rubric.Saturation.Grants),
		"trials":          w.Trials * saturate(lead.Trials, rubric.Saturation.Trials),
		"citations":       w.Citations * logSaturate(lead.Citations, rubric.Saturation.Citations),
		"conferences":     w.Conferences * saturate(lead.Conferences, rubric.Saturation.Conferences),
		"recency":         w.Recency * recency(rubric.Recency, lead.LastActivity, asOf),
		"role_fit":        w.RoleFit * rubric.RoleFit(lead.Title),
		"institution_fit": w.InstitutionFit * rubric.InstitutionFit(lead.Institution),
		"topic_relevance": w.TopicRelevance * e.scorer.Jaccard(normalizers.NormalizeKeywords(lead.Keywords), targets),
	}

	var total float64
	for _, v := range breakdown {
		total += v
	}

	score := int(math.Round(total * 100))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, rubric.Tiers.TierFor(score), breakdown
}

// ScoreAll scores a batch of leads in place.
func (e *Engine) ScoreAll(leads []*models.MergedLead, asOf time.Time) {
	for _, lead := range leads {
		lead.Score, lead.Tier, lead.Breakdown = e.ScoreAt(lead, asOf)
	}
}

// saturate maps a count onto [0, 1], reaching 1 at the saturation point.
func saturate(n, saturation int) float64 {
	if n <= 0 {
		return 0.0
	}
	if n >= saturation {
		return 1.0
	}
	return float64(n) / float64(saturation)
}

// logSaturate maps a heavy-tailed count (citations) onto [0, 1] on a log
// scale, reaching 1 at the saturation point.
func logSaturate(n, saturation int) float64 {
	if n <= 0 {
		return 0.0
	}
	if n >= saturation {
		return 1.0
	}
	return math.Log1p(float64(n)) / math.Log1p(float64(saturation))
}

// recency scores activity age: 1.0 within the full band, decaying linearly
// to 0 at the zero band. Missing activity dates score 0.
func recency(band Recency, lastActivity, asOf time.Time) float64 {
	if lastActivity.IsZero() {
		return 0.0
	}

	years := asOf.Sub(lastActivity).Hours() / hoursPerYear
	if years < 0 {
		years = 0
	}

	if years <= band.FullYears {
		return 1.0
	}
	if years >= band.ZeroYears {
		return 0.0
	}
	return (band.ZeroYears - years) / (band.ZeroYears - band.FullYears)
}
