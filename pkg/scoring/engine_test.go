package scoring

import (
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/yarrow/pkg/models"
)

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultRubric(), testLogger())
	require.NoError(t, err)
	return engine
}

var asOf = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestScoreEmptyLeadIsZero(t *testing.T) {
	engine := newTestEngine(t)

	score, tier, breakdown := engine.ScoreAt(&models.MergedLead{}, asOf)
	assert.Equal(t, 0, score)
	assert.Equal(t, models.TierIce, tier)
	for feature, v := range breakdown {
		assert.Zero(t, v, "feature %s must contribute nothing", feature)
	}
}

func TestScoreSaturatedLeadIsHundred(t *testing.T) {
	engine := newTestEngine(t)
	rubric := engine.Rubric()

	lead := &models.MergedLead{
		Name:         "Jane Smith",
		Title:        "Principal Investigator",
		Institution:  "Acme Pharmaceuticals",
		Publications: rubric.Saturation.Publications,
		Grants:       rubric.Saturation.Grants,
		Trials:       rubric.Saturation.Trials,
		Citations:    rubric.Saturation.Citations,
		Conferences:  rubric.Saturation.Conferences,
		LastActivity: asOf.AddDate(-1, 0, 0),
		Keywords:     rubric.TargetKeywords,
	}

	score, tier, breakdown := engine.ScoreAt(lead, asOf)
	assert.Equal(t, 100, score)
	assert.Equal(t, models.TierHot, tier)

	var total float64
	for _, v := range breakdown {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9, "breakdown must sum to score/100")
}

func TestScoreMonotonicInPublications(t *testing.T) {
	engine := newTestEngine(t)

	prev := -1
	for _, pubs := range []int{0, 2, 5, 10, 50} {
		score, _, _ := engine.ScoreAt(&models.MergedLead{Publications: pubs}, asOf)
		assert.GreaterOrEqual(t, score, prev, "more publications must never lower the score")
		prev = score
	}
}

func TestScoreCitationsUseLogScale(t *testing.T) {
	engine := newTestEngine(t)

	_, _, few := engine.ScoreAt(&models.MergedLead{Citations: 10}, asOf)
	_, _, many := engine.ScoreAt(&models.MergedLead{Citations: 100}, asOf)

	assert.Greater(t, many["citations"], few["citations"])
	assert.Less(t, many["citations"], 10*few["citations"], "citation value grows sublinearly")
}

func TestScoreRecencyBands(t *testing.T) {
	engine := newTestEngine(t)
	weight := engine.Rubric().Weights.Recency

	tests := []struct {
		name     string
		activity time.Time
		want     float64
	}{
		{"one year ago is full", asOf.AddDate(-1, 0, 0), weight},
		{"midpoint decays halfway", asOf.AddDate(-3, -6, 0), weight * 0.5},
		{"past the zero band", asOf.AddDate(-6, 0, 0), 0},
		{"missing date", time.Time{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, breakdown := engine.ScoreAt(&models.MergedLead{LastActivity: tt.activity}, asOf)
			assert.InDelta(t, tt.want, breakdown["recency"], 0.002)
		})
	}
}

func TestScoreRoleFit(t *testing.T) {
	engine := newTestEngine(t)

	_, _, pi := engine.ScoreAt(&models.MergedLead{Title: "Principal Investigator"}, asOf)
	_, _, prof := engine.ScoreAt(&models.MergedLead{Title: "Associate Professor"}, asOf)
	_, _, assistant := engine.ScoreAt(&models.MergedLead{Title: "Research Assistant"}, asOf)
	_, _, unknown := engine.ScoreAt(&models.MergedLead{Title: "Wizard"}, asOf)

	assert.Greater(t, pi["role_fit"], prof["role_fit"])
	assert.Greater(t, prof["role_fit"], assistant["role_fit"])
	assert.Zero(t, unknown["role_fit"])
}

func TestScoreInstitutionFit(t *testing.T) {
	engine := newTestEngine(t)

	_, _, pharma := engine.ScoreAt(&models.MergedLead{Institution: "Acme Pharmaceuticals"}, asOf)
	_, _, university := engine.ScoreAt(&models.MergedLead{Institution: "Stanford University"}, asOf)
	_, _, unknown := engine.ScoreAt(&models.MergedLead{Institution: "Smith Lab"}, asOf)
	_, _, missing := engine.ScoreAt(&models.MergedLead{}, asOf)

	assert.Greater(t, pharma["institution_fit"], university["institution_fit"])
	assert.Greater(t, university["institution_fit"], unknown["institution_fit"])
	assert.Zero(t, missing["institution_fit"])
}

func TestScoreTopicRelevance(t *testing.T) {
	engine := newTestEngine(t)

	_, _, relevant := engine.ScoreAt(&models.MergedLead{Keywords: []string{"Oncology", "CRISPR"}}, asOf)
	_, _, irrelevant := engine.ScoreAt(&models.MergedLead{Keywords: []string{"astrophysics"}}, asOf)

	assert.Greater(t, relevant["topic_relevance"], 0.0)
	assert.Zero(t, irrelevant["topic_relevance"])
}

func TestScoreAllAssignsTiers(t *testing.T) {
	engine := newTestEngine(t)
	rubric := engine.Rubric()

	leads := []*models.MergedLead{
		{},
		{
			Title:        "Principal Investigator",
			Institution:  "Acme Pharmaceuticals",
			Publications: rubric.Saturation.Publications,
			Grants:       rubric.Saturation.Grants,
			Trials:       rubric.Saturation.Trials,
			Citations:    rubric.Saturation.Citations,
			Conferences:  rubric.Saturation.Conferences,
			LastActivity: asOf.AddDate(-1, 0, 0),
			Keywords:     rubric.TargetKeywords,
		},
	}

	engine.ScoreAll(leads, asOf)

	assert.Equal(t, models.TierIce, leads[0].Tier)
	assert.Equal(t, models.TierHot, leads[1].Tier)
	assert.NotNil(t, leads[0].Breakdown)
	assert.NotNil(t, leads[1].Breakdown)
}

func TestNewEngineRejectsInvalidRubric(t *testing.T) {
	rubric := DefaultRubric()
	rubric.Weights.Publications = 0.5

	_, err := NewEngine(rubric, testLogger())
	assert.Error(t, err, "weights that do not sum to 1.0 are rejected")
}

func TestSetRubric(t *testing.T) {
	engine := newTestEngine(t)

	bad := DefaultRubric()
	bad.Recency.FullYears = 7
	assert.Error(t, engine.SetRubric(bad), "full band past the zero band is rejected")

	updated := DefaultRubric()
	updated.TargetKeywords = []string{"proteomics"}
	require.NoError(t, engine.SetRubric(updated))
	assert.Equal(t, []string{"proteomics"}, engine.Rubric().TargetKeywords)

	_, _, breakdown := engine.ScoreAt(&models.MergedLead{Keywords: []string{"proteomics"}}, asOf)
	assert.Greater(t, breakdown["topic_relevance"], 0.0, "new targets apply to later scoring")
}

func TestSetRubricReplacesClassificationTables(t *testing.T) {
	engine := newTestEngine(t)

	updated := DefaultRubric()
	updated.RoleTiers = []RoleTier{{Keywords: []string{"department chair"}, Fit: 1.0}}
	updated.InstitutionClasses = []InstitutionClass{{Keywords: []string{"foundation"}, Fit: 1.0}}
	updated.UnknownInstitutionFit = 0.0
	require.NoError(t, engine.SetRubric(updated))

	_, _, breakdown := engine.ScoreAt(&models.MergedLead{Title: "Department Chair", Institution: "Gates Foundation"}, asOf)
	assert.InDelta(t, updated.Weights.RoleFit, breakdown["role_fit"], 1e-9)
	assert.InDelta(t, updated.Weights.InstitutionFit, breakdown["institution_fit"], 1e-9)

	// Titles and institutions from the replaced tables no longer score
	_, _, former := engine.ScoreAt(&models.MergedLead{Title: "Principal Investigator", Institution: "Acme Pharmaceuticals"}, asOf)
	assert.Zero(t, former["role_fit"])
	assert.Zero(t, former["institution_fit"])
}

func TestRubricValidate(t *testing.T) {
	assert.NoError(t, DefaultRubric().Validate())

	r := DefaultRubric()
	r.Saturation.Grants = 0
	assert.Error(t, r.Validate())

	r = DefaultRubric()
	r.Tiers = models.TierThresholds{Hot: 50, Warm: 75, Cold: 25}
	assert.Error(t, r.Validate(), "tier bands must be ordered")

	r = DefaultRubric()
	r.RoleTiers = []RoleTier{{Keywords: []string{"director"}, Fit: 1.5}}
	assert.Error(t, r.Validate(), "fits outside [0, 1] are rejected")

	r = DefaultRubric()
	r.InstitutionClasses = []InstitutionClass{{Fit: 0.5}}
	assert.Error(t, r.Validate(), "a class without keywords is rejected")
}
