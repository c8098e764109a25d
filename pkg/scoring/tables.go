package scoring

import "strings"

// RoleTier maps title keywords to a role-fit value. Decision makers and
// budget holders score highest; junior roles signal no purchasing authority.
type RoleTier struct {
	Keywords []string `json:"keywords" validate:"min=1"`
	Fit      float64  `json:"fit" validate:"gte=0,lte=1"`
}

// InstitutionClass maps institution-name keywords to an institution type fit.
type InstitutionClass struct {
	Keywords []string `json:"keywords" validate:"min=1"`
	Fit      float64  `json:"fit" validate:"gte=0,lte=1"`
}

// defaultRoleTiers is checked in order; the first tier with a keyword hit
// wins. More senior titles are listed first so "Assistant Director" matches
// the director tier before the assistant tier.
var defaultRoleTiers = []RoleTier{
	{
		Keywords: []string{
			"principal investigator",
			"chief scientific officer",
			"cso",
			"chief medical officer",
			"cmo",
			"vp",
			"vice president",
			"head of",
			"director",
		},
		Fit: 1.0,
	},
	{
		Keywords: []string{
			"professor",
			"group leader",
			"lab head",
			"senior scientist",
			"lead scientist",
			"staff scientist",
		},
		Fit: 0.7,
	},
	{
		Keywords: []string{
			"postdoc",
			"postdoctoral",
			"research associate",
			"research assistant",
			"phd student",
			"graduate student",
			"technician",
			"intern",
		},
		Fit: 0.3,
	},
}

// defaultInstitutionClasses is checked in order. Commercial organizations
// outrank academic ones because they buy, not apply for grants.
var defaultInstitutionClasses = []InstitutionClass{
	{Keywords: []string{"pharma", "pharmaceutical"}, Fit: 1.0},
	{Keywords: []string{"biotech", "biosciences", "therapeutics", "biopharm"}, Fit: 0.9},
	{Keywords: []string{"cro", "contract research", "clinical research org"}, Fit: 0.8},
	{Keywords: []string{"medical center", "medical centre", "hospital", "clinic", "health system"}, Fit: 0.6},
	{Keywords: []string{"university", "college", "institute", "school of medicine", "academy"}, Fit: 0.5},
	{Keywords: []string{"national", "federal", "ministry", "government", "nih", "fda"}, Fit: 0.4},
}

// defaultUnknownInstitutionFit is the fit for institutions matching no class.
const defaultUnknownInstitutionFit = 0.3

// RoleFit scores a free-text title against the rubric's role tiers.
// Unrecognized or empty titles score 0.
func (r Rubric) RoleFit(title string) float64 {
	t := strings.ToLower(title)
	if t == "" {
		return 0.0
	}
	for _, tier := range r.RoleTiers {
		for _, keyword := range tier.Keywords {
			if strings.Contains(t, keyword) {
				return tier.Fit
			}
		}
	}
	return 0.0
}

// InstitutionFit classifies an institution name against the rubric's
// institution classes. Empty names score 0; unclassified names get the
// rubric's unknown default.
func (r Rubric) InstitutionFit(institution string) float64 {
	inst := strings.ToLower(institution)
	if inst == "" {
		return 0.0
	}
	for _, class := range r.InstitutionClasses {
		for _, keyword := range class.Keywords {
			if strings.Contains(inst, keyword) {
				return class.Fit
			}
		}
	}
	return r.UnknownInstitutionFit
}
