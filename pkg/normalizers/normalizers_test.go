package normalizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple", "Jane Smith", "jane smith"},
		{"Honorific", "Dr. Jane Smith", "jane smith"},
		{"CredentialSuffix", "Jane Smith, PhD", "jane smith"},
		{"PrefixAndSuffix", "Prof. Jane Smith MD", "jane smith"},
		{"StackedSuffixes", "John Doe Jr. PhD", "john doe"},
		{"Diacritics", "José Muñoz", "jose munoz"},
		{"Punctuation", "J. Smith", "j smith"},
		{"ExtraWhitespace", "  Jane   Smith  ", "jane smith"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	inputs := []string{"Dr. Jane Smith, PhD", "José Muñoz", "J. Smith"}
	for _, input := range inputs {
		once := NormalizeName(input)
		assert.Equal(t, once, NormalizeName(once))
	}
}

func TestNormalizeInstitution(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"DropsStopwords", "University of Cambridge", "cambridge"},
		{"WordOrder", "Cambridge University", "cambridge"},
		{"CorporateSuffix", "Genentech, Inc.", "genentech"},
		{"MedicalSchool", "Stanford School of Medicine", "stanford"},
		{"Abbreviations", "Harvard Med School", "harvard"},
		{"AllStopwords", "The Institute", "the institute"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeInstitution(tt.input))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@lab.edu", NormalizeEmail("  Jane@Lab.EDU "))
	assert.Equal(t, "", NormalizeEmail(""))
}

func TestNormalizeKeywords(t *testing.T) {
	result := NormalizeKeywords([]string{"Oncology", "oncology", " CRISPR ", "", "Immunothérapie"})
	assert.Equal(t, []string{"oncology", "crispr", "immunotherapie"}, result)
}

func TestKeyFor(t *testing.T) {
	t.Run("FullNameAndInstitution", func(t *testing.T) {
		key := KeyFor("Dr. Jane Smith", "Stanford University")
		assert.Equal(t, "smith j", key.NamePart)
		assert.Equal(t, "stanford", key.InstitutionPart)
	})

	t.Run("AbbreviatedFirstNameSharesKey", func(t *testing.T) {
		a := KeyFor("Jane Smith", "Stanford University")
		b := KeyFor("J. Smith", "Stanford")
		assert.Equal(t, a.String(), b.String())
	})

	t.Run("SingleWordName", func(t *testing.T) {
		key := KeyFor("Smith", "")
		assert.Equal(t, "smith", key.NamePart)
		assert.Equal(t, "", key.InstitutionPart)
	})

	t.Run("EmptyName", func(t *testing.T) {
		key := KeyFor("", "Broad Institute")
		assert.Equal(t, "", key.NamePart)
		assert.Equal(t, "broad", key.InstitutionPart)
	})
}

func TestApplyChain(t *testing.T) {
	result := ApplyChain("  Dr. José Muñoz  ", "trim", "nname")
	assert.Equal(t, "jose munoz", result)
}

func TestRegistryUnknownNormalizer(t *testing.T) {
	assert.Equal(t, "value", Apply("value", "does_not_exist"))

	_, ok := Get("does_not_exist")
	assert.False(t, ok)
}
