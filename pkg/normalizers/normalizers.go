// Package normalizers provides field normalization for lead matching
package normalizers

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalizer is a function that normalizes a string value
type Normalizer func(string) string

// registry holds all registered normalizers
var registry = make(map[string]Normalizer)

func init() {
	// Register built-in normalizers
	Register("lowercase", Lowercase)
	Register("trim", Trim)
	Register("fold_diacritics", FoldDiacritics)
	Register("remove_punctuation", RemovePunctuation)
	Register("remove_whitespace", RemoveWhitespace)
	Register("nemail", NormalizeEmail)
	Register("nname", NormalizeName)
	Register("ninstitution", NormalizeInstitution)
	Register("nkeyword", NormalizeKeyword)
}

// Register adds a normalizer to the registry
func Register(name string, fn Normalizer) {
	registry[name] = fn
}

// Get retrieves a normalizer by name
func Get(name string) (Normalizer, bool) {
	fn, ok := registry[name]
	return fn, ok
}

// Apply applies a named normalizer to a value
func Apply(value, normalizer string) string {
	fn, ok := registry[normalizer]
	if !ok {
		return value
	}
	return fn(value)
}

// ApplyChain applies multiple normalizers in sequence
func ApplyChain(value string, normalizers ...string) string {
	result := value
	for _, name := range normalizers {
		result = Apply(result, name)
	}
	return result
}

// Built-in normalizers

// Lowercase converts string to lowercase
func Lowercase(s string) string {
	return strings.ToLower(s)
}

// Trim removes leading and trailing whitespace
func Trim(s string) string {
	return strings.TrimSpace(s)
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// FoldDiacritics strips combining marks so "Muñoz" and "Munoz" compare equal
func FoldDiacritics(s string) string {
	folded, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	return folded
}

// RemovePunctuation removes punctuation and collapses runs of whitespace
func RemovePunctuation(s string) string {
	var result strings.Builder
	prevSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
			prevSpace = false
		} else if unicode.IsSpace(r) || unicode.IsPunct(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	return strings.TrimSpace(result.String())
}

// RemoveWhitespace removes all whitespace characters
func RemoveWhitespace(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// NormalizeEmail normalizes an email address (lowercase, trim)
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Academic honorifics stripped from the front of a name.
var namePrefixes = []string{"dr ", "prof ", "professor ", "mr ", "mrs ", "ms "}

// Credential and generation suffixes stripped from the end of a name.
var nameSuffixes = []string{" jr", " sr", " ii", " iii", " iv", " phd", " md", " dds", " msc", " mph", " rn", " do"}

// NormalizeName normalizes a person's name for matching
// - Fold diacritics and lowercase
// - Remove punctuation
// - Strip honorific prefixes (Dr., Prof., ...)
// - Strip credential suffixes (PhD, MD, Jr., ...)
func NormalizeName(s string) string {
	s = strings.ToLower(FoldDiacritics(s))
	s = RemovePunctuation(s)

	for changed := true; changed; {
		changed = false
		for _, prefix := range namePrefixes {
			if strings.HasPrefix(s, prefix) {
				s = strings.TrimSpace(s[len(prefix):])
				changed = true
			}
		}
		for _, suffix := range nameSuffixes {
			if strings.HasSuffix(s, suffix) {
				s = strings.TrimSpace(s[:len(s)-len(suffix)])
				changed = true
			}
		}
	}

	return s
}

// Generic organizational words that carry no identity signal on their own.
var institutionStopwords = map[string]bool{
	"university": true,
	"univ":       true,
	"institute":  true,
	"college":    true,
	"school":     true,
	"center":     true,
	"centre":     true,
	"hospital":   true,
	"hosp":       true,
	"department": true,
	"dept":       true,
	"laboratory": true,
	"lab":        true,
	"medicine":   true,
	"medical":    true,
	"med":        true,
	"health":     true,
	"sciences":   true,
	"of":         true,
	"the":        true,
	"for":        true,
	"and":        true,
	"at":         true,
	"inc":        true,
	"llc":        true,
	"ltd":        true,
	"corp":       true,
	"co":         true,
}

// NormalizeInstitution normalizes an institution name for matching. Stopwords
// are removed so "University of Cambridge" and "Cambridge University" produce
// the same tokens.
func NormalizeInstitution(s string) string {
	s = strings.ToLower(FoldDiacritics(s))
	s = RemovePunctuation(s)

	words := strings.Fields(s)
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if !institutionStopwords[w] {
			kept = append(kept, w)
		}
	}

	// A name made entirely of stopwords still needs something to match on
	if len(kept) == 0 {
		return strings.Join(words, " ")
	}
	return strings.Join(kept, " ")
}

// NormalizeKeyword normalizes a research keyword
func NormalizeKeyword(s string) string {
	return strings.ToLower(strings.TrimSpace(FoldDiacritics(s)))
}

// NormalizeKeywords normalizes a keyword list, dropping empties and duplicates
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]bool, len(keywords))
	result := make([]string, 0, len(keywords))
	for _, k := range keywords {
		normalized := NormalizeKeyword(k)
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	return result
}
