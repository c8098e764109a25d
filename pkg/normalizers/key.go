package normalizers

import "strings"

// Key is the bucketing key derived from a record's name and institution.
// It is never persisted; the similarity engine uses it to avoid comparing
// every record against every other record.
type Key struct {
	// NamePart is "<lastname> <first initial>" of the normalized name, or
	// empty when the record has no name.
	NamePart string
	// InstitutionPart is the first token of the normalized institution, or
	// empty when the record has no institution.
	InstitutionPart string
}

// String renders the key as "namePart|institutionPart".
func (k Key) String() string {
	return k.NamePart + "|" + k.InstitutionPart
}

// KeyFor derives the bucketing key for a name/institution pair.
func KeyFor(name, institution string) Key {
	return Key{
		NamePart:        NameKeyPart(name),
		InstitutionPart: InstitutionKeyPart(institution),
	}
}

// NameKeyPart reduces a name to "<lastname> <first initial>". Single-word
// names keep the word alone.
func NameKeyPart(name string) string {
	normalized := NormalizeName(name)
	if normalized == "" {
		return ""
	}

	words := strings.Fields(normalized)
	last := words[len(words)-1]
	if len(words) == 1 {
		return last
	}
	return last + " " + words[0][:1]
}

// InstitutionKeyPart reduces an institution to its first significant token.
func InstitutionKeyPart(institution string) string {
	normalized := NormalizeInstitution(institution)
	if normalized == "" {
		return ""
	}
	return strings.Fields(normalized)[0]
}
