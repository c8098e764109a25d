package models

// Source identifies the kind of public artifact a lead record was observed in.
type Source string

const (
	SourcePublication Source = "publication"
	SourceGrant       Source = "grant"
	SourceTrial       Source = "trial"
	SourceConference  Source = "conference"
	SourceGeneric     Source = "generic"
)

// sourcePriorities ranks sources for field reconciliation. Peer-reviewed
// publications carry the most reliable author metadata, generic sources the
// least.
var sourcePriorities = map[Source]int{
	SourcePublication: 4,
	SourceGrant:       3,
	SourceTrial:       2,
	SourceConference:  1,
	SourceGeneric:     0,
}

// Priority returns the reconciliation rank of the source. Unknown sources
// rank below generic.
func (s Source) Priority() int {
	if p, ok := sourcePriorities[s]; ok {
		return p
	}
	return -1
}

// IsValid reports whether the source is one of the known kinds.
func (s Source) IsValid() bool {
	_, ok := sourcePriorities[s]
	return ok
}

// ParseSource maps a raw string onto a known Source, falling back to generic.
func ParseSource(raw string) Source {
	s := Source(raw)
	if s.IsValid() {
		return s
	}
	return SourceGeneric
}
