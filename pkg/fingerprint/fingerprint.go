// Package fingerprint derives deterministic content hashes for raw lead
// observations, used to suppress exact duplicates at ingest.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/normalizers"
)

// ForLead computes the content fingerprint of a raw observation. Identity
// and timing fields (record ID, ingestion time) are excluded so re-scraping
// the same artifact produces the same fingerprint. Normalized forms are
// hashed so cosmetic differences (case, whitespace, diacritics) do not defeat
// the duplicate check.
func ForLead(r *models.LeadRecord) string {
	keywords := normalizers.NormalizeKeywords(r.Keywords)
	sort.Strings(keywords)

	fields := map[string]string{
		"source":           string(r.Source),
		"source_record_id": strings.TrimSpace(r.SourceRecordID),
		"name":             normalizers.NormalizeName(r.Name),
		"institution":      normalizers.NormalizeInstitution(r.Institution),
		"title":            strings.ToLower(strings.TrimSpace(r.Title)),
		"email":            normalizers.NormalizeEmail(r.Email),
		"orcid":            strings.TrimSpace(r.ORCID),
		"publications":     strconv.Itoa(r.Publications),
		"grants":           strconv.Itoa(r.Grants),
		"trials":           strconv.Itoa(r.Trials),
		"citations":        strconv.Itoa(r.Citations),
		"conferences":      strconv.Itoa(r.Conferences),
		"keywords":         strings.Join(keywords, ","),
	}
	if !r.LastActivity.IsZero() {
		fields["last_activity"] = r.LastActivity.UTC().Format("2006-01-02")
	}

	return Generate(fields)
}

// Generate hashes a field map into a hex SHA256 over its canonical form.
func Generate(fields map[string]string) string {
	hash := sha256.Sum256([]byte(canonicalize(fields)))
	return hex.EncodeToString(hash[:])
}

// canonicalize renders the map with sorted keys so the hash is independent of
// map iteration order.
func canonicalize(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(fields[k])
		b.Write(keyJSON)
		b.WriteByte(':')
		b.Write(valJSON)
	}
	b.WriteByte('}')
	return b.String()
}
