// Package export renders ranked leads for download.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Ramsey-B/yarrow/pkg/models"
)

// csvHeader is the fixed column set expected by downstream CRM imports.
var csvHeader = []string{
	"name",
	"email",
	"email_confidence",
	"title",
	"institution",
	"score",
	"tier",
	"sources",
	"research_focus",
	"publications",
	"grants_count",
	"orcid",
}

// WriteCSV streams the leads as CSV in their given order.
func WriteCSV(w io.Writer, leads []*models.MergedLead) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, lead := range leads {
		row := []string{
			lead.Name,
			lead.Email,
			strconv.FormatFloat(lead.EmailConfidence, 'f', 2, 64),
			lead.Title,
			lead.Institution,
			strconv.Itoa(lead.Score),
			string(lead.Tier),
			strings.Join(lead.Sources, ";"),
			strings.Join(lead.Keywords, ";"),
			strconv.Itoa(lead.Publications),
			strconv.Itoa(lead.Grants),
			lead.ORCID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row for lead %s: %w", lead.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
