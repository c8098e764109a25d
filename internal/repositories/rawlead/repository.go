package rawlead

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/yarrow/pkg/database"
	"github.com/Ramsey-B/yarrow/pkg/fingerprint"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

const columns = "id, source, source_record_id, name, institution, title, email, email_confidence, orcid, publications, grants, trials, citations, conferences, last_activity, keywords, fingerprint, ingested_at, processed_at"

// Repository handles raw lead observation persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new raw lead repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create stages a raw observation. Observations whose fingerprint is already
// staged are dropped. Returns true when the record was inserted.
func (r *Repository) Create(ctx context.Context, record *models.LeadRecord) (bool, error) {
	ctx, span := tracing.StartSpan(ctx, "rawlead.Repository.Create")
	defer span.End()

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	if record.IngestedAt.IsZero() {
		record.IngestedAt = time.Now().UTC()
	}
	record.Fingerprint = fingerprint.ForLead(record)

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("raw_leads")
	sb.Cols("id", "source", "source_record_id", "name", "institution", "title", "email", "email_confidence", "orcid", "publications", "grants", "trials", "citations", "conferences", "last_activity", "keywords", "fingerprint", "ingested_at")
	sb.Values(record.ID, record.Source, record.SourceRecordID, record.Name, record.Institution, record.Title, record.Email, record.EmailConfidence, record.ORCID, record.Publications, record.Grants, record.Trials, record.Citations, record.Conferences, record.LastActivity, record.Keywords, record.Fingerprint, record.IngestedAt)

	query, args := sb.Build()
	// Fingerprint collisions mean the exact observation is already staged
	query += " ON CONFLICT (fingerprint) DO NOTHING"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"record_id": record.ID}).Error("Failed to stage raw lead")
		return false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to stage raw lead")
	}

	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// ListAll returns every staged observation ordered by record ID. Batch runs
// re-derive the full lead set from scratch, so they read everything.
func (r *Repository) ListAll(ctx context.Context) ([]*models.LeadRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "rawlead.Repository.ListAll")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("raw_leads")
	sb.OrderBy("id ASC")

	query, args := sb.Build()
	var records []*models.LeadRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list raw leads")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list raw leads")
	}

	return records, nil
}

// Count returns the number of staged observations.
func (r *Repository) Count(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "rawlead.Repository.Count")
	defer span.End()

	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM raw_leads"); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count raw leads")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count raw leads")
	}

	return count, nil
}

// MarkProcessed stamps every unprocessed observation with the batch
// completion time.
func (r *Repository) MarkProcessed(ctx context.Context, processedAt time.Time) error {
	ctx, span := tracing.StartSpan(ctx, "rawlead.Repository.MarkProcessed")
	defer span.End()

	query := "UPDATE raw_leads SET processed_at = $1 WHERE processed_at IS NULL"
	if _, err := r.db.ExecContext(ctx, query, processedAt); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to mark raw leads processed")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to mark raw leads processed")
	}

	return nil
}

// CountBySource returns staged observation counts keyed by source.
func (r *Repository) CountBySource(ctx context.Context) (map[string]int, error) {
	ctx, span := tracing.StartSpan(ctx, "rawlead.Repository.CountBySource")
	defer span.End()

	rows := []struct {
		Source string `db:"source"`
		Count  int    `db:"count"`
	}{}

	query := "SELECT source, COUNT(*) AS count FROM raw_leads GROUP BY source"
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count raw leads by source")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count raw leads by source")
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Source] = row.Count
	}
	return counts, nil
}
