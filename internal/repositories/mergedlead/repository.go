package mergedlead

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/yarrow/pkg/database"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

const columns = "id, batch_id, name, institution, title, email, email_confidence, orcid, publications, grants, trials, citations, conferences, last_activity, keywords, sources, source_records, score, tier, breakdown, created_at"

// leadRow carries the jsonb columns that do not map directly onto the model.
type leadRow struct {
	models.MergedLead
	SourceRecordsJSON []byte `db:"source_records"`
	BreakdownJSON     []byte `db:"breakdown"`
}

func (r *leadRow) toModel() (*models.MergedLead, error) {
	lead := r.MergedLead
	if len(r.SourceRecordsJSON) > 0 {
		if err := json.Unmarshal(r.SourceRecordsJSON, &lead.SourceRecords); err != nil {
			return nil, err
		}
	}
	if len(r.BreakdownJSON) > 0 {
		if err := json.Unmarshal(r.BreakdownJSON, &lead.Breakdown); err != nil {
			return nil, err
		}
	}
	return &lead, nil
}

// Repository handles merged lead persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new merged lead repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ReplaceBatch swaps the lead set for the results of a new batch run. Old
// leads are removed and the new set inserted inside one transaction, so
// readers never see a half-written batch.
func (r *Repository) ReplaceBatch(ctx context.Context, batchID string, leads []*models.MergedLead) error {
	ctx, span := tracing.StartSpan(ctx, "mergedlead.Repository.ReplaceBatch")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_id": batchID,
		"leads":    len(leads),
	})

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		log.WithError(err).Error("Failed to open transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace lead batch")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.ExecContext(ctx, "DELETE FROM merged_leads WHERE batch_id <> $1", batchID); err != nil {
		log.WithError(err).Error("Failed to clear prior lead batches")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace lead batch")
	}

	for _, lead := range leads {
		sourceRecords, err := json.Marshal(lead.SourceRecords)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to encode lead provenance")
		}
		breakdown, err := json.Marshal(lead.Breakdown)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to encode lead breakdown")
		}

		sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
		sb.InsertInto("merged_leads")
		sb.Cols("id", "batch_id", "name", "institution", "title", "email", "email_confidence", "orcid", "publications", "grants", "trials", "citations", "conferences", "last_activity", "keywords", "sources", "source_records", "score", "tier", "breakdown", "created_at")
		sb.Values(lead.ID, lead.BatchID, lead.Name, lead.Institution, lead.Title, lead.Email, lead.EmailConfidence, lead.ORCID, lead.Publications, lead.Grants, lead.Trials, lead.Citations, lead.Conferences, lead.LastActivity, lead.Keywords, lead.Sources, sourceRecords, lead.Score, lead.Tier, breakdown, lead.CreatedAt)

		query, args := sb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			log.WithError(err).WithFields(map[string]any{"lead_id": lead.ID}).Error("Failed to insert merged lead")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace lead batch")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		log.WithError(err).Error("Failed to commit lead batch")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to replace lead batch")
	}

	log.Info("Replaced merged lead batch")
	return nil
}

// GetByID returns a single merged lead.
func (r *Repository) GetByID(ctx context.Context, id string) (*models.MergedLead, error) {
	ctx, span := tracing.StartSpan(ctx, "mergedlead.Repository.GetByID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("merged_leads")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var row leadRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "lead not found")
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"lead_id": id}).Error("Failed to get merged lead")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get lead")
	}

	lead, err := row.toModel()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"lead_id": id}).Error("Failed to decode merged lead")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get lead")
	}
	return lead, nil
}

// List returns a page of merged leads ordered by score, with an optional tier
// filter. The total count reflects the filter, not the page.
func (r *Repository) List(ctx context.Context, tier models.Tier, page, pageSize int) ([]*models.MergedLead, int, error) {
	ctx, span := tracing.StartSpan(ctx, "mergedlead.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}

	countSB := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSB.Select("COUNT(*)")
	countSB.From("merged_leads")
	if tier != "" {
		countSB.Where(countSB.Equal("tier", string(tier)))
	}

	countQuery, countArgs := countSB.Build()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count merged leads")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list leads")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("merged_leads")
	if tier != "" {
		sb.Where(sb.Equal("tier", string(tier)))
	}
	sb.OrderBy("score DESC", "last_activity DESC", "id ASC")
	sb.Limit(pageSize)
	sb.Offset((page - 1) * pageSize)

	query, args := sb.Build()
	var rows []leadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list merged leads")
		return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list leads")
	}

	leads := make([]*models.MergedLead, 0, len(rows))
	for i := range rows {
		lead, err := rows[i].toModel()
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to decode merged lead")
			return nil, 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list leads")
		}
		leads = append(leads, lead)
	}

	return leads, total, nil
}

// ListAll returns every merged lead in ranked order, for exports.
func (r *Repository) ListAll(ctx context.Context) ([]*models.MergedLead, error) {
	ctx, span := tracing.StartSpan(ctx, "mergedlead.Repository.ListAll")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns)
	sb.From("merged_leads")
	sb.OrderBy("score DESC", "last_activity DESC", "id ASC")

	query, args := sb.Build()
	var rows []leadRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list merged leads for export")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to export leads")
	}

	leads := make([]*models.MergedLead, 0, len(rows))
	for i := range rows {
		lead, err := rows[i].toModel()
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to decode merged lead")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to export leads")
		}
		leads = append(leads, lead)
	}

	return leads, nil
}
