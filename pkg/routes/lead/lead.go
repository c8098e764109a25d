package lead

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/yarrow/internal/repositories/mergedlead"
	"github.com/Ramsey-B/yarrow/pkg/export"
	"github.com/Ramsey-B/yarrow/pkg/graph"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

// Register registers lead routes
func Register(g *echo.Group) {
	g.GET("", List)
	g.GET("/export.csv", ExportCSV)
	g.GET("/export.json", ExportJSON)
	g.GET("/by-institution", ListByInstitution)
	g.GET("/:id", Get)
}

// List returns a ranked page of merged leads, optionally filtered by tier
func List(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lead_handler.List")
	defer span.End()

	tier := models.Tier(c.QueryParam("tier"))
	if tier != "" && !tier.IsValid() {
		return httperror.NewHTTPError(http.StatusBadRequest, "tier must be one of hot, warm, cold, ice")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 500 {
		pageSize = 500
	}

	ctx, repo, err := ectoinject.GetContext[*mergedlead.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	leads, totalCount, err := repo.List(ctx, tier, page, pageSize)
	if err != nil {
		return err
	}

	items := make([]models.MergedLead, len(leads))
	for i, lead := range leads {
		items[i] = *lead
	}

	return c.JSON(http.StatusOK, models.LeadListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	})
}

// Get returns a single merged lead with its provenance and score breakdown
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lead_handler.Get")
	defer span.End()

	id := c.Param("id")

	ctx, repo, err := ectoinject.GetContext[*mergedlead.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	lead, err := repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.LeadResponse{Lead: *lead})
}

// ExportCSV streams every lead in ranked order as CSV
func ExportCSV(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lead_handler.ExportCSV")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*mergedlead.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	leads, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, leads); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to render csv export")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="leads.csv"`)
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportJSON returns every lead in ranked order as JSON
func ExportJSON(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lead_handler.ExportJSON")
	defer span.End()

	ctx, repo, err := ectoinject.GetContext[*mergedlead.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	leads, err := repo.ListAll(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, leads)
}

// ListByInstitution returns the IDs of leads affiliated with an institution,
// read from the affiliation graph
func ListByInstitution(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "lead_handler.ListByInstitution")
	defer span.End()

	institution := c.QueryParam("institution")
	if institution == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "institution query parameter is required")
	}

	ctx, syncer, err := ectoinject.GetContext[*graph.Syncer](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "graph service unavailable")
	}

	ids, err := syncer.LeadsByInstitution(ctx, institution)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to query affiliation graph")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"institution": institution,
		"lead_ids":    ids,
	})
}
