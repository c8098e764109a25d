package ingest

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/yarrow/internal/repositories/rawlead"
	"github.com/Ramsey-B/yarrow/pkg/metrics"
	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/processor"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

var validate = validator.New()

// Register registers ingest routes
func Register(g *echo.Group) {
	g.POST("", Create)
	g.POST("/bulk", CreateBulk)
}

// IngestResponse reports the staging outcome for one observation.
type IngestResponse struct {
	ID     string `json:"id"`
	Staged bool   `json:"staged"`
}

// Create stages a single lead observation
func Create(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "ingest_handler.Create")
	defer span.End()

	var req models.IngestLeadRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid lead payload")
	}

	if err := validate.Struct(req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, repo, err := ectoinject.GetContext[*rawlead.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	record := processor.RecordFromRequest(&req)
	staged, err := repo.Create(ctx, record)
	if err != nil {
		metrics.RecordIngest(string(record.Source), "error")
		return err
	}

	if staged {
		metrics.RecordIngest(string(record.Source), "staged")
	} else {
		metrics.RecordIngest(string(record.Source), "duplicate")
	}

	return c.JSON(http.StatusAccepted, IngestResponse{ID: record.ID, Staged: staged})
}

// CreateBulk stages a batch of lead observations in one request
func CreateBulk(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "ingest_handler.CreateBulk")
	defer span.End()

	var reqs []models.IngestLeadRequest
	if err := c.Bind(&reqs); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid lead payload")
	}

	for i := range reqs {
		if err := validate.Struct(reqs[i]); err != nil {
			return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	ctx, repo, err := ectoinject.GetContext[*rawlead.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to get repository")
	}

	responses := make([]IngestResponse, 0, len(reqs))
	for i := range reqs {
		record := processor.RecordFromRequest(&reqs[i])
		staged, err := repo.Create(ctx, record)
		if err != nil {
			metrics.RecordIngest(string(record.Source), "error")
			return err
		}

		if staged {
			metrics.RecordIngest(string(record.Source), "staged")
		} else {
			metrics.RecordIngest(string(record.Source), "duplicate")
		}
		responses = append(responses, IngestResponse{ID: record.ID, Staged: staged})
	}

	return c.JSON(http.StatusAccepted, responses)
}
