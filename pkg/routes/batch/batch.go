package batch

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/yarrow/pkg/models"
	"github.com/Ramsey-B/yarrow/pkg/pipeline"
	"github.com/Ramsey-B/yarrow/pkg/redis"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

// Register registers batch routes
func Register(g *echo.Group) {
	g.POST("/run", Run)
	g.GET("/summary", LatestSummary)
	g.GET("/summary/:id", Summary)
}

// Run executes a full pipeline batch over the staged observations
func Run(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.Run")
	defer span.End()

	ctx, service, err := ectoinject.GetContext[*pipeline.BatchService](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "batch service unavailable")
	}

	result, err := service.RunBatch(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, models.RunBatchResponse{Summary: result.Summary()})
}

// LatestSummary returns the summary of the most recent batch
func LatestSummary(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.LatestSummary")
	defer span.End()

	ctx, cache, err := ectoinject.GetContext[*redis.SummaryCache](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "summary cache unavailable")
	}

	batchID, err := cache.LatestBatchID(ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to read latest batch")
	}
	if batchID == "" {
		return httperror.NewHTTPError(http.StatusNotFound, "no completed batch found")
	}

	summary, err := cache.GetSummary(ctx, batchID)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to read batch summary")
	}
	if summary == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "no completed batch found")
	}

	return c.JSON(http.StatusOK, summary)
}

// Summary returns the cached summary for a specific batch
func Summary(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "batch_handler.Summary")
	defer span.End()

	id := c.Param("id")

	ctx, cache, err := ectoinject.GetContext[*redis.SummaryCache](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "summary cache unavailable")
	}

	summary, err := cache.GetSummary(ctx, id)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to read batch summary")
	}
	if summary == nil {
		return httperror.NewHTTPError(http.StatusNotFound, "batch summary not found")
	}

	return c.JSON(http.StatusOK, summary)
}
