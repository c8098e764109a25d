package rubric

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/yarrow/pkg/scoring"
	"github.com/Ramsey-B/yarrow/pkg/tracing"
)

var validate = validator.New()

// Register registers rubric routes
func Register(g *echo.Group) {
	g.GET("", Get)
	g.PUT("", Update)
}

// Get returns the active scoring rubric
func Get(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "rubric_handler.Get")
	defer span.End()

	ctx, engine, err := ectoinject.GetContext[*scoring.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "scoring engine unavailable")
	}

	return c.JSON(http.StatusOK, engine.Rubric())
}

// Update replaces the active scoring rubric. The new rubric applies from the
// next batch run; already scored leads are untouched.
func Update(c echo.Context) error {
	ctx := c.Request().Context()
	ctx, span := tracing.StartSpan(ctx, "rubric_handler.Update")
	defer span.End()

	var rubric scoring.Rubric
	if err := c.Bind(&rubric); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid rubric payload")
	}

	if err := validate.Struct(rubric); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, engine, err := ectoinject.GetContext[*scoring.Engine](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "scoring engine unavailable")
	}

	if err := engine.SetRubric(rubric); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusOK, engine.Rubric())
}
