package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type listVisitorsRequest struct {
	Limit uint64 `query:"limit" validate:"omitempty,max=1000"`
}

func (c *Controller) ListVisitors(ctx echo.Context) error {
	var req listVisitorsRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}

	visitors, err := c.visitors.List(ctx.Request().Context(), req.Limit)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, visitors)
}
