package controller

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/airquality/internal/pkg/constants"
)

func (c *Controller) GetSummary(ctx echo.Context) error {
	if c.stores == nil {
		return constants.ErrStoreUnavailable
	}

	reqCtx := ctx.Request().Context()
	s, err := c.stores.Get(reqCtx)
	if err != nil {
		return err
	}

	summary, err := s.SummaryByYear(reqCtx)
	if err = c.stores.Release(reqCtx, s, err); err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, summary)
}
