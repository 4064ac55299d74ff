package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/airquality/internal/domain"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/logger"
)

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	msg := err.Error()
	code := http.StatusInternalServerError
	for e := err; e != nil; e = errors.Unwrap(e) {
		if ce, ok := e.(*constants.CodedError); ok {
			code = ce.Code()
			// детали отказа базы остаются в логе
			if code >= http.StatusInternalServerError {
				msg = ce.Error()
			}
			break
		}
		if he, ok := e.(*echo.HTTPError); ok {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			break
		}
	}

	if code >= http.StatusInternalServerError {
		logger.Errorf(c.Request().Context(), "%s %s: %s", c.Request().Method, c.Path(), err.Error())
	}

	_ = c.JSON(code, domain.ErrorResponse{
		Message: msg,
		Code:    code,
	})
}
