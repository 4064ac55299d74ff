package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/ougirez/airquality/internal/pkg/logger"
)

// RequestContextMiddleware кладет request_id в контекст запроса и в заголовок ответа.
func (svc *APIService) RequestContextMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id := ctx.Request().Header.Get(echo.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		ctx.Response().Header().Set(echo.HeaderXRequestID, id)

		req := ctx.Request()
		ctx.SetRequest(req.WithContext(logger.WithKV(req.Context(), "request_id", id)))

		return next(ctx)
	}
}
