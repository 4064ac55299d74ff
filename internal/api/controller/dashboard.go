package controller

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/ougirez/airquality/internal/pkg/constants"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/service/dashboard"
)

const PlaceholderPage = `<!DOCTYPE html>
<html lang="fr">
<head><meta charset="utf-8"><meta http-equiv="refresh" content="10"><title>Génération...</title></head>
<body><h1>Génération...</h1><p>Le tableau de bord est en cours de génération, réessayez dans quelques instants.</p></body>
</html>`

func (c *Controller) GetDashboard(ctx echo.Context) error {
	path := filepath.Join(c.staticDir, dashboard.DashboardFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ctx.HTML(http.StatusOK, PlaceholderPage)
		}
		return err
	}
	return ctx.File(path)
}

// PostVisitor пустое имя игнорируется. Недоступная база логируется, пользователь
// все равно возвращается на главную.
func (c *Controller) PostVisitor(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	nom := ctx.FormValue(constants.FormKeyVisitorName)

	if _, err := c.visitors.Add(reqCtx, nom); err != nil {
		if !errors.Is(err, constants.ErrStoreUnavailable) {
			return err
		}
		logger.Warnf(reqCtx, "visitor not saved: %s", err.Error())
	}

	return ctx.Redirect(http.StatusFound, "/")
}
