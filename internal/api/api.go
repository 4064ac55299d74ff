package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/ougirez/airquality/internal/api/controller"
	"github.com/ougirez/airquality/internal/pkg/config"
	"github.com/ougirez/airquality/internal/pkg/logger"
	"github.com/ougirez/airquality/internal/pkg/store"
	"github.com/ougirez/airquality/internal/service/visitor"
)

type APIService struct {
	router *echo.Echo
}

// Serve блокируется до Shutdown, штатная остановка не считается ошибкой.
func (svc *APIService) Serve(addr string) error {
	logger.Infof(context.Background(), "listening on %s", addr)
	if err := svc.router.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (svc *APIService) Shutdown(ctx context.Context) error {
	return svc.router.Shutdown(ctx)
}

func (svc *APIService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	svc.router.ServeHTTP(w, r)
}

// NewAPIService stores может быть nil, если база не настроена.
func NewAPIService(cfg config.ServerConfig, staticDir string, stores store.Provider) (*APIService, error) {
	svc := &APIService{router: echo.New()}

	svc.router.HideBanner = true
	svc.router.HidePort = true
	svc.router.Validator = NewValidator()
	svc.router.Binder = NewBinder()
	svc.router.JSONSerializer = NewJSONSerializer()
	svc.router.HTTPErrorHandler = httpErrorHandler
	svc.router.Use(middleware.Recover())
	svc.router.Use(svc.RequestContextMiddleware)
	svc.router.Use(middleware.Logger())
	svc.router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: []string{echo.GET, echo.POST},
		AllowHeaders: []string{"Content-Type"},
	}))

	cntrl := controller.NewController(visitor.NewVisitorService(stores), stores, staticDir)

	svc.router.GET("/", cntrl.GetDashboard)
	svc.router.POST("/", cntrl.PostVisitor)
	svc.router.Static("/static", staticDir)

	api := svc.router.Group("/api/v1")
	api.GET("/summary", cntrl.GetSummary)
	api.GET("/visitors", cntrl.ListVisitors)

	return svc, nil
}
