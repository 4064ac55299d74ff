package controller

import (
	"github.com/ougirez/airquality/internal/pkg/store"
	"github.com/ougirez/airquality/internal/service/visitor"
)

type Controller struct {
	visitors  *visitor.Service
	stores    store.Provider
	staticDir string
}

func NewController(visitors *visitor.Service, stores store.Provider, staticDir string) *Controller {
	return &Controller{visitors: visitors, stores: stores, staticDir: staticDir}
}
