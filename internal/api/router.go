package api

import (
	"go-accident-dashboard/internal/api/handler"
	"go-accident-dashboard/pkg/router"

	_ "go-accident-dashboard/internal/api/docs"

	httpSwagger "github.com/swaggo/http-swagger"
)

// RegisterRoutes mounts every API route and the swagger UI on r.
func RegisterRoutes(r *router.Router, h *handler.Handler) {
	r.GET("/api/v1/health", h.Health)

	r.GET("/api/v1/dataset", h.GetDataset)
	r.POST("/api/v1/dataset/reload", h.ReloadDataset)

	r.GET("/api/v1/filters", h.GetFilters)
	r.GET("/api/v1/dashboard", h.GetDashboard)
	r.GET("/api/v1/summary", h.GetSummary)

	r.GET("/api/v1/session", h.GetSession)
	r.PUT("/api/v1/session/filter", h.SetSessionFilter)

	r.GET("/api/v1/views", h.ListViews)
	r.GET("/api/v1/views/*", h.GetView)
	r.GET("/api/v1/charts/*", h.GetChart)

	r.POST("/api/v1/exports", h.CreateExport)
	r.GET("/api/v1/download/*/*", h.DownloadFile)

	r.Handle("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

// NewRouter returns a router serving h.
func NewRouter(h *handler.Handler) *router.Router {
	r := router.New()
	RegisterRoutes(r, h)
	return r
}
