package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "ytt/backend/docs"
	"ytt/backend/internal/config"
	"ytt/backend/internal/handler"
)

// Handlers groups everything mounted under /api.
type Handlers struct {
	Translate *handler.TranslateHandler
	History   *handler.HistoryHandler
	YouTube   *handler.YouTubeHandler
	Settings  *handler.SettingsHandler
}

type healthResponse struct {
	Status string `json:"status"`
}

type versionResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func NewRouter(h Handlers, cfg config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(RequestLoggerMiddleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	// Room for multipart framing on top of the largest accepted file.
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxFileSizeMB+1)))

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, healthResponse{Status: "healthy"})
	})

	api := e.Group("/api")
	api.GET("/version", func(c echo.Context) error {
		return c.JSON(http.StatusOK, versionResponse{Name: config.AppName, Version: config.AppVersion})
	})
	h.Translate.RegisterRoutes(api)
	h.History.RegisterRoutes(api)
	h.YouTube.RegisterRoutes(api)
	h.Settings.RegisterRoutes(api)

	registerStatic(e, cfg.StaticDir)

	return e
}
