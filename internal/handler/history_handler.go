package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ytt/backend/internal/model"
	"ytt/backend/internal/service"
)

type HistoryHandler struct {
	service service.HistoryService
}

func NewHistoryHandler(service service.HistoryService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

func (h *HistoryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/history", h.List)
	g.DELETE("/history", h.Clear)
	g.POST("/history/dedupe", h.Dedupe)
	g.GET("/history/:id", h.Get)
	g.DELETE("/history/:id", h.Delete)
}

// List returns history entries, newest first.
// @Summary List history
// @Tags history
// @Produce json
// @Param limit query int false "Page size, 1 to 100 (default 20)"
// @Param offset query int false "Entries to skip"
// @Param source_lang query string false "Filter by source language"
// @Param target_lang query string false "Filter by target language"
// @Success 200 {array} model.Entry
// @Failure 400 {object} errorResponse
// @Router /history [get]
func (h *HistoryHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit", service.DefaultHistoryLimit)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid limit")
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid offset")
	}

	entries, err := h.service.List(c.Request().Context(), service.HistoryQuery{
		Limit:      limit,
		Offset:     offset,
		SourceLang: c.QueryParam("source_lang"),
		TargetLang: c.QueryParam("target_lang"),
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}

// Get returns one history entry.
// @Summary Get history entry
// @Tags history
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} model.Entry
// @Failure 404 {object} errorResponse
// @Router /history/{id} [get]
func (h *HistoryHandler) Get(c echo.Context) error {
	entry, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// Delete removes one history entry.
// @Summary Delete history entry
// @Tags history
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorResponse
// @Router /history/{id} [delete]
func (h *HistoryHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Translation deleted successfully"})
}

// Clear removes every history entry.
// @Summary Clear history
// @Tags history
// @Produce json
// @Success 200 {object} messageResponse
// @Router /history [delete]
func (h *HistoryHandler) Clear(c echo.Context) error {
	if err := h.service.Clear(c.Request().Context()); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "History cleared successfully"})
}

// Dedupe merges duplicate transcript entries.
// @Summary Deduplicate history
// @Description Collapse transcript entries for the same video and language pair, and fold matching text translations into untranslated transcripts. The previous file is kept as a backup.
// @Tags history
// @Produce json
// @Success 200 {object} service.DedupeReport
// @Router /history/dedupe [post]
func (h *HistoryHandler) Dedupe(c echo.Context) error {
	report, err := h.service.Dedupe(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
