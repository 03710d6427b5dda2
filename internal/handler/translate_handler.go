package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"ytt/backend/internal/service"
	"ytt/backend/internal/service/translator"
)

type TranslateHandler struct {
	service service.TranslateService
}

func NewTranslateHandler(service service.TranslateService) *TranslateHandler {
	return &TranslateHandler{service: service}
}

func (h *TranslateHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/translate", h.Translate)
	g.POST("/translate/detect", h.Detect)
	g.GET("/languages", h.Languages)
	g.GET("/providers", h.Providers)
}

type languagesResponse struct {
	Languages []translator.Language `json:"languages"`
}

type providersResponse struct {
	Providers []service.ProviderInfo `json:"providers"`
}

// Translate translates pasted text or an uploaded document.
// @Summary Translate text or file
// @Description Translate text or an uploaded document and record it in the history. An untranslated transcript with the same text is completed instead of creating a new entry.
// @Tags translate
// @Accept multipart/form-data
// @Produce json
// @Param text formData string false "Text to translate"
// @Param file formData file false "Document to translate (.txt .md .srt .vtt .json .yaml .yml .html .htm)"
// @Param source_lang formData string false "Source language (default auto)"
// @Param target_lang formData string false "Target language (default en)"
// @Param provider formData string false "libretranslate, openai, anthropic or compatible"
// @Param entry_id formData string false "History entry to attach the translation to"
// @Success 200 {object} service.TranslateResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 413 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /translate [post]
func (h *TranslateHandler) Translate(c echo.Context) error {
	req := service.TranslateRequest{
		Text:       c.FormValue("text"),
		SourceLang: c.FormValue("source_lang"),
		TargetLang: c.FormValue("target_lang"),
		Provider:   c.FormValue("provider"),
		EntryID:    c.FormValue("entry_id"),
	}

	fh, err := c.FormFile("file")
	switch {
	case err == nil:
		src, err := fh.Open()
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid file")
		}
		defer src.Close()
		data, err := io.ReadAll(src)
		if err != nil {
			return Error(c, http.StatusBadRequest, "invalid file")
		}
		req.File = &service.UploadedFile{Name: fh.Filename, Size: fh.Size, Data: data}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	res, err := h.service.Translate(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Detect reports the language of a text.
// @Summary Detect language
// @Tags translate
// @Accept multipart/form-data
// @Produce json
// @Param text formData string true "Text to analyse"
// @Success 200 {object} service.DetectionResult
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Router /translate/detect [post]
func (h *TranslateHandler) Detect(c echo.Context) error {
	res, err := h.service.Detect(c.Request().Context(), c.FormValue("text"))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Languages lists the languages LibreTranslate supports.
// @Summary List languages
// @Tags translate
// @Produce json
// @Success 200 {object} languagesResponse
// @Failure 502 {object} errorResponse
// @Router /languages [get]
func (h *TranslateHandler) Languages(c echo.Context) error {
	langs, err := h.service.Languages(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, languagesResponse{Languages: langs})
}

// Providers lists the usable translation providers.
// @Summary List providers
// @Tags translate
// @Produce json
// @Success 200 {object} providersResponse
// @Router /providers [get]
func (h *TranslateHandler) Providers(c echo.Context) error {
	return c.JSON(http.StatusOK, providersResponse{Providers: h.service.Providers(c.Request().Context())})
}
