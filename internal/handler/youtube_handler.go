package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"ytt/backend/internal/service"
	"ytt/backend/internal/service/youtube"
)

type YouTubeHandler struct {
	service service.TranscriptService
}

func NewYouTubeHandler(service service.TranscriptService) *YouTubeHandler {
	return &YouTubeHandler{service: service}
}

func (h *YouTubeHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/youtube/fetch", h.Fetch)
	g.POST("/youtube/info", h.Info)
	g.GET("/youtube/extract-id", h.ExtractID)
}

type transcriptRequest struct {
	URL        string `json:"url"`
	SourceLang string `json:"source_lang"`
	TargetLang string `json:"target_lang"`
	UseCookies string `json:"use_cookies"`
	MergeLines *bool  `json:"merge_lines"`
}

type videoInfoRequest struct {
	URL        string `json:"url"`
	UseCookies string `json:"use_cookies"`
}

type extractIDResponse struct {
	VideoID string `json:"video_id"`
	URL     string `json:"url"`
}

// Fetch downloads a transcript and optionally translates it.
// @Summary Fetch transcript
// @Description Fetch the subtitles of a video. Results are cached per video and language pair, so repeated requests do not contact YouTube again.
// @Tags youtube
// @Accept json
// @Produce json
// @Param request body transcriptRequest true "Video URL and languages"
// @Success 200 {object} model.TranscriptResult
// @Failure 400 {object} errorResponse
// @Router /youtube/fetch [post]
func (h *YouTubeHandler) Fetch(c echo.Context) error {
	var req transcriptRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	if req.URL == "" {
		return Error(c, http.StatusBadRequest, "url is required")
	}

	mergeLines := true
	if req.MergeLines != nil {
		mergeLines = *req.MergeLines
	}

	result, err := h.service.Fetch(c.Request().Context(), service.TranscriptRequest{
		URL:        req.URL,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
		UseCookies: req.UseCookies,
		MergeLines: mergeLines,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Info returns video metadata and the available subtitle languages.
// @Summary Video info
// @Tags youtube
// @Accept json
// @Produce json
// @Param request body videoInfoRequest true "Video URL"
// @Success 200 {object} service.VideoDetails
// @Failure 400 {object} errorResponse
// @Router /youtube/info [post]
func (h *YouTubeHandler) Info(c echo.Context) error {
	var req videoInfoRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}

	details, err := h.service.Info(c.Request().Context(), req.URL, req.UseCookies)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, details)
}

// ExtractID parses the video id out of a URL.
// @Summary Extract video id
// @Tags youtube
// @Produce json
// @Param url query string true "YouTube URL"
// @Success 200 {object} extractIDResponse
// @Failure 400 {object} errorResponse
// @Router /youtube/extract-id [get]
func (h *YouTubeHandler) ExtractID(c echo.Context) error {
	url := c.QueryParam("url")
	videoID, ok := youtube.ExtractVideoID(url)
	if !ok {
		return Error(c, http.StatusBadRequest, "invalid YouTube URL")
	}
	return c.JSON(http.StatusOK, extractIDResponse{VideoID: videoID, URL: url})
}
