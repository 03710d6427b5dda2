package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"ytt/backend/internal/repository"
	"ytt/backend/internal/service"
	"ytt/backend/internal/service/extract"
	"ytt/backend/internal/service/translator"
)

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeServiceError(c echo.Context, err error) error {
	var providerErr *translator.ProviderError
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid YouTube URL"})
	case errors.Is(err, service.ErrInvalid),
		errors.Is(err, service.ErrFetchFailure),
		errors.Is(err, translator.ErrUnsupportedProvider),
		errors.Is(err, translator.ErrMissingAPIKey),
		errors.Is(err, translator.ErrMissingBaseURL),
		errors.Is(err, translator.ErrMissingModel),
		errors.Is(err, extract.ErrUnsupportedFormat),
		errors.Is(err, repository.ErrInvalidArtifactName):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrTooLarge):
		return c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: err.Error()})
	case errors.As(err, &providerErr):
		c.Logger().Error(err)
		return c.JSON(http.StatusBadGateway, errorResponse{Error: providerErr.Error()})
	default:
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}
