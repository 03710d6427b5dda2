package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"ytt/backend/internal/network"
	"ytt/backend/internal/service"
)

type SettingsHandler struct {
	service       service.SettingsService
	clientFactory *network.ClientFactory
	// probeURL is requested through the proxy under test.
	probeURL string
}

type aiSettingsRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"apiKey"`
	BaseURL  string `json:"baseUrl"`
	Model    string `json:"model"`
}

type connectionTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type networkSettingsRequest struct {
	ProxyURL string `json:"proxyUrl"`
}

func NewSettingsHandler(service service.SettingsService, clientFactory *network.ClientFactory, probeURL string) *SettingsHandler {
	return &SettingsHandler{service: service, clientFactory: clientFactory, probeURL: probeURL}
}

func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/settings", h.GetSettings)
	g.PUT("/settings", h.UpdateSettings)
	g.POST("/settings/reset", h.ResetSettings)
	g.GET("/settings/export", h.ExportSettings)
	g.POST("/settings/import", h.ImportSettings)
	g.GET("/settings/ai", h.GetAISettings)
	g.PUT("/settings/ai", h.UpdateAISettings)
	g.POST("/settings/ai/test", h.TestAI)
	g.GET("/settings/network", h.GetNetworkSettings)
	g.PUT("/settings/network", h.UpdateNetworkSettings)
	g.POST("/settings/network/test", h.TestNetworkProxy)
}

// GetSettings returns the application settings.
// @Summary Get settings
// @Tags settings
// @Produce json
// @Success 200 {object} service.AppSettings
// @Failure 500 {object} errorResponse
// @Router /settings [get]
func (h *SettingsHandler) GetSettings(c echo.Context) error {
	settings, err := h.service.GetAppSettings(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial settings document.
// @Summary Update settings
// @Description Only the fields present in the body are changed.
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body service.AppSettings true "Settings to change"
// @Success 200 {object} service.AppSettings
// @Failure 400 {object} errorResponse
// @Router /settings [put]
func (h *SettingsHandler) UpdateSettings(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	settings, err := h.service.UpdateAppSettings(c.Request().Context(), body)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// ResetSettings restores the defaults.
// @Summary Reset settings
// @Tags settings
// @Produce json
// @Success 200 {object} service.AppSettings
// @Router /settings/reset [post]
func (h *SettingsHandler) ResetSettings(c echo.Context) error {
	settings, err := h.service.ResetAppSettings(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// ExportSettings downloads the settings document.
// @Summary Export settings
// @Tags settings
// @Produce json
// @Success 200 {object} service.AppSettings
// @Router /settings/export [get]
func (h *SettingsHandler) ExportSettings(c echo.Context) error {
	settings, err := h.service.GetAppSettings(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="ytt-settings.json"`)
	return c.JSON(http.StatusOK, settings)
}

// ImportSettings replaces the settings. Missing fields take their defaults.
// @Summary Import settings
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body service.AppSettings true "Settings document"
// @Success 200 {object} service.AppSettings
// @Failure 400 {object} errorResponse
// @Router /settings/import [post]
func (h *SettingsHandler) ImportSettings(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid request")
	}
	settings, err := h.service.ImportAppSettings(c.Request().Context(), body)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// GetAISettings returns the AI configuration.
// @Summary Get AI settings
// @Description Get the AI provider configuration with a masked API key
// @Tags settings
// @Produce json
// @Success 200 {object} service.AISettings
// @Failure 500 {object} errorResponse
// @Router /settings/ai [get]
func (h *SettingsHandler) GetAISettings(c echo.Context) error {
	settings, err := h.service.GetAISettings(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get settings"})
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateAISettings updates the AI configuration.
// @Summary Update AI settings
// @Description Empty or masked apiKey keeps the stored key.
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body aiSettingsRequest true "AI settings"
// @Success 200 {object} service.AISettings
// @Failure 400 {object} errorResponse
// @Router /settings/ai [put]
func (h *SettingsHandler) UpdateAISettings(c echo.Context) error {
	var req aiSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	if err := h.service.SetAISettings(c.Request().Context(), &service.AISettings{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		BaseURL:  req.BaseURL,
		Model:    req.Model,
	}); err != nil {
		return writeServiceError(c, err)
	}

	return h.GetAISettings(c)
}

// TestAI sends a short prompt to the configured model.
// @Summary Test AI connection
// @Tags settings
// @Accept json
// @Produce json
// @Param config body aiSettingsRequest true "AI configuration to test"
// @Success 200 {object} connectionTestResponse
// @Failure 400 {object} errorResponse
// @Router /settings/ai/test [post]
func (h *SettingsHandler) TestAI(c echo.Context) error {
	var req aiSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if req.Provider == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "provider is required"})
	}
	if req.Model == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "model is required"})
	}

	response, err := h.service.TestAI(c.Request().Context(), &service.AISettings{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		BaseURL:  req.BaseURL,
		Model:    req.Model,
	})
	if err != nil {
		return c.JSON(http.StatusOK, connectionTestResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, connectionTestResponse{Success: true, Message: response})
}

// GetNetworkSettings returns the proxy configuration.
// @Summary Get network settings
// @Tags settings
// @Produce json
// @Success 200 {object} service.NetworkSettings
// @Failure 500 {object} errorResponse
// @Router /settings/network [get]
func (h *SettingsHandler) GetNetworkSettings(c echo.Context) error {
	settings, err := h.service.GetNetworkSettings(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "failed to get settings"})
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateNetworkSettings sets the proxy used for translation requests.
// @Summary Update network settings
// @Description An empty proxyUrl disables the proxy. Supported schemes: http, https, socks5, socks5h.
// @Tags settings
// @Accept json
// @Produce json
// @Param settings body networkSettingsRequest true "Network settings"
// @Success 200 {object} service.NetworkSettings
// @Failure 400 {object} errorResponse
// @Router /settings/network [put]
func (h *SettingsHandler) UpdateNetworkSettings(c echo.Context) error {
	var req networkSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	if err := h.service.SetNetworkSettings(c.Request().Context(), &service.NetworkSettings{ProxyURL: req.ProxyURL}); err != nil {
		return writeServiceError(c, err)
	}
	return h.GetNetworkSettings(c)
}

// TestNetworkProxy checks that the translation server is reachable through
// a proxy without saving it.
// @Summary Test network proxy
// @Tags settings
// @Accept json
// @Produce json
// @Param config body networkSettingsRequest true "Proxy to test"
// @Success 200 {object} connectionTestResponse
// @Failure 400 {object} errorResponse
// @Router /settings/network/test [post]
func (h *SettingsHandler) TestNetworkProxy(c echo.Context) error {
	var req networkSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}

	if req.ProxyURL == "" {
		return c.JSON(http.StatusOK, connectionTestResponse{
			Success: true,
			Message: "Proxy is disabled, direct connection will be used",
		})
	}

	if err := h.clientFactory.TestProxyWithConfig(c.Request().Context(), req.ProxyURL, h.probeURL); err != nil {
		return c.JSON(http.StatusOK, connectionTestResponse{Success: false, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, connectionTestResponse{Success: true, Message: "Proxy connection successful"})
}
