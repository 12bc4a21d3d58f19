package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialid/internal/logger"
	"socialid/internal/port"
)

// InvalidateResponse names the provider whose cached client was dropped.
type InvalidateResponse struct {
	Provider string `json:"provider"`
}

// AdminHandler serves operator endpoints.
type AdminHandler struct {
	providers port.ProviderCache
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(providers port.ProviderCache) *AdminHandler {
	return &AdminHandler{providers: providers}
}

// InvalidateProvider handles POST /api/v1/admin/providers/:provider/invalidate
// @Summary      Drop a cached provider client
// @Description  The next request for the provider rebuilds it from the registered app.
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        provider path string true "Provider id"
// @Success      200 {object} APIResponse{data=InvalidateResponse}
// @Failure      401 {object} APIResponse
// @Failure      403 {object} APIResponse
// @Router       /admin/providers/{provider}/invalidate [post]
func (h *AdminHandler) InvalidateProvider(c *gin.Context) {
	id := c.Param("provider")
	if id == "" {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "provider is required")
		return
	}
	h.providers.Invalidate(id)
	logger.From(c.Request.Context()).Info("provider cache invalidated", zap.String("provider", id))
	RespondOK(c, InvalidateResponse{Provider: id})
}
