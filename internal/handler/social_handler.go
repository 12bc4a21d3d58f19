package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"socialid/internal/middleware"
	"socialid/internal/service"
)

// FlowKeyHeader carries the key of a pending social signup.
const FlowKeyHeader = "X-Flow-Key"

// SocialHandler handles the headless social account endpoints.
type SocialHandler struct {
	social service.SocialAccountService
}

// NewSocialHandler creates a new SocialHandler.
func NewSocialHandler(social service.SocialAccountService) *SocialHandler {
	return &SocialHandler{social: social}
}

// ProviderToken handles POST /api/v1/auth/provider/token
// @Summary      Authenticate with a provider token
// @Description  Logs in (or connects, for authenticated callers) with an ID or access token obtained by a provider SDK.
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        body body ProviderTokenRequest true "Provider token"
// @Success      200 {object} APIResponse{data=service.SocialLoginOutput}
// @Success      201 {object} APIResponse{data=service.SocialLoginOutput}
// @Failure      400 {object} APIResponse
// @Failure      401 {object} APIResponse
// @Failure      409 {object} APIResponse
// @Failure      413 {object} APIResponse
// @Failure      429 {object} APIResponse
// @Router       /auth/provider/token [post]
func (h *SocialHandler) ProviderToken(c *gin.Context) {
	data, ok := readData(c)
	if !ok {
		return
	}

	output, err := h.social.ProviderToken(c.Request.Context(), middleware.GetUser(c), data)
	if err != nil {
		HandleError(c, err)
		return
	}
	respondLogin(c, output)
}

// ProviderSignup handles POST /api/v1/auth/provider/signup
// @Summary      Complete a pending social signup
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        X-Flow-Key header string true "Key of the pending signup flow"
// @Param        body body ProviderSignupRequest true "Signup form"
// @Success      201 {object} APIResponse{data=service.SocialLoginOutput}
// @Failure      400 {object} APIResponse
// @Failure      404 {object} APIResponse
// @Router       /auth/provider/signup [post]
func (h *SocialHandler) ProviderSignup(c *gin.Context) {
	key := c.GetHeader(FlowKeyHeader)
	if key == "" {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", FlowKeyHeader+" header is required")
		return
	}
	data, ok := readData(c)
	if !ok {
		return
	}

	output, err := h.social.ProviderSignup(c.Request.Context(), key, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	respondLogin(c, output)
}

// ListAccounts handles GET /api/v1/account/providers
// @Summary      List connected social accounts
// @Tags         social
// @Produce      json
// @Success      200 {object} APIResponse{data=[]domain.SocialAccount}
// @Failure      401 {object} APIResponse
// @Security     BearerAuth
// @Router       /account/providers [get]
func (h *SocialHandler) ListAccounts(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	accounts, err := h.social.ListAccounts(c.Request.Context(), user)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, accounts)
}

// DisconnectAccount handles DELETE /api/v1/account/providers
// @Summary      Disconnect a social account
// @Tags         social
// @Accept       json
// @Produce      json
// @Param        body body DisconnectRequest true "Account to disconnect"
// @Success      200 {object} APIResponse{data=[]domain.SocialAccount}
// @Failure      400 {object} APIResponse
// @Failure      401 {object} APIResponse
// @Security     BearerAuth
// @Router       /account/providers [delete]
func (h *SocialHandler) DisconnectAccount(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	data, ok := readData(c)
	if !ok {
		return
	}

	remaining, err := h.social.DisconnectAccount(c.Request.Context(), user, data)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, remaining)
}

func respondLogin(c *gin.Context, output *service.SocialLoginOutput) {
	if output.IsNewUser {
		RespondCreated(c, output)
		return
	}
	RespondOK(c, output)
}
