package handler

import (
	"github.com/gin-gonic/gin"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/service"
)

// ConfigResponse tells clients which flows the server offers.
type ConfigResponse struct {
	Signup    SignupSettings        `json:"signup"`
	Providers []domain.ProviderInfo `json:"providers"`
}

// SignupSettings is the public part of the signup configuration.
type SignupSettings struct {
	Enabled           bool   `json:"enabled"`
	EmailRequired     bool   `json:"email_required"`
	UsernameRequired  bool   `json:"username_required"`
	EmailVerification string `json:"email_verification"`
}

// ConfigHandler serves the client configuration.
type ConfigHandler struct {
	social service.SocialAccountService
	signup config.SignupConfig
}

// NewConfigHandler creates a new ConfigHandler.
func NewConfigHandler(social service.SocialAccountService, signup config.SignupConfig) *ConfigHandler {
	return &ConfigHandler{social: social, signup: signup}
}

// Get handles GET /api/v1/config
// @Summary      Client configuration
// @Tags         config
// @Produce      json
// @Success      200 {object} APIResponse{data=ConfigResponse}
// @Router       /config [get]
func (h *ConfigHandler) Get(c *gin.Context) {
	providers, err := h.social.Providers(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, ConfigResponse{
		Signup: SignupSettings{
			Enabled:           h.signup.Enabled,
			EmailRequired:     h.signup.EmailRequired,
			UsernameRequired:  h.signup.UsernameRequired,
			EmailVerification: h.signup.EmailVerification,
		},
		Providers: providers,
	})
}
