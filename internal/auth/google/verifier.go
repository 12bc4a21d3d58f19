package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"socialid/internal/auth"
	"socialid/internal/auth/oidc"
	"socialid/internal/domain"
	"socialid/internal/port"
)

// Kind is the provider kind of Google apps.
const Kind = "google"

const (
	issuer       = "https://accounts.google.com"
	jwksURL      = "https://www.googleapis.com/oauth2/v3/certs"
	userInfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
	tokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
)

type tokenInfoResponse struct {
	Aud string `json:"aud"`
	Azp string `json:"azp"`
	Sub string `json:"sub"`
}

// Endpoints overrides Google's endpoints.
type Endpoints struct {
	Issuer    string
	JWKS      string
	UserInfo  string
	TokenInfo string
}

// DefaultEndpoints are Google's production endpoints.
var DefaultEndpoints = Endpoints{Issuer: issuer, JWKS: jwksURL, UserInfo: userInfoURL, TokenInfo: tokenInfoURL}

// Provider verifies Google ID tokens against Google's keys, and access tokens
// through the tokeninfo endpoint followed by userinfo.
type Provider struct {
	auth.Base
	tokenInfoURL string
	verifier     *oidc.Verifier
	httpClient   *http.Client
}

// NewProvider creates a Google provider for app.
func NewProvider(app *domain.SocialApp, endpoints Endpoints, opts ...oidc.Option) *Provider {
	client := &http.Client{Timeout: 10 * time.Second}
	opts = append([]oidc.Option{
		oidc.WithHTTPClient(client),
		oidc.WithEndpoints(endpoints.JWKS, endpoints.UserInfo),
	}, opts...)
	return &Provider{
		Base:         auth.NewBase(app, "Google"),
		tokenInfoURL: endpoints.TokenInfo,
		verifier:     oidc.NewVerifier(endpoints.Issuer, app.ClientID, opts...),
		httpClient:   client,
	}
}

// Factory returns an auth.Factory for Google apps.
func Factory(endpoints Endpoints, opts ...oidc.Option) auth.Factory {
	return func(app *domain.SocialApp) (port.Provider, error) {
		return NewProvider(app, endpoints, opts...), nil
	}
}

func (p *Provider) SupportsTokenAuthentication() bool { return true }

func (p *Provider) VerifyToken(ctx context.Context, token domain.ProviderToken) (*domain.SocialLogin, error) {
	if token.IDToken != "" {
		claims, err := p.verifier.VerifyIDToken(ctx, token.IDToken)
		if err != nil {
			return nil, err
		}
		return p.Login(claims.Identity()), nil
	}

	if err := p.checkAccessToken(ctx, token.AccessToken); err != nil {
		return nil, err
	}
	claims, err := p.verifier.UserInfo(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	return p.Login(claims.Identity()), nil
}

// checkAccessToken makes sure the access token was issued to our client.
func (p *Provider) checkAccessToken(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		p.tokenInfoURL+"?access_token="+url.QueryEscape(accessToken), http.NoBody)
	if err != nil {
		return fmt.Errorf("creating tokeninfo request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling tokeninfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return auth.ErrInvalidToken
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tokeninfo returned status %d", resp.StatusCode)
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return fmt.Errorf("decoding tokeninfo response: %w", err)
	}

	// Validate audience matches our client ID
	if info.Aud != p.App().ClientID && info.Azp != p.App().ClientID {
		return auth.ErrInvalidToken
	}
	return nil
}

// Compile-time check.
var _ port.Provider = (*Provider)(nil)
