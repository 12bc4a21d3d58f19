package facebook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"

	"socialid/internal/auth"
	"socialid/internal/auth/oidc"
	"socialid/internal/domain"
	"socialid/internal/port"
)

// Kind is the provider kind of Facebook apps.
const Kind = "facebook"

const (
	graphURL    = "https://graph.facebook.com/v19.0"
	issuer      = "https://www.facebook.com"
	jwksURL     = "https://limited.facebook.com/.well-known/oauth/openid/jwks/"
	meFields    = "id,email,name,first_name,last_name"
	httpTimeout = 10 * time.Second
)

// Endpoints overrides Facebook's endpoints.
type Endpoints struct {
	Graph  string
	Issuer string
	JWKS   string
}

// DefaultEndpoints are Facebook's production endpoints.
var DefaultEndpoints = Endpoints{Graph: graphURL, Issuer: issuer, JWKS: jwksURL}

type debugTokenResponse struct {
	Data struct {
		AppID   string `json:"app_id"`
		IsValid bool   `json:"is_valid"`
		UserID  string `json:"user_id"`
	} `json:"data"`
}

type meResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Provider verifies Facebook access tokens through the Graph API and Limited
// Login ID tokens against Facebook's keys.
type Provider struct {
	auth.Base
	graphURL   string
	verifier   *oidc.Verifier
	httpClient *http.Client
}

// NewProvider creates a Facebook provider for app.
func NewProvider(app *domain.SocialApp, endpoints Endpoints, opts ...oidc.Option) *Provider {
	client := &http.Client{Timeout: httpTimeout}
	opts = append([]oidc.Option{
		oidc.WithHTTPClient(client),
		oidc.WithEndpoints(endpoints.JWKS, ""),
	}, opts...)
	return &Provider{
		Base:       auth.NewBase(app, "Facebook"),
		graphURL:   endpoints.Graph,
		verifier:   oidc.NewVerifier(endpoints.Issuer, app.ClientID, opts...),
		httpClient: client,
	}
}

// Factory returns an auth.Factory for Facebook apps.
func Factory(endpoints Endpoints, opts ...oidc.Option) auth.Factory {
	return func(app *domain.SocialApp) (port.Provider, error) {
		return NewProvider(app, endpoints, opts...), nil
	}
}

func (p *Provider) SupportsTokenAuthentication() bool { return true }

func (p *Provider) VerifyToken(ctx context.Context, token domain.ProviderToken) (*domain.SocialLogin, error) {
	if token.AccessToken == "" {
		claims, err := p.verifier.VerifyIDToken(ctx, token.IDToken)
		if err != nil {
			return nil, err
		}
		// Facebook does not vouch for the address.
		claims.EmailVerified = false
		return p.Login(claims.Identity()), nil
	}

	if err := p.debugToken(ctx, token.AccessToken); err != nil {
		return nil, err
	}
	me, raw, err := p.me(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}
	name := me.Name
	if name == "" {
		name = me.FirstName + " " + me.LastName
	}
	return p.Login(auth.Identity{
		UID:   me.ID,
		Email: me.Email,
		Name:  name,
		Extra: raw,
	}), nil
}

// debugToken checks that the token is valid and was issued for our app.
func (p *Provider) debugToken(ctx context.Context, accessToken string) error {
	app := p.App()
	q := url.Values{}
	q.Set("input_token", accessToken)
	q.Set("access_token", app.ClientID+"|"+app.Secret)

	var out debugTokenResponse
	if err := p.getJSON(ctx, p.httpClient, p.graphURL+"/debug_token?"+q.Encode(), &out); err != nil {
		return err
	}
	if !out.Data.IsValid || out.Data.AppID != app.ClientID {
		return auth.ErrInvalidToken
	}
	return nil
}

func (p *Provider) me(ctx context.Context, accessToken string) (*meResponse, map[string]any, error) {
	q := url.Values{}
	q.Set("fields", meFields)
	if secret := p.App().Secret; secret != "" {
		q.Set("appsecret_proof", appSecretProof(accessToken, secret))
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}))

	var raw map[string]any
	if err := p.getJSON(ctx, client, p.graphURL+"/me?"+q.Encode(), &raw); err != nil {
		return nil, nil, err
	}
	b, _ := json.Marshal(raw)
	var me meResponse
	if err := json.Unmarshal(b, &me); err != nil || me.ID == "" {
		return nil, nil, auth.ErrInvalidToken
	}
	return &me, raw, nil
}

func (p *Provider) getJSON(ctx context.Context, client *http.Client, u string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating graph request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("calling graph api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return auth.ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("graph api returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding graph response: %w", err)
	}
	return nil
}

func appSecretProof(accessToken, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(accessToken))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ port.Provider = (*Provider)(nil)
