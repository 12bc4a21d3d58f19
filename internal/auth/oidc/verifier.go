package oidc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"socialid/internal/auth"
)

// Claims are the standard claims read from ID tokens and userinfo responses.
type Claims struct {
	Subject           string       `json:"sub"`
	Email             string       `json:"email"`
	EmailVerified     flexibleBool `json:"email_verified"`
	Name              string       `json:"name"`
	GivenName         string       `json:"given_name"`
	FamilyName        string       `json:"family_name"`
	PreferredUsername string       `json:"preferred_username"`
	Picture           string       `json:"picture"`

	Raw map[string]any `json:"-"`
}

// Identity converts the claims.
func (c *Claims) Identity() auth.Identity {
	name := c.Name
	if name == "" && (c.GivenName != "" || c.FamilyName != "") {
		name = c.GivenName + " " + c.FamilyName
	}
	return auth.Identity{
		UID:           c.Subject,
		Email:         c.Email,
		EmailVerified: bool(c.EmailVerified),
		Name:          name,
		Username:      c.PreferredUsername,
		Extra:         c.Raw,
	}
}

// Some providers send email_verified as a string.
type flexibleBool bool

func (b *flexibleBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*b = flexibleBool(t)
	case string:
		*b = flexibleBool(t == "true")
	default:
		*b = false
	}
	return nil
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithHTTPClient sets the client used for discovery, keys and userinfo.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) { v.client = c }
}

// WithEndpoints skips discovery and uses the given endpoints.
func WithEndpoints(jwksURL, userInfoURL string) Option {
	return func(v *Verifier) {
		v.jwksURL = jwksURL
		v.userInfoURL = userInfoURL
	}
}

// WithKeySet verifies signatures against ks instead of fetching keys.
func WithKeySet(ks gooidc.KeySet) Option {
	return func(v *Verifier) { v.keySet = ks }
}

// Verifier checks ID tokens and access tokens issued by one OpenID Connect
// issuer for one client. Discovery happens on first use.
type Verifier struct {
	issuer      string
	clientID    string
	jwksURL     string
	userInfoURL string
	keySet      gooidc.KeySet
	client      *http.Client

	mu       sync.Mutex
	provider *gooidc.Provider
	idTokens *gooidc.IDTokenVerifier
}

// NewVerifier creates a verifier for tokens issued by issuer to clientID.
func NewVerifier(issuer, clientID string, opts ...Option) *Verifier {
	v := &Verifier{
		issuer:   issuer,
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Verifier) init(ctx context.Context) (*gooidc.Provider, *gooidc.IDTokenVerifier, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.idTokens != nil {
		return v.provider, v.idTokens, nil
	}

	cctx := gooidc.ClientContext(ctx, v.client)
	cfg := &gooidc.Config{ClientID: v.clientID}
	switch {
	case v.keySet != nil:
		v.provider = (&gooidc.ProviderConfig{IssuerURL: v.issuer, UserInfoURL: v.userInfoURL}).NewProvider(cctx)
		v.idTokens = gooidc.NewVerifier(v.issuer, v.keySet, cfg)
	case v.jwksURL != "":
		v.provider = (&gooidc.ProviderConfig{IssuerURL: v.issuer, JWKSURL: v.jwksURL, UserInfoURL: v.userInfoURL}).NewProvider(cctx)
		v.idTokens = v.provider.Verifier(cfg)
	default:
		p, err := gooidc.NewProvider(cctx, v.issuer)
		if err != nil {
			return nil, nil, fmt.Errorf("oidc: discovery for %s: %w", v.issuer, err)
		}
		v.provider = p
		v.idTokens = p.Verifier(cfg)
	}
	return v.provider, v.idTokens, nil
}

// VerifyIDToken checks signature, issuer, audience and expiry of raw.
func (v *Verifier) VerifyIDToken(ctx context.Context, raw string) (*Claims, error) {
	_, idTokens, err := v.init(ctx)
	if err != nil {
		return nil, err
	}
	tok, err := idTokens.Verify(gooidc.ClientContext(ctx, v.client), raw)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var expired *gooidc.TokenExpiredError
		if errors.As(err, &expired) || !verifierFailure(err) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("oidc: verifying id token: %w", err)
	}

	claims := &Claims{}
	if err := tok.Claims(claims); err != nil {
		return nil, auth.ErrInvalidToken
	}
	_ = tok.Claims(&claims.Raw)
	if claims.Subject == "" {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// UserInfo fetches the claims of the account accessToken was issued for.
func (v *Verifier) UserInfo(ctx context.Context, accessToken string) (*Claims, error) {
	provider, _, err := v.init(ctx)
	if err != nil {
		return nil, err
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	info, err := provider.UserInfo(gooidc.ClientContext(ctx, v.client), ts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if userInfoRejected(err) {
			return nil, auth.ErrInvalidToken
		}
		return nil, fmt.Errorf("oidc: fetching userinfo: %w", err)
	}

	claims := &Claims{}
	if err := info.Claims(claims); err != nil {
		return nil, auth.ErrInvalidToken
	}
	_ = info.Claims(&claims.Raw)
	if claims.Subject == "" {
		claims.Subject = info.Subject
	}
	if claims.Subject == "" {
		return nil, auth.ErrInvalidToken
	}
	return claims, nil
}

// verifierFailure reports whether err means the token could not be checked,
// as opposed to the token being bad. go-oidc wraps key set errors with %v, so
// only the message tells them apart.
func verifierFailure(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fetching keys") || strings.Contains(msg, "invalid configuration")
}

// userInfoRejected reports whether the userinfo endpoint refused the token.
// go-oidc reports non-200 answers as "<status>: <body>".
func userInfoRejected(err error) bool {
	msg := err.Error()
	for _, status := range []string{"400 ", "401 ", "403 "} {
		if strings.HasPrefix(msg, status) {
			return true
		}
	}
	return false
}
