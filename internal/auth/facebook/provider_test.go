package facebook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialid/internal/auth"
	"socialid/internal/auth/authtest"
	"socialid/internal/auth/facebook"
	"socialid/internal/auth/oidc"
	"socialid/internal/domain"
)

func graphServer(t *testing.T, appID string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/debug_token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fb-app|fb-secret", r.URL.Query().Get("access_token"))
		valid := r.URL.Query().Get("input_token") == "EAAB-good"
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"app_id": appID, "is_valid": valid, "user_id": "fb-1"},
		})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer EAAB-good" || r.URL.Query().Get("appsecret_proof") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":         "fb-1",
			"email":      "joe@example.com",
			"first_name": "Joe",
			"last_name":  "Bloggs",
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(srv *httptest.Server, opts ...oidc.Option) *facebook.Provider {
	app := &domain.SocialApp{Provider: facebook.Kind, ClientID: "fb-app", Secret: "fb-secret"}
	endpoints := facebook.Endpoints{Graph: srv.URL, Issuer: "https://www.facebook.com", JWKS: srv.URL + "/jwks"}
	return facebook.NewProvider(app, endpoints, opts...)
}

func TestVerifyToken_AccessToken(t *testing.T) {
	p := newProvider(graphServer(t, "fb-app"))

	login, err := p.VerifyToken(context.Background(), domain.ProviderToken{ClientID: "fb-app", AccessToken: "EAAB-good"})

	require.NoError(t, err)
	assert.Equal(t, "facebook", login.Account.Provider)
	assert.Equal(t, "fb-1", login.Account.UID)
	assert.Equal(t, "joe@example.com", login.Email)
	assert.False(t, login.EmailVerified)
	assert.Equal(t, "Joe Bloggs", login.Name)
}

func TestVerifyToken_InvalidAccessToken(t *testing.T) {
	p := newProvider(graphServer(t, "fb-app"))

	_, err := p.VerifyToken(context.Background(), domain.ProviderToken{AccessToken: "EAAB-bad"})

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyToken_TokenForAnotherApp(t *testing.T) {
	p := newProvider(graphServer(t, "other-app"))

	_, err := p.VerifyToken(context.Background(), domain.ProviderToken{AccessToken: "EAAB-good"})

	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestVerifyToken_LimitedLoginIDToken(t *testing.T) {
	signer, err := authtest.NewSigner()
	require.NoError(t, err)
	p := newProvider(graphServer(t, "fb-app"), oidc.WithKeySet(signer.KeySet()))

	raw, err := signer.Sign("https://www.facebook.com", "fb-app", "fb-9", map[string]any{
		"email": "ll@example.com",
		"name":  "Limited",
	})
	require.NoError(t, err)

	login, err := p.VerifyToken(context.Background(), domain.ProviderToken{IDToken: raw})

	require.NoError(t, err)
	assert.Equal(t, "fb-9", login.Account.UID)
	assert.Equal(t, "ll@example.com", login.Email)
	assert.False(t, login.EmailVerified)
}
