// Package authtest signs ID tokens for provider tests.
package authtest

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
)

// Signer issues RS256 ID tokens.
type Signer struct {
	key *rsa.PrivateKey
}

// NewSigner generates a fresh key.
func NewSigner() (*Signer, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}
	return &Signer{key: key}, nil
}

// KeySet verifies tokens issued by s.
func (s *Signer) KeySet() gooidc.KeySet {
	return &gooidc.StaticKeySet{PublicKeys: []crypto.PublicKey{&s.key.PublicKey}}
}

// Sign issues a token for sub with the given issuer and audience. extra claims
// override the defaults.
func (s *Signer) Sign(issuer, audience, sub string, extra map[string]any) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": issuer,
		"aud": audience,
		"sub": sub,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}
	for k, v := range extra {
		claims[k] = v
	}
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
}
