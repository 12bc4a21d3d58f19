package auth

import (
	"encoding/json"
	"time"

	"socialid/internal/domain"
	"socialid/internal/validator"
)

// ErrInvalidToken is the rejection reported for tokens a provider does not accept.
var ErrInvalidToken = validator.NewError("Invalid token.", validator.CodeInvalid)

// Base carries the app-derived identity shared by all providers.
type Base struct {
	app         *domain.SocialApp
	defaultName string
}

// NewBase creates a Base for app. defaultName is used when the app has no name.
func NewBase(app *domain.SocialApp, defaultName string) Base {
	return Base{app: app, defaultName: defaultName}
}

func (b Base) ID() string { return b.app.InstanceID() }

func (b Base) Name() string {
	if b.app.Name != "" {
		return b.app.Name
	}
	return b.defaultName
}

func (b Base) App() *domain.SocialApp { return b.app }

// Identity is what a provider learned about the authenticated account.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
	Username      string
	Extra         any
}

// Login turns id into a SocialLogin for the provider.
func (b Base) Login(id Identity) *domain.SocialLogin {
	var extra json.RawMessage
	if id.Extra != nil {
		if raw, err := json.Marshal(id.Extra); err == nil {
			extra = raw
		}
	}
	now := time.Now().UTC()
	return &domain.SocialLogin{
		Account: domain.SocialAccount{
			Provider:   b.ID(),
			UID:        id.UID,
			ExtraData:  extra,
			LastLogin:  now,
			DateJoined: now,
		},
		Email:         id.Email,
		EmailVerified: id.EmailVerified,
		Name:          id.Name,
		Username:      id.Username,
		State:         map[string]any{},
	}
}
