package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User represents a local account.
type User struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	Email           string     `db:"email" json:"email"`
	Username        string     `db:"username" json:"username"`
	PasswordHash    string     `db:"password_hash" json:"-"`
	FullName        string     `db:"full_name" json:"full_name"`
	Role            UserRole   `db:"role" json:"role"`
	IsActive        bool       `db:"is_active" json:"is_active"`
	EmailVerified   bool       `db:"email_verified" json:"email_verified"`
	EmailVerifiedAt *time.Time `db:"email_verified_at" json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// HasUsablePassword reports whether the user can log in with a password.
// Accounts created through a social provider have none.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != "" && !strings.HasPrefix(u.PasswordHash, "!")
}

// SocialApp is the application registered with a social provider.
type SocialApp struct {
	ID         string         `json:"id" mapstructure:"id"`
	Provider   string         `json:"provider" mapstructure:"provider"`
	ProviderID string         `json:"provider_id" mapstructure:"provider_id"`
	Name       string         `json:"name" mapstructure:"name"`
	ClientID   string         `json:"client_id" mapstructure:"client_id"`
	Secret     string         `json:"-" mapstructure:"secret"`
	Key        string         `json:"-" mapstructure:"key"`
	Settings   map[string]any `json:"settings,omitempty" mapstructure:"settings"`
}

// InstanceID is the id of the provider backed by this app. It defaults to the provider kind.
func (a *SocialApp) InstanceID() string {
	if a.ProviderID != "" {
		return a.ProviderID
	}
	return a.Provider
}

// Setting returns a string setting or def when unset.
func (a *SocialApp) Setting(key, def string) string {
	if v, ok := a.Settings[key].(string); ok && v != "" {
		return v
	}
	return def
}

// SocialAccount links a user to an account at a social provider.
type SocialAccount struct {
	ID         uuid.UUID       `db:"id" json:"id"`
	UserID     uuid.UUID       `db:"user_id" json:"user_id"`
	Provider   string          `db:"provider" json:"provider"`
	UID        string          `db:"uid" json:"uid"`
	ExtraData  json.RawMessage `db:"extra_data" json:"extra_data,omitempty"`
	LastLogin  time.Time       `db:"last_login" json:"last_login"`
	DateJoined time.Time       `db:"date_joined" json:"date_joined"`
}

// ProviderToken is the token payload a client obtained from a provider SDK.
type ProviderToken struct {
	ClientID    string `json:"client_id"`
	IDToken     string `json:"id_token,omitempty"`
	AccessToken string `json:"access_token,omitempty"`
}

// SocialLogin is the verified result of a provider authentication, before a
// session is established.
type SocialLogin struct {
	Account       SocialAccount  `json:"account"`
	User          *User          `json:"user,omitempty"`
	Email         string         `json:"email"`
	EmailVerified bool           `json:"email_verified"`
	Name          string         `json:"name,omitempty"`
	Username      string         `json:"username,omitempty"`
	Token         ProviderToken  `json:"-"`
	State         map[string]any `json:"state,omitempty"`
}

// Process returns the process recorded in the login state, defaulting to login.
func (l *SocialLogin) Process() AuthProcess {
	if p, ok := l.State["process"].(string); ok {
		return AuthProcess(p)
	}
	if p, ok := l.State["process"].(AuthProcess); ok {
		return p
	}
	return ProcessLogin
}

// SetProcess records p in the login state.
func (l *SocialLogin) SetProcess(p AuthProcess) {
	if l.State == nil {
		l.State = make(map[string]any)
	}
	l.State["process"] = string(p)
}

// Clone returns a copy of l that shares no mutable state with it.
func (l *SocialLogin) Clone() *SocialLogin {
	cp := *l
	cp.Account.ExtraData = bytes.Clone(l.Account.ExtraData)
	if l.User != nil {
		u := *l.User
		cp.User = &u
	}
	if l.State != nil {
		cp.State = cloneValue(l.State).(map[string]any)
	}
	return &cp
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, e := range t {
			m[k] = cloneValue(e)
		}
		return m
	case []any:
		s := make([]any, len(t))
		for i, e := range t {
			s[i] = cloneValue(e)
		}
		return s
	case []byte:
		return bytes.Clone(t)
	case json.RawMessage:
		return json.RawMessage(bytes.Clone(t))
	default:
		return v
	}
}

// PendingSignup is returned when a social login needs a signup form first.
type PendingSignup struct {
	Key      string `json:"key"`
	Provider string `json:"provider"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}

// ProviderInfo describes one configured provider to clients.
type ProviderInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ClientID string   `json:"client_id,omitempty"`
	Flows    []string `json:"flows"`
}
