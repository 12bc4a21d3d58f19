package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/port"
	"socialid/internal/service"
	"socialid/internal/validator"
	"socialid/mocks"
)

type socialFixture struct {
	registry *mocks.MockProviderRegistry
	provider *mocks.MockProvider
	accounts *mocks.MockSocialAccountRepo
	users    *mocks.MockUserRepo
	pending  *mocks.MockPendingLoginStore
	guard    *mocks.MockDisconnectGuard
	emailer  *mocks.MockEmailSender
	authSvc  *mocks.MockAuthService
	signup   config.SignupConfig
}

func newSocialFixture() *socialFixture {
	f := &socialFixture{
		registry: new(mocks.MockProviderRegistry),
		provider: new(mocks.MockProvider),
		accounts: new(mocks.MockSocialAccountRepo),
		users:    new(mocks.MockUserRepo),
		pending:  new(mocks.MockPendingLoginStore),
		guard:    new(mocks.MockDisconnectGuard),
		emailer:  new(mocks.MockEmailSender),
		authSvc:  new(mocks.MockAuthService),
		signup: config.SignupConfig{
			Enabled:           true,
			AutoSignup:        true,
			EmailRequired:     true,
			UsernameMinLength: 3,
		},
	}
	f.provider.On("ID").Return("google").Maybe()
	f.provider.On("Name").Return("Google").Maybe()
	f.provider.On("App").Return(&domain.SocialApp{Provider: "google", ClientID: "abc"}).Maybe()
	f.provider.On("SupportsTokenAuthentication").Return(true).Maybe()
	f.registry.On("Get", mock.Anything, "google").Return(f.provider, nil).Maybe()
	f.authSvc.On("GenerateTokenPairForUser", mock.Anything).
		Return(&service.TokenPair{AccessToken: "access", RefreshToken: "refresh"}, nil).Maybe()
	return f
}

func (f *socialFixture) service() service.SocialAccountService {
	return service.NewSocialAccountService(
		f.registry, f.accounts, f.users, f.pending, f.guard, f.emailer, f.authSvc,
		f.signup, config.SocialConfig{VerifyTimeout: time.Second}, nil,
	)
}

func (f *socialFixture) verifies(login *domain.SocialLogin) {
	f.provider.On("VerifyToken", mock.Anything, mock.Anything).Return(login, nil)
}

func parse(t *testing.T, body string) validator.Data {
	t.Helper()
	data, err := validator.ParseData([]byte(body))
	require.NoError(t, err)
	return data
}

const loginBody = `{"provider":"google","process":"login","token":{"client_id":"abc","id_token":"eyJ.x.y"}}`

func googleLogin(email string, verified bool) *domain.SocialLogin {
	return &domain.SocialLogin{
		Account:       domain.SocialAccount{UID: "g-123"},
		Email:         email,
		EmailVerified: verified,
		Name:          "Jane Doe",
	}
}

func TestProviderToken_ReturningUser(t *testing.T) {
	f := newSocialFixture()
	user := &domain.User{ID: uuid.New(), Email: "jane@example.com", IsActive: true}
	existing := &domain.SocialAccount{ID: uuid.New(), UserID: user.ID, Provider: "google", UID: "g-123"}
	f.verifies(googleLogin("jane@example.com", true))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").Return(existing, nil)
	f.accounts.On("Update", mock.Anything, existing).Return(nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	out, err := f.service().ProviderToken(context.Background(), nil, parse(t, loginBody))

	require.NoError(t, err)
	assert.Same(t, user, out.User)
	assert.False(t, out.IsNewUser)
	assert.Equal(t, "access", out.Tokens.AccessToken)
	f.accounts.AssertExpectations(t)
}

func TestProviderToken_ReturningInactiveUser(t *testing.T) {
	f := newSocialFixture()
	user := &domain.User{ID: uuid.New(), IsActive: false}
	f.verifies(googleLogin("jane@example.com", true))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").
		Return(&domain.SocialAccount{UserID: user.ID}, nil)
	f.users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	out, err := f.service().ProviderToken(context.Background(), nil, parse(t, loginBody))

	assert.Nil(t, out)
	assert.ErrorIs(t, err, domain.ErrUserInactive)
}

func TestProviderToken_LinksVerifiedEmail(t *testing.T) {
	f := newSocialFixture()
	owner := &domain.User{ID: uuid.New(), Email: "jane@example.com", IsActive: true}
	f.verifies(googleLogin("Jane@Example.com", true))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").Return(nil, domain.ErrNotFound)
	f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(owner, nil)
	f.accounts.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.SocialAccount) bool {
		return a.UserID == owner.ID && a.Provider == "google" && a.UID == "g-123"
	})).Return(nil)

	out, err := f.service().ProviderToken(context.Background(), nil, parse(t, loginBody))

	require.NoError(t, err)
	assert.Same(t, owner, out.User)
	assert.False(t, out.IsNewUser)
	f.accounts.AssertExpectations(t)
}

func TestProviderToken_UnverifiedEmailRequiresSignup(t *testing.T) {
	f := newSocialFixture()
	f.verifies(googleLogin("jane@example.com", false))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").Return(nil, domain.ErrNotFound)
	f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(&domain.User{ID: uuid.New()}, nil)
	f.pending.On("Save", mock.Anything, mock.Anything).Return("flow-key", nil)

	out, err := f.service().ProviderToken(context.Background(), nil, parse(t, loginBody))

	assert.Nil(t, out)
	var signupErr *service.SignupRequiredError
	require.ErrorAs(t, err, &signupErr)
	assert.Equal(t, domain.PendingSignup{Key: "flow-key", Provider: "google", Email: "jane@example.com"}, signupErr.Flow)
	f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProviderToken_AutoSignup(t *testing.T) {
	f := newSocialFixture()
	f.verifies(googleLogin("jane@example.com", true))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").Return(nil, domain.ErrNotFound)
	f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrNotFound)
	f.users.On("GetByUsername", mock.Anything, "jane").Return(nil, domain.ErrNotFound)
	f.users.On("CreateWithAccount", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jane@example.com" && u.Username == "jane" && u.EmailVerified &&
			u.EmailVerifiedAt != nil && u.PasswordHash == "" && u.Role == domain.RoleMember
	}), mock.MatchedBy(func(a *domain.SocialAccount) bool {
		return a.Provider == "google" && a.UID == "g-123"
	})).Return(nil)

	out, err := f.service().ProviderToken(context.Background(), nil, parse(t, loginBody))

	require.NoError(t, err)
	assert.True(t, out.IsNewUser)
	assert.Equal(t, "Jane Doe", out.User.FullName)
	f.users.AssertExpectations(t)
}

func TestProviderToken_SignupClosed(t *testing.T) {
	f := newSocialFixture()
	f.signup.Enabled = false
	f.verifies(googleLogin("", false))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").Return(nil, domain.ErrNotFound)

	_, err := f.service().ProviderToken(context.Background(), nil, parse(t, loginBody))

	assert.ErrorIs(t, err, domain.ErrSignupClosed)
}

func TestProviderToken_MissingEmailRequiresSignup(t *testing.T) {
	f := newSocialFixture()
	f.verifies(googleLogin("", false))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").Return(nil, domain.ErrNotFound)
	f.pending.On("Save", mock.Anything, mock.Anything).Return("flow-key", nil)

	_, err := f.service().ProviderToken(context.Background(), nil, parse(t, loginBody))

	var signupErr *service.SignupRequiredError
	require.ErrorAs(t, err, &signupErr)
	assert.Equal(t, "flow-key", signupErr.Flow.Key)
}

func TestProviderToken_ValidationErrorsPassThrough(t *testing.T) {
	f := newSocialFixture()

	_, err := f.service().ProviderToken(context.Background(), nil, parse(t, `{"provider":"google"}`))

	var set *validator.ErrorSet
	require.ErrorAs(t, err, &set)
	assert.Equal(t, []string{"process", "token"}, set.Fields())
	f.provider.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
}

const connectBody = `{"provider":"google","process":"connect","token":{"client_id":"abc","access_token":"ya29"}}`

func TestProviderToken_ConnectRequiresUser(t *testing.T) {
	f := newSocialFixture()
	f.verifies(googleLogin("jane@example.com", true))

	_, err := f.service().ProviderToken(context.Background(), nil, parse(t, connectBody))

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestProviderToken_ConnectNewAccount(t *testing.T) {
	f := newSocialFixture()
	user := &domain.User{ID: uuid.New(), Email: "me@example.com", FullName: "Me", IsActive: true}
	f.verifies(googleLogin("jane@example.com", true))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").Return(nil, domain.ErrNotFound)
	f.accounts.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.SocialAccount) bool {
		return a.UserID == user.ID
	})).Return(nil)
	f.emailer.On("SendAccountConnected", mock.Anything, "me@example.com", "Me", "Google").Return(nil)

	out, err := f.service().ProviderToken(context.Background(), user, parse(t, connectBody))

	require.NoError(t, err)
	assert.Same(t, user, out.User)
	f.emailer.AssertExpectations(t)
}

func TestProviderToken_ConnectAccountOwnedByOther(t *testing.T) {
	f := newSocialFixture()
	user := &domain.User{ID: uuid.New(), IsActive: true}
	f.verifies(googleLogin("jane@example.com", true))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").
		Return(&domain.SocialAccount{UserID: uuid.New()}, nil)

	_, err := f.service().ProviderToken(context.Background(), user, parse(t, connectBody))

	assert.ErrorIs(t, err, domain.ErrSocialAccountTaken)
}

func TestProviderSignup(t *testing.T) {
	f := newSocialFixture()
	f.signup.UsernameRequired = true
	login := googleLogin("", false)
	login.Account.Provider = "google"
	f.pending.On("Get", mock.Anything, "flow-key").Return(login, nil)
	f.pending.On("Delete", mock.Anything, "flow-key").Return(nil)
	f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrNotFound)
	f.users.On("GetByUsername", mock.Anything, "jane").Return(nil, domain.ErrNotFound)
	f.users.On("CreateWithAccount", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "jane@example.com" && u.Username == "jane" && !u.EmailVerified
	}), mock.Anything).Return(nil)

	out, err := f.service().ProviderSignup(context.Background(), "flow-key",
		parse(t, `{"email":"jane@example.com","username":"jane"}`))

	require.NoError(t, err)
	assert.True(t, out.IsNewUser)
	f.pending.AssertExpectations(t)
	f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProviderSignup_AccountLinkFails(t *testing.T) {
	f := newSocialFixture()
	f.signup.UsernameRequired = true
	login := googleLogin("", false)
	login.Account.Provider = "google"
	f.pending.On("Get", mock.Anything, "flow-key").Return(login, nil)
	f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrNotFound)
	f.users.On("GetByUsername", mock.Anything, "jane").Return(nil, domain.ErrNotFound)
	f.users.On("CreateWithAccount", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrSocialAccountTaken)

	_, err := f.service().ProviderSignup(context.Background(), "flow-key",
		parse(t, `{"email":"jane@example.com","username":"jane"}`))

	assert.ErrorIs(t, err, domain.ErrSocialAccountTaken)
	f.users.AssertNumberOfCalls(t, "CreateWithAccount", 1)
	f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.pending.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProviderToken_AutoSignupStoreFailure(t *testing.T) {
	f := newSocialFixture()
	f.verifies(googleLogin("jane@example.com", true))
	f.accounts.On("GetByProviderUID", mock.Anything, "google", "g-123").Return(nil, domain.ErrNotFound)
	f.users.On("GetByEmail", mock.Anything, "jane@example.com").Return(nil, domain.ErrNotFound)
	f.users.On("GetByUsername", mock.Anything, "jane").Return(nil, domain.ErrNotFound)
	f.users.On("CreateWithAccount", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset"))

	out, err := f.service().ProviderToken(context.Background(), nil, parse(t, loginBody))

	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "connection reset")
	f.accounts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProviderSignup_UnknownFlow(t *testing.T) {
	f := newSocialFixture()
	f.pending.On("Get", mock.Anything, "stale").Return(nil, domain.ErrPendingLoginNotFound)

	_, err := f.service().ProviderSignup(context.Background(), "stale", parse(t, `{}`))

	assert.ErrorIs(t, err, domain.ErrPendingLoginNotFound)
}

func TestProviderSignup_InvalidForm(t *testing.T) {
	f := newSocialFixture()
	f.pending.On("Get", mock.Anything, "flow-key").Return(googleLogin("", false), nil)

	_, err := f.service().ProviderSignup(context.Background(), "flow-key", parse(t, `{"email":"nope"}`))

	var set *validator.ErrorSet
	require.ErrorAs(t, err, &set)
	assert.True(t, set.Has("email"))
	f.users.AssertNotCalled(t, "CreateWithAccount", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisconnectAccount(t *testing.T) {
	f := newSocialFixture()
	user := &domain.User{ID: uuid.New(), Email: "me@example.com", FullName: "Me"}
	linked := []domain.SocialAccount{
		{ID: uuid.New(), UserID: user.ID, Provider: "google", UID: "g-123"},
		{ID: uuid.New(), UserID: user.ID, Provider: "github", UID: "42"},
	}
	f.accounts.On("ListByUser", mock.Anything, user.ID).Return(linked, nil)
	f.guard.On("ValidateDisconnect", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.accounts.On("Delete", mock.Anything, user.ID, linked[0].ID).Return(nil)
	f.emailer.On("SendAccountDisconnected", mock.Anything, "me@example.com", "Me", "Google").Return(nil)

	remaining, err := f.service().DisconnectAccount(context.Background(), user,
		parse(t, `{"provider":"google","account":"g-123"}`))

	require.NoError(t, err)
	assert.Equal(t, []domain.SocialAccount{linked[1]}, remaining)
	f.accounts.AssertExpectations(t)
	f.emailer.AssertExpectations(t)
}

func TestDisconnectAccount_EmailFailureIgnored(t *testing.T) {
	f := newSocialFixture()
	user := &domain.User{ID: uuid.New()}
	linked := []domain.SocialAccount{{ID: uuid.New(), UserID: user.ID, Provider: "google", UID: "g-123"}}
	f.accounts.On("ListByUser", mock.Anything, user.ID).Return(linked, nil)
	f.guard.On("ValidateDisconnect", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.accounts.On("Delete", mock.Anything, user.ID, linked[0].ID).Return(nil)
	f.emailer.On("SendAccountDisconnected", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("smtp down"))

	remaining, err := f.service().DisconnectAccount(context.Background(), user,
		parse(t, `{"provider":"google","account":"g-123"}`))

	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestProviders(t *testing.T) {
	f := newSocialFixture()
	github := new(mocks.MockProvider)
	github.On("ID").Return("github")
	github.On("Name").Return("GitHub")
	github.On("App").Return(&domain.SocialApp{Provider: "github", ClientID: "gh"})
	github.On("SupportsTokenAuthentication").Return(false)
	f.registry.On("List", mock.Anything).Return([]port.Provider{f.provider, github}, nil)

	infos, err := f.service().Providers(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []domain.ProviderInfo{
		{ID: "google", Name: "Google", ClientID: "abc", Flows: []string{domain.FlowProviderRedirect, domain.FlowProviderToken}},
		{ID: "github", Name: "GitHub", ClientID: "gh", Flows: []string{domain.FlowProviderRedirect}},
	}, infos)
}
