package socialaccount_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"socialid/internal/domain"
	"socialid/internal/validator"
	"socialid/internal/validator/socialaccount"
	"socialid/mocks"
)

func setupTokenInput(supportsToken bool) (*mocks.MockProviderRegistry, *mocks.MockProvider, *socialaccount.ProviderTokenInput) {
	registry := new(mocks.MockProviderRegistry)
	provider := new(mocks.MockProvider)
	provider.On("ID").Return("google").Maybe()
	provider.On("App").Return(&domain.SocialApp{Provider: "google", ClientID: "abc"}).Maybe()
	provider.On("SupportsTokenAuthentication").Return(supportsToken).Maybe()
	registry.On("Get", mock.Anything, "google").Return(provider, nil).Maybe()
	registry.On("Get", mock.Anything, mock.Anything).Return(nil, domain.ErrProviderNotFound).Maybe()

	return registry, provider, socialaccount.NewProviderTokenInput(registry, time.Second, nil)
}

func runInput(t *testing.T, in validator.Input, body string) error {
	t.Helper()
	data, err := validator.ParseData([]byte(body))
	require.NoError(t, err)
	return validator.Run(context.Background(), in, data)
}

func requireErrorSet(t *testing.T, err error) *validator.ErrorSet {
	t.Helper()
	var set *validator.ErrorSet
	require.ErrorAs(t, err, &set)
	return set
}

func TestProviderToken_Verified(t *testing.T) {
	_, provider, in := setupTokenInput(true)
	login := &domain.SocialLogin{
		Account: domain.SocialAccount{Provider: "google", UID: "uid-1"},
		Email:   "user@example.com",
	}
	provider.On("VerifyToken", mock.Anything, domain.ProviderToken{ClientID: "abc", IDToken: "eyJ.x.y"}).Return(login, nil)

	err := runInput(t, in, `{"provider":"google","process":"login","token":{"client_id":"abc","id_token":"eyJ.x.y"}}`)

	require.NoError(t, err)
	assert.Same(t, provider, in.Provider)
	assert.Equal(t, domain.ProcessLogin, in.Process)
	require.NotNil(t, in.SocialLogin)
	assert.Equal(t, "login", in.SocialLogin.State["process"])
	assert.Equal(t, domain.ProcessLogin, in.SocialLogin.Process())
	assert.Equal(t, "eyJ.x.y", in.SocialLogin.Token.IDToken)
}

func TestProviderToken_ConnectWithAccessToken(t *testing.T) {
	_, provider, in := setupTokenInput(true)
	provider.On("VerifyToken", mock.Anything, domain.ProviderToken{ClientID: "abc", AccessToken: "ya29"}).
		Return(&domain.SocialLogin{Account: domain.SocialAccount{UID: "uid-1"}}, nil)

	err := runInput(t, in, `{"provider":"google","process":"connect","token":{"client_id":"abc","access_token":"ya29","id_token":null}}`)

	require.NoError(t, err)
	assert.Equal(t, domain.ProcessConnect, in.SocialLogin.Process())
	assert.Equal(t, "google", in.SocialLogin.Account.Provider)
}

func TestProviderToken_InvalidProcessSkipsVerification(t *testing.T) {
	_, provider, in := setupTokenInput(true)

	err := runInput(t, in, `{"provider":"google","process":"bogus","token":{"client_id":"abc","id_token":"eyJ.x.y"}}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []string{"process"}, set.Fields())
	assert.Equal(t, validator.CodeInvalidChoice, set.Get("process")[0].Code)
	assert.Nil(t, in.SocialLogin)
	provider.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
}

func TestProviderToken_TokenNotAnObject(t *testing.T) {
	_, provider, in := setupTokenInput(true)

	err := runInput(t, in, `{"provider":"google","process":"login","token":"eyJ.x.y"}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []string{"token"}, set.Fields())
	assert.Equal(t, []validator.Entry{
		{Param: "token", Message: "Invalid `token`.", Code: "invalid"},
	}, set.Entries())
	assert.Same(t, provider, in.Provider)
	provider.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
}

func TestProviderToken_TokenMissing(t *testing.T) {
	_, _, in := setupTokenInput(true)

	err := runInput(t, in, `{"provider":"google","process":"login"}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []validator.Entry{
		{Param: "token", Message: "This field is required.", Code: "required"},
		{Param: "token", Message: "Invalid `token`.", Code: "invalid"},
	}, set.Entries())
}

func TestProviderToken_EmptyTokenObject(t *testing.T) {
	_, _, in := setupTokenInput(true)

	err := runInput(t, in, `{"provider":"google","process":"login","token":{}}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []validator.Entry{
		{Param: "token", Message: "This field is required.", Code: "required"},
	}, set.Entries())
}

func TestProviderToken_ClientIDMismatch(t *testing.T) {
	_, provider, in := setupTokenInput(true)

	err := runInput(t, in, `{"provider":"google","process":"login","token":{"client_id":"other"}}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []validator.Entry{
		{Param: "token", Message: "Provider does not match `client_id`.", Code: "invalid"},
	}, set.Entries())
	provider.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
}

func TestProviderToken_ClientIDNotAString(t *testing.T) {
	_, _, in := setupTokenInput(true)

	err := runInput(t, in, `{"provider":"google","process":"login","token":{"client_id":123,"id_token":"x"}}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, "Provider does not match `client_id`.", set.Get("token")[0].Message)
}

func TestProviderToken_TokensRequired(t *testing.T) {
	cases := map[string]string{
		"both absent":           `{"client_id":"abc"}`,
		"both empty":            `{"client_id":"abc","id_token":"","access_token":""}`,
		"id token not a string": `{"client_id":"abc","id_token":42,"access_token":"ya29"}`,
		"access token object":   `{"client_id":"abc","id_token":"eyJ","access_token":{"v":1}}`,
		"both null":             `{"client_id":"abc","id_token":null,"access_token":null}`,
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, provider, in := setupTokenInput(true)

			err := runInput(t, in, `{"provider":"google","process":"login","token":`+token+`}`)

			set := requireErrorSet(t, err)
			assert.Equal(t, []validator.Entry{
				{Param: "token", Message: "`id_token` and/or `access_token` required.", Code: "required"},
			}, set.Entries())
			provider.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
		})
	}
}

func TestProviderToken_NoTokenAuthentication(t *testing.T) {
	_, provider, in := setupTokenInput(false)

	err := runInput(t, in, `{"provider":"google","process":"login","token":"x"}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []validator.Entry{
		{Param: "provider", Message: "Provider does not support token authentication.", Code: "invalid"},
		{Param: "token", Message: "Invalid `token`.", Code: "invalid"},
	}, set.Entries())
	assert.Nil(t, in.Provider)
	provider.AssertNotCalled(t, "VerifyToken", mock.Anything, mock.Anything)
}

func TestProviderToken_UnknownProvider(t *testing.T) {
	_, _, in := setupTokenInput(true)

	err := runInput(t, in, `{"provider":"myspace","process":"login","token":{"client_id":"abc","id_token":"x"}}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []validator.Entry{
		{Param: "provider", Message: "Unknown provider.", Code: "invalid"},
	}, set.Entries())
}

func TestProviderToken_RegistryFailureAborts(t *testing.T) {
	registry := new(mocks.MockProviderRegistry)
	registry.On("Get", mock.Anything, "google").Return(nil, errors.New("db down"))
	in := socialaccount.NewProviderTokenInput(registry, time.Second, nil)

	err := runInput(t, in, `{"provider":"google","process":"login","token":{"client_id":"abc","id_token":"x"}}`)

	require.Error(t, err)
	assert.False(t, validator.IsValidationError(err))
}

func TestProviderToken_VerificationRejected(t *testing.T) {
	_, provider, in := setupTokenInput(true)
	provider.On("VerifyToken", mock.Anything, mock.Anything).
		Return(nil, validator.NewError("Token expired.", "expired"))

	var outcomes []string
	in = socialaccount.NewProviderTokenInput(registryFor(provider), time.Second, func(_, outcome string) {
		outcomes = append(outcomes, outcome)
	})

	err := runInput(t, in, `{"provider":"google","process":"login","token":{"client_id":"abc","id_token":"x"}}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []validator.Entry{
		{Param: "token", Message: "Token expired.", Code: "expired"},
	}, set.Entries())
	assert.Equal(t, []string{"rejected"}, outcomes)
	assert.Nil(t, in.SocialLogin)
}

func TestProviderToken_VerificationTimeout(t *testing.T) {
	_, provider, _ := setupTokenInput(true)
	provider.On("VerifyToken", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)
	in := socialaccount.NewProviderTokenInput(registryFor(provider), 20*time.Millisecond, nil)

	err := runInput(t, in, `{"provider":"google","process":"login","token":{"client_id":"abc","id_token":"x"}}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []validator.Entry{
		{Param: "token", Message: "Token verification timed out.", Code: socialaccount.CodeTimeout},
	}, set.Entries())
}

func TestProviderToken_VerificationFailure(t *testing.T) {
	_, provider, in := setupTokenInput(true)
	provider.On("VerifyToken", mock.Anything, mock.Anything).Return(nil, errors.New("jwks fetch failed"))

	err := runInput(t, in, `{"provider":"google","process":"login","token":{"client_id":"abc","id_token":"x"}}`)

	set := requireErrorSet(t, err)
	assert.Equal(t, []validator.Entry{
		{Param: "token", Message: "Invalid token.", Code: "invalid"},
	}, set.Entries())
}

func registryFor(provider *mocks.MockProvider) *mocks.MockProviderRegistry {
	registry := new(mocks.MockProviderRegistry)
	registry.On("Get", mock.Anything, "google").Return(provider, nil)
	return registry
}
