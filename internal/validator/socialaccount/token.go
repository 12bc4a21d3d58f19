package socialaccount

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"socialid/internal/domain"
	"socialid/internal/logger"
	"socialid/internal/port"
	"socialid/internal/validator"
)

// Codes reported by ProviderTokenInput beyond the generic ones.
const CodeTimeout = "timeout"

// VerifyObserver is notified of every token verification outcome.
type VerifyObserver func(provider, outcome string)

// ProviderTokenInput validates a token obtained by a client through a
// provider SDK and verifies it with the provider.
type ProviderTokenInput struct {
	registry      port.ProviderRegistry
	verifyTimeout time.Duration
	observe       VerifyObserver

	Provider    port.Provider
	Process     domain.AuthProcess
	Token       domain.ProviderToken
	SocialLogin *domain.SocialLogin
}

// NewProviderTokenInput creates the input. A zero verifyTimeout disables the
// verification deadline.
func NewProviderTokenInput(registry port.ProviderRegistry, verifyTimeout time.Duration, observe VerifyObserver) *ProviderTokenInput {
	if observe == nil {
		observe = func(string, string) {}
	}
	return &ProviderTokenInput{registry: registry, verifyTimeout: verifyTimeout, observe: observe}
}

func (in *ProviderTokenInput) Fields() []validator.Field {
	return []validator.Field{
		{Name: "provider", Clean: in.cleanProvider},
		{Name: "process", Clean: func(_ context.Context, v validator.Value) error {
			p, err := validator.ChoiceField{Choices: domain.AuthProcesses}.Clean(v)
			in.Process = domain.AuthProcess(p)
			return err
		}},
		{Name: "token", Clean: func(_ context.Context, v validator.Value) error {
			return validator.Required(v)
		}},
	}
}

func (in *ProviderTokenInput) cleanProvider(ctx context.Context, v validator.Value) error {
	id, err := validator.CharField{Required: true}.Clean(v)
	if err != nil {
		return err
	}
	provider, err := in.registry.Get(ctx, id)
	if errors.Is(err, domain.ErrProviderNotFound) {
		return validator.NewError("Unknown provider.", validator.CodeInvalid)
	}
	if err != nil {
		return err
	}
	if !provider.SupportsTokenAuthentication() {
		return validator.NewError("Provider does not support token authentication.", validator.CodeInvalid)
	}
	in.Provider = provider
	return nil
}

func (in *ProviderTokenInput) Clean(ctx context.Context, data validator.Data, errs *validator.ErrorSet) error {
	token, ok := data.Get("token").AsObject()
	if !ok {
		errs.Add("token", validator.NewError("Invalid `token`.", validator.CodeInvalid))
		token = nil
	}
	if in.Provider != nil && len(token) > 0 {
		clientID, isString := token.Get("client_id").AsString()
		if !isString || clientID != in.Provider.App().ClientID {
			errs.Add("token", validator.NewError("Provider does not match `client_id`.", validator.CodeInvalid))
		} else if !in.cleanTokens(token) {
			errs.Add("token", validator.NewError("`id_token` and/or `access_token` required.", validator.CodeRequired))
		}
	}
	if !errs.Empty() {
		return nil
	}
	return in.verify(ctx, errs)
}

// cleanTokens fills in.Token and reports whether the token pair is usable.
func (in *ProviderTokenInput) cleanTokens(token validator.Data) bool {
	idToken, idOK := optionalString(token.Get("id_token"))
	accessToken, accessOK := optionalString(token.Get("access_token"))
	if !idOK || !accessOK || (idToken == "" && accessToken == "") {
		return false
	}
	clientID, _ := token.Get("client_id").AsString()
	in.Token = domain.ProviderToken{ClientID: clientID, IDToken: idToken, AccessToken: accessToken}
	return true
}

func optionalString(v validator.Value) (string, bool) {
	if v.IsNone() {
		return "", true
	}
	return v.AsString()
}

func (in *ProviderTokenInput) verify(ctx context.Context, errs *validator.ErrorSet) error {
	vctx := ctx
	if in.verifyTimeout > 0 {
		var cancel context.CancelFunc
		vctx, cancel = context.WithTimeout(ctx, in.verifyTimeout)
		defer cancel()
	}

	providerID := in.Provider.ID()
	login, err := in.Provider.VerifyToken(vctx, in.Token)
	if err == nil && login == nil {
		err = errors.New("provider returned no login")
	}
	switch {
	case err == nil:
	case validator.IsValidationError(err):
		in.observe(providerID, "rejected")
		errs.Add("token", err)
		return nil
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(vctx.Err(), context.DeadlineExceeded):
		in.observe(providerID, "timeout")
		logger.From(ctx).Warn("token verification timed out", logger.Provider(providerID), zap.Duration("timeout", in.verifyTimeout))
		errs.Add("token", validator.NewError("Token verification timed out.", CodeTimeout))
		return nil
	default:
		in.observe(providerID, "error")
		logger.From(ctx).Warn("token verification failed", logger.Provider(providerID), zap.Error(err))
		errs.Add("token", validator.NewError("Invalid token.", validator.CodeInvalid))
		return nil
	}

	in.observe(providerID, "verified")
	login.SetProcess(in.Process)
	if login.Account.Provider == "" {
		login.Account.Provider = providerID
	}
	login.Token = in.Token
	in.SocialLogin = login
	return nil
}
