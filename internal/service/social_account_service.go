package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/logger"
	"socialid/internal/port"
	"socialid/internal/validator"
	"socialid/internal/validator/socialaccount"
)

// SocialLoginOutput contains the results of a social login.
type SocialLoginOutput struct {
	User      *domain.User `json:"user"`
	Tokens    *TokenPair   `json:"tokens"`
	IsNewUser bool         `json:"is_new_user"`
}

// SignupRequiredError is returned when a social login can only complete
// after the user fills in the signup form.
type SignupRequiredError struct {
	Flow domain.PendingSignup
}

func (e *SignupRequiredError) Error() string {
	return fmt.Sprintf("signup required for %s login", e.Flow.Provider)
}

// SocialAccountService defines the social account contract.
type SocialAccountService interface {
	// ProviderToken authenticates with a token obtained by a provider SDK.
	// user is nil for anonymous requests.
	ProviderToken(ctx context.Context, user *domain.User, data validator.Data) (*SocialLoginOutput, error)
	// ProviderSignup completes a pending social login with the signup form.
	ProviderSignup(ctx context.Context, key string, data validator.Data) (*SocialLoginOutput, error)
	ListAccounts(ctx context.Context, user *domain.User) ([]domain.SocialAccount, error)
	// DisconnectAccount unlinks an account and returns the remaining ones.
	DisconnectAccount(ctx context.Context, user *domain.User, data validator.Data) ([]domain.SocialAccount, error)
	Providers(ctx context.Context) ([]domain.ProviderInfo, error)
}

type socialAccountService struct {
	registry  port.ProviderRegistry
	accounts  port.SocialAccountRepository
	userRepo  port.UserRepository
	pending   port.PendingLoginStore
	guard     port.DisconnectGuard
	emailer   port.EmailSender
	authSvc   AuthService
	signupCfg config.SignupConfig
	socialCfg config.SocialConfig
	observe   socialaccount.VerifyObserver
}

// NewSocialAccountService creates a new SocialAccountService.
func NewSocialAccountService(
	registry port.ProviderRegistry,
	accounts port.SocialAccountRepository,
	userRepo port.UserRepository,
	pending port.PendingLoginStore,
	guard port.DisconnectGuard,
	emailer port.EmailSender,
	authSvc AuthService,
	signupCfg config.SignupConfig,
	socialCfg config.SocialConfig,
	observe socialaccount.VerifyObserver,
) SocialAccountService {
	return &socialAccountService{
		registry:  registry,
		accounts:  accounts,
		userRepo:  userRepo,
		pending:   pending,
		guard:     guard,
		emailer:   emailer,
		authSvc:   authSvc,
		signupCfg: signupCfg,
		socialCfg: socialCfg,
		observe:   observe,
	}
}

func (s *socialAccountService) ProviderToken(ctx context.Context, user *domain.User, data validator.Data) (*SocialLoginOutput, error) {
	in := socialaccount.NewProviderTokenInput(s.registry, s.socialCfg.VerifyTimeout, s.observe)
	if err := validator.Run(ctx, in, data); err != nil {
		return nil, err
	}

	login := in.SocialLogin
	if login.Process() == domain.ProcessConnect {
		return s.connect(ctx, user, in.Provider, login)
	}
	return s.login(ctx, login)
}

func (s *socialAccountService) login(ctx context.Context, login *domain.SocialLogin) (*SocialLoginOutput, error) {
	log := logger.From(ctx).With(logger.Provider(login.Account.Provider))

	// 1. Known account: returning user
	existing, err := s.accounts.GetByProviderUID(ctx, login.Account.Provider, login.Account.UID)
	if err == nil {
		user, err := s.userRepo.GetByID(ctx, existing.UserID)
		if err != nil {
			return nil, fmt.Errorf("social.login: loading user: %w", err)
		}
		if !user.IsActive {
			return nil, domain.ErrUserInactive
		}
		s.touch(ctx, existing, login)
		return s.issue(user, false)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("social.login: looking up account: %w", err)
	}

	// 2. Email verified by the provider: link to the user owning it
	email := strings.ToLower(login.Email)
	if email != "" {
		owner, err := s.userRepo.GetByEmail(ctx, email)
		switch {
		case err == nil && login.EmailVerified:
			if !owner.IsActive {
				return nil, domain.ErrUserInactive
			}
			if err := s.link(ctx, owner, login); err != nil {
				return nil, err
			}
			log.Info("linked social account by verified email", logger.UserID(owner.ID.String()))
			return s.issue(owner, false)
		case err == nil:
			// The address belongs to someone else as far as we can tell.
			return nil, s.requireSignup(ctx, login)
		case !errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("social.login: looking up email: %w", err)
		}
	}

	// 3. New user
	if !s.signupCfg.Enabled {
		return nil, domain.ErrSignupClosed
	}
	if !s.signupCfg.AutoSignup || (email == "" && s.signupCfg.EmailRequired) {
		return nil, s.requireSignup(ctx, login)
	}
	username, err := GenerateUsername(ctx, s.userRepo, s.signupCfg, login.Username, email, login.Name)
	if err != nil {
		return nil, err
	}
	user, err := s.createUser(ctx, login, email, username)
	if err != nil {
		return nil, err
	}
	log.Info("signed up via social account", logger.UserID(user.ID.String()))
	return s.issue(user, true)
}

func (s *socialAccountService) connect(ctx context.Context, user *domain.User, provider port.Provider, login *domain.SocialLogin) (*SocialLoginOutput, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}

	existing, err := s.accounts.GetByProviderUID(ctx, login.Account.Provider, login.Account.UID)
	switch {
	case err == nil && existing.UserID != user.ID:
		return nil, domain.ErrSocialAccountTaken
	case err == nil:
		s.touch(ctx, existing, login)
	case errors.Is(err, domain.ErrNotFound):
		if err := s.link(ctx, user, login); err != nil {
			return nil, err
		}
		if mailErr := s.emailer.SendAccountConnected(ctx, user.Email, user.FullName, provider.Name()); mailErr != nil {
			logger.From(ctx).Warn("failed to send account connected email", logger.UserID(user.ID.String()), zap.Error(mailErr))
		}
	default:
		return nil, fmt.Errorf("social.connect: looking up account: %w", err)
	}
	return s.issue(user, false)
}

func (s *socialAccountService) ProviderSignup(ctx context.Context, key string, data validator.Data) (*SocialLoginOutput, error) {
	if !s.signupCfg.Enabled {
		return nil, domain.ErrSignupClosed
	}
	login, err := s.pending.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	in := socialaccount.NewSignupInput(s.userRepo, s.signupCfg, login)
	if err := validator.Run(ctx, in, data); err != nil {
		return nil, err
	}

	username := in.Username
	if username == "" {
		username, err = GenerateUsername(ctx, s.userRepo, s.signupCfg, login.Username, in.Email, login.Name)
		if err != nil {
			return nil, err
		}
	}
	user, err := s.createUser(ctx, login, in.Email, username)
	if err != nil {
		return nil, err
	}
	if err := s.pending.Delete(ctx, key); err != nil {
		logger.From(ctx).Warn("failed to delete pending login", zap.Error(err))
	}
	return s.issue(user, true)
}

func (s *socialAccountService) ListAccounts(ctx context.Context, user *domain.User) ([]domain.SocialAccount, error) {
	accounts, err := s.accounts.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("social.ListAccounts: %w", err)
	}
	return accounts, nil
}

func (s *socialAccountService) DisconnectAccount(ctx context.Context, user *domain.User, data validator.Data) ([]domain.SocialAccount, error) {
	in := socialaccount.NewDeleteProviderAccountInput(user, s.accounts, s.guard)
	if err := validator.Run(ctx, in, data); err != nil {
		return nil, err
	}

	if err := s.accounts.Delete(ctx, user.ID, in.Account.ID); err != nil {
		return nil, fmt.Errorf("social.DisconnectAccount: %w", err)
	}
	logger.From(ctx).Info("social account disconnected",
		logger.UserID(user.ID.String()), logger.Provider(in.Account.Provider))

	providerName := in.Account.Provider
	if p, err := s.registry.Get(ctx, in.Account.Provider); err == nil {
		providerName = p.Name()
	}
	if err := s.emailer.SendAccountDisconnected(ctx, user.Email, user.FullName, providerName); err != nil {
		logger.From(ctx).Warn("failed to send account disconnected email", logger.UserID(user.ID.String()), zap.Error(err))
	}
	return in.Remaining, nil
}

func (s *socialAccountService) Providers(ctx context.Context) ([]domain.ProviderInfo, error) {
	providers, err := s.registry.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ProviderInfo, 0, len(providers))
	for _, p := range providers {
		flows := []string{domain.FlowProviderRedirect}
		if p.SupportsTokenAuthentication() {
			flows = append(flows, domain.FlowProviderToken)
		}
		out = append(out, domain.ProviderInfo{
			ID:       p.ID(),
			Name:     p.Name(),
			ClientID: p.App().ClientID,
			Flows:    flows,
		})
	}
	return out, nil
}

func (s *socialAccountService) requireSignup(ctx context.Context, login *domain.SocialLogin) error {
	if !s.signupCfg.Enabled {
		return domain.ErrSignupClosed
	}
	key, err := s.pending.Save(ctx, login)
	if err != nil {
		return fmt.Errorf("social.requireSignup: %w", err)
	}
	return &SignupRequiredError{Flow: domain.PendingSignup{
		Key:      key,
		Provider: login.Account.Provider,
		Email:    login.Email,
		Username: login.Username,
	}}
}

func (s *socialAccountService) createUser(ctx context.Context, login *domain.SocialLogin, email, username string) (*domain.User, error) {
	now := time.Now().UTC()
	user := &domain.User{
		ID:            uuid.New(),
		Email:         email,
		Username:      username,
		FullName:      strings.TrimSpace(login.Name),
		Role:          domain.RoleMember,
		IsActive:      true,
		EmailVerified: login.EmailVerified && strings.EqualFold(email, login.Email),
	}
	if user.EmailVerified {
		user.EmailVerifiedAt = &now
	}
	account := login.Account
	account.ID = uuid.New()
	account.UserID = user.ID
	if err := s.userRepo.CreateWithAccount(ctx, user, &account); err != nil {
		if errors.Is(err, domain.ErrSocialAccountTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("social.createUser: %w", err)
	}
	login.Account = account
	login.User = user
	return user, nil
}

func (s *socialAccountService) link(ctx context.Context, user *domain.User, login *domain.SocialLogin) error {
	account := login.Account
	account.ID = uuid.New()
	account.UserID = user.ID
	if err := s.accounts.Create(ctx, &account); err != nil {
		if errors.Is(err, domain.ErrSocialAccountTaken) {
			return err
		}
		return fmt.Errorf("social.link: %w", err)
	}
	login.Account = account
	login.User = user
	return nil
}

// touch refreshes the stored provider data of a returning account.
func (s *socialAccountService) touch(ctx context.Context, existing *domain.SocialAccount, login *domain.SocialLogin) {
	existing.LastLogin = time.Now().UTC()
	if len(login.Account.ExtraData) > 0 {
		existing.ExtraData = login.Account.ExtraData
	}
	if err := s.accounts.Update(ctx, existing); err != nil {
		logger.From(ctx).Warn("failed to update social account", zap.Error(err))
	}
	login.Account = *existing
}

func (s *socialAccountService) issue(user *domain.User, isNew bool) (*SocialLoginOutput, error) {
	tokens, err := s.authSvc.GenerateTokenPairForUser(user)
	if err != nil {
		return nil, fmt.Errorf("generating tokens: %w", err)
	}
	return &SocialLoginOutput{User: user, Tokens: tokens, IsNewUser: isNew}, nil
}
