package service

import (
	"context"
	"fmt"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/port"
	"socialid/internal/validator"
)

// DisconnectPolicy refuses to unlink a user's last social account when the
// user would be left without a way to log in.
type DisconnectPolicy struct {
	userRepo             port.UserRepository
	requireVerifiedEmail bool
}

// NewDisconnectPolicy creates a DisconnectPolicy.
func NewDisconnectPolicy(userRepo port.UserRepository, signupCfg config.SignupConfig) *DisconnectPolicy {
	return &DisconnectPolicy{
		userRepo:             userRepo,
		requireVerifiedEmail: signupCfg.VerifiedEmailRequired(),
	}
}

func (p *DisconnectPolicy) ValidateDisconnect(ctx context.Context, account *domain.SocialAccount, accounts []domain.SocialAccount) error {
	if len(accounts) > 1 {
		return nil
	}
	user, err := p.userRepo.GetByID(ctx, account.UserID)
	if err != nil {
		return fmt.Errorf("DisconnectPolicy: loading user: %w", err)
	}
	if !user.HasUsablePassword() {
		return validator.NewError("Your account has no password set up.", "no_password")
	}
	if p.requireVerifiedEmail && !user.EmailVerified {
		return validator.NewError("Your account has no verified email address.", "no_verified_email")
	}
	return nil
}

var _ port.DisconnectGuard = (*DisconnectPolicy)(nil)
