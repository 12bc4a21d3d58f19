package socialaccount

import (
	"context"
	"fmt"

	"socialid/internal/domain"
	"socialid/internal/port"
	"socialid/internal/validator"
)

// DeleteProviderAccountInput validates a request to unlink a social account
// from the current user.
type DeleteProviderAccountInput struct {
	user     *domain.User
	accounts port.SocialAccountRepository
	guard    port.DisconnectGuard

	Provider string
	UID      string
	// Account is the resolved account, set once the input is valid.
	Account *domain.SocialAccount
	// Remaining are the user's accounts apart from Account.
	Remaining []domain.SocialAccount
}

// NewDeleteProviderAccountInput creates the input for user.
func NewDeleteProviderAccountInput(user *domain.User, accounts port.SocialAccountRepository, guard port.DisconnectGuard) *DeleteProviderAccountInput {
	return &DeleteProviderAccountInput{user: user, accounts: accounts, guard: guard}
}

func (in *DeleteProviderAccountInput) Fields() []validator.Field {
	return []validator.Field{
		{Name: "provider", Clean: func(_ context.Context, v validator.Value) (err error) {
			in.Provider, err = validator.CharField{Required: true}.Clean(v)
			return err
		}},
		{Name: "account", Clean: func(_ context.Context, v validator.Value) (err error) {
			in.UID, err = validator.CharField{Required: true}.Clean(v)
			return err
		}},
	}
}

func (in *DeleteProviderAccountInput) Clean(ctx context.Context, _ validator.Data, _ *validator.ErrorSet) error {
	if in.UID == "" || in.Provider == "" {
		return nil
	}
	all, err := in.accounts.ListByUser(ctx, in.user.ID)
	if err != nil {
		return fmt.Errorf("DeleteProviderAccountInput.Clean: %w", err)
	}
	var account *domain.SocialAccount
	remaining := make([]domain.SocialAccount, 0, len(all))
	for i := range all {
		if account == nil && all[i].UID == in.UID && all[i].Provider == in.Provider {
			account = &all[i]
			continue
		}
		remaining = append(remaining, all[i])
	}
	if account == nil {
		return validator.NewError("Unknown account.", validator.CodeInvalid)
	}
	if err := in.guard.ValidateDisconnect(ctx, account, all); err != nil {
		return err
	}
	in.Account = account
	in.Remaining = remaining
	return nil
}
