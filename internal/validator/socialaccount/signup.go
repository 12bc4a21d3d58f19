package socialaccount

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	playground "github.com/go-playground/validator/v10"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/port"
	"socialid/internal/validator"
)

// Codes reported by SignupInput.
const (
	CodeEmailTaken          = "email_taken"
	CodeUsernameTaken       = "username_taken"
	CodeUsernameBlacklisted = "username_blacklisted"
	CodeMinLength           = "min_length"
)

var usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}.@+_-]+$`)

var formats = newFormatValidator()

func newFormatValidator() *playground.Validate {
	v := playground.New(playground.WithRequiredStructEnabled())
	err := v.RegisterValidation("username", func(fl playground.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
	return v
}

// SignupInput validates the form completing a social signup.
type SignupInput struct {
	users   port.UserRepository
	policy  config.SignupConfig
	initial *domain.SocialLogin

	Email    string
	Username string
}

// NewSignupInput creates the input. Values missing from the request fall back
// to what the provider returned in login.
func NewSignupInput(users port.UserRepository, policy config.SignupConfig, login *domain.SocialLogin) *SignupInput {
	return &SignupInput{users: users, policy: policy, initial: login}
}

func (in *SignupInput) Fields() []validator.Field {
	return []validator.Field{
		{Name: "email", Clean: in.cleanEmail},
		{Name: "username", Clean: in.cleanUsername},
	}
}

func (in *SignupInput) cleanEmail(ctx context.Context, v validator.Value) error {
	if v.Kind() == validator.KindAbsent && in.initial != nil {
		v = validator.String(in.initial.Email)
	}
	email, err := validator.CharField{Required: in.policy.EmailRequired, MaxLength: 254}.Clean(v)
	if err != nil || email == "" {
		return err
	}
	if formats.Var(email, "email") != nil {
		return validator.NewError("Enter a valid email address.", validator.CodeInvalid)
	}
	email = strings.ToLower(email)
	if _, err := in.users.GetByEmail(ctx, email); err == nil {
		return validator.NewError("A user is already registered with this email address.", CodeEmailTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("SignupInput.cleanEmail: %w", err)
	}
	in.Email = email
	return nil
}

func (in *SignupInput) cleanUsername(ctx context.Context, v validator.Value) error {
	if v.Kind() == validator.KindAbsent && in.initial != nil {
		v = validator.String(in.initial.Username)
	}
	username, err := validator.CharField{Required: in.policy.UsernameRequired, MaxLength: 150}.Clean(v)
	if err != nil || username == "" {
		return err
	}
	if err := CheckUsername(username, in.policy); err != nil {
		return err
	}
	if _, err := in.users.GetByUsername(ctx, username); err == nil {
		return validator.NewError("A user with that username already exists.", CodeUsernameTaken)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("SignupInput.cleanUsername: %w", err)
	}
	in.Username = username
	return nil
}

func (in *SignupInput) Clean(context.Context, validator.Data, *validator.ErrorSet) error {
	return nil
}

// CheckUsername applies the format, length and blacklist rules without
// touching storage.
func CheckUsername(username string, policy config.SignupConfig) error {
	if formats.Var(username, "username") != nil {
		return validator.NewError(
			"Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters.",
			validator.CodeInvalid,
		)
	}
	if n := utf8.RuneCountInString(username); n < policy.UsernameMinLength {
		return validator.NewError(
			fmt.Sprintf("Ensure this value has at least %d characters (it has %d).", policy.UsernameMinLength, n),
			CodeMinLength,
		)
	}
	for _, blocked := range policy.UsernameBlacklist {
		if strings.EqualFold(blocked, username) {
			return validator.NewError("Username can not be used. Please use other username.", CodeUsernameBlacklisted)
		}
	}
	return nil
}
