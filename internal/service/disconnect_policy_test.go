package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"socialid/internal/config"
	"socialid/internal/domain"
	"socialid/internal/service"
	"socialid/internal/validator"
	"socialid/mocks"
)

func TestDisconnectPolicy_OtherAccountsRemain(t *testing.T) {
	users := new(mocks.MockUserRepo)
	policy := service.NewDisconnectPolicy(users, config.SignupConfig{})
	userID := uuid.New()
	accounts := []domain.SocialAccount{
		{ID: uuid.New(), UserID: userID, Provider: "google"},
		{ID: uuid.New(), UserID: userID, Provider: "github"},
	}

	err := policy.ValidateDisconnect(context.Background(), &accounts[0], accounts)

	assert.NoError(t, err)
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDisconnectPolicy_LastAccount(t *testing.T) {
	tests := []struct {
		name         string
		user         domain.User
		verification string
		wantCode     string
	}{
		{"no password", domain.User{EmailVerified: true}, config.EmailVerificationNone, "no_password"},
		{"unusable password", domain.User{PasswordHash: "!unusable"}, config.EmailVerificationNone, "no_password"},
		{"unverified email", domain.User{PasswordHash: "hash"}, config.EmailVerificationMandatory, "no_verified_email"},
		{"password and verified email", domain.User{PasswordHash: "hash", EmailVerified: true}, config.EmailVerificationMandatory, ""},
		{"password, verification optional", domain.User{PasswordHash: "hash"}, config.EmailVerificationOptional, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mocks.MockUserRepo)
			user := tt.user
			user.ID = uuid.New()
			users.On("GetByID", mock.Anything, user.ID).Return(&user, nil)
			policy := service.NewDisconnectPolicy(users, config.SignupConfig{EmailVerification: tt.verification})
			accounts := []domain.SocialAccount{{ID: uuid.New(), UserID: user.ID, Provider: "google"}}

			err := policy.ValidateDisconnect(context.Background(), &accounts[0], accounts)

			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			var verr *validator.ValidationError
			if assert.ErrorAs(t, err, &verr) {
				assert.Equal(t, tt.wantCode, verr.Code)
			}
		})
	}
}
