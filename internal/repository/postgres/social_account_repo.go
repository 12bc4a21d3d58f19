package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"socialid/internal/domain"
	"socialid/internal/port"
)

type socialAccountRepo struct {
	db *sqlx.DB
}

// NewSocialAccountRepo creates a new PostgreSQL-backed SocialAccountRepository.
func NewSocialAccountRepo(db *sqlx.DB) port.SocialAccountRepository {
	return &socialAccountRepo{db: db}
}

func (r *socialAccountRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.SocialAccount, error) {
	accounts := []domain.SocialAccount{}
	err := r.db.SelectContext(ctx, &accounts,
		"SELECT * FROM social_accounts WHERE user_id = $1 ORDER BY date_joined, id", userID)
	if err != nil {
		return nil, fmt.Errorf("socialAccountRepo.ListByUser: %w", err)
	}
	return accounts, nil
}

func (r *socialAccountRepo) GetByProviderUID(ctx context.Context, provider, uid string) (*domain.SocialAccount, error) {
	var account domain.SocialAccount
	err := r.db.GetContext(ctx, &account,
		"SELECT * FROM social_accounts WHERE provider = $1 AND uid = $2", provider, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("socialAccountRepo.GetByProviderUID: %w", err)
	}
	return &account, nil
}

func (r *socialAccountRepo) Create(ctx context.Context, account *domain.SocialAccount) error {
	return insertSocialAccount(ctx, r.db, account)
}

func insertSocialAccount(ctx context.Context, db sqlx.ExecerContext, account *domain.SocialAccount) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now().UTC()
	account.DateJoined = now
	account.LastLogin = now
	if len(account.ExtraData) == 0 {
		account.ExtraData = []byte("{}")
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO social_accounts (id, user_id, provider, uid, extra_data, last_login, date_joined)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		account.ID, account.UserID, account.Provider, account.UID, account.ExtraData,
		account.LastLogin, account.DateJoined)
	if err != nil {
		if uniqueViolation(err) != "" {
			return domain.ErrSocialAccountTaken
		}
		return fmt.Errorf("socialAccountRepo.Create: %w", err)
	}
	return nil
}

func (r *socialAccountRepo) Update(ctx context.Context, account *domain.SocialAccount) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE social_accounts SET extra_data = $1, last_login = $2 WHERE id = $3",
		account.ExtraData, account.LastLogin, account.ID)
	if err != nil {
		return fmt.Errorf("socialAccountRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *socialAccountRepo) Delete(ctx context.Context, userID, accountID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM social_accounts WHERE id = $1 AND user_id = $2", accountID, userID)
	if err != nil {
		return fmt.Errorf("socialAccountRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
