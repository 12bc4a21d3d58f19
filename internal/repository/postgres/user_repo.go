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

const usernameConstraint = "users_username_lower_key"

type userRepo struct {
	db *sqlx.DB
}

// NewUserRepo creates a new PostgreSQL-backed UserRepository.
func NewUserRepo(db *sqlx.DB) port.UserRepository {
	return &userRepo{db: db}
}

// CreateWithAccount inserts a new user together with its first social
// account in one transaction, so a failed link leaves no user behind.
func (r *userRepo) CreateWithAccount(ctx context.Context, user *domain.User, account *domain.SocialAccount) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	account.UserID = user.ID

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("userRepo.CreateWithAccount: begin: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO users (id, email, username, password_hash, full_name, role, is_active,
		email_verified, email_verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = tx.ExecContext(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.FullName,
		user.Role, user.IsActive, user.EmailVerified, user.EmailVerifiedAt,
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return duplicateUserError(err, "userRepo.CreateWithAccount")
	}
	if err := insertSocialAccount(ctx, tx, account); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("userRepo.CreateWithAccount: commit: %w", err)
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE id = $1", userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByID: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE email <> '' AND lower(email) = lower($1)", email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByEmail: %w", err)
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := r.db.GetContext(ctx, &user,
		"SELECT * FROM users WHERE lower(username) = lower($1)", username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("userRepo.GetByUsername: %w", err)
	}
	return &user, nil
}

func (r *userRepo) Update(ctx context.Context, user *domain.User) error {
	user.UpdatedAt = time.Now().UTC()
	query := `UPDATE users SET email = $1, username = $2, full_name = $3, role = $4, is_active = $5,
		email_verified = $6, email_verified_at = $7, updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(ctx, query,
		user.Email, user.Username, user.FullName, user.Role, user.IsActive,
		user.EmailVerified, user.EmailVerifiedAt, user.UpdatedAt, user.ID)
	if err != nil {
		return duplicateUserError(err, "userRepo.Update")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func duplicateUserError(err error, op string) error {
	switch uniqueViolation(err) {
	case "":
		return fmt.Errorf("%s: %w", op, err)
	case usernameConstraint:
		return domain.ErrDuplicateUsername
	default:
		return domain.ErrDuplicateEmail
	}
}
