package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (full_name, email, role, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.FullName, user.Email, user.Role, user.PasswordHash).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if _, ok := dbx.UniqueViolation(err); ok {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

const selectUser = `SELECT id, full_name, email, role, password_hash, otp_code, otp_expires_at, created_at FROM users`

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE email = $1`, email)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, selectUser+` WHERE id = $1`, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	var otpCode sql.NullString
	var otpExpiresAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.FullName, &user.Email, &user.Role, &user.PasswordHash,
		&otpCode, &otpExpiresAt, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	// Both or neither; a half-set pair is treated as no pending code.
	if otpCode.Valid && otpExpiresAt.Valid {
		code := otpCode.String
		exp := otpExpiresAt.Time.UTC()
		user.OTPCode, user.OTPExpiresAt = &code, &exp
	}

	return user, nil
}

func (r *PostgresRepository) SetOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error {
	return r.execOne(ctx,
		`UPDATE users SET otp_code = $1, otp_expires_at = $2 WHERE id = $3`,
		code, expiresAt.UTC(), userID)
}

func (r *PostgresRepository) ClearOTP(ctx context.Context, userID int64) error {
	return r.execOne(ctx,
		`UPDATE users SET otp_code = NULL, otp_expires_at = NULL WHERE id = $1`,
		userID)
}

func (r *PostgresRepository) ConsumeOTP(ctx context.Context, userID int64, code string, now time.Time) error {
	err := r.execOne(ctx,
		`UPDATE users SET otp_code = NULL, otp_expires_at = NULL
		 WHERE id = $1 AND otp_code = $2 AND otp_expires_at > $3`,
		userID, code, now.UTC())
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrInvalidOrExpiredOTP
	}
	return err
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	return r.execOne(ctx,
		`UPDATE users SET password_hash = $1 WHERE id = $2`,
		passwordHash, userID)
}

func (r *PostgresRepository) SetRole(ctx context.Context, email string, role string) error {
	return r.execOne(ctx,
		`UPDATE users SET role = $1 WHERE email = $2`,
		role, email)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
