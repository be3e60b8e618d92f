// Package users is the credential store: user identity, password hash and
// OTP state.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills in ID and CreatedAt. A taken email yields
	// common.ErrDuplicateEmail.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	// SetOTP stores code and its expiry together, replacing any pending code.
	SetOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, userID int64) error
	// ConsumeOTP clears the pending code only if it equals code and is still
	// valid at now; otherwise it returns common.ErrInvalidOrExpiredOTP.
	ConsumeOTP(ctx context.Context, userID int64, code string, now time.Time) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	SetRole(ctx context.Context, email string, role string) error
}
