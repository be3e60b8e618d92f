// Package services contains server-side business logic. This file implements
// AuthService: signup, login and the forgot/verify/reset password flow.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/common"
	"github.com/dmitrijs2005/herbalgarden/internal/dbx"
	"github.com/dmitrijs2005/herbalgarden/internal/logging"
	"github.com/dmitrijs2005/herbalgarden/internal/server/auth"
	"github.com/dmitrijs2005/herbalgarden/internal/server/config"
	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/dmitrijs2005/herbalgarden/internal/server/notify"
	"github.com/dmitrijs2005/herbalgarden/internal/server/otp"
	"github.com/dmitrijs2005/herbalgarden/internal/server/repositories/repomanager"
)

type SignupInput struct {
	FullName string
	Email    string
	Role     string
	Password string
}

type ResetInput struct {
	Email              string
	NewPassword        string
	ConfirmNewPassword string
	OTP                string
}

// LoginResult is a signed session token plus the public view of its holder.
type LoginResult struct {
	Token string
	User  models.PublicUser
}

type AuthService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	otp              *otp.Service
	notifier         notify.Notifier
	hasher           *auth.PasswordHasher
	jwtSecret        []byte
	tokenValidity    time.Duration
	resetRequiresOTP bool
	queryTimeout     time.Duration
	logger           logging.Logger

	// dummyHash keeps login timing similar for unknown emails.
	dummyHash func() string
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, otpSvc *otp.Service,
	notifier notify.Notifier, cfg *config.Config, logger logging.Logger) *AuthService {
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	return &AuthService{
		db:               db,
		repomanager:      m,
		otp:              otpSvc,
		notifier:         notifier,
		hasher:           hasher,
		jwtSecret:        []byte(cfg.SecretKey),
		tokenValidity:    cfg.TokenValidityDuration,
		resetRequiresOTP: cfg.ResetRequiresOTP,
		queryTimeout:     cfg.DatabaseQueryTimeout,
		logger:           logger,
		dummyHash: sync.OnceValue(func() string {
			h, _ := hasher.Hash("not-a-real-password")
			return h
		}),
	}
}

// Signup registers a user and returns the new id.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (int64, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(in.Email)
	if fullName == "" || email == "" || in.Role == "" || in.Password == "" {
		return 0, common.NewValidationError("All fields are required")
	}
	if !models.IsSignupRole(in.Role) {
		return 0, common.NewValidationError("Invalid role")
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	repo := s.repomanager.Users(s.db)

	// Fast path only; the unique constraint decides under concurrency.
	_, err := repo.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return 0, common.ErrDuplicateEmail
	case !errors.Is(err, common.ErrorNotFound):
		return 0, storageErr(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return 0, err
		}
		return 0, fmt.Errorf("hash password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{FullName: fullName, Email: email, Role: in.Role, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return 0, err
		}
		return 0, storageErr(err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID, "email", u.Email, "role", u.Role)
	return u.ID, nil
}

// Login checks credentials and mints a session token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, common.NewValidationError("Email and password are required")
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Compare(s.dummyHash(), password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, storageErr(err)
	}
	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(auth.Identity{ID: user.ID, Email: user.Email, Role: user.Role}, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %v", common.ErrorInternal, err)
	}

	return &LoginResult{Token: token, User: user.Public()}, nil
}

// ForgotPassword issues a fresh code for email and hands it to the notifier.
// A previously pending code is replaced.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return common.NewValidationError("Email is required")
	}

	dbCtx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetUserByEmail(dbCtx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return storageErr(err)
	}

	code, err := s.otp.Issue(dbCtx, repo, user.ID)
	if err != nil {
		return storageErr(err)
	}

	if err := s.notifier.Send(ctx, user.Email, code); err != nil {
		s.logger.Error(ctx, "otp delivery failed", "email", user.Email, "error", err)
		return fmt.Errorf("%w: %v", common.ErrDeliveryFailed, err)
	}

	s.logger.Info(ctx, "otp sent", "email", user.Email)
	return nil
}

// VerifyOTP checks code against the pending one for email without consuming it.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(email)
	if email == "" || code == "" {
		return common.NewValidationError("Email and OTP are required")
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidOrExpiredOTP
		}
		return storageErr(err)
	}
	if !s.otp.Valid(user, code) {
		return common.ErrInvalidOrExpiredOTP
	}
	return nil
}

// ResetPassword stores a new password and clears any pending code in one
// transaction. Mismatched passwords are rejected before storage is touched.
func (s *AuthService) ResetPassword(ctx context.Context, in ResetInput) error {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.NewPassword == "" || in.ConfirmNewPassword == "" {
		return common.NewValidationError("All fields are required")
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return common.ErrPasswordMismatch
	}
	if s.resetRequiresOTP && in.OTP == "" {
		return common.NewValidationError("OTP is required")
	}

	ctx, cancel := dbx.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	user, err := s.repomanager.Users(s.db).GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return storageErr(err)
	}
	if s.resetRequiresOTP && !s.otp.Valid(user, in.OTP) {
		return common.ErrInvalidOrExpiredOTP
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return err
		}
		return fmt.Errorf("hash password: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		if s.resetRequiresOTP {
			// The code may have been used or replaced since the check above.
			if err := repo.ConsumeOTP(ctx, user.ID, in.OTP, s.otp.Now()); err != nil {
				return err
			}
		} else if err := repo.ClearOTP(ctx, user.ID); err != nil {
			return err
		}
		return repo.UpdatePassword(ctx, user.ID, hash)
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound), errors.Is(err, common.ErrInvalidOrExpiredOTP):
			return err
		}
		return storageErr(err)
	}

	s.logger.Info(ctx, "password reset", "user_id", user.ID, "email", user.Email)
	return nil
}

// storageErr tags unexpected repository failures; the cause stays in the
// message for logs.
func storageErr(err error) error {
	return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
}
