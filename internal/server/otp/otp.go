// Package otp issues and checks the one-time codes used for password
// recovery. A user has at most one pending code; issuing replaces it.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
)

const (
	DefaultValidity = 10 * time.Minute

	minCode = 100000
	maxCode = 999999
)

// Store persists a pending code for a user.
type Store interface {
	SetOTP(ctx context.Context, userID int64, code string, expiresAt time.Time) error
}

type Service struct {
	validity time.Duration
	now      func() time.Time
	rand     io.Reader
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand overrides the entropy source (crypto/rand by default).
func WithRand(r io.Reader) Option {
	return func(s *Service) { s.rand = r }
}

func NewService(validity time.Duration, opts ...Option) *Service {
	if validity <= 0 {
		validity = DefaultValidity
	}
	s := &Service{validity: validity, now: time.Now, rand: rand.Reader}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Issue draws a fresh code, stores it with its expiry and returns it.
func (s *Service) Issue(ctx context.Context, store Store, userID int64) (string, error) {
	code, err := s.generate()
	if err != nil {
		return "", err
	}
	expiresAt := s.Now().Add(s.validity)
	if err := store.SetOTP(ctx, userID, code, expiresAt); err != nil {
		return "", err
	}
	return code, nil
}

// Valid reports whether u holds a pending code equal to code that has not
// yet expired. It does not consume the code.
func (s *Service) Valid(u *models.User, code string) bool {
	if u == nil || !u.HasPendingOTP() || code == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(*u.OTPCode), []byte(code)) != 1 {
		return false
	}
	return s.Now().Before(u.OTPExpiresAt.UTC())
}

// Now is the service clock in UTC.
func (s *Service) Now() time.Time {
	return s.now().UTC()
}

func (s *Service) generate() (string, error) {
	n, err := rand.Int(s.rand, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+minCode), nil
}
