package otp

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/dmitrijs2005/herbalgarden/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	userID    int64
	code      string
	expiresAt time.Time
	calls     int
	err       error
}

func (f *fakeStore) SetOTP(_ context.Context, userID int64, code string, expiresAt time.Time) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.userID, f.code, f.expiresAt = userID, code, expiresAt
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestIssue_StoresCodeAndExpiry(t *testing.T) {
	s := NewService(10*time.Minute, WithClock(fixedClock(t0)))
	st := &fakeStore{}

	code, err := s.Issue(context.Background(), st, 3)
	require.NoError(t, err)

	assert.Len(t, code, 6)
	n, err := strconv.Atoi(code)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, minCode)
	assert.LessOrEqual(t, n, maxCode)

	assert.Equal(t, int64(3), st.userID)
	assert.Equal(t, code, st.code)
	assert.True(t, st.expiresAt.Equal(t0.Add(10*time.Minute)))
}

func TestIssue_ExpiryInUTC(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	s := NewService(time.Minute, WithClock(fixedClock(t0.In(ist))))
	st := &fakeStore{}

	_, err := s.Issue(context.Background(), st, 1)
	require.NoError(t, err)
	assert.Equal(t, time.UTC, st.expiresAt.Location())
}

func TestIssue_StoreError(t *testing.T) {
	s := NewService(0)
	st := &fakeStore{err: errors.New("db down")}

	_, err := s.Issue(context.Background(), st, 1)
	assert.EqualError(t, err, "db down")
}

func TestIssue_RandError(t *testing.T) {
	s := NewService(0, WithRand(bytes.NewReader(nil)))
	st := &fakeStore{}

	_, err := s.Issue(context.Background(), st, 1)
	assert.ErrorContains(t, err, "generate otp")
	assert.Zero(t, st.calls)
}

func TestGenerate_Range(t *testing.T) {
	// All-zero entropy gives the lower bound.
	s := NewService(0, WithRand(bytes.NewReader(make([]byte, 64))))
	code, err := s.generate()
	require.NoError(t, err)
	assert.Equal(t, "100000", code)

	s = NewService(0)
	for range 500 {
		code, err := s.generate()
		require.NoError(t, err)
		n, _ := strconv.Atoi(code)
		require.GreaterOrEqual(t, n, minCode)
		require.LessOrEqual(t, n, maxCode)
	}
}

func userWith(code string, exp time.Time) *models.User {
	return &models.User{ID: 1, OTPCode: &code, OTPExpiresAt: &exp}
}

func TestValid(t *testing.T) {
	exp := t0.Add(10 * time.Minute)

	tests := []struct {
		name string
		now  time.Time
		user *models.User
		code string
		want bool
	}{
		{"match before expiry", t0.Add(9*time.Minute + 59*time.Second), userWith("482913", exp), "482913", true},
		{"exactly at expiry", exp, userWith("482913", exp), "482913", false},
		{"after expiry", exp.Add(time.Second), userWith("482913", exp), "482913", false},
		{"wrong code", t0, userWith("482913", exp), "482914", false},
		{"prefix", t0, userWith("482913", exp), "48291", false},
		{"empty code", t0, userWith("482913", exp), "", false},
		{"no pending code", t0, &models.User{ID: 1}, "482913", false},
		{"nil user", t0, nil, "482913", false},
		{"non-utc clock", exp.Add(-time.Second).In(time.FixedZone("X", -7*3600)), userWith("482913", exp), "482913", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(10*time.Minute, WithClock(fixedClock(tt.now)))
			assert.Equal(t, tt.want, s.Valid(tt.user, tt.code))
		})
	}
}

func TestValid_DoesNotConsume(t *testing.T) {
	s := NewService(10*time.Minute, WithClock(fixedClock(t0)))
	u := userWith("111111", t0.Add(time.Minute))

	assert.True(t, s.Valid(u, "111111"))
	assert.True(t, s.Valid(u, "111111"))
	assert.True(t, u.HasPendingOTP())
}
