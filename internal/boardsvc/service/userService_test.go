package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/avvvet/draftboard-services/internal/boardsvc/store"
	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	byID map[int64]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[int64]*models.User)}
}

func (f *fakeUsers) CreateUser(ctx context.Context, user models.User) (int64, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Name, user.Name) {
			return 0, fmt.Errorf("could not create user: %w", &pgconn.PgError{Code: "23505"})
		}
	}
	user.UserId = int64(len(f.byID) + 1)
	f.byID[user.UserId] = &user
	return user.UserId, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return f.byID[id], nil
}

func (f *fakeUsers) GetByName(ctx context.Context, name string) (*models.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Name, name) {
			return u, nil
		}
	}
	return nil, nil
}

func newUserService(ttl time.Duration) *UserService {
	return NewUserService(newFakeUsers(), jwtauth.New("HS256", []byte("test-secret"), nil), ttl)
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	s := newUserService(time.Hour)

	user, token, err := s.Register(ctx, " ann ", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Name)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	_, _, err = s.Register(ctx, "ANN", "another")
	assert.ErrorIs(t, err, ErrUserExists)

	logged, token, err := s.Login(ctx, "ann", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.UserId, logged.UserId)

	resolved, err := s.UserFromToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.UserId, resolved.UserId)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()
	s := newUserService(time.Hour)
	_, _, err := s.Register(ctx, "bob", "secret")
	require.NoError(t, err)

	_, _, err = s.Login(ctx, "bob", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = s.Login(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	s := newUserService(time.Hour)
	for _, tt := range []struct{ name, password string }{
		{"", "secret"},
		{strings.Repeat("x", 33), "secret"},
		{"cid", "abc"},
	} {
		_, _, err := s.Register(context.Background(), tt.name, tt.password)
		assert.ErrorIs(t, err, ErrInvalidUser)
	}
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	s := NewUserService(store.NewMemoryUserStore(), jwtauth.New("HS256", []byte("test-secret"), nil), time.Hour)

	user, _, err := s.Register(ctx, "eve", "secret")
	require.NoError(t, err)
	_, _, err = s.Register(ctx, "Eve", "secret")
	assert.ErrorIs(t, err, ErrUserExists)

	logged, _, err := s.Login(ctx, "EVE", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.UserId, logged.UserId)
}

func TestUserFromTokenRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	s := newUserService(-time.Minute)
	_, expired, err := s.Register(ctx, "dee", "secret")
	require.NoError(t, err)

	_, err = s.UserFromToken(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.UserFromToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
