package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/avvvet/draftboard-services/internal/boardsvc/models"
	"github.com/avvvet/draftboard-services/internal/boardsvc/store"
	"github.com/go-chi/jwtauth"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserExists         = errors.New("user name is already registered")
	ErrInvalidCredentials = errors.New("invalid user name or password")
	ErrInvalidUser        = errors.New("user name must be 1-32 characters and password at least 4")
	ErrInvalidToken       = errors.New("invalid token")
)

// UserRepository is the slice of the user store the service needs.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByName(ctx context.Context, name string) (*models.User, error)
}

// UserService struct represents the user service layer
type UserService struct {
	userStore UserRepository
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
}

// NewUserService creates a new UserService instance
func NewUserService(userStore UserRepository, tokenAuth *jwtauth.JWTAuth, tokenTTL time.Duration) *UserService {
	return &UserService{
		userStore: userStore,
		tokenAuth: tokenAuth,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a user and returns it with a fresh token.
func (s *UserService) Register(ctx context.Context, name, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 32 || len(password) < 4 {
		return nil, "", ErrInvalidUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{Name: name, PasswordHash: string(hash), Status: "ACTIVE"}
	userId, err := s.userStore.CreateUser(ctx, user)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, store.ErrDuplicate) || (errors.As(err, &pgErr) && pgErr.Code == "23505") {
			return nil, "", ErrUserExists
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}
	user.UserId = userId

	token, err := s.issueToken(user.UserId)
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

func (s *UserService) Login(ctx context.Context, name, password string) (*models.User, string, error) {
	user, err := s.userStore.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		return nil, "", fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Status != "ACTIVE" {
		return nil, "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(user.UserId)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// UserFromToken resolves the user a previously issued token belongs to.
func (s *UserService) UserFromToken(ctx context.Context, tokenString string) (*models.User, error) {
	token, err := jwtauth.VerifyToken(s.tokenAuth, tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	userId, err := strconv.ParseInt(token.Subject(), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	user, err := s.userStore.GetByID(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *UserService) issueToken(userId int64) (string, error) {
	_, tokenString, err := s.tokenAuth.Encode(map[string]interface{}{
		"sub": strconv.FormatInt(userId, 10),
		"exp": time.Now().Add(s.tokenTTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return tokenString, nil
}
