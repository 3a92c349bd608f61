package core

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// User represents an authenticated principal returned to handlers.
type User struct {
	ID        int64
	Email     string
	Name      string
	CreatedAt time.Time
}

var (
	// ErrMissingFields is returned when a required registration field is absent.
	ErrMissingFields = errors.New("email, name and password are required")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("email already registered")
	// ErrUserNotFound is returned when login references an unknown email.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthService defines registration and login behaviour.
type AuthService interface {
	Register(ctx context.Context, email, name, password string) (User, error)
	Login(ctx context.Context, email, password string) (string, User, error)
}

// RepositoryAuthService wraps the user repository, the hashing pool, and the
// token service.
type RepositoryAuthService struct {
	users  UserRepository
	hasher *HashPool
	tokens *TokenService
}

func NewRepositoryAuthService(users UserRepository, hasher *HashPool, tokens *TokenService) *RepositoryAuthService {
	return &RepositoryAuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register hashes the password and stores a new user. Email uniqueness is
// enforced by the store and surfaced as ErrEmailTaken.
func (s *RepositoryAuthService) Register(ctx context.Context, email, name, password string) (User, error) {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" || password == "" {
		return User{}, ErrMissingFields
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, ErrEmptyPassword) {
			return User{}, ErrMissingFields
		}
		return User{}, err
	}

	id, err := s.users.Create(ctx, email, name, hash)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrEmailTaken
		}
		return User{}, err
	}

	return User{ID: id, Email: email, Name: name}, nil
}

// Login verifies the password for the given email and issues a signed token.
func (s *RepositoryAuthService) Login(ctx context.Context, email, password string) (string, User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", User{}, ErrInvalidCredentials
	}

	record, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", User{}, ErrUserNotFound
		}
		return "", User{}, err
	}

	ok, err := s.hasher.Verify(ctx, password, record.PasswordHash)
	if err != nil {
		return "", User{}, err
	}
	if !ok {
		return "", User{}, ErrInvalidCredentials
	}

	user := User{
		ID:        record.ID,
		Email:     record.Email,
		Name:      record.Name,
		CreatedAt: record.CreatedAt,
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", User{}, err
	}
	return token, user, nil
}

// isUniqueViolation is a naive duplicate detection over driver error text.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
