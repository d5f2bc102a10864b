package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"infolock/internal/model"
	"infolock/internal/repository"
)

var (
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrEmailTaken         = errors.New("email is already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// TokenIssuer abstracts the bearer-token issuance primitive. The concrete JWT
// implementation lives in internal/token; the service treats it as opaque.
type TokenIssuer interface {
	Generate(userID, username, email string) (string, error)
}

// AuthService defines the credential store use cases: registration and login.
type AuthService interface {
	// Register creates a new account with a hashed password.
	Register(ctx context.Context, username, email, password string) error

	// Login verifies credentials and returns a signed bearer token.
	Login(ctx context.Context, email, password string) (string, error)
}

type authService struct {
	users  repository.UserRepository
	issuer TokenIssuer
	cost   int
}

// NewAuthService constructs a new AuthService. cost <= 0 uses the bcrypt default.
func NewAuthService(users repository.UserRepository, issuer TokenIssuer, cost int) AuthService {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &authService{users: users, issuer: issuer, cost: cost}
}

func (s *authService) Register(ctx context.Context, username, email, password string) error {
	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return ErrUsernameTaken
	}

	inUse, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if inUse {
		return ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	_, err = s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *authService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	tok, err := s.issuer.Generate(u.ID, u.Username, u.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return tok, nil
}
