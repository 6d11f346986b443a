package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword signals a password below the minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrAccountDisabled signals a login attempt on a deactivated account.
	ErrAccountDisabled = errors.New("account is disabled")
)

const minPasswordLength = 8

// AuthService handles signup, login, and account lookups.
type AuthService interface {
	Signup(ctx context.Context, email, password string) (*model.Account, string, error)
	Login(ctx context.Context, email, password string) (*model.Account, string, error)
	Account(ctx context.Context, id string) (*model.Account, error)
}

type authService struct {
	accounts repository.AccountRepository
	tokens   TokenService
}

// NewAuthService wires the auth flows over the account repository.
func NewAuthService(accounts repository.AccountRepository, tokens TokenService) AuthService {
	return &authService{accounts: accounts, tokens: tokens}
}

func (s *authService) Signup(ctx context.Context, email, password string) (*model.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if len(password) < minPasswordLength {
		return nil, "", ErrWeakPassword
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	account := &model.Account{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		Tier:         "free",
		Active:       true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateToken(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return account, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*model.Account, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !account.Active {
		return nil, "", ErrAccountDisabled
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), truncateForBcrypt(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(account.ID)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return account, token, nil
}

func (s *authService) Account(ctx context.Context, id string) (*model.Account, error) {
	return s.accounts.GetByID(ctx, id)
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(truncateForBcrypt(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// truncateForBcrypt caps input at bcrypt's 72-byte limit so long passwords
// hash instead of erroring.
func truncateForBcrypt(password string) []byte {
	b := []byte(password)
	if len(b) > 72 {
		b = b[:72]
	}
	return b
}
