package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/GSMS-B/ProjectQR/internal/app/model"
	"github.com/GSMS-B/ProjectQR/internal/app/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockAccountRepository struct {
	createFn     func(ctx context.Context, account *model.Account) error
	getByEmailFn func(ctx context.Context, email string) (*model.Account, error)
	getByIDFn    func(ctx context.Context, id string) (*model.Account, error)
}

func (m *mockAccountRepository) Create(ctx context.Context, account *model.Account) error {
	if m.createFn != nil {
		return m.createFn(ctx, account)
	}
	return nil
}

func (m *mockAccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrAccountNotFound
}

func (m *mockAccountRepository) GetByID(ctx context.Context, id string) (*model.Account, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrAccountNotFound
}

func newTestTokens(t *testing.T) TokenService {
	t.Helper()
	tokens, err := NewTokenService("test-secret", 0, "projectqr")
	require.NoError(t, err)
	return tokens
}

func TestSignup_CreatesAccountWithHashedPassword(t *testing.T) {
	var created *model.Account
	accounts := &mockAccountRepository{
		createFn: func(ctx context.Context, account *model.Account) error {
			created = account
			return nil
		},
	}
	auth := NewAuthService(accounts, newTestTokens(t))

	account, token, err := auth.Signup(context.Background(), "  User@Example.COM ", "correct-horse")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.Equal(t, "user@example.com", account.Email, "email is normalized")
	assert.Equal(t, "free", account.Tier)
	assert.True(t, account.Active)
	assert.NotEmpty(t, token)
	assert.NotEqual(t, "correct-horse", created.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("correct-horse")))
}

func TestSignup_RejectsWeakPassword(t *testing.T) {
	auth := NewAuthService(&mockAccountRepository{}, newTestTokens(t))

	_, _, err := auth.Signup(context.Background(), "user@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSignup_PropagatesDuplicateEmail(t *testing.T) {
	accounts := &mockAccountRepository{
		createFn: func(ctx context.Context, account *model.Account) error {
			return repository.ErrEmailTaken
		},
	}
	auth := NewAuthService(accounts, newTestTokens(t))

	_, _, err := auth.Signup(context.Background(), "user@example.com", "correct-horse")
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestSignup_AcceptsOverlongPasswords(t *testing.T) {
	auth := NewAuthService(&mockAccountRepository{}, newTestTokens(t))

	_, _, err := auth.Signup(context.Background(), "user@example.com", strings.Repeat("p", 100))
	assert.NoError(t, err, "passwords past bcrypt's 72-byte limit are truncated, not rejected")
}

func TestLogin_Succeeds(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	accounts := &mockAccountRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return &model.Account{ID: "acc-1", Email: email, PasswordHash: string(hash), Active: true}, nil
		},
	}
	auth := NewAuthService(accounts, newTestTokens(t))

	account, token, err := auth.Login(context.Background(), "User@Example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "acc-1", account.ID)
	assert.NotEmpty(t, token)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	accounts := &mockAccountRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return &model.Account{ID: "acc-1", Email: email, PasswordHash: string(hash), Active: true}, nil
		},
	}
	auth := NewAuthService(accounts, newTestTokens(t))

	_, _, err = auth.Login(context.Background(), "user@example.com", "wrong-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	auth := NewAuthService(&mockAccountRepository{}, newTestTokens(t))

	_, _, err := auth.Login(context.Background(), "nobody@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "unknown email is not distinguishable from a bad password")
}

func TestLogin_DisabledAccount(t *testing.T) {
	accounts := &mockAccountRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return &model.Account{ID: "acc-1", Email: email, Active: false}, nil
		},
	}
	auth := NewAuthService(accounts, newTestTokens(t))

	_, _, err := auth.Login(context.Background(), "user@example.com", "correct-horse")
	assert.ErrorIs(t, err, ErrAccountDisabled)
}

func TestLogin_RepositoryErrorPropagates(t *testing.T) {
	boom := errors.New("connection reset")
	accounts := &mockAccountRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.Account, error) {
			return nil, boom
		},
	}
	auth := NewAuthService(accounts, newTestTokens(t))

	_, _, err := auth.Login(context.Background(), "user@example.com", "correct-horse")
	assert.ErrorIs(t, err, boom)
}
