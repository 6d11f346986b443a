package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrTokenExpired signals that the token's exp claim has passed.
	ErrTokenExpired = errors.New("token has expired")
	// ErrTokenInvalid signals a malformed, tampered, or mistyped token.
	ErrTokenInvalid = errors.New("invalid token")
)

// TokenClaims are the validated claims of an access token.
type TokenClaims struct {
	AccountID string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and validates HS256 access tokens.
type TokenService interface {
	GenerateToken(accountID string) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
}

type tokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewTokenService creates an HS256 token service.
func NewTokenService(secret string, ttl time.Duration, issuer string) (TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &tokenService{secret: []byte(secret), ttl: ttl, issuer: issuer}, nil
}

func (s *tokenService) GenerateToken(accountID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"account_id": accountID,
		"jti":        uuid.New().String(),
		"iat":        now.Unix(),
		"exp":        now.Add(s.ttl).Unix(),
		"iss":        s.issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *tokenService) ValidateToken(token string) (*TokenClaims, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	accountID, ok := claims["account_id"].(string)
	if !ok || accountID == "" {
		return nil, ErrTokenInvalid
	}
	tokenID, _ := claims["jti"].(string)
	issuedAt, ok := claims["iat"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	expiresAt, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	if time.Now().UTC().After(time.Unix(int64(expiresAt), 0)) {
		return nil, ErrTokenExpired
	}

	return &TokenClaims{
		AccountID: accountID,
		TokenID:   tokenID,
		IssuedAt:  time.Unix(int64(issuedAt), 0),
		ExpiresAt: time.Unix(int64(expiresAt), 0),
	}, nil
}
