package usecase

import (
	"errors"
	"time"

	authdomain "taskpilot-backend/internal/auth/domain"
	"taskpilot-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// AuthUsecase issues and validates bearer tokens for the API
type AuthUsecase interface {
	// Enabled reports whether requests must carry a token
	Enabled() bool

	// IssueToken signs an access token for subject
	IssueToken(subject string) (string, time.Time, error)

	// ValidateToken verifies signature and expiry
	ValidateToken(tokenString string) (*authdomain.Principal, error)
}

// authUsecase implements AuthUsecase interface
type authUsecase struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewAuthUsecase creates a new instance of authUsecase
func NewAuthUsecase(cfg *config.Config) AuthUsecase {
	return &authUsecase{
		secret: []byte(cfg.AuthSecret),
		expiry: cfg.AuthTokenExpiry,
		now:    time.Now,
	}
}

func (u *authUsecase) Enabled() bool {
	return len(u.secret) > 0
}

func (u *authUsecase) IssueToken(subject string) (string, time.Time, error) {
	if !u.Enabled() {
		return "", time.Time{}, errors.New("AUTH_SECRET is not set")
	}
	if subject == "" {
		subject = authdomain.DefaultSubject
	}

	now := u.now()
	expiresAt := now.Add(u.expiry)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.New().String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(u.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (u *authUsecase) ValidateToken(tokenString string) (*authdomain.Principal, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return u.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(u.now))

	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	principal := &authdomain.Principal{Subject: claims.Subject, TokenID: claims.ID}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}
