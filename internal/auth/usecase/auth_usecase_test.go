package usecase

import (
	"testing"
	"time"

	authdomain "taskpilot-backend/internal/auth/domain"
	"taskpilot-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthUsecase_IssueAndValidate(t *testing.T) {
	uc := NewAuthUsecase(&config.Config{AuthSecret: "s3cret", AuthTokenExpiry: time.Hour})
	require.True(t, uc.Enabled())

	token, expiresAt, err := uc.IssueToken("")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	principal, err := uc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, authdomain.DefaultSubject, principal.Subject)
	assert.NotEmpty(t, principal.TokenID)
}

func TestAuthUsecase_RejectsBadTokens(t *testing.T) {
	uc := NewAuthUsecase(&config.Config{AuthSecret: "s3cret", AuthTokenExpiry: time.Hour})
	other := NewAuthUsecase(&config.Config{AuthSecret: "other", AuthTokenExpiry: time.Hour})

	foreign, _, err := other.IssueToken("owner")
	require.NoError(t, err)
	_, err = uc.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = uc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewAuthUsecase(&config.Config{AuthSecret: "s3cret", AuthTokenExpiry: -time.Minute})
	old, _, err := expired.IssueToken("owner")
	require.NoError(t, err)
	_, err = uc.ValidateToken(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "owner"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = uc.ValidateToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthUsecase_DisabledWithoutSecret(t *testing.T) {
	uc := NewAuthUsecase(&config.Config{})
	assert.False(t, uc.Enabled())

	_, _, err := uc.IssueToken("owner")
	assert.Error(t, err)
}
