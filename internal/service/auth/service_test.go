package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seller-dashboard/internal/config"
	"seller-dashboard/internal/domain"
)

func newTestService(secret string) Service {
	return NewService(&config.Config{JWTSecret: secret, JWTAccessExpiry: time.Hour})
}

func TestIssueAndValidate(t *testing.T) {
	svc := newTestService("test-secret")
	account := domain.Account{ID: uuid.New(), Email: "seller@example.com"}

	token, err := svc.IssueAccessToken(account, time.Minute)
	require.NoError(t, err)

	got, err := svc.AccountFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)
	assert.Equal(t, "seller@example.com", got.Email)
	assert.Equal(t, domain.RoleAuthenticated, got.Role)
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := newTestService("one").IssueAccessToken(domain.Account{ID: uuid.New()}, time.Minute)
	require.NoError(t, err)

	_, err = newTestService("two").ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Expired(t *testing.T) {
	svc := newTestService("test-secret")
	claims := &Claims{
		Role: domain.RoleAuthenticated,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.New().String(),
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Audience(t *testing.T) {
	svc := newTestService("test-secret")
	sign := func(aud jwt.ClaimStrings) string {
		claims := &Claims{
			Role: domain.RoleAuthenticated,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   uuid.New().String(),
				Audience:  aud,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)
		return token
	}

	_, err := svc.ValidateAccessToken(sign(jwt.ClaimStrings{Audience}))
	assert.NoError(t, err)

	_, err = svc.ValidateAccessToken(sign(jwt.ClaimStrings{"service_role"}))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateAccessToken(sign(nil))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccountFromToken_BadSubject(t *testing.T) {
	svc := newTestService("test-secret")
	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:  "not-a-uuid",
		Audience: jwt.ClaimStrings{Audience},
	}}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.AccountFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMissingSecret(t *testing.T) {
	svc := newTestService("")

	_, err := svc.IssueAccessToken(domain.Account{ID: uuid.New()}, time.Minute)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = svc.ValidateAccessToken("anything")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
