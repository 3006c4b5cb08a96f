package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"seller-dashboard/internal/config"
	"seller-dashboard/internal/domain"
)

var (
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingSecret = errors.New("jwt secret is not configured")
)

// Audience is the aud claim carried by tokens issued to signed-in sellers.
const Audience = "authenticated"

type Service interface {
	ValidateAccessToken(token string) (*Claims, error)
	AccountFromToken(token string) (*domain.Account, error)
	IssueAccessToken(account domain.Account, ttl time.Duration) (string, error)
}

// Claims mirrors the access token issued by the hosted auth service: the
// subject is the account id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{cfg: cfg}
}

func (s *service) ValidateAccessToken(tokenString string) (*Claims, error) {
	if s.cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithAudience(Audience))

	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) AccountFromToken(tokenString string) (*domain.Account, error) {
	claims, err := s.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &domain.Account{
		ID:    id,
		Email: claims.Email,
		Role:  claims.Role,
	}, nil
}

func (s *service) IssueAccessToken(account domain.Account, ttl time.Duration) (string, error) {
	if s.cfg.JWTSecret == "" {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = s.cfg.JWTAccessExpiry
	}
	role := account.Role
	if role == "" {
		role = domain.RoleAuthenticated
	}

	now := time.Now()
	claims := &Claims{
		Email: account.Email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   account.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}
