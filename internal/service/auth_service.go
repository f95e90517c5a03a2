package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"study-deck/internal/config"
	"study-deck/internal/domain"
	"study-deck/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// PlatformClaims are the claims carried by an access token issued by the
// hosted auth platform.
type PlatformClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService verifies access tokens. Login itself happens on the platform.
type AuthService interface {
	VerifyAccessToken(ctx context.Context, tokenString string) (*domain.Identity, error)
}

type authServiceImpl struct {
	secret   []byte
	audience string
}

func NewAuthService(supabaseCfg config.SupabaseConfig) (AuthService, error) {
	if supabaseCfg.JWTSecret == "" {
		return nil, errors.New("supabase jwt secret is not configured")
	}
	return &authServiceImpl{
		secret:   []byte(supabaseCfg.JWTSecret),
		audience: supabaseCfg.JWTAudience,
	}, nil
}

func (s *authServiceImpl) VerifyAccessToken(ctx context.Context, tokenString string) (*domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if s.audience != "" {
		opts = append(opts, jwt.WithAudience(s.audience))
	}

	claims := &PlatformClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("Access token expired", zap.String("token_snippet", snippet(tokenString)))
		} else {
			logger.Get().Warn("Access token validation failed", zap.Error(err), zap.String("token_snippet", snippet(tokenString)))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidJWTToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidJWTToken)
	}
	return &domain.Identity{
		UserID: userID.String(),
		Email:  strings.TrimSpace(claims.Email),
	}, nil
}

func snippet(s string) string {
	return s[:min(len(s), 20)] + "..."
}
