package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"quizbot/internal/config"
	"quizbot/internal/dto"
	"quizbot/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrInvalidJWTToken = errors.New("invalid jwt token")
	ErrMissingSecret   = errors.New("jwt secret key is not configured")
)

// AuthService mints and validates the bearer tokens of the transport bridge.
type AuthService interface {
	CreateJWT(ctx context.Context, userID int64, ttl time.Duration) (string, error)
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
}

type authServiceImpl struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAuthService signs HS256 tokens with cfg.SecretKey.
func NewAuthService(cfg config.JWTConfig) (AuthService, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecret
	}
	return &authServiceImpl{secret: []byte(cfg.SecretKey), ttl: cfg.AccessTTL, now: time.Now}, nil
}

// CreateJWT issues an access token. A zero ttl uses the configured default.
func (s *authServiceImpl) CreateJWT(ctx context.Context, userID int64, ttl time.Duration) (string, error) {
	if userID <= 0 {
		return "", fmt.Errorf("user id must be positive, got %d", userID)
	}
	if ttl <= 0 {
		ttl = s.ttl
	}
	now := s.now()
	claims := dto.AuthClaims{
		UserID:    userID,
		TokenType: dto.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Subject:   strconv.FormatInt(userID, 10),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Warn("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidJWTToken
	}
	if _, ok := claims.SubjectUserID(); !ok {
		return nil, fmt.Errorf("%w: no user id", ErrInvalidJWTToken)
	}
	return claims, nil
}
