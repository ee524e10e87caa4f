package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

const tokenIssuer = "cnab-api"

// AuthService issues and validates the HS256 access tokens guarding /v1.
type AuthService struct {
	jwtSecret []byte
	accessTTL time.Duration
	logger    *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
		logger:    logger,
	}
}

// JWTClaims represents the custom claims in access tokens.
type JWTClaims struct {
	Sub  string `json:"sub"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs an access token for subject, typically a client
// system name. Used by `cnabctl token`.
func (s *AuthService) IssueAccessToken(ctx context.Context, subject string) (*domain.AccessToken, error) {
	_, span := authTracer.Start(ctx, "AuthService.IssueAccessToken")
	defer span.End()
	span.SetAttributes(attribute.String("auth.subject", subject))

	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, &domain.ErrValidation{Field: "subject", Message: "required"}
	}

	now := time.Now()
	expires := now.Add(s.accessTTL)
	claims := JWTClaims{
		Sub:  subject,
		Type: "access",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
			Issuer:    tokenIssuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("access token issued",
		zap.String("subject", subject),
		zap.Time("expires_at", expires),
	)
	return &domain.AccessToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int(s.accessTTL.Seconds()),
		Subject:     subject,
	}, nil
}

// ValidateAccessToken is used by the JWT middleware.
func (s *AuthService) ValidateAccessToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if claims.Type != "access" {
		return nil, &domain.ErrUnauthorized{Message: "invalid token type"}
	}

	return claims, nil
}
