package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/boddenberg/pj-cnab-bfa-go/internal/domain"
	"github.com/boddenberg/pj-cnab-bfa-go/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

func TestAuthService_IssueAndValidate(t *testing.T) {
	svc := service.NewAuthService("secret", 15*time.Minute, zap.NewNop())

	tok, err := svc.IssueAccessToken(context.Background(), "erp-financeiro")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tok.TokenType != "Bearer" || tok.ExpiresIn != 900 {
		t.Errorf("unexpected token %+v", tok)
	}

	claims, err := svc.ValidateAccessToken(tok.AccessToken)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.Sub != "erp-financeiro" {
		t.Errorf("expected subject erp-financeiro, got %s", claims.Sub)
	}
}

func TestAuthService_IssueRequiresSubject(t *testing.T) {
	svc := service.NewAuthService("secret", time.Minute, zap.NewNop())

	_, err := svc.IssueAccessToken(context.Background(), "  ")
	var ve *domain.ErrValidation
	if !errors.As(err, &ve) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_RejectsInvalidTokens(t *testing.T) {
	svc := service.NewAuthService("secret", time.Minute, zap.NewNop())
	other := service.NewAuthService("another-secret", time.Minute, zap.NewNop())
	expired := service.NewAuthService("secret", -time.Minute, zap.NewNop())

	foreign, _ := other.IssueAccessToken(context.Background(), "x")
	old, _ := expired.IssueAccessToken(context.Background(), "x")
	refresh, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, service.JWTClaims{
		Sub:              "x",
		Type:             "refresh",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "cnab-api"},
	}).SignedString([]byte("secret"))
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, service.JWTClaims{Sub: "x", Type: "access"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": foreign.AccessToken,
		"expired":      old.AccessToken,
		"wrong type":   refresh,
		"alg none":     none,
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tok)
			var ua *domain.ErrUnauthorized
			if !errors.As(err, &ua) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}
