package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"lottery-server/common/logger"
	"lottery-server/internal/config"

	beegocontext "github.com/beego/beego/v2/server/web/context"
	"github.com/golang-jwt/jwt/v5"
)

func setupJWTConfig(t *testing.T) *config.Config {
	t.Helper()
	logger.InitLogger()
	cfg := &config.Config{}
	cfg.Auth.JWT.Secret = "unit-test-secret"
	cfg.Auth.JWT.AccessTokenTTL = 3600
	cfg.Auth.JWT.Issuer = "lottery-server-test"
	config.SetCurrent(cfg)
	return cfg
}

func TestGenerateAccessToken(t *testing.T) {
	cfg := setupJWTConfig(t)

	tokenString, err := GenerateAccessToken("acc-1001", "tester")
	if err != nil {
		t.Fatalf("GenerateAccessToken err: %v", err)
	}
	if tokenString == "" {
		t.Fatalf("expected non-empty token")
	}

	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Auth.JWT.Secret), nil
	})
	if err != nil {
		t.Fatalf("parse token err: %v", err)
	}
	if !token.Valid {
		t.Fatalf("expected valid token")
	}
	if claims.AccountID != "acc-1001" {
		t.Fatalf("account_id = %q, want acc-1001", claims.AccountID)
	}
	if claims.Username != "tester" {
		t.Fatalf("username = %q, want tester", claims.Username)
	}
	if claims.TokenType != "access" {
		t.Fatalf("token_type = %q, want access", claims.TokenType)
	}
	if claims.Issuer != cfg.Auth.JWT.Issuer {
		t.Fatalf("issuer = %q, want %q", claims.Issuer, cfg.Auth.JWT.Issuer)
	}
	if claims.ExpiresAt == nil {
		t.Fatalf("expected expires_at to be set")
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 || remaining > time.Hour+time.Minute {
		t.Fatalf("unexpected ttl remaining: %v", remaining)
	}
}

func newAuthContext(t *testing.T, tokenString string) *beegocontext.Context {
	t.Helper()
	ctx := beegocontext.NewContext()
	r := httptest.NewRequest("GET", "/api/lottery", nil)
	r.Header.Set("Authorization", "Bearer "+tokenString)
	ctx.Reset(httptest.NewRecorder(), r)
	return ctx
}

func TestVerifyJWTTokenExpired(t *testing.T) {
	cfg := setupJWTConfig(t)
	cfg.Auth.JWT.AccessTokenTTL = -60
	config.SetCurrent(cfg)

	tokenString, err := GenerateAccessToken("acc-1001", "tester")
	if err != nil {
		t.Fatalf("GenerateAccessToken err: %v", err)
	}

	_, err = VerifyJWTToken(newAuthContext(t, tokenString))
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("err = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyJWTTokenGarbage(t *testing.T) {
	setupJWTConfig(t)

	_, err := VerifyJWTToken(newAuthContext(t, "not-a-jwt"))
	if !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("err = %v, want ErrInvalidToken", err)
	}
}

func TestGenerateAccessTokenWrongSecret(t *testing.T) {
	setupJWTConfig(t)

	tokenString, err := GenerateAccessToken("acc-1001", "tester")
	if err != nil {
		t.Fatalf("GenerateAccessToken err: %v", err)
	}

	_, err = jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte("another-secret"), nil
	})
	if err == nil {
		t.Fatalf("expected verification failure with wrong secret")
	}
}
