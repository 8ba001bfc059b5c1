package app

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"klondike/internal/config"

	"github.com/form3tech-oss/jwt-go"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret", "klondike", time.Hour)
	tokenString, err := svc.Issue("player-1", "table-9")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	claims := parseTableClaims(t, tokenString, "test-secret")
	if got := stringClaim(t, claims, "sub"); got != "player-1" {
		t.Fatalf("sub = %s, want player-1", got)
	}
	if got := stringClaim(t, claims, "tid"); got != "table-9" {
		t.Fatalf("tid = %s, want table-9", got)
	}
	if got := stringClaim(t, claims, "iss"); got != "klondike" {
		t.Fatalf("iss = %s, want klondike", got)
	}
	if stringClaim(t, claims, "jti") == "" {
		t.Fatal("jti is empty")
	}

	got, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if got.Subject != "player-1" || got.TableID != "table-9" {
		t.Fatalf("claims = %+v", got)
	}
	if got.ExpiresAt.Before(time.Now()) {
		t.Fatalf("expiry %v is in the past", got.ExpiresAt)
	}
}

func TestTokenServiceRejects(t *testing.T) {
	svc := NewTokenService("test-secret", "klondike", time.Hour)
	good, err := svc.Issue("player-1", "table-9")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	expired, err := NewTokenService("test-secret", "klondike", -time.Hour).Issue("player-1", "table-9")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	foreign, err := NewTokenService("test-secret", "someone-else", time.Hour).Issue("player-1", "table-9")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	otherKey, err := NewTokenService("other-secret", "klondike", time.Hour).Issue("player-1", "table-9")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong issuer", foreign},
		{"wrong key", otherKey},
		{"truncated", good[:len(good)-4]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); !errors.Is(err, ErrTokenInvalid) {
				t.Fatalf("verify err = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestTokenServiceRequiresConfig(t *testing.T) {
	svc := NewTokenService("", "klondike", time.Hour)
	if _, err := svc.Issue("player", "table"); !errors.Is(err, ErrTokenConfig) {
		t.Fatalf("issue err = %v, want ErrTokenConfig", err)
	}
	if _, err := svc.Verify("x"); !errors.Is(err, ErrTokenConfig) {
		t.Fatalf("verify err = %v, want ErrTokenConfig", err)
	}
	full := NewTokenService("secret", "klondike", 0)
	if _, err := full.Issue("", "table"); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func parseTableClaims(t *testing.T, tokenString, secret string) jwt.MapClaims {
	t.Helper()

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		t.Fatalf("parse token error: %v", err)
	}
	if !token.Valid {
		t.Fatal("token is invalid")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not map claims")
	}
	return claims
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}

func TestTokenServiceDefaultTTL(t *testing.T) {
	svc := NewTokenService("test-secret", "klondike", 0)
	issued := time.Now()
	tokenString, err := svc.Issue("player-1", "table-9")
	if err != nil {
		t.Fatalf("issue error: %v", err)
	}
	got, err := svc.Verify(tokenString)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	want := issued.Add(config.DefaultTokenTTL)
	if d := got.ExpiresAt.Sub(want); d < -2*time.Second || d > 2*time.Second {
		t.Fatalf("expires at %s, want about %s", got.ExpiresAt, want)
	}
}
