package app

import (
	"errors"
	"fmt"
	"time"

	"klondike/internal/config"

	"github.com/form3tech-oss/jwt-go"
	"github.com/google/uuid"
)

var (
	ErrTokenConfig  = errors.New("table token config is incomplete")
	ErrTokenInvalid = errors.New("table token is invalid")
)

// TableClaims identifies the player and table a token was issued for.
type TableClaims struct {
	Subject   string
	TableID   string
	ExpiresAt time.Time
}

// TokenService signs and checks HS256 table tokens. A client that drops its
// connection presents the token to get its table back.
type TokenService struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl == 0 {
		ttl = config.DefaultTokenTTL
	}
	return &TokenService{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Issue returns a signed token binding subject to tableID.
func (s *TokenService) Issue(subject, tableID string) (string, error) {
	if s == nil || len(s.secret) == 0 || s.issuer == "" {
		return "", ErrTokenConfig
	}
	if subject == "" || tableID == "" {
		return "", fmt.Errorf("subject and table id are required")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": subject,
		"tid": tableID,
		"iat": now.Unix(),
		"exp": now.Add(s.ttl).Unix(),
		"jti": uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature, expiry and issuer of tokenString.
func (s *TokenService) Verify(tokenString string) (TableClaims, error) {
	if s == nil || len(s.secret) == 0 || s.issuer == "" {
		return TableClaims{}, ErrTokenConfig
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return TableClaims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return TableClaims{}, ErrTokenInvalid
	}
	if !claims.VerifyIssuer(s.issuer, true) {
		return TableClaims{}, fmt.Errorf("%w: issuer mismatch", ErrTokenInvalid)
	}

	sub, _ := claims["sub"].(string)
	tid, _ := claims["tid"].(string)
	if sub == "" || tid == "" {
		return TableClaims{}, fmt.Errorf("%w: missing subject or table", ErrTokenInvalid)
	}
	out := TableClaims{Subject: sub, TableID: tid}
	if exp, ok := claims["exp"].(float64); ok {
		out.ExpiresAt = time.Unix(int64(exp), 0)
	}
	return out, nil
}
