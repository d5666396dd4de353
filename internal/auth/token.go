package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vaughan-dsouza/codeatlas/internal/config"
)

// Tokens issues and verifies signed, time-limited bearer tokens carrying a
// subject id. Used for the admin session cookie.
type Tokens struct {
	secret     []byte
	defaultTTL time.Duration
}

func NewTokens(cfg config.JWTConfig) *Tokens {
	return &Tokens{
		secret:     []byte(cfg.Secret),
		defaultTTL: time.Duration(cfg.TTLMinutes) * time.Minute,
	}
}

// Issue signs a token for subject. When ttl is omitted the configured default
// applies.
func (t *Tokens) Issue(subject string, ttl ...time.Duration) (string, error) {
	if subject == "" {
		return "", errors.New("auth: empty subject")
	}

	d := t.defaultTTL
	if len(ttl) > 0 {
		d = ttl[0]
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(now.Add(d)),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Verify checks the signature and required claims and returns the subject.
// Any decoding, signature, or expiry failure yields ok == false; this never
// surfaces an error to callers.
func (t *Tokens) Verify(tokenStr string) (subject string, ok bool) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
	)

	var claims jwt.RegisteredClaims
	token, err := parser.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}

	if claims.Subject == "" {
		return "", false
	}

	return claims.Subject, true
}
