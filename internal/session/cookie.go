package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"session_auth/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoCookie      = errors.New("session cookie not present")
	ErrInvalidCookie = errors.New("session cookie invalid")
)

// CookieConfig controls the cookie that carries the session id.
type CookieConfig struct {
	Name   string
	Secret []byte
	Secure bool
}

// Cookie encodes session ids as HS256-signed tokens so a forged or tampered
// id is rejected before the store is consulted.
type Cookie struct {
	cfg CookieConfig
	now func() time.Time
}

func NewCookie(cfg CookieConfig) *Cookie {
	return &Cookie{cfg: cfg, now: time.Now}
}

// Name returns the cookie name.
func (c *Cookie) Name() string { return c.cfg.Name }

// Issue builds the Set-Cookie value for s. The cookie and its token expire with the session.
func (c *Cookie) Issue(s models.Session) (*http.Cookie, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.RegisteredClaims{
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	})
	signed, err := token.SignedString(c.cfg.Secret)
	if err != nil {
		return nil, fmt.Errorf("sign session cookie: %w", err)
	}

	maxAge := int(s.ExpiresAt.Sub(c.now()).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}
	return c.base(signed, maxAge, s.ExpiresAt), nil
}

// Read extracts and verifies the session id carried by r.
func (c *Cookie) Read(r *http.Request) (string, error) {
	ck, err := r.Cookie(c.cfg.Name)
	if err != nil || ck.Value == "" {
		return "", ErrNoCookie
	}
	return c.Decode(ck.Value)
}

// Decode verifies a signed cookie value and returns the session id.
func (c *Cookie) Decode(value string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(value, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.cfg.Secret, nil
	}, jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	if !token.Valid || claims.ID == "" {
		return "", ErrInvalidCookie
	}
	return claims.ID, nil
}

// Clear returns a cookie that makes the client drop the session cookie.
func (c *Cookie) Clear() *http.Cookie {
	return c.base("", -1, time.Unix(0, 0))
}

func (c *Cookie) base(value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     c.cfg.Name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}
