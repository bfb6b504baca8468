// Package session issues and validates the anonymous visitor-session cookie.
// There is no signup flow: the first request gets a signed token carrying a
// generated visitor ID, and every later request resolves back to the same
// user record through it.
package session

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// CookieName is the session cookie carrying the signed visitor token.
	CookieName = "medibot_session"

	contextKey = "visitor_id"
)

// Manager signs and verifies visitor-session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &Manager{secret: secret, ttl: ttl}
}

// Issue creates a signed token for a visitor ID.
func (m *Manager) Issue(visitorID string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   visitorID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse validates a token and returns the visitor ID it carries.
func (m *Manager) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("missing subject claim")
	}
	return claims.Subject, nil
}

// Middleware resolves the visitor ID from the session cookie, minting a new
// identity (and cookie) when the cookie is absent, expired, or tampered with.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var visitorID string

			if cookie, err := c.Cookie(CookieName); err == nil {
				if id, err := m.Parse(cookie.Value); err == nil {
					visitorID = id
				}
			}

			if visitorID == "" {
				visitorID = uuid.NewString()
				token, err := m.Issue(visitorID)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "session setup failed")
				}
				c.SetCookie(&http.Cookie{
					Name:     CookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					Expires:  time.Now().Add(m.ttl),
				})
			}

			c.Set(contextKey, visitorID)
			return next(c)
		}
	}
}

// VisitorID returns the visitor ID resolved by the middleware, or "" when the
// middleware did not run.
func VisitorID(c echo.Context) string {
	id, _ := c.Get(contextKey).(string)
	return id
}
