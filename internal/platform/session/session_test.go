package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)

	token, err := m.Issue("visitor-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, err := m.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "visitor-123" {
		t.Errorf("expected visitor-123, got %s", id)
	}
}

func TestParse_RejectsTampered(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)
	other := NewManager([]byte("other-secret"), time.Hour)

	token, err := other.Issue("visitor-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Error("expected error for token signed with a different key")
	}
}

func TestParse_RejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	m := NewManager(secret, time.Hour)

	// Sign a token whose expiry is already in the past; Issue can never
	// produce one because the constructor rejects non-positive TTLs.
	claims := jwt.RegisteredClaims{
		Subject:   "visitor-123",
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := m.Parse(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestNewManager_DefaultTTL(t *testing.T) {
	// Non-positive TTLs fall back to 30 days instead of issuing dead cookies.
	for _, ttl := range []time.Duration{0, -time.Hour} {
		m := NewManager([]byte("test-secret"), ttl)
		if m.ttl != 30*24*time.Hour {
			t.Errorf("NewManager(%v): ttl = %v, want 30 days", ttl, m.ttl)
		}
	}
}

func TestMiddleware_MintsNewVisitor(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := m.Middleware()(func(c echo.Context) error {
		if VisitorID(c) == "" {
			t.Error("expected visitor ID to be set")
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cookies := rec.Result().Cookies()
	found := false
	for _, ck := range cookies {
		if ck.Name == CookieName && ck.Value != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected session cookie to be set")
	}
}

func TestMiddleware_ReusesExistingVisitor(t *testing.T) {
	m := NewManager([]byte("test-secret"), time.Hour)
	token, err := m.Issue("visitor-abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := m.Middleware()(func(c echo.Context) error {
		if VisitorID(c) != "visitor-abc" {
			t.Errorf("expected visitor-abc, got %s", VisitorID(c))
		}
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
