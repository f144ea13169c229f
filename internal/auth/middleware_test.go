package auth

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/participa-df/ouvidoria-service/internal/domain"
	apperrors "github.com/participa-df/ouvidoria-service/pkg/util"
)

type stubLoader struct {
	users map[string]*domain.User
}

func (l *stubLoader) GetByID(_ context.Context, id string) (*domain.User, error) {
	if user, ok := l.users[id]; ok {
		return user, nil
	}
	return nil, pgx.ErrNoRows
}

func newAuthTestApp(tm *TokenManager, loader UserLoader) *fiber.App {
	app := fiber.New()
	mw := NewAuthMiddleware(tm, loader)
	handler := func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return c.JSON(fiber.Map{"anonymous": true})
		}
		return c.JSON(fiber.Map{"user_id": principal.User.ID, "admin": principal.IsAdmin()})
	}
	app.Get("/protected", errorToStatus, mw.Handle, handler)
	app.Get("/admin", errorToStatus, mw.Handle, RequireAdmin(), handler)
	app.Get("/optional", errorToStatus, mw.HandleOptional, handler)
	return app
}

func errorToStatus(c *fiber.Ctx) error {
	err := c.Next()
	if err == nil {
		return nil
	}
	domainErr := apperrors.ToDomainError(err)
	return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"code": domainErr.Code})
}

func TestAuthMiddleware(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	user := &domain.User{ID: "u1", Name: "Maria", Active: true}
	admin := &domain.User{ID: "a1", Name: "Ouvidor", Admin: true, Active: true}
	disabled := &domain.User{ID: "d1", Name: "Inativa", Active: false}
	app := newAuthTestApp(tm, &stubLoader{users: map[string]*domain.User{
		"u1": user, "a1": admin, "d1": disabled,
	}})

	token, _, err := tm.GenerateToken("u1", false)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["user_id"] != "u1" {
		t.Errorf("wrong principal: %v", body)
	}

	// missing header
	resp, _ = app.Test(httptest.NewRequest("GET", "/protected", nil))
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}

	// garbage token
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 for bad token, got %d", resp.StatusCode)
	}

	// disabled account
	disabledToken, _, _ := tm.GenerateToken("d1", false)
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+disabledToken)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for disabled account, got %d", resp.StatusCode)
	}
}

func TestRequireAdmin(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	user := &domain.User{ID: "u1", Active: true}
	admin := &domain.User{ID: "a1", Admin: true, Active: true}
	app := newAuthTestApp(tm, &stubLoader{users: map[string]*domain.User{"u1": user, "a1": admin}})

	userToken, _, _ := tm.GenerateToken("u1", false)
	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	resp, _ := app.Test(req)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", resp.StatusCode)
	}

	adminToken, _, _ := tm.GenerateToken("a1", true)
	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("expected 200 for admin, got %d", resp.StatusCode)
	}
}

func TestOptionalAuth(t *testing.T) {
	tm := NewTokenManager("test-secret", 30)
	user := &domain.User{ID: "u1", Active: true}
	app := newAuthTestApp(tm, &stubLoader{users: map[string]*domain.User{"u1": user}})

	// no header: anonymous passes through
	resp, err := app.Test(httptest.NewRequest("GET", "/optional", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 for anonymous, got %d", resp.StatusCode)
	}
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["anonymous"] != true {
		t.Errorf("expected anonymous passthrough, got %v", body)
	}

	// with token: principal loaded
	token, _, _ := tm.GenerateToken("u1", false)
	req := httptest.NewRequest("GET", "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body = nil
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if body["user_id"] != "u1" {
		t.Errorf("expected principal, got %v", body)
	}

	// an invalid token is still rejected
	req = httptest.NewRequest("GET", "/optional", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, _ = app.Test(req)
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("expected 401 for bad optional token, got %d", resp.StatusCode)
	}
}
