package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sirpyerre/jwtauth-api/internal/core/domain"
)

func newGuardContext(user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if user != nil {
		req = req.WithContext(domain.ContextWithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func assertMessage(t *testing.T, rec *httptest.ResponseRecorder, code int, msg string) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d", code, rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if body["message"] != msg {
		t.Fatalf("expected message %q, got %q", msg, body["message"])
	}
}

func TestAuthorize_AllowsRole(t *testing.T) {
	c, rec := newGuardContext(&domain.User{ID: 1, Role: domain.RoleAdmin})

	called := false
	handler := Authorize(domain.RoleAdmin)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthorize_AnyAuthenticatedUser(t *testing.T) {
	c, rec := newGuardContext(&domain.User{ID: 2, Role: "Whatever"})

	handler := Authorize()(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	_ = handler(c)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthorize_Forbids(t *testing.T) {
	c, rec := newGuardContext(&domain.User{ID: 2, Role: domain.RoleUser})

	handler := Authorize(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	assertMessage(t, rec, http.StatusForbidden, "Forbidden")
}

func TestAuthorize_RoleMatchIsExact(t *testing.T) {
	c, rec := newGuardContext(&domain.User{ID: 2, Role: "admin"})

	handler := Authorize(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	assertMessage(t, rec, http.StatusForbidden, "Forbidden")
}

func TestAuthorize_Unauthorized(t *testing.T) {
	c, rec := newGuardContext(nil)

	handler := Authorize()(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	assertMessage(t, rec, http.StatusUnauthorized, "Unauthorized")
}

func TestAuthorize_UnauthorizedWinsOverRoleCheck(t *testing.T) {
	c, rec := newGuardContext(nil)

	handler := Authorize(domain.RoleAdmin)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	assertMessage(t, rec, http.StatusUnauthorized, "Unauthorized")
}

func TestAuthorize_AllowAnonymous(t *testing.T) {
	c, rec := newGuardContext(nil)
	c.SetPath("/login")

	called := false
	handler := AuthorizeWithConfig(AuthorizeConfig{
		Skipper: AllowAnonymous("/login"),
		Roles:   []string{domain.RoleAdmin},
	})(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called || rec.Code != http.StatusOK {
		t.Fatalf("expected anonymous endpoint to pass, called=%v code=%d", called, rec.Code)
	}
}

func TestAllowAnonymous_OnlyListedPaths(t *testing.T) {
	c, rec := newGuardContext(nil)
	c.SetPath("/account")

	handler := AuthorizeWithConfig(AuthorizeConfig{Skipper: AllowAnonymous("/login")})(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	_ = handler(c)
	assertMessage(t, rec, http.StatusUnauthorized, "Unauthorized")
}
