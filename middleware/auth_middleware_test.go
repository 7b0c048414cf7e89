package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

const secret = "middleware-secret"

func sign(t *testing.T, claims jwt.MapClaims, key string) string {
	t.Helper()
	claims["exp"] = time.Now().Add(time.Hour).Unix()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func newApp() *fiber.App {
	app := fiber.New()
	app.Get("/me", Protected(secret), func(c *fiber.Ctx) error {
		req, err := CurrentRequester(c)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}
		return c.JSON(req)
	})
	app.Get("/admin", Protected(secret), AdminRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func get(t *testing.T, app *fiber.App, path, bearer string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	resp.Body.Close()
	return resp.StatusCode
}

func TestProtected(t *testing.T) {
	app := newApp()

	tests := []struct {
		name   string
		bearer string
		want   int
	}{
		{"missing token", "", fiber.StatusBadRequest},
		{"wrong key", sign(t, jwt.MapClaims{"id": "s1", "role": "student"}, "other"), fiber.StatusUnauthorized},
		{"id claim", sign(t, jwt.MapClaims{"id": "s1", "role": "student"}, secret), fiber.StatusOK},
		{"user_id claim", sign(t, jwt.MapClaims{"user_id": "s1", "role": "student"}, secret), fiber.StatusOK},
		{"no role", sign(t, jwt.MapClaims{"id": "s1"}, secret), fiber.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := get(t, app, "/me", tt.bearer); got != tt.want {
				t.Fatalf("status: want=%d got=%d", tt.want, got)
			}
		})
	}
}

func TestAdminRequired(t *testing.T) {
	app := newApp()

	student := sign(t, jwt.MapClaims{"id": "s1", "role": "student"}, secret)
	if got := get(t, app, "/admin", student); got != fiber.StatusForbidden {
		t.Fatalf("student: want 403 got %d", got)
	}
	admin := sign(t, jwt.MapClaims{"id": "a1", "role": "admin"}, secret)
	if got := get(t, app, "/admin", admin); got != fiber.StatusNoContent {
		t.Fatalf("admin: want 204 got %d", got)
	}
}

func TestParseRequester(t *testing.T) {
	good := sign(t, jwt.MapClaims{"user_id": "s1", "role": "student"}, secret)
	req, err := ParseRequester(secret, good)
	if err != nil {
		t.Fatalf("ParseRequester: %v", err)
	}
	if req.ID != "s1" || req.Role != "student" {
		t.Fatalf("requester: %+v", req)
	}

	if _, err := ParseRequester(secret, sign(t, jwt.MapClaims{"id": "s1", "role": "student"}, "other")); err == nil {
		t.Fatalf("wrong key should fail")
	}
	if _, err := ParseRequester(secret, sign(t, jwt.MapClaims{"id": "s1"}, secret)); err == nil {
		t.Fatalf("missing role should fail")
	}
	if _, err := ParseRequester(secret, "garbage"); err == nil {
		t.Fatalf("garbage should fail")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": "s1", "role": "student", "exp": time.Now().Add(-time.Minute).Unix(),
	})
	raw, _ := expired.SignedString([]byte(secret))
	if _, err := ParseRequester(secret, raw); err == nil {
		t.Fatalf("expired token should fail")
	}
}
