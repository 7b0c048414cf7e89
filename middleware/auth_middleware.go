package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/anjiri1684/enrollment_service/models"
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v3"
	"github.com/golang-jwt/jwt/v4"
)

const userKey = "user"

var ErrNoRequester = errors.New("no authenticated user on request")

// Protected verifies the bearer token and stores it on the request context.
func Protected(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:   []byte(secret),
		ContextKey:   userKey,
		ErrorHandler: jwtError,
	})
}

func jwtError(c *fiber.Ctx, err error) error {
	if strings.EqualFold(err.Error(), "Missing or malformed JWT") {
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT", "detail": "Missing or malformed JWT", "data": nil})
	}
	return c.Status(fiber.StatusUnauthorized).
		JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT", "detail": "Invalid or expired JWT", "data": nil})
}

// AdminRequired must run after Protected.
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req, err := CurrentRequester(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  "error",
				"message": "Invalid or expired JWT",
				"detail":  "Invalid or expired JWT",
			})
		}
		if !req.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"status":  "error",
				"code":    fiber.StatusForbidden,
				"error":   "forbidden",
				"message": "Admin access required",
				"detail":  "Admin access required",
			})
		}
		return c.Next()
	}
}

// CurrentRequester reads the caller from the verified token. Tokens issued by
// the student service carry "id"; "user_id" is accepted as well.
func CurrentRequester(c *fiber.Ctx) (models.Requester, error) {
	token, ok := c.Locals(userKey).(*jwt.Token)
	if !ok || token == nil {
		return models.Requester{}, ErrNoRequester
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Requester{}, ErrNoRequester
	}
	return requesterFromClaims(claims)
}

// ParseRequester verifies a raw HS256 token outside the HTTP middleware, for
// connections that authenticate after the upgrade.
func ParseRequester(secret, raw string) (models.Requester, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Requester{}, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Requester{}, ErrNoRequester
	}
	return requesterFromClaims(claims)
}

func requesterFromClaims(claims jwt.MapClaims) (models.Requester, error) {
	req := models.Requester{
		ID:    claimString(claims, "id"),
		Role:  claimString(claims, "role"),
		Email: claimString(claims, "email"),
		Name:  claimString(claims, "name"),
	}
	if req.ID == "" {
		req.ID = claimString(claims, "user_id")
	}
	if req.ID == "" || req.Role == "" {
		return models.Requester{}, ErrNoRequester
	}
	return req, nil
}

func claimString(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
