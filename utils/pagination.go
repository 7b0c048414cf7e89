package utils

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

var ErrBadPagination = errors.New("skip and limit must be integers")

// ParseSkipLimit reads ?skip= and ?limit= with defaults of 0 and DefaultLimit.
// Range checks are left to the caller; only limit is capped at MaxLimit.
func ParseSkipLimit(c *fiber.Ctx) (skip, limit int, err error) {
	if skip, err = atoiDefault(c.Query("skip"), 0); err != nil {
		return 0, 0, ErrBadPagination
	}
	if limit, err = atoiDefault(c.Query("limit"), DefaultLimit); err != nil {
		return 0, 0, ErrBadPagination
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return skip, limit, nil
}

func atoiDefault(s string, def int) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
