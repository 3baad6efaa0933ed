package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Skotchmaster/beauty_shop/pkg/logging"
	"github.com/Skotchmaster/beauty_shop/pkg/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

type TokenAuth struct {
	JWTSecret []byte
}

func NewTokenAuth(secret []byte) *TokenAuth {
	return &TokenAuth{JWTSecret: secret}
}

type ValidatorFunc func(claims *tokens.AccessClaims) error

func (m *TokenAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *TokenAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(claims *tokens.AccessClaims) error {
		if claims.Role != tokens.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *TokenAuth) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("middleware", "auth")

		raw := tokenFromRequest(c)
		if raw == "" {
			l.Warn("auth_failed", "status", 401, "reason", "missing token")
			return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, login again")
		}

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil {
			reason := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				reason = "token expired"
			}
			l.Warn("auth_failed", "status", 401, "reason", reason, "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, reason)
		}
		if claims.Subject == "" {
			l.Warn("auth_failed", "status", 401, "reason", "token without subject")
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
		}

		if validator != nil {
			if vErr := validator(claims); vErr != nil {
				l.Warn("auth_failed", "status", 403, "reason", "role", "role", claims.Role)
				return vErr
			}
		}

		c.Set(ContextUserID, claims.Subject)
		c.Set(ContextRole, claims.Role)
		return next(c)
	}
}

// tokenFromRequest accepts a bearer header, the storefront's "token" header
// or the accessToken cookie, in that order.
func tokenFromRequest(c echo.Context) string {
	h := c.Request().Header
	if v := h.Get(echo.HeaderAuthorization); v != "" {
		if after, ok := strings.CutPrefix(v, "Bearer "); ok {
			return strings.TrimSpace(after)
		}
	}
	if v := strings.TrimSpace(h.Get("token")); v != "" {
		return v
	}
	if ck, err := c.Cookie("accessToken"); err == nil {
		return ck.Value
	}
	return ""
}
