package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	domain "geofence-attendance/internal/domain/geofence"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Claims is the bearer token payload issued by the identity provider.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Role   string `json:"role"`
}

// JWTAuth verifies an HS256 bearer token and stores the caller identity on
// the echo context. Unknown roles are downgraded to employee.
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := extractBearer(c.Request())
			if tok == "" {
				return unauthorized(c, "missing bearer token")
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tok, claims, func(_ *jwt.Token) (any, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				log.Debug().Err(err).Msg("auth: token rejected")
				return unauthorized(c, "invalid or expired token")
			}
			uid := strings.TrimSpace(claims.UserID)
			if uid == "" {
				return unauthorized(c, "token has no uid claim")
			}

			setIdentity(c, domain.Identity{UserID: uid, Role: domain.ParseRole(claims.Role)})
			return next(c)
		}
	}
}

// RequireRole must be chained after JWTAuth.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok {
				return unauthorized(c, "authentication required")
			}
			if _, match := allowed[id.Role]; !match {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient permissions", "code": "forbidden"})
			}
			return next(c)
		}
	}
}

// IssueToken signs an access token for uid/role. Used by tooling and tests.
func IssueToken(secret, uid string, role domain.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: uid,
		Role:   string(role),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("middleware.IssueToken: %w", err)
	}
	return signed, nil
}

func extractBearer(r *http.Request) string {
	auth := r.Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg, "code": "unauthorized"})
}
