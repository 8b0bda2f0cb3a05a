package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/nastradacha/inventory-app/config"
	"github.com/nastradacha/inventory-app/ledger"
	"github.com/nastradacha/inventory-app/models"
)

const actorKey = "actor"

// Claims carries the authenticated user inside the JWT.
type Claims struct {
	UserID   uint   `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken signs a JWT for the given user.
func GenerateToken(cfg *config.AuthConfig, user *models.User) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(cfg.TokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// RequireAuth parses the Bearer token and stores the caller as a
// ledger.Actor in the request locals.
func RequireAuth(cfg *config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing token"})
		}

		raw := strings.TrimPrefix(auth, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}

		c.Locals(actorKey, ledger.Actor{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     claims.Role,
		})
		return c.Next()
	}
}

// RequireManager rejects callers without the manager role. Must run after
// RequireAuth.
func RequireManager() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor := ActorFromCtx(c)
		if !actor.IsManager() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "manager privileges required"})
		}
		return c.Next()
	}
}

// ActorFromCtx returns the authenticated caller stored by RequireAuth.
func ActorFromCtx(c *fiber.Ctx) ledger.Actor {
	actor, _ := c.Locals(actorKey).(ledger.Actor)
	return actor
}
