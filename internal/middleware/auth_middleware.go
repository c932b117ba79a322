package middleware

import (
	"errors"
	"strings"

	"deposito-pos/internal/service"
	"deposito-pos/internal/session"
	"deposito-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// LocalSession is the fiber Locals key holding the session.Session.
const LocalSession = "session"

// RequireAuth validates the bearer token and puts the session on the request
// context for the services below.
func RequireAuth(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		return authenticate(c, auth, parts[1])
	}
}

// RequireQueryToken authenticates with ?token=, used by the websocket
// upgrade where browsers cannot set headers.
func RequireQueryToken(auth service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Query("token")
		if token == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}
		return authenticate(c, auth, token)
	}
}

func authenticate(c *fiber.Ctx, auth service.AuthService, token string) error {
	sess, _, err := auth.ValidateToken(c.UserContext(), token)
	if err != nil {
		if !errors.Is(err, jwt.ErrInvalidToken) {
			log.Debug().Err(err).Str("path", c.Path()).Msg("session rejected")
		}
		return c.Status(401).JSON(fiber.Map{"error": service.AuthMessage(err)})
	}

	c.SetUserContext(session.WithSession(c.UserContext(), *sess))
	c.Locals(LocalSession, *sess)
	return c.Next()
}

// Session returns the session set by RequireAuth.
func Session(c *fiber.Ctx) (session.Session, bool) {
	s, ok := c.Locals(LocalSession).(session.Session)
	return s, ok
}

// RequirePrivilege checks if the authenticated user's role grants the privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := Session(c)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}
		if !sess.Can(requiredPrivilege) {
			return c.Status(403).JSON(fiber.Map{
				"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
			})
		}
		return c.Next()
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := Session(c)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, reqPriv := range requiredPrivileges {
			if sess.Can(reqPriv) {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
