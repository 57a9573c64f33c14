package middleware

import (
	"errors"
	"strings"

	"restaurant_manager/constants"
	"restaurant_manager/helper"
	"restaurant_manager/model"
	"restaurant_manager/utils"

	"github.com/gofiber/fiber/v2"
)

func tokenFromRequest(c *fiber.Ctx) string {
	token := c.Cookies("access_token")
	if token == "" {
		auth := c.Get("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	return token
}

// Protected requires a valid JWT and stores the typed principal in Locals.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED, "Missing token", errors.New("no token"))
		}

		jwtToken, err := helper.ParseToken(token)
		if err != nil || !jwtToken.Valid {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED, "Invalid token", err)
		}

		principal, err := helper.PrincipalFromToken(jwtToken)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED, "Invalid token claims", err)
		}

		c.Locals("principal", principal)
		return c.Next()
	}
}

// OptionalAuth stores a principal when a valid token is present and continues
// anonymously otherwise.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c)
		if token == "" {
			return c.Next()
		}

		jwtToken, err := helper.ParseToken(token)
		if err != nil || !jwtToken.Valid {
			return c.Next()
		}

		if principal, err := helper.PrincipalFromToken(jwtToken); err == nil {
			c.Locals("principal", principal)
		}
		return c.Next()
	}
}

// RequireRoles gates a route on an explicit role set. Must run after
// Protected.
func RequireRoles(roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(c *fiber.Ctx) error {
		principal, ok := helper.GetPrincipal(c)
		if !ok {
			return utils.ErrorResponse(c, fiber.StatusUnauthorized, constants.ERROR_UNAUTHORIZED, "Authentication required", nil)
		}
		if !allowed[principal.Role] {
			return utils.ErrorResponse(c, fiber.StatusForbidden, constants.ERROR_FORBIDDEN,
				"Access denied. Required roles: "+strings.Join(roles, ", "), nil)
		}
		return c.Next()
	}
}

// RequireStaff is shorthand for the four staff roles.
func RequireStaff() fiber.Handler {
	return RequireRoles(model.RoleWaiter, model.RoleChef, model.RoleManager, model.RoleAdmin)
}
