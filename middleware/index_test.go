package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"restaurant_manager/helper"
	"restaurant_manager/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func testApp(t *testing.T) *fiber.App {
	t.Setenv("JWT_SECRET", "test-secret")

	app := fiber.New()
	app.Get("/protected", Protected(), func(c *fiber.Ctx) error {
		principal, _ := helper.GetPrincipal(c)
		return c.JSON(principal)
	})
	app.Get("/staff", Protected(), RequireStaff(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/manager", Protected(), RequireRoles(model.RoleManager, model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func tokenFor(t *testing.T, role string) string {
	token, err := helper.GenerateAccessToken(model.Principal{UserID: 1, Role: role})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return token
}

func request(t *testing.T, app *fiber.App, path, token string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestProtected(t *testing.T) {
	app := testApp(t)

	assert.Equal(t, http.StatusUnauthorized, request(t, app, "/protected", ""))
	assert.Equal(t, http.StatusUnauthorized, request(t, app, "/protected", "not-a-token"))
	assert.Equal(t, http.StatusOK, request(t, app, "/protected", tokenFor(t, model.RoleClient)))
}

func TestRequireRoles(t *testing.T) {
	app := testApp(t)

	t.Run("staff routes reject clients", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, request(t, app, "/staff", tokenFor(t, model.RoleClient)))
		for _, role := range []string{model.RoleWaiter, model.RoleChef, model.RoleManager, model.RoleAdmin} {
			assert.Equal(t, http.StatusOK, request(t, app, "/staff", tokenFor(t, role)))
		}
	})

	t.Run("manager routes reject junior staff", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, request(t, app, "/manager", tokenFor(t, model.RoleWaiter)))
		assert.Equal(t, http.StatusForbidden, request(t, app, "/manager", tokenFor(t, model.RoleChef)))
		assert.Equal(t, http.StatusOK, request(t, app, "/manager", tokenFor(t, model.RoleManager)))
		assert.Equal(t, http.StatusOK, request(t, app, "/manager", tokenFor(t, model.RoleAdmin)))
	})
}
