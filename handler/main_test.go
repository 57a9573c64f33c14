package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"restaurant_manager/database"
	"restaurant_manager/helper"
	"restaurant_manager/middleware"
	"restaurant_manager/model"
	"restaurant_manager/utils"
	validatemw "restaurant_manager/validate"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

// newTestApp builds a fiber app wired with the routes under test against an
// in-memory database. The gateway points at gatewayURL when given.
func newTestApp(t *testing.T, gatewayURL string) (*fiber.App, *Handler, *gorm.DB) {
	t.Setenv("JWT_SECRET", "test-secret")

	db := setupTestDB(t)

	gateway := &GuidiniPay{
		BaseURL: gatewayURL,
		AppKey:  "test-key",
		Client:  &http.Client{Timeout: 5 * time.Second},
	}

	h := New(db, gateway, nil, utils.LogSmsSender{})

	app := fiber.New()

	app.Post("/order/public", h.CreatePublicOrder)
	app.Get("/order/public/status/:orderNumber", h.GetPublicOrderStatus)
	app.Post("/order", middleware.Protected(), h.CreateOrder)
	app.Post("/order/delivery", middleware.Protected(), h.CreateDeliveryOrder)
	app.Get("/order/my", middleware.Protected(), h.GetMyOrders)
	app.Get("/order/:orderId", middleware.Protected(), validatemw.GetById("orderId"), h.GetOrder)
	app.Patch("/order/:orderId/status", middleware.Protected(), middleware.RequireStaff(),
		validatemw.GetById("orderId"), validatemw.UpdateOrderStatus(), h.UpdateOrderStatus)

	app.Get("/promotion/active", h.GetActivePromotions)
	app.Post("/promotion/calculate", h.CalculateDiscount)
	app.Post("/promotion/:promotionId/use", middleware.Protected(), middleware.RequireStaff(),
		validatemw.GetById("promotionId"), h.IncrementPromotionUsage)

	app.Get("/loyalty/program", h.GetLoyaltyProgram)
	app.Get("/loyalty/card", middleware.Protected(), h.GetMyLoyaltyCard)
	app.Post("/loyalty/redeem", middleware.Protected(), h.RedeemPoints)
	app.Post("/loyalty/award", middleware.Protected(),
		middleware.RequireRoles(model.RoleWaiter, model.RoleManager, model.RoleAdmin),
		h.AwardPoints)
	app.Post("/loyalty/manual", middleware.Protected(),
		middleware.RequireRoles(model.RoleManager, model.RoleAdmin),
		h.CreateManualTransaction)

	app.Post("/promotion", middleware.Protected(),
		middleware.RequireRoles(model.RoleManager, model.RoleAdmin),
		validatemw.CreatePromotion(), h.CreatePromotion)

	app.Post("/payment/initiate", middleware.Protected(), h.InitiatePayment)
	app.Get("/payment/order/:orderId", middleware.Protected(), validatemw.GetById("orderId"), h.GetPaymentByOrder)

	app.Post("/reservation/availability", h.CheckAvailability)
	app.Post("/reservation", middleware.OptionalAuth(), h.CreateReservation)

	app.Patch("/dish/:dishId/stock", middleware.Protected(), middleware.RequireStaff(),
		validatemw.GetById("dishId"), validatemw.UpdateDishStock(), h.UpdateDishStock)

	return app, h, db
}

// fixtures inserts one restaurant with a table and three dishes.
type fixtures struct {
	Restaurant model.Restaurant
	Table      model.Table
	Pizza      model.Dish
	Salad      model.Dish
	Salmon     model.Dish
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	restaurant := model.Restaurant{Name: "Test Restaurant", Status: "ACTIVE"}
	if err := db.Create(&restaurant).Error; err != nil {
		t.Fatalf("Failed to seed restaurant: %v", err)
	}

	table := model.Table{RestaurantID: restaurant.ID, Number: 1, Capacity: 4, Status: "ACTIVE"}
	if err := db.Create(&table).Error; err != nil {
		t.Fatalf("Failed to seed table: %v", err)
	}

	menu := model.Menu{RestaurantID: restaurant.ID, Name: "Menu", Status: "ACTIVE"}
	db.Create(&menu)
	category := model.Category{MenuID: menu.ID, Name: "Dishes"}
	db.Create(&category)

	pizza := model.Dish{CategoryID: category.ID, RestaurantID: restaurant.ID,
		Name: "Pizza", Price: 10.0, Quantity: 5, IsAvailable: true, Status: "ACTIVE"}
	salad := model.Dish{CategoryID: category.ID, RestaurantID: restaurant.ID,
		Name: "Salad", Price: 6.0, Quantity: 10, IsAvailable: true, Status: "ACTIVE"}
	salmon := model.Dish{CategoryID: category.ID, RestaurantID: restaurant.ID,
		Name: "Salmon", Price: 20.0, Quantity: 3, IsAvailable: true, Status: "ACTIVE"}
	for _, dish := range []*model.Dish{&pizza, &salad, &salmon} {
		if err := db.Create(dish).Error; err != nil {
			t.Fatalf("Failed to seed dish: %v", err)
		}
	}

	return fixtures{Restaurant: restaurant, Table: table, Pizza: pizza, Salad: salad, Salmon: salmon}
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string, restaurantId *uint) (model.User, string) {
	hashed, err := helper.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := model.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		Password:     hashed,
		Role:         role,
		RestaurantID: restaurantId,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	token, err := helper.GenerateAccessToken(model.Principal{
		UserID: user.ID, Role: user.Role, RestaurantID: user.RestaurantID,
	})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return user, token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body any) (int, map[string]interface{}) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	var parsed map[string]interface{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err != nil {
			t.Fatalf("Failed to parse response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, parsed
}

func responseData(t *testing.T, response map[string]interface{}) map[string]interface{} {
	data, ok := response["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", response)
	}
	return data
}
