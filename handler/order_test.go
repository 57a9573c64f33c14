package handler

import (
	"fmt"
	"net/http"
	"testing"

	"restaurant_manager/helper"
	"restaurant_manager/model"

	"github.com/stretchr/testify/assert"
)

func TestCreatePublicOrder(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)

	t.Run("creates a dine-in order and decrements stock", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodPost, "/order/public", "", map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"tableId":      fx.Table.ID,
			"type":         "DINE_IN",
			"items": []map[string]interface{}{
				{"dishId": fx.Pizza.ID, "quantity": 2},
				{"dishId": fx.Salad.ID, "quantity": 1},
			},
		})

		assert.Equal(t, http.StatusCreated, status)
		data := responseData(t, response)
		assert.Equal(t, "PENDING", data["status"])
		assert.Equal(t, 26.0, data["subtotal"])
		assert.Equal(t, 0.0, data["deliveryFee"])
		assert.Equal(t, 26.0, data["totalAmount"])
		assert.Nil(t, data["userId"])
		assert.Regexp(t, `^ORD-\d{8}-[0-9A-F]{8}$`, data["orderNumber"])

		var pizza model.Dish
		db.First(&pizza, fx.Pizza.ID)
		assert.Equal(t, 3, pizza.Quantity)
		assert.True(t, pizza.IsAvailable)
	})

	t.Run("rejects delivery without authentication", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodPost, "/order/public", "", map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"type":         "DELIVERY",
			"items":        []map[string]interface{}{{"dishId": fx.Pizza.ID, "quantity": 1}},
		})

		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, "error", response["status"])
	})

	t.Run("rejects missing table", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPost, "/order/public", "", map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"type":         "DINE_IN",
			"items":        []map[string]interface{}{{"dishId": fx.Pizza.ID, "quantity": 1}},
		})

		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("rejects orders above the public ceiling", func(t *testing.T) {
		// 500 * 6.00 = 3000, over the 1000 cap; restock first so the ceiling
		// rule fires before the stock check.
		db.Model(&model.Dish{}).Where("id = ?", fx.Salad.ID).Update("quantity", 1000)
		status, response := doRequest(t, app, http.MethodPost, "/order/public", "", map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"tableId":      fx.Table.ID,
			"type":         "DINE_IN",
			"items":        []map[string]interface{}{{"dishId": fx.Salad.ID, "quantity": 500}},
		})

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "INVALID_REQUEST", response["code"])

		// No stock was taken by the rejected order.
		var salad model.Dish
		db.First(&salad, fx.Salad.ID)
		assert.Equal(t, 1000, salad.Quantity)
	})
}

func TestCreateOrderStock(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)
	_, token := createTestUser(t, db, "client@example.com", model.RoleClient, nil)

	t.Run("rejects insufficient stock with conflict", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodPost, "/order", token, map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"tableId":      fx.Table.ID,
			"type":         "DINE_IN",
			"items":        []map[string]interface{}{{"dishId": fx.Salmon.ID, "quantity": 4}},
		})

		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "CONFLICT", response["code"])

		var salmon model.Dish
		db.First(&salmon, fx.Salmon.ID)
		assert.Equal(t, 3, salmon.Quantity)
	})

	t.Run("clears availability when stock reaches zero", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPost, "/order", token, map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"tableId":      fx.Table.ID,
			"type":         "DINE_IN",
			"items":        []map[string]interface{}{{"dishId": fx.Salmon.ID, "quantity": 3}},
		})

		assert.Equal(t, http.StatusCreated, status)

		var salmon model.Dish
		db.First(&salmon, fx.Salmon.ID)
		assert.Equal(t, 0, salmon.Quantity)
		assert.False(t, salmon.IsAvailable)

		// A further order on the now sold-out dish is rejected.
		status, _ = doRequest(t, app, http.MethodPost, "/order", token, map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"tableId":      fx.Table.ID,
			"type":         "DINE_IN",
			"items":        []map[string]interface{}{{"dishId": fx.Salmon.ID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("rejects unknown dish", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodPost, "/order", token, map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"tableId":      fx.Table.ID,
			"type":         "DINE_IN",
			"items":        []map[string]interface{}{{"dishId": 99999, "quantity": 1}},
		})

		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "NOT_FOUND", response["code"])
	})
}

func TestDeliveryOrderTotals(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)

	address := model.Address{Street: "1 Main St", City: "Algiers"}
	db.Create(&address)
	user := model.User{
		FirstName: "Del", LastName: "Ivery",
		Email: "delivery@example.com", Phone: "0550123456",
		Password: "x", Role: model.RoleClient, AddressID: &address.ID,
	}
	db.Create(&user)
	_, token := createTestUser(t, db, "other@example.com", model.RoleClient, nil)

	userToken, err := helper.GenerateAccessToken(model.Principal{UserID: user.ID, Role: user.Role})
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	t.Run("adds the delivery fee to the total", func(t *testing.T) {
		// subtotal 10.00, fee 50.00 -> total 60.00
		status, response := doRequest(t, app, http.MethodPost, "/order", userToken, map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"type":         "DELIVERY",
			"items":        []map[string]interface{}{{"dishId": fx.Pizza.ID, "quantity": 1}},
		})

		assert.Equal(t, http.StatusCreated, status)
		data := responseData(t, response)
		assert.Equal(t, 10.0, data["subtotal"])
		assert.Equal(t, 50.0, data["deliveryFee"])
		assert.Equal(t, 60.0, data["totalAmount"])
	})

	t.Run("requires an address for delivery", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPost, "/order", token, map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"type":         "DELIVERY",
			"items":        []map[string]interface{}{{"dishId": fx.Pizza.ID, "quantity": 1}},
		})

		assert.Equal(t, http.StatusBadRequest, status)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)
	_, clientToken := createTestUser(t, db, "client@example.com", model.RoleClient, nil)
	_, staffToken := createTestUser(t, db, "chef@example.com", model.RoleChef, &fx.Restaurant.ID)

	status, response := doRequest(t, app, http.MethodPost, "/order", clientToken, map[string]interface{}{
		"restaurantId": fx.Restaurant.ID,
		"tableId":      fx.Table.ID,
		"type":         "DINE_IN",
		"items":        []map[string]interface{}{{"dishId": fx.Pizza.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, status)
	orderId := uint(responseData(t, response)["id"].(float64))
	path := fmt.Sprintf("/order/%d/status", orderId)

	t.Run("clients cannot change status", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPatch, path, clientToken,
			map[string]interface{}{"status": "CONFIRMED"})
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("staff moves the order through its lifecycle", func(t *testing.T) {
		for _, next := range []string{"CONFIRMED", "PREPARING", "READY", "COMPLETED"} {
			status, response := doRequest(t, app, http.MethodPatch, path, staffToken,
				map[string]interface{}{"status": next})
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, next, responseData(t, response)["status"])
		}

		var order model.Order
		db.First(&order, orderId)
		assert.NotNil(t, order.ConfirmedAt)
		assert.NotNil(t, order.PreparedAt)
		assert.NotNil(t, order.ReadyAt)
		assert.NotNil(t, order.CompletedAt)
	})

	t.Run("completed orders cannot be cancelled", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodPatch, path, staffToken,
			map[string]interface{}{"status": "CANCELLED"})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "CONFLICT", response["code"])
	})

	t.Run("rejects invalid status values without mutating", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodPatch, path, staffToken,
			map[string]interface{}{"status": "TELEPORTED"})
		assert.Equal(t, http.StatusBadRequest, status)

		var order model.Order
		db.First(&order, orderId)
		assert.Equal(t, model.OrderStatusCompleted, order.Status)
	})
}

func TestInvalidStatusNeverPersists(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)
	_, clientToken := createTestUser(t, db, "client@example.com", model.RoleClient, nil)
	_, staffToken := createTestUser(t, db, "waiter@example.com", model.RoleWaiter, &fx.Restaurant.ID)

	status, response := doRequest(t, app, http.MethodPost, "/order", clientToken, map[string]interface{}{
		"restaurantId": fx.Restaurant.ID,
		"tableId":      fx.Table.ID,
		"type":         "DINE_IN",
		"items":        []map[string]interface{}{{"dishId": fx.Pizza.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, status)
	orderId := uint(responseData(t, response)["id"].(float64))

	status, response = doRequest(t, app, http.MethodPatch,
		fmt.Sprintf("/order/%d/status", orderId), staffToken,
		map[string]interface{}{"status": "TELEPORTED"})

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_REQUEST", response["code"])

	var order model.Order
	db.First(&order, orderId)
	assert.Equal(t, model.OrderStatusPending, order.Status)
}

func TestPublicOrderStatusLookup(t *testing.T) {
	app, _, db := newTestApp(t, "")
	fx := seedFixtures(t, db)

	status, response := doRequest(t, app, http.MethodPost, "/order/public", "", map[string]interface{}{
		"restaurantId": fx.Restaurant.ID,
		"tableId":      fx.Table.ID,
		"type":         "DINE_IN",
		"items":        []map[string]interface{}{{"dishId": fx.Pizza.ID, "quantity": 1}},
	})
	assert.Equal(t, http.StatusCreated, status)
	orderNumber := responseData(t, response)["orderNumber"].(string)

	t.Run("resolves walk-in orders by number", func(t *testing.T) {
		status, response := doRequest(t, app, http.MethodGet, "/order/public/status/"+orderNumber, "", nil)
		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, orderNumber, responseData(t, response)["orderNumber"])
	})

	t.Run("hides registered users' orders", func(t *testing.T) {
		_, token := createTestUser(t, db, "owner@example.com", model.RoleClient, nil)
		status, response := doRequest(t, app, http.MethodPost, "/order", token, map[string]interface{}{
			"restaurantId": fx.Restaurant.ID,
			"tableId":      fx.Table.ID,
			"type":         "DINE_IN",
			"items":        []map[string]interface{}{{"dishId": fx.Pizza.ID, "quantity": 1}},
		})
		assert.Equal(t, http.StatusCreated, status)
		ownedNumber := responseData(t, response)["orderNumber"].(string)

		status, _ = doRequest(t, app, http.MethodGet, "/order/public/status/"+ownedNumber, "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("unknown number returns not found", func(t *testing.T) {
		status, _ := doRequest(t, app, http.MethodGet, "/order/public/status/ORD-20250101-DEADBEEF", "", nil)
		assert.Equal(t, http.StatusNotFound, status)
	})
}
